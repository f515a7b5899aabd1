package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/studyplan-backend/internal/modules/studyplan"
	"github.com/yungbote/studyplan-backend/internal/observability"
	"github.com/yungbote/studyplan-backend/internal/platform/artifacts"
	"github.com/yungbote/studyplan-backend/internal/platform/ctxutil"
	"github.com/yungbote/studyplan-backend/internal/platform/logger"
	"github.com/yungbote/studyplan-backend/internal/platform/openai"
)

const (
	DefaultModel          = "gpt-4o-mini"
	DefaultTokenCap       = 1200
	DefaultMaxAutoRetries = 3
	DefaultTemperature    = 0.2
)

// Completer sends one chat completion. *openai.ChatClient implements it.
type Completer interface {
	Complete(ctx context.Context, req openai.ChatRequest) (*openai.ChatResponse, error)
}

type credentialChecker interface {
	HasCredential() bool
}

// AttemptRecorder observes every completion call. *observability.Metrics
// implements it.
type AttemptRecorder interface {
	ObserveLLMAttempt(observability.LLMAttempt)
}
type Config struct {
	Model    string
	TokenCap int
	// Temperature nil omits the field.
	Temperature *float64
	// MaxAutoRetries bounds token cap escalations per request shape.
	MaxAutoRetries int
}

func DefaultConfig() Config {
	temp := DefaultTemperature
	return Config{
		Model:          DefaultModel,
		TokenCap:       DefaultTokenCap,
		Temperature:    &temp,
		MaxAutoRetries: DefaultMaxAutoRetries,
	}
}

// FetchRequest describes one plan generation.
type FetchRequest struct {
	Skeleton studyplan.Skeleton
	// Weeks 0 lets the model decide and report the count.
	Weeks int
	// WeeklyHours nil tells the model to use the skeleton's budget.
	WeeklyHours *float64
	// Model and TokenCap override the configured defaults when set.
	Model    string
	TokenCap int
}

// tokenField is one request shape: the name of the output token cap field.
type tokenField struct {
	name  string
	apply func(req *openai.ChatRequest, limit int)
}

var tokenFields = []tokenField{
	{name: "max_completion_tokens", apply: func(req *openai.ChatRequest, limit int) {
		req.MaxCompletionTokens, req.MaxTokens = &limit, nil
	}},
	{name: "max_tokens", apply: func(req *openai.ChatRequest, limit int) {
		req.MaxTokens, req.MaxCompletionTokens = &limit, nil
	}},
}

// Orchestrator obtains a RawPlan from the completion endpoint. It keeps no
// per-call state, so concurrent FetchPlan calls are independent.
type Orchestrator struct {
	chat      Completer
	artifacts *artifacts.Store
	cfg       Config
	log       *logger.Logger
	tracer    trace.Tracer
	recorder  AttemptRecorder
}

func New(chat Completer, store *artifacts.Store, cfg Config, log *logger.Logger) *Orchestrator {
	if log == nil {
		log = logger.NewNop()
	}
	if store == nil {
		store = artifacts.New(artifacts.DefaultDir, log)
	}
	def := DefaultConfig()
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = def.Model
	}
	if cfg.TokenCap <= 0 {
		cfg.TokenCap = def.TokenCap
	}
	if cfg.MaxAutoRetries < 0 {
		cfg.MaxAutoRetries = 0
	}
	return &Orchestrator{
		chat:      chat,
		artifacts: store,
		cfg:       cfg,
		log:       log.With("service", "PlanOrchestrator"),
		tracer:    otel.Tracer("studyplan/completion"),
	}
}

// SetRecorder installs rec for every later FetchPlan. Call it before serving.
func (o *Orchestrator) SetRecorder(rec AttemptRecorder) { o.recorder = rec }

// Model is the model used when a request does not name one.
func (o *Orchestrator) Model() string { return o.cfg.Model }

// FetchPlan returns the model's plan or one of *ConfigurationError,
// *TransportError, *RemoteRejectionError or *MalformedOutputError.
func (o *Orchestrator) FetchPlan(ctx context.Context, req FetchRequest) (*studyplan.RawPlan, error) {
	ctx = ctxutil.Default(ctx)
	if o.chat == nil {
		return nil, &ConfigurationError{Reason: "no completion client configured"}
	}
	if cc, ok := o.chat.(credentialChecker); ok && !cc.HasCredential() {
		return nil, &ConfigurationError{Reason: openai.ErrMissingAPIKey.Error()}
	}

	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = o.cfg.Model
	}
	startCap := req.TokenCap
	if startCap <= 0 {
		startCap = o.cfg.TokenCap
	}
	user, err := userPrompt(req.Skeleton, req.Weeks, req.WeeklyHours)
	if err != nil {
		return nil, &ConfigurationError{Reason: err.Error()}
	}
	base := openai.ChatRequest{
		Model:          model,
		ResponseFormat: &openai.ResponseFormat{Type: "json_object"},
		Temperature:    o.cfg.Temperature,
		Messages: []openai.Message{
			{Role: "system", Content: systemPrompt()},
			{Role: "user", Content: user},
		},
	}

	ctx, span := o.tracer.Start(ctx, "studyplan.FetchPlan", trace.WithAttributes(
		attribute.String("llm.model", model),
		attribute.Int("llm.token_cap", startCap),
		attribute.Int("plan.weeks_requested", req.Weeks),
		attribute.String("http.request_id", ctxutil.RequestID(ctx)),
	))
	defer span.End()

	for i, field := range tokenFields {
		plan, err := o.escalate(ctx, base, field, startCap)
		if err == nil {
			span.SetStatus(codes.Ok, "")
			return plan, nil
		}
		var rej *RemoteRejectionError
		if i < len(tokenFields)-1 && errors.As(err, &rej) && rej.UnsupportedTokenField() {
			o.log.Warn("endpoint rejected token cap field; switching request shape",
				"field", field.name,
				"next_field", tokenFields[i+1].name,
				"status", rej.Status,
				"request_id", rej.RequestID,
			)
			continue
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return nil, &ConfigurationError{Reason: "no request shape left to try"}
}

// escalate runs the token cap ladder for one request shape: the initial cap,
// then twice it, then three times it for every later attempt.
func (o *Orchestrator) escalate(ctx context.Context, base openai.ChatRequest, field tokenField, startCap int) (*studyplan.RawPlan, error) {
	limit := startCap
	retries := 0
	for attempt := 1; ; attempt++ {
		req := base
		field.apply(&req, limit)

		actx, span := o.tracer.Start(ctx, "studyplan.FetchPlan.attempt", trace.WithAttributes(
			attribute.Int("llm.attempt", attempt),
			attribute.String("llm.token_field", field.name),
			attribute.Int("llm.token_cap", limit),
		))
		started := time.Now()
		resp, err := o.chat.Complete(actx, req)
		if err != nil {
			span.RecordError(err)
			span.End()
			cerr := o.classify(err, field.name, attempt)
			o.record(observability.LLMAttempt{
				Model: base.Model, TokenField: field.name, Outcome: failureOutcome(cerr),
				TokenCap: limit, Duration: time.Since(started),
			}, nil)
			return nil, cerr
		}
		content, finish := resp.FirstChoice()
		content = strings.TrimSpace(content)
		span.SetAttributes(attribute.String("llm.finish_reason", finish))
		span.End()
		seen := observability.LLMAttempt{
			Model: base.Model, TokenField: field.name, FinishReason: finish,
			TokenCap: limit, Duration: time.Since(started),
		}

		if content != "" {
			plan, perr := studyplan.ParseRawPlan([]byte(content))
			if perr != nil {
				seen.Outcome = "invalid_json"
				o.record(seen, resp)
			} else {
				seen.Outcome = "ok"
				o.record(seen, resp)
				o.log.Info("plan received",
					"model", base.Model,
					"attempt", attempt,
					"token_field", field.name,
					"token_cap", limit,
					"weeks", len(plan.Plan),
					"tasks", plan.TaskCount(),
				)
				return plan, nil
			}
			path := o.saveDebug("last_openai_raw", ".txt", []byte(content))
			if retries < o.cfg.MaxAutoRetries {
				retries++
				limit = nextCap(startCap, retries)
				o.log.Warn("model output is not a JSON object; raising token cap",
					"attempt", attempt,
					"error", perr.Error(),
					"next_token_cap", limit,
					"artifact", path,
				)
				continue
			}
			return nil, &MalformedOutputError{
				Reason:       "content is not a valid JSON object",
				FinishReason: finish,
				Attempts:     attempt,
				ArtifactPath: path,
			}
		}

		seen.Outcome = "empty"
		if finish == "length" {
			seen.Outcome = "truncated"
		}
		o.record(seen, resp)

		if finish == "length" && retries < o.cfg.MaxAutoRetries {
			retries++
			limit = nextCap(startCap, retries)
			o.log.Warn("model output truncated; raising token cap",
				"attempt", attempt,
				"next_token_cap", limit,
			)
			continue
		}

		path := o.saveDebug("last_openai_response", ".json", indentJSON(resp.Raw))
		return nil, &MalformedOutputError{
			Reason:       "empty content",
			FinishReason: finish,
			Attempts:     attempt,
			ArtifactPath: path,
		}
	}
}

func (o *Orchestrator) record(a observability.LLMAttempt, resp *openai.ChatResponse) {
	if o.recorder == nil {
		return
	}
	if resp != nil {
		a.PromptTokens, a.CompletionTokens = resp.Usage.PromptTokens, resp.Usage.CompletionTokens
	}
	o.recorder.ObserveLLMAttempt(a)
}

// failureOutcome labels a classified call failure.
func failureOutcome(err error) string {
	var (
		rej  *RemoteRejectionError
		conf *ConfigurationError
		mal  *MalformedOutputError
	)
	switch {
	case errors.As(err, &rej):
		return "http_" + strconv.Itoa(rej.Status)
	case errors.As(err, &conf):
		return "configuration"
	case errors.As(err, &mal):
		return "invalid_response"
	default:
		return "transport_error"
	}
}

func nextCap(start, retries int) int {
	if retries == 1 {
		return start * 2
	}
	return start * 3
}

func (o *Orchestrator) classify(err error, field string, attempt int) error {
	if errors.Is(err, openai.ErrMissingAPIKey) {
		return &ConfigurationError{Reason: err.Error()}
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &RemoteRejectionError{
			Status:      apiErr.StatusCode,
			RequestID:   apiErr.RequestID,
			Message:     apiErr.Message,
			Param:       apiErr.Param,
			Code:        apiErr.Code,
			TokenField:  field,
			unsupported: apiErr.UnsupportedParam(field),
		}
	}
	var decErr *openai.DecodeError
	if errors.As(err, &decErr) {
		return &MalformedOutputError{
			Reason:       "response body is not a chat completion",
			Attempts:     attempt,
			ArtifactPath: o.saveDebug("last_openai_response", ".json", decErr.Raw),
		}
	}
	return &TransportError{Cause: err}
}

// saveDebug never fails the request; a write error only loses the artifact.
func (o *Orchestrator) saveDebug(stem, suffix string, data []byte) string {
	path, err := o.artifacts.WriteDebug(stem, suffix, data)
	if err != nil {
		o.log.Warn("debug artifact not written", "stem", stem, "error", err)
		return ""
	}
	return path
}

func indentJSON(raw []byte) []byte {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return raw
	}
	return buf.Bytes()
}
