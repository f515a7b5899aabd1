package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/yungbote/studyplan-backend/internal/platform/httpx"
	"github.com/yungbote/studyplan-backend/internal/platform/logger"
)

// ErrMissingAPIKey is returned by Complete before any network activity when no credential is configured.
var ErrMissingAPIKey = errors.New("missing OPENAI_API_KEY")

type Config struct {
	BaseURL string
	APIKey  string
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ResponseFormat struct {
	Type string `json:"type"`
}

// ChatRequest is the chat/completions payload. Exactly one of the two token cap
// fields is expected to be set; which one an endpoint accepts depends on its generation.
type ChatRequest struct {
	Model               string          `json:"model"`
	Messages            []Message       `json:"messages"`
	ResponseFormat      *ResponseFormat `json:"response_format,omitempty"`
	Temperature         *float64        `json:"temperature,omitempty"`
	MaxCompletionTokens *int            `json:"max_completion_tokens,omitempty"`
	MaxTokens           *int            `json:"max_tokens,omitempty"`
}

type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type ChatResponse struct {
	ID      string   `json:"id"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`

	// Raw is the undecoded response body, kept for debug artifacts.
	Raw       []byte `json:"-"`
	RequestID string `json:"-"`
	Attempts  int    `json:"-"`
}

// FirstChoice returns the content and finish reason of the first choice, or empty strings.
func (r *ChatResponse) FirstChoice() (content string, finishReason string) {
	if r == nil || len(r.Choices) == 0 {
		return "", ""
	}
	return r.Choices[0].Message.Content, r.Choices[0].FinishReason
}

// DecodeError means a 2xx response body was not a chat completion envelope.
type DecodeError struct {
	Raw []byte
	Err error
}

func (e *DecodeError) Error() string { return fmt.Sprintf("openai decode error: %v", e.Err) }
func (e *DecodeError) Unwrap() error { return e.Err }

type ChatClient struct {
	log       *logger.Logger
	baseURL   string
	apiKey    string
	transport *httpx.Client
}

func NewChatClient(cfg Config, transport *httpx.Client, log *logger.Logger) *ChatClient {
	if log == nil {
		log = logger.NewNop()
	}
	if transport == nil {
		transport = httpx.New(httpx.Options{Retry: httpx.DefaultRetryPolicy()}, log)
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	return &ChatClient{
		log:       log.With("service", "OpenAIChatClient"),
		baseURL:   baseURL,
		apiKey:    strings.TrimSpace(cfg.APIKey),
		transport: transport,
	}
}

func (c *ChatClient) HasCredential() bool { return c != nil && c.apiKey != "" }

// Complete posts one chat completion. If the endpoint rejects temperature for the
// model, the call is repeated once without it.
func (c *ChatClient) Complete(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if !c.HasCredential() {
		return nil, ErrMissingAPIKey
	}
	resp, err := c.complete(ctx, req)
	if err == nil || req.Temperature == nil {
		return resp, err
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || !apiErr.UnsupportedParam("temperature") {
		return nil, err
	}
	c.log.Warn("model rejected temperature; retrying without it", "model", req.Model)
	req.Temperature = nil
	return c.complete(ctx, req)
}

func (c *ChatClient) complete(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode chat request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.transport.Do(httpReq, body)
	if err != nil {
		return nil, err
	}
	requestID := resp.Header.Get("x-request-id")
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, parseAPIError(resp.StatusCode, requestID, resp.Body)
	}

	var out ChatResponse
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return nil, &DecodeError{Raw: resp.Body, Err: err}
	}
	out.Raw = resp.Body
	out.RequestID = requestID
	out.Attempts = resp.Attempts
	c.log.Debug("chat completion received",
		"model", out.Model,
		"request_id", requestID,
		"attempts", resp.Attempts,
		"completion_tokens", out.Usage.CompletionTokens,
	)
	return &out, nil
}
