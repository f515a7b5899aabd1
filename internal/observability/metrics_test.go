package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestMetrics_Exposition(t *testing.T) {
	m := NewMetrics()
	m.APIInflightInc()
	m.ObserveAPI("POST", "/api/v1/predict-plan", "200", 2*time.Second)
	m.APIInflightDec()
	m.ObserveLLMAttempt(LLMAttempt{
		Model: "gpt-4o-mini", TokenField: "max_completion_tokens", Outcome: "ok", FinishReason: "stop",
		TokenCap: 2400, Duration: 3 * time.Second, PromptTokens: 120, CompletionTokens: 800,
	})
	m.ObserveLLMAttempt(LLMAttempt{TokenField: "max_tokens", Outcome: "http_400"})

	rec := httptest.NewRecorder()
	m.WriteHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()

	for _, want := range []string{
		`studyplan_api_requests_total{method="POST",route="/api/v1/predict-plan",status="200"} 1`,
		`studyplan_api_request_duration_seconds_bucket{method="POST",route="/api/v1/predict-plan",status="200",le="1"} 0`,
		`studyplan_api_request_duration_seconds_bucket{method="POST",route="/api/v1/predict-plan",status="200",le="5"} 1`,
		`studyplan_api_inflight_requests 0`,
		`studyplan_llm_attempts_total{model="gpt-4o-mini",token_field="max_completion_tokens",outcome="ok"} 1`,
		`studyplan_llm_attempts_total{model="unknown",token_field="max_tokens",outcome="http_400"} 1`,
		`studyplan_llm_tokens_total{model="gpt-4o-mini",kind="completion"} 800`,
		`# TYPE studyplan_llm_attempt_duration_seconds histogram`,
		`studyplan_llm_finish_reasons_total{model="gpt-4o-mini",finish_reason="stop"} 1`,
		`studyplan_llm_token_cap_bucket{model="gpt-4o-mini",le="1200"} 0`,
		`studyplan_llm_token_cap_sum{model="gpt-4o-mini"} 2400`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("missing %q in:\n%s", want, body)
		}
	}
	if !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/plain") {
		t.Fatalf("content-type=%q", rec.Header().Get("Content-Type"))
	}
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/x", "200", time.Millisecond)
	m.ObserveLLMAttempt(LLMAttempt{Model: "m", Outcome: "ok"})
	m.APIInflightInc()

	rec := httptest.NewRecorder()
	m.WriteHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d", rec.Code)
	}
}

func TestEscapeLabel(t *testing.T) {
	if got := labelString([]string{"a"}, []string{"x\"y\n"}); got != `{a="x\"y\n"}` {
		t.Fatalf("labels=%s", got)
	}
}
