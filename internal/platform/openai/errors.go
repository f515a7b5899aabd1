package openai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// APIError is a terminal non-2xx response from the endpoint.
type APIError struct {
	StatusCode int
	RequestID  string
	Message    string
	Type       string
	Param      string
	Code       string
	Body       string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Body
	}
	if e.RequestID != "" {
		return fmt.Sprintf("openai http %d (request %s): %s", e.StatusCode, e.RequestID, msg)
	}
	return fmt.Sprintf("openai http %d: %s", e.StatusCode, msg)
}

// UnsupportedParam reports whether the endpoint rejected the named request field.
// The structured code/param fields are checked first; matching on the message
// text only applies when the body carries no param at all.
func (e *APIError) UnsupportedParam(name string) bool {
	if e == nil || e.StatusCode != 400 {
		return false
	}
	name = strings.ToLower(strings.TrimSpace(name))
	param := strings.ToLower(strings.TrimSpace(e.Param))
	code := strings.ToLower(strings.TrimSpace(e.Code))
	if param != "" {
		if param != name {
			return false
		}
		switch code {
		case "unsupported_parameter", "unsupported_value", "unknown_parameter":
			return true
		}
		return isUnsupportedParamMessage(e.Message, name)
	}
	return isUnsupportedParamMessage(e.Message, name)
}

func isUnsupportedParamMessage(s string, name string) bool {
	msg := strings.ToLower(strings.TrimSpace(s))
	if msg == "" || !strings.Contains(msg, name) {
		return false
	}
	for _, marker := range []string{
		"unsupported parameter",
		"unknown parameter",
		"unrecognized parameter",
		"not supported",
		"does not support",
		"only the default",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

func parseAPIError(status int, requestID string, body []byte) *APIError {
	out := &APIError{StatusCode: status, RequestID: requestID, Body: string(body)}
	var env struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
			Param   any    `json:"param"`
			Code    any    `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return out
	}
	out.Message = env.Error.Message
	out.Type = env.Error.Type
	out.Param = stringify(env.Error.Param)
	out.Code = stringify(env.Error.Code)
	return out
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}
