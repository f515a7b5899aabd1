package completion

import "fmt"

// ConfigurationError means the orchestrator cannot run at all, e.g. no credential.
// It is returned before any network call.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string { return "configuration error: " + e.Reason }

// TransportError is a network-level failure that survived the transport retries.
type TransportError struct {
	Cause error
}

func (e *TransportError) Error() string { return fmt.Sprintf("transport error: %v", e.Cause) }
func (e *TransportError) Unwrap() error { return e.Cause }

// RemoteRejectionError is a terminal non-2xx response.
type RemoteRejectionError struct {
	Status    int
	RequestID string
	Message   string
	Param     string
	Code      string
	// TokenField is the token cap field the rejected request used.
	TokenField string

	unsupported bool
}

func (e *RemoteRejectionError) Error() string {
	id := e.RequestID
	if id == "" {
		id = "sem-id"
	}
	return fmt.Sprintf("remote rejected request (%d) id=%s: %s", e.Status, id, e.Message)
}

// UnsupportedTokenField reports whether the endpoint rejected the token cap field itself.
func (e *RemoteRejectionError) UnsupportedTokenField() bool { return e.unsupported }

// MalformedOutputError is a 2xx response without a usable JSON plan after all
// escalations. ArtifactPath points at the saved response when it could be written.
type MalformedOutputError struct {
	Reason       string
	FinishReason string
	Attempts     int
	ArtifactPath string
}

func (e *MalformedOutputError) Error() string {
	msg := fmt.Sprintf("malformed model output after %d attempt(s): %s", e.Attempts, e.Reason)
	if e.FinishReason != "" {
		msg += fmt.Sprintf(" (finish_reason=%s)", e.FinishReason)
	}
	if e.ArtifactPath != "" {
		msg += fmt.Sprintf(" (see %s)", e.ArtifactPath)
	}
	return msg
}
