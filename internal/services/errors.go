package services

import (
	"errors"

	"github.com/yungbote/studyplan-backend/internal/modules/studyplan/completion"
)

var (
	ErrStorageDisabled = errors.New("plan storage is not configured")
	ErrPlanNotFound    = errors.New("plano não encontrado")
	ErrCardNotFound    = errors.New("card não encontrado para este plano")
	ErrInvalidStatus   = errors.New("status inválido")
)

// GenerationError is reported in the predict-plan response body instead of
// failing the request, so the classification and skeleton still reach the client.
type GenerationError struct {
	Error        string `json:"error"`
	Kind         string `json:"kind"`
	ArtifactPath string `json:"artifact_path,omitempty"`
}

const (
	KindConfiguration   = "configuration"
	KindTransport       = "transport"
	KindRemoteRejection = "remote_rejection"
	KindMalformedOutput = "malformed_output"
	KindPersistence     = "persistence"
	KindUnknown         = "unknown"
)

func generationError(err error) *GenerationError {
	out := &GenerationError{Error: err.Error(), Kind: KindUnknown}
	var (
		cfgErr *completion.ConfigurationError
		trErr  *completion.TransportError
		rejErr *completion.RemoteRejectionError
		malErr *completion.MalformedOutputError
	)
	switch {
	case errors.As(err, &cfgErr):
		out.Kind = KindConfiguration
	case errors.As(err, &trErr):
		out.Kind = KindTransport
	case errors.As(err, &rejErr):
		out.Kind = KindRemoteRejection
	case errors.As(err, &malErr):
		out.Kind = KindMalformedOutput
		out.ArtifactPath = malErr.ArtifactPath
	}
	return out
}
