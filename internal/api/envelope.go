package api

import (
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/bookshelfapp/bookshelf-server/internal/errors"
	"github.com/bookshelfapp/bookshelf-server/internal/http/response"
)

// EnvelopeVersion is the version field sent in every JSON body.
const EnvelopeVersion = response.Version

// APIEnvelope is the body of every successful response.
type APIEnvelope = response.Envelope

// APIErrorEnvelope is the body of every coded error response.
type APIErrorEnvelope = response.ErrorEnvelope

// EnvelopeTransformer wraps huma response bodies in the shared envelope so
// huma and plain chi handlers answer in the same shape.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	code, _ := strconv.Atoi(status)

	switch e := v.(type) {
	case *APIError:
		return response.WrapError(e.Code, e.Message, e.Details), nil
	case *domainerrors.Error:
		return response.WrapError(string(e.Code), e.Message, e.Details), nil
	case error:
		return APIEnvelope{Version: EnvelopeVersion, Error: e.Error()}, nil
	}

	env := response.Wrap(v)
	if code >= http.StatusBadRequest {
		env.Success = false
		env.Error = http.StatusText(code)
	}
	return env, nil
}
