package api

import (
	"strconv"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/streakboard/streakboard-server/internal/errors"
	"github.com/streakboard/streakboard-server/internal/http/response"
	"github.com/streakboard/streakboard-server/internal/store"
)

// EnvelopeVersion is the schema version stamped on every response.
const EnvelopeVersion = response.Version

// EnvelopeTransformer wraps every huma response body in response.Envelope.
// Errors carry their message in "error" plus a machine-readable code.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	switch body := v.(type) {
	case response.Envelope:
		return body, nil
	case *APIError:
		return response.Fail(body.Code, body.Message, body.Details), nil
	case *domainerrors.Error:
		return response.Fail(string(body.Code), body.Message, body.Details), nil
	case *store.Error:
		return response.Fail(string(response.CodeForStatus(body.HTTPCode())), body.Message, nil), nil
	case error:
		code, _ := strconv.Atoi(status)
		return response.Fail(string(response.CodeForStatus(code)), body.Error(), nil), nil
	}

	if code, err := strconv.Atoi(status); err == nil && code >= 400 {
		return response.Fail(string(response.CodeForStatus(code)), "request failed", v), nil
	}
	return response.OK(v), nil
}
