package api

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/bookshelfapp/bookshelf-server/internal/errors"
)

func TestEnvelopeTransformer_AlwaysIncludesVersion(t *testing.T) {
	tests := []struct {
		name   string
		status string
		input  any
	}{
		{"success response", "200", map[string]string{"key": "value"}},
		{"created response", "201", map[string]string{"id": "123"}},
		{"no content response", "204", nil},
		{"bad request error", "400", errors.New("invalid input")},
		{"not found domain error", "404", domainerrors.NotFound("book not found")},
		{"conflict error with details", "409", &APIError{
			Code:    "CONFLICT",
			Message: "Entity already exists",
			Details: map[string]string{"existing_id": "123"},
		}},
		{"internal server error", "500", errors.New("internal error")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := EnvelopeTransformer(nil, tt.status, tt.input)
			require.NoError(t, err)

			jsonBytes, err := json.Marshal(result)
			require.NoError(t, err)

			var envelope map[string]any
			require.NoError(t, json.Unmarshal(jsonBytes, &envelope))

			require.Contains(t, envelope, "v", "Envelope must contain version field 'v'")
			assert.Equal(t, float64(EnvelopeVersion), envelope["v"])
		})
	}
}

func TestEnvelopeTransformer_SuccessResponse(t *testing.T) {
	data := map[string]string{"name": "Test Book"}

	result, err := EnvelopeTransformer(nil, "200", data)
	require.NoError(t, err)

	envelope, ok := result.(APIEnvelope)
	require.True(t, ok, "Expected APIEnvelope type")

	assert.Equal(t, EnvelopeVersion, envelope.Version)
	assert.True(t, envelope.Success)
	assert.Equal(t, data, envelope.Data)
	assert.Empty(t, envelope.Error)
}

func TestEnvelopeTransformer_ErrorResponse(t *testing.T) {
	result, err := EnvelopeTransformer(nil, "400", errors.New("validation failed"))
	require.NoError(t, err)

	envelope, ok := result.(APIEnvelope)
	require.True(t, ok, "Expected APIEnvelope type")

	assert.False(t, envelope.Success)
	assert.Nil(t, envelope.Data)
	assert.Equal(t, "validation failed", envelope.Error)
}

func TestEnvelopeTransformer_DomainErrorHidesCause(t *testing.T) {
	storageErr := domainerrors.Storage(errors.New("database is locked"), "list books")

	result, err := EnvelopeTransformer(nil, "500", storageErr)
	require.NoError(t, err)

	envelope, ok := result.(APIErrorEnvelope)
	require.True(t, ok, "Expected APIErrorEnvelope type")
	assert.Equal(t, "STORAGE", envelope.Code)
	assert.Equal(t, "list books", envelope.Message)

	jsonBytes, err := json.Marshal(envelope)
	require.NoError(t, err)
	assert.NotContains(t, string(jsonBytes), "locked")
}

func TestEnvelopeTransformer_ErrorWithDetails(t *testing.T) {
	apiErr := &APIError{
		Code:    "VALIDATION",
		Message: "invalid list request",
		Details: map[string]string{"pageSize": "must be between 1 and 100"},
	}

	result, err := EnvelopeTransformer(nil, "400", apiErr)
	require.NoError(t, err)

	envelope, ok := result.(APIErrorEnvelope)
	require.True(t, ok, "Expected APIErrorEnvelope type")

	assert.Equal(t, EnvelopeVersion, envelope.Version)
	assert.False(t, envelope.Success)
	assert.Equal(t, "VALIDATION", envelope.Code)
	assert.Equal(t, "invalid list request", envelope.Message)
	assert.Equal(t, apiErr.Details, envelope.Details)
}
