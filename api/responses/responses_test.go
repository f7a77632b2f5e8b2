package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/freshbowl/storefront/pkg/errors"
	"github.com/freshbowl/storefront/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorBody {
	t.Helper()
	var body ErrorEnvelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body.Error
}

func TestWriteSuccess(t *testing.T) {
	w := httptest.NewRecorder()
	WriteSuccess(w, map[string]string{"hello": "world"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body Envelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "world", body.Data.(map[string]any)["hello"])
}

func TestWriteSuccessStatus(t *testing.T) {
	w := httptest.NewRecorder()
	WriteSuccessStatus(w, http.StatusCreated, []int{1})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestWriteErrorMapsTypedError(t *testing.T) {
	w := httptest.NewRecorder()
	err := pkgerrors.New(pkgerrors.CodeValidation, "bad input").
		WithDetails(map[string]string{"field": "demo"})
	WriteError(context.Background(), logger.Nop(), w, err)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	apiErr := decodeError(t, w)
	assert.Equal(t, string(pkgerrors.CodeValidation), apiErr.Code)
	assert.Equal(t, "bad input", apiErr.Message)
	assert.NotNil(t, apiErr.Details)
}

func TestWriteErrorKeepsDomainMessages(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(context.Background(), nil, w, pkgerrors.New(pkgerrors.CodeStockExceeded, "only 3 of Kiwi available"))

	assert.Equal(t, http.StatusConflict, w.Code)
	apiErr := decodeError(t, w)
	assert.Equal(t, "STOCK_EXCEEDED", apiErr.Code)
	assert.Equal(t, "only 3 of Kiwi available", apiErr.Message)
}

func TestWriteErrorHidesChannelCause(t *testing.T) {
	w := httptest.NewRecorder()
	err := pkgerrors.Wrap(pkgerrors.CodeChannelUnavailable, errors.New("exec: xdg-open not found"), "all strategies failed")
	WriteError(context.Background(), nil, w, err)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	apiErr := decodeError(t, w)
	assert.Equal(t, pkgerrors.MetadataFor(pkgerrors.CodeChannelUnavailable).PublicMessage, apiErr.Message)
}

func TestWriteErrorDefaultsToInternalForUntrustedErrors(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(context.Background(), nil, w, errors.New("boom"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	apiErr := decodeError(t, w)
	assert.Equal(t, string(pkgerrors.CodeInternal), apiErr.Code)
	assert.Nil(t, apiErr.Details)
	assert.NotContains(t, apiErr.Message, "boom")
}
