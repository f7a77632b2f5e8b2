package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/freshbowl/storefront/pkg/enums"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		retryable bool
		detailsOK bool
		severity  enums.Severity
	}{
		{code: CodeValidation, status: http.StatusBadRequest, detailsOK: true, severity: enums.SeverityWarning},
		{code: CodeNotFound, status: http.StatusNotFound, severity: enums.SeverityWarning},
		{code: CodeInternal, status: http.StatusInternalServerError, retryable: true, severity: enums.SeverityError},
		{code: CodeDependency, status: http.StatusServiceUnavailable, retryable: true, detailsOK: true, severity: enums.SeverityError},
		{code: CodeStockExceeded, status: http.StatusConflict, detailsOK: true, severity: enums.SeverityWarning},
		{code: CodeLimitExceeded, status: http.StatusUnprocessableEntity, detailsOK: true, severity: enums.SeverityWarning},
		{code: CodeEmptySelection, status: http.StatusUnprocessableEntity, severity: enums.SeverityWarning},
		{code: CodeMissingRequiredField, status: http.StatusBadRequest, detailsOK: true, severity: enums.SeverityWarning},
		{code: CodeChannelUnavailable, status: http.StatusBadGateway, retryable: true, detailsOK: true, severity: enums.SeverityError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			meta := MetadataFor(tt.code)
			assert.Equal(t, tt.status, meta.HTTPStatus)
			assert.Equal(t, tt.retryable, meta.Retryable)
			assert.Equal(t, tt.detailsOK, meta.DetailsAllowed)
			assert.Equal(t, tt.severity, meta.Severity)
			assert.NotEmpty(t, meta.PublicMessage)
		})
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	assert.Equal(t, http.StatusInternalServerError, meta.HTTPStatus)
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "missing foo")
	assert.Equal(t, CodeValidation, base.Code())
	assert.Equal(t, "missing foo", base.Message())
	assert.Nil(t, base.Details())

	base.WithDetails(map[string]any{"field": "foo"})
	assert.NotNil(t, base.Details())

	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeConflict, cause, "ctx")
	assert.ErrorIs(t, wrapped, cause)
	assert.Equal(t, CodeConflict, wrapped.Code())
	assert.Equal(t, "CONFLICT: ctx: boom", wrapped.Error())

	formatted := Newf(CodeStockExceeded, "only %d left", 3)
	assert.Equal(t, "only 3 left", formatted.Message())
}

func TestAsAndIsCode(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(CodeLimitExceeded, "cap"))
	got := As(err)
	require.NotNil(t, got)
	assert.Equal(t, CodeLimitExceeded, got.Code())
	assert.True(t, IsCode(err, CodeLimitExceeded))
	assert.False(t, IsCode(err, CodeStockExceeded))
	assert.Nil(t, As(nil))
	assert.False(t, IsCode(stdErrors.New("plain"), CodeInternal))
}

func TestDumpCollectsChainAndPGDetails(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "cart_snapshots_pkey", TableName: "cart_snapshots", Message: "duplicate"}
	err := Wrap(CodeDependency, fmt.Errorf("save: %w", pgErr), "persist cart")

	dump := Dump(err)
	assert.Equal(t, CodeDependency, dump.Code)
	assert.True(t, dump.Retryable)
	assert.Len(t, dump.Chain, 3)
	assert.Equal(t, "23505", dump.PGCode)
	assert.Equal(t, "cart_snapshots", dump.PGTable)

	fields := dump.Fields()
	assert.Equal(t, "23505", fields["pg_code"])

	plain := Dump(stdErrors.New("x")).Fields()
	_, hasPG := plain["pg_code"]
	assert.False(t, hasPG)
	assert.Equal(t, ErrorDump{}, Dump(nil))
}
