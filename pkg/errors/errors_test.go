package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("boom")
	err := Wrap(CodeDependency, cause, "fetching rates")

	assert.Equal(t, CodeDependency, err.Code())
	assert.Equal(t, "fetching rates", err.Message())
	assert.ErrorIs(t, err, cause)
}

func TestAsUnwrapsNestedTypedError(t *testing.T) {
	inner := New(CodePaymentFailure, "instrument declined")
	outer := fmt.Errorf("completing checkout: %w", inner)

	typed := As(outer)
	require.NotNil(t, typed)
	assert.Equal(t, CodePaymentFailure, typed.Code())
	assert.True(t, IsCode(outer, CodePaymentFailure))
	assert.False(t, IsCode(outer, CodeValidation))
}

func TestMetadataForKnownCodes(t *testing.T) {
	cases := map[Code]int{
		CodeValidation:          http.StatusBadRequest,
		CodeNotFound:            http.StatusNotFound,
		CodeStateConflict:       http.StatusUnprocessableEntity,
		CodeIdempotency:         http.StatusConflict,
		CodeFulfillmentRequired: http.StatusBadRequest,
		CodePaymentFailure:      http.StatusPaymentRequired,
	}
	for code, status := range cases {
		assert.Equal(t, status, MetadataFor(code).HTTPStatus, string(code))
	}

	assert.Equal(t, http.StatusInternalServerError, MetadataFor(Code("UNKNOWN")).HTTPStatus)
}

func TestPaymentFailureIsRetryable(t *testing.T) {
	assert.True(t, MetadataFor(CodePaymentFailure).Retryable)
	assert.False(t, MetadataFor(CodeStateConflict).Retryable)
}

func TestDumpIncludesChain(t *testing.T) {
	err := Wrap(CodeInternal, fmt.Errorf("low level"), "high level")
	dump := Dump(err)

	assert.Equal(t, CodeInternal, dump.Code)
	require.Len(t, dump.Chain, 2)
	assert.Contains(t, dump.Chain[1], "low level")
}
