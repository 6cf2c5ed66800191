package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("dial tcp: refused")
	err := Wrap(CodeDependency, cause, "quote shipping rates")

	assert.Equal(t, CodeDependency, err.Code())
	assert.Equal(t, "quote shipping rates", err.Message())
	assert.ErrorIs(t, err, cause)
}

func TestAsFindsTypedErrorInChain(t *testing.T) {
	inner := New(CodeStateConflict, "metadata changed concurrently")
	wrapped := fmt.Errorf("merge shipping rate: %w", inner)

	typed := As(wrapped)
	assert.NotNil(t, typed)
	assert.Equal(t, CodeStateConflict, typed.Code())
}

func TestMetadataForUnknownCodeFallsBack(t *testing.T) {
	meta := MetadataFor(Code("BOGUS"))
	assert.Equal(t, http.StatusInternalServerError, meta.HTTPStatus)
}

func TestDumpIncludesChain(t *testing.T) {
	err := Wrap(CodeDependency, fmt.Errorf("carrier timeout"), "create label")
	dump := Dump(err)
	assert.Equal(t, CodeDependency, dump.Code)
	assert.Len(t, dump.Chain, 2)
}
