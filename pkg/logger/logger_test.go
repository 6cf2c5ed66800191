package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextFieldsPropagate(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{ServiceName: "test", Output: &buf})

	ctx := logg.WithOrderID(context.Background(), "ord-123")
	ctx = logg.WithRoute(ctx, "admin.shipping.select-rate")
	logg.Info(ctx, "hello")

	line := buf.String()
	assert.Contains(t, line, `"order_id":"ord-123"`)
	assert.Contains(t, line, `"route":"admin.shipping.select-rate"`)
	assert.Contains(t, line, `"service":"test"`)
}

func TestSanitizeStripsControlCharacters(t *testing.T) {
	got := Sanitize("ord-1\nFAKE level=error\tinjected\x00")
	assert.Equal(t, "ord-1FAKE level=errorinjected", got)
	assert.False(t, strings.ContainsAny(got, "\n\t\x00"))
}
