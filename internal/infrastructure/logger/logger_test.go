package logger

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogger_KeyValuePairs(t *testing.T) {
	var out, errOut bytes.Buffer
	l := New(&out, &errOut)

	l.Info("Order header created", "order_id", "o-1", "total", 2600)
	l.Warn("Item creation failed", "index", 2)
	l.Error("Submission aborted", "error", errors.New("boom"), "dangling")

	assert.Contains(t, out.String(), "INFO: Order header created order_id=o-1 total=2600")
	assert.Contains(t, out.String(), "WARN: Item creation failed index=2")
	assert.Contains(t, errOut.String(), "ERROR: Submission aborted error=boom dangling")
}

func TestLogger_PlainMessage(t *testing.T) {
	var out bytes.Buffer
	New(&out, &out).Info("Starting order-composer")
	assert.Contains(t, out.String(), "INFO: Starting order-composer\n")
}
