// ABOUTME: Tests for notifiers
// ABOUTME: Checks console output, log records, and fan-out
package notify

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestConsole(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	c.Success(context.Background(), "Deal moved to Proposal")
	c.Failure(context.Background(), "Failed to update deal stage", errors.New("locked"))
	c.Failure(context.Background(), "Nothing selected", nil)

	assert.Equal(t, "✓ Deal moved to Proposal\n✗ Failed to update deal stage: locked\n✗ Nothing selected\n", buf.String())
}

func TestLogNotifier(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	n := NewLogNotifier(zap.New(core))

	n.Success(context.Background(), "saved")
	n.Failure(context.Background(), "failed", errors.New("boom"))

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "saved", logs.All()[0].Message)
	assert.Equal(t, zap.WarnLevel, logs.All()[1].Level)
}

func TestRecorderAndMulti(t *testing.T) {
	a, b := &Recorder{}, &Recorder{}
	n := Multi(a, b, Nop)

	n.Success(context.Background(), "ok")
	n.Failure(context.Background(), "bad", errors.New("x"))

	for _, r := range []*Recorder{a, b} {
		msgs := r.Messages()
		require.Len(t, msgs, 2)
		assert.True(t, msgs[0].OK)
		assert.Equal(t, "bad", msgs[1].Text)
		assert.EqualError(t, msgs[1].Err, "x")
	}
}
