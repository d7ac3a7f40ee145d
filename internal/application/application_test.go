package application

import (
	"context"
	"errors"
	"testing"

	"github.com/Zhima-Mochi/minimarket/internal/domain/apperr"
	domoutbox "github.com/Zhima-Mochi/minimarket/internal/domain/outbox"
	"github.com/Zhima-Mochi/minimarket/internal/observability"
	"github.com/stretchr/testify/assert"
)

func TestWrapRepositoryError(t *testing.T) {
	assert.NoError(t, WrapRepositoryError(nil))

	nf := apperr.Validation("bad")
	assert.Equal(t, nf, WrapRepositoryError(nf))

	raw := errors.New("disk full")
	wrapped := WrapRepositoryError(raw)
	assert.ErrorIs(t, wrapped, apperr.ErrPersistence)
	assert.ErrorIs(t, wrapped, raw)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, "VALIDATION_FAILED", statusFor(apperr.Validation("x")))
	assert.Equal(t, "CONFLICT", statusFor(apperr.ErrConflict))
	assert.Equal(t, "INTERNAL", statusFor(errors.New("x")))
}

type recordingLogger struct {
	observability.Logger
	msgs *[]string
}

func (l recordingLogger) With(...observability.Field) observability.Logger { return l }
func (l recordingLogger) Info(msg string, _ ...observability.Field)        { *l.msgs = append(*l.msgs, msg) }
func (l recordingLogger) Warn(msg string, _ ...observability.Field)        { *l.msgs = append(*l.msgs, msg) }

type fakeTel struct {
	observability.Observability
	log observability.Logger
}

func (t fakeTel) Logger() observability.Logger { return t.log }

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, domoutbox.Event) error { return errors.New("queue full") }

type evt struct{}

func (evt) EventName() string { return "test.event" }

func TestExecutionLogsOnce(t *testing.T) {
	var msgs []string
	in := NewInstruments(fakeTel{Observability: observability.Nop(), log: recordingLogger{msgs: &msgs}}, "svc")

	ctx, exec := in.Start(context.Background(), "test.run", "Run")
	exec.End(ctx, apperr.ErrNotFound)
	assert.Equal(t, []string{"use_case_done"}, msgs)
	assert.Equal(t, "NOT_FOUND", exec.status)
	assert.Equal(t, "error", exec.outcome)
}

func TestPublishFailureIsReturnedNotFatal(t *testing.T) {
	var msgs []string
	in := NewInstruments(fakeTel{Observability: observability.Nop(), log: recordingLogger{msgs: &msgs}}, "svc")

	err := in.Publish(context.Background(), failingPublisher{}, evt{})
	assert.Error(t, err)
	assert.Equal(t, []string{"event_publish_failed"}, msgs)

	assert.NoError(t, in.Publish(context.Background(), nil, evt{}))
}
