package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithAlert_ForwardsOnlyMarkedErrors(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	base := &Logger{zap.New(core)}

	sent := make(chan string, 2)
	log := base.WithAlert(func(message string) { sent <- message })

	log.ErrorContext(context.Background(), "plain error", ErrorField(errors.New("boom")))
	log.ErrorContextWithAlert(context.Background(), "scheduled analysis failed", StringField("job", "analysis"))

	select {
	case msg := <-sent:
		assert.Contains(t, msg, "scheduled analysis failed")
		assert.Contains(t, msg, "job: analysis")
		assert.NotContains(t, msg, KeySendAlert)
	case <-time.After(time.Second):
		t.Fatal("alert was not sent")
	}

	select {
	case msg := <-sent:
		t.Fatalf("unexpected second alert: %s", msg)
	case <-time.After(50 * time.Millisecond):
	}

	assert.Equal(t, 2, logs.Len())
}

func TestWithAlert_NilNotifier(t *testing.T) {
	log := NewNop()
	assert.Same(t, log, log.WithAlert(nil))
}
