package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"gold-analyst/config"
	"gold-analyst/internal/model"
	"gold-analyst/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	SessionService
	result *model.AnalysisResult
	err    error
	calls  int
	ctx    context.Context
}

func (f *fakeSession) TriggerAnalysis(ctx context.Context) (*model.AnalysisResult, error) {
	f.calls++
	f.ctx = ctx
	return f.result, f.err
}

func TestScheduler_Execute(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantErr    bool
		wantNotify bool
	}{
		{name: "success notifies", wantNotify: true},
		{name: "in progress is skipped", err: model.ErrAnalysisInProgress},
		{name: "failure is returned", err: errors.New("provider down"), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := &fakeSession{result: sampleResult("A", 2400), err: tt.err}
			cfg := &config.Config{Scheduler: config.Scheduler{TimeoutDuration: time.Minute}}
			scheduler := NewSchedulerService(cfg, logger.NewNop(), session)

			var notified *model.AnalysisResult
			scheduler.SetNotifier(func(_ context.Context, result *model.AnalysisResult) {
				notified = result
			})

			err := scheduler.Execute(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, 1, session.calls)
			_, hasDeadline := session.ctx.Deadline()
			assert.True(t, hasDeadline)
			if tt.wantNotify {
				assert.Equal(t, session.result, notified)
			} else {
				assert.Nil(t, notified)
			}
		})
	}
}

func TestScheduler_ExecuteCancelled(t *testing.T) {
	session := &fakeSession{}
	scheduler := NewSchedulerService(&config.Config{}, logger.NewNop(), session)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, scheduler.Execute(ctx))
	assert.Zero(t, session.calls)
}

func TestScheduler_Start(t *testing.T) {
	t.Run("disabled without cron", func(t *testing.T) {
		scheduler := NewSchedulerService(&config.Config{}, logger.NewNop(), &fakeSession{})
		assert.NoError(t, scheduler.Start(context.Background()))
	})

	t.Run("invalid cron", func(t *testing.T) {
		cfg := &config.Config{Scheduler: config.Scheduler{AnalysisCron: "every minute"}}
		scheduler := NewSchedulerService(cfg, logger.NewNop(), &fakeSession{})
		assert.Error(t, scheduler.Start(context.Background()))
	})

	t.Run("stops with context", func(t *testing.T) {
		cfg := &config.Config{Scheduler: config.Scheduler{AnalysisCron: "@hourly"}}
		scheduler := NewSchedulerService(cfg, logger.NewNop(), &fakeSession{})

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- scheduler.Start(ctx) }()
		cancel()

		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("scheduler did not stop")
		}
	})
}

