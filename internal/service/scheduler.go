package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gold-analyst/config"
	"gold-analyst/internal/model"
	"gold-analyst/pkg/logger"
	"gold-analyst/pkg/utils"

	"github.com/robfig/cron/v3"
)

// ResultNotifier receives the result of every scheduled run that succeeded.
type ResultNotifier func(ctx context.Context, result *model.AnalysisResult)

type SchedulerService interface {
	// Start registers the analysis cron and runs it until ctx is done or Stop is called.
	// An empty cron expression disables scheduling.
	Start(ctx context.Context) error
	Stop()
	Execute(ctx context.Context) error
	SetNotifier(notify ResultNotifier)
}

type schedulerService struct {
	cfg        *config.Config
	log        *logger.Logger
	cronParser cron.Parser
	session    SessionService

	mu     sync.Mutex
	cron   *cron.Cron
	notify ResultNotifier
}

func NewSchedulerService(cfg *config.Config, log *logger.Logger, session SessionService) SchedulerService {
	return &schedulerService{
		cfg:        cfg,
		log:        log,
		cronParser: cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
		session:    session,
	}
}

func (s *schedulerService) SetNotifier(notify ResultNotifier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notify = notify
}

func (s *schedulerService) Start(ctx context.Context) error {
	expr := s.cfg.Scheduler.AnalysisCron
	if expr == "" {
		s.log.InfoContext(ctx, "Scheduled analysis disabled")
		return nil
	}

	schedule, err := s.cronParser.Parse(expr)
	if err != nil {
		return fmt.Errorf("failed to parse analysis cron %q: %w", expr, err)
	}

	loc := utils.LoadLocation(s.cfg.App.TimeZone)
	c := cron.New(cron.WithParser(s.cronParser), cron.WithLocation(loc))
	c.Schedule(schedule, cron.FuncJob(func() {
		if err := s.Execute(ctx); err != nil {
			s.log.ErrorContextWithAlert(ctx, "Scheduled analysis failed", logger.ErrorField(err))
		}
	}))

	s.mu.Lock()
	s.cron = c
	s.mu.Unlock()

	c.Start()
	s.log.InfoContext(ctx, "Scheduled analysis started",
		logger.StringField("cron", expr),
		logger.StringField("next_run", schedule.Next(time.Now().In(loc)).Format(time.RFC3339)),
	)

	<-ctx.Done()
	s.Stop()
	return nil
}

func (s *schedulerService) Stop() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()

	if c == nil {
		return
	}
	<-c.Stop().Done()
	s.log.Info("Scheduled analysis stopped")
}

// Execute runs one analysis. A run already in progress is skipped, not treated as a failure.
func (s *schedulerService) Execute(ctx context.Context) error {
	if !utils.ShouldContinue(ctx, s.log) {
		return nil
	}

	runCtx := ctx
	if s.cfg.Scheduler.TimeoutDuration > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.cfg.Scheduler.TimeoutDuration)
		defer cancel()
	}

	result, err := s.session.TriggerAnalysis(runCtx)
	if errors.Is(err, model.ErrAnalysisInProgress) {
		s.log.InfoContext(ctx, "Analysis in progress, skipping scheduled run")
		return nil
	}
	if err != nil {
		return err
	}

	s.mu.Lock()
	notify := s.notify
	s.mu.Unlock()
	if notify != nil {
		notify(ctx, result)
	}
	return nil
}
