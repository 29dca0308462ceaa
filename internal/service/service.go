package service

import (
	"gold-analyst/config"
	"gold-analyst/internal/model"
	"gold-analyst/internal/repository"
	"gold-analyst/pkg/logger"
)

type Service struct {
	PreferenceStore  PreferenceStore
	SessionService   SessionService
	SchedulerService SchedulerService
}

func NewService(
	cfg *config.Config,
	log *logger.Logger,
	repo *repository.Repository,
) *Service {
	prefs := NewPreferenceStore(InitialPreferences(cfg.App, log))
	sessionService := NewSessionService(cfg, log, prefs, repo.GeminiAIRepo, repo.HistoryRepo)
	schedulerService := NewSchedulerService(cfg, log, sessionService)

	return &Service{
		PreferenceStore:  prefs,
		SessionService:   sessionService,
		SchedulerService: schedulerService,
	}
}

// InitialPreferences reads the configured defaults. Missing or unknown values fall back to the built-in defaults.
func InitialPreferences(app config.App, log *logger.Logger) model.Preferences {
	prefs := model.DefaultPreferences()
	if app.DefaultLotSize > 0 {
		prefs.LotSize = app.DefaultLotSize
	}
	if app.DefaultProfitTarget > 0 {
		prefs.ProfitTarget = app.DefaultProfitTarget
	}
	if app.DefaultRiskProfile != "" {
		risk, err := model.ParseRiskProfile(app.DefaultRiskProfile)
		if err != nil {
			log.Warn("Invalid default risk profile, using Balanced", logger.ErrorField(err))
		} else {
			prefs.RiskProfile = risk
		}
	}
	return prefs
}
