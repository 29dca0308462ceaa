package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gold-analyst/config"
	"gold-analyst/internal/dto"
	"gold-analyst/internal/model"
	"gold-analyst/internal/repository"
	"gold-analyst/pkg/logger"
	"gold-analyst/pkg/utils"
)

type SessionService interface {
	// TriggerAnalysis runs one analysis with the current preferences.
	// A trigger while another run is outstanding returns ErrAnalysisInProgress.
	TriggerAnalysis(ctx context.Context) (*model.AnalysisResult, error)
	State() dto.SessionState
	Status() model.SessionStatus
	Preferences() model.Preferences
	UpdatePreferences(patch model.PreferencesPatch) model.Preferences
	DismissError()

	LoadHistory(ctx context.Context) []model.HistoryEntry
	History() []model.HistoryEntry
	GetHistory(id string) (model.HistoryEntry, error)
	SelectHistory(id string) (model.HistoryEntry, error)
	DeleteHistory(ctx context.Context, id string) error
	ClearHistory(ctx context.Context) error
}

type sessionService struct {
	cfg         *config.Config
	log         *logger.Logger
	prefs       PreferenceStore
	aiRepo      repository.AIRepository
	historyRepo repository.HistoryRepository
	location    *time.Location
	now         func() time.Time

	mu         sync.Mutex
	status     model.SessionStatus
	errMessage string
	analysis   *model.Analysis
	plan       *model.TradePlan
	selectedID string
}

func NewSessionService(
	cfg *config.Config,
	log *logger.Logger,
	prefs PreferenceStore,
	aiRepo repository.AIRepository,
	historyRepo repository.HistoryRepository,
) SessionService {
	return &sessionService{
		cfg:         cfg,
		log:         log,
		prefs:       prefs,
		aiRepo:      aiRepo,
		historyRepo: historyRepo,
		location:    utils.LoadLocation(cfg.App.TimeZone),
		now:         time.Now,
		status:      model.SessionIdle,
	}
}

func (s *sessionService) TriggerAnalysis(ctx context.Context) (*model.AnalysisResult, error) {
	s.mu.Lock()
	if s.status == model.SessionRunning {
		s.mu.Unlock()
		return nil, model.ErrAnalysisInProgress
	}
	s.status = model.SessionRunning
	s.errMessage = ""
	prefs := s.prefs.Get()
	s.mu.Unlock()

	s.log.InfoContext(ctx, "Starting analysis",
		logger.FloatField("lot_size", prefs.LotSize),
		logger.IntField("profit_target", prefs.ProfitTarget),
		logger.StringField("risk_profile", string(prefs.RiskProfile)),
	)

	result, err := s.runAnalysis(ctx, prefs)
	if err != nil {
		s.fail(ctx, err)
		return nil, err
	}

	entry := model.HistoryEntry{
		ID:          result.Analysis.ID,
		Timestamp:   utils.PrettyDate(s.now().In(s.location)),
		Analysis:    result.Analysis.Clone(),
		Plan:        result.Plan.Clone(),
		Preferences: prefs,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	analysis := result.Analysis.Clone()
	s.analysis = &analysis
	s.plan = result.Plan.Clone()
	s.selectedID = analysis.ID
	s.status = model.SessionSucceeded

	if err := s.historyRepo.Append(ctx, entry); err != nil {
		s.log.ErrorContext(ctx, "Failed to append analysis to history",
			logger.ErrorField(err),
			logger.StringField("analysis_id", entry.ID),
		)
	}

	s.log.InfoContext(ctx, "Analysis completed",
		logger.StringField("analysis_id", analysis.ID),
		logger.StringField("trend", string(analysis.Trend)),
		logger.Field("has_plan", s.plan != nil),
	)

	out := result.Clone()
	return &out, nil
}

func (s *sessionService) runAnalysis(ctx context.Context, prefs model.Preferences) (*model.AnalysisResult, error) {
	req, err := repository.BuildAnalysisRequest(s.cfg.App.Instrument, prefs, s.cfg.Gemini.EnableSearch)
	if err != nil {
		return nil, err
	}
	result, err := s.aiRepo.AnalyzeMarket(ctx, req)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, fmt.Errorf("%w: empty result", model.ErrExternalCapability)
	}
	return result, nil
}

func (s *sessionService) fail(ctx context.Context, err error) {
	s.mu.Lock()
	s.status = model.SessionFailed
	s.errMessage = model.AnalysisFailedMessage
	s.mu.Unlock()

	s.log.ErrorContext(ctx, "Analysis failed",
		logger.ErrorField(err),
		logger.StringField("cause", failureCause(err)),
	)
}

func failureCause(err error) string {
	switch {
	case errors.Is(err, model.ErrRequestBuild):
		return "request_build"
	case errors.Is(err, model.ErrSchemaViolation):
		return "schema_violation"
	case errors.Is(err, model.ErrExternalCapability):
		return "external_capability"
	default:
		return "unknown"
	}
}

func (s *sessionService) State() dto.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefs := s.prefs.Get()
	state := dto.SessionState{
		Status:      s.status,
		Loading:     s.status == model.SessionRunning,
		Error:       s.errMessage,
		Preferences: prefs,
		Plan:        s.plan.Clone(),
		History:     s.historyRepo.List(),
		SelectedID:  s.selectedID,
	}
	if s.analysis != nil {
		analysis := s.analysis.Clone()
		state.Analysis = &analysis
	}
	state.Exposure = dto.NewPlanExposure(state.Plan, prefs.LotSize)
	return state
}

func (s *sessionService) Status() model.SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *sessionService) Preferences() model.Preferences {
	return s.prefs.Get()
}

func (s *sessionService) UpdatePreferences(patch model.PreferencesPatch) model.Preferences {
	return s.prefs.Set(patch)
}

// DismissError clears the error message; the status stays Failed.
func (s *sessionService) DismissError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errMessage = ""
}

func (s *sessionService) LoadHistory(ctx context.Context) []model.HistoryEntry {
	return s.historyRepo.Load(ctx)
}

func (s *sessionService) History() []model.HistoryEntry {
	return s.historyRepo.List()
}

func (s *sessionService) GetHistory(id string) (model.HistoryEntry, error) {
	entry, ok := s.historyRepo.Select(id)
	if !ok {
		return model.HistoryEntry{}, fmt.Errorf("%w: %s", model.ErrHistoryNotFound, id)
	}
	return entry, nil
}

// SelectHistory makes a stored entry current. Preferences are overwritten, not merged.
func (s *sessionService) SelectHistory(id string) (model.HistoryEntry, error) {
	entry, err := s.GetHistory(id)
	if err != nil {
		return model.HistoryEntry{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	analysis := entry.Analysis.Clone()
	s.analysis = &analysis
	s.plan = entry.Plan.Clone()
	s.selectedID = entry.ID
	s.prefs.Replace(entry.Preferences)
	return entry, nil
}

// DeleteHistory removes an entry; deleting the displayed one also clears the current result.
func (s *sessionService) DeleteHistory(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.analysis != nil && s.analysis.ID == id {
		s.analysis = nil
		s.plan = nil
		s.selectedID = ""
	}
	if s.selectedID == id {
		s.selectedID = ""
	}

	if err := s.historyRepo.Remove(ctx, id); err != nil {
		s.log.ErrorContext(ctx, "Failed to delete history entry", logger.ErrorField(err), logger.StringField("id", id))
		return fmt.Errorf("failed to delete history entry: %w", err)
	}
	return nil
}

// ClearHistory empties the stored history and the current result.
func (s *sessionService) ClearHistory(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.analysis = nil
	s.plan = nil
	s.selectedID = ""
	if err := s.historyRepo.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}
