package repository

import (
	"context"
	"fmt"
	"time"

	"gold-analyst/config"
	"gold-analyst/internal/dto"
	"gold-analyst/internal/model"
	"gold-analyst/pkg/logger"
	"gold-analyst/pkg/ratelimit"
	"gold-analyst/pkg/utils"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	TransportSDK  = "sdk"
	TransportREST = "rest"
)

type AIRepository interface {
	AnalyzeMarket(ctx context.Context, req dto.AnalysisRequest) (*model.AnalysisResult, error)
}

// geminiTransport is one way of reaching the Gemini API.
type geminiTransport interface {
	CountTokens(ctx context.Context, prompt string) (int, error)
	Generate(ctx context.Context, req dto.AnalysisRequest) (*dto.AIRawResponse, error)
}

// geminiAIRepository is the AIRepository backed by Google Gemini.
type geminiAIRepository struct {
	cfg            config.Gemini
	logger         *logger.Logger
	tokenLimiter   *ratelimit.TokenLimiter
	requestLimiter *rate.Limiter
	transport      geminiTransport
	validator      *goValidator.Validate
	location       *time.Location
	now            func() time.Time
	newID          func() string
}

// NewGeminiAIRepository creates a new instance of geminiAIRepository.
func NewGeminiAIRepository(cfg *config.Config, log *logger.Logger, validator *goValidator.Validate) (AIRepository, error) {
	var (
		transport geminiTransport
		err       error
	)
	switch cfg.Gemini.Transport {
	case TransportREST:
		transport = newGeminiRESTTransport(cfg.Gemini)
	case TransportSDK, "":
		transport, err = newGeminiSDKTransport(context.Background(), cfg.Gemini)
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini client: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported gemini transport %q", cfg.Gemini.Transport)
	}

	return newGeminiAIRepository(cfg.Gemini, log, validator, transport, utils.LoadLocation(cfg.App.TimeZone)), nil
}

func newGeminiAIRepository(cfg config.Gemini, log *logger.Logger, validator *goValidator.Validate, transport geminiTransport, loc *time.Location) *geminiAIRepository {
	requestLimit := rate.Inf
	if cfg.MaxRequestPerMinute > 0 {
		requestLimit = rate.Every(time.Minute / time.Duration(cfg.MaxRequestPerMinute))
	}

	var tokenLimiter *ratelimit.TokenLimiter
	if cfg.MaxTokenPerMinute > 0 {
		tokenLimiter = ratelimit.NewTokenLimiter(cfg.MaxTokenPerMinute)
	}

	return &geminiAIRepository{
		cfg:            cfg,
		logger:         log,
		tokenLimiter:   tokenLimiter,
		requestLimiter: rate.NewLimiter(requestLimit, 1),
		transport:      transport,
		validator:      validator,
		location:       loc,
		now:            time.Now,
		newID:          uuid.NewString,
	}
}

func (r *geminiAIRepository) AnalyzeMarket(ctx context.Context, req dto.AnalysisRequest) (*model.AnalysisResult, error) {
	if err := r.waitLimits(ctx, req.Prompt); err != nil {
		r.logger.ErrorContext(ctx, "failed to wait for gemini limits", logger.ErrorField(err))
		return nil, fmt.Errorf("%w: %w", model.ErrExternalCapability, err)
	}

	raw, err := r.transport.Generate(ctx, req)
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to send request to gemini", logger.ErrorField(err))
		return nil, fmt.Errorf("%w: %w", model.ErrExternalCapability, err)
	}

	result, err := parseAnalysisResponse(r.validator, raw, r.newID(), r.now().In(r.location))
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to parse response from gemini",
			logger.ErrorField(err),
			logger.IntField("response_length", len(raw.Text)),
		)
		return nil, err
	}

	r.logger.InfoContext(ctx, "Gemini analysis received",
		logger.StringField("analysis_id", result.Analysis.ID),
		logger.StringField("trend", string(result.Analysis.Trend)),
		logger.Field("has_plan", result.Plan != nil),
		logger.IntField("sources", len(result.Analysis.GroundingSources)),
	)
	return result, nil
}

func (r *geminiAIRepository) waitLimits(ctx context.Context, prompt string) error {
	if r.tokenLimiter != nil {
		tokens, err := r.transport.CountTokens(ctx, prompt)
		if err != nil {
			return fmt.Errorf("failed to count tokens: %w", err)
		}

		r.logger.Debug("Gemini token count",
			logger.IntField("total_tokens", tokens),
			logger.IntField("remaining", r.tokenLimiter.GetRemaining()),
		)
		if err := r.tokenLimiter.Wait(ctx, tokens); err != nil {
			return fmt.Errorf("failed to wait for token gemini limit: %w", err)
		}
		if tokens > r.tokenLimiter.Capacity()/2 {
			r.logger.Warn("Token has exceeded 50% of the limit", logger.IntField("remaining", r.tokenLimiter.GetRemaining()))
		}
	}

	if err := r.requestLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("failed to wait for request gemini limit: %w", err)
	}
	return nil
}
