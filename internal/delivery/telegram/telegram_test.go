package telegram

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"gold-analyst/config"
	"gold-analyst/internal/dto"
	"gold-analyst/internal/model"
	"gold-analyst/internal/repository"
	"gold-analyst/internal/service"
	"gold-analyst/pkg/cache"
	"gold-analyst/pkg/logger"
	"gold-analyst/pkg/telegram"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/telebot.v3"
)

type fakeBot struct {
	mu     sync.Mutex
	nextID int
	sent   []string
	edited []string
}

func (b *fakeBot) Send(to telebot.Recipient, what interface{}, opts ...interface{}) (*telebot.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	b.sent = append(b.sent, fmt.Sprint(what))
	return &telebot.Message{ID: b.nextID}, nil
}

func (b *fakeBot) Edit(msg telebot.Editable, what interface{}, opts ...interface{}) (*telebot.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.edited = append(b.edited, fmt.Sprint(what))
	return &telebot.Message{}, nil
}

func (b *fakeBot) Delete(msg telebot.Editable) error { return nil }

func (b *fakeBot) lastSent() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.sent) == 0 {
		return ""
	}
	return b.sent[len(b.sent)-1]
}

func (b *fakeBot) lastEdited() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.edited) == 0 {
		return ""
	}
	return b.edited[len(b.edited)-1]
}

// fakeContext implements the parts of telebot.Context the handlers use.
type fakeContext struct {
	telebot.Context
	text string
	args []string
	data string
}

func (c *fakeContext) Chat() *telebot.Chat                         { return &telebot.Chat{ID: 42} }
func (c *fakeContext) Sender() *telebot.User                       { return &telebot.User{ID: 7} }
func (c *fakeContext) Text() string                                { return c.text }
func (c *fakeContext) Args() []string                              { return c.args }
func (c *fakeContext) Data() string                                { return c.data }
func (c *fakeContext) Message() *telebot.Message                   { return &telebot.Message{ID: 1} }
func (c *fakeContext) Respond(...*telebot.CallbackResponse) error { return nil }

type stubAIRepo struct {
	result *model.AnalysisResult
	err    error
}

func (s *stubAIRepo) AnalyzeMarket(context.Context, dto.AnalysisRequest) (*model.AnalysisResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := s.result.Clone()
	return &out, nil
}

func sampleResult(id string) *model.AnalysisResult {
	return &model.AnalysisResult{
		Analysis: model.Analysis{
			ID:               id,
			Trend:            model.TrendBullish,
			Structure:        "HH/HL <H4>",
			SupportLevels:    []float64{2380.5},
			ResistanceLevels: []float64{2410},
			LiquidityZones:   []string{"Asia low"},
			NewsWarnings:     []string{},
			GroundingSources: []model.GroundingSource{{Title: "Kitco", URI: "https://kitco.com"}},
		},
		Plan: &model.TradePlan{
			Direction:  model.DirectionBuy,
			EntryPrice: 2381,
			TakeProfit: 2410,
			StopLoss:   2372,
			Confidence: 0.68,
			Status:     model.StatusWaiting,
			Timestamp:  "09:30:15",
		},
	}
}

func newTestHandler(t *testing.T, ai *stubAIRepo) (*TelegramBotHandler, *fakeBot) {
	t.Helper()
	log := logger.NewNop()
	cfg := &config.Config{
		App:      config.App{Instrument: "XAU/USD", TimeZone: "UTC"},
		Telegram: config.TelegramConfig{MaxGlobalRequestPerSecond: 1000, MaxUserRequestPerSecond: 1000, MaxShowHistory: 5},
	}
	history := repository.NewHistoryRepository(
		repository.NewMemorySlot(cache.NewCache(cache.NoExpiration, 0), "tg"), 5, log)
	prefs := service.NewPreferenceStore(model.DefaultPreferences())
	svc := &service.Service{
		PreferenceStore: prefs,
		SessionService:  service.NewSessionService(cfg, log, prefs, ai, history),
	}

	bot := &fakeBot{}
	h := NewTelegramBotHandler(context.Background(), cfg, log, nil,
		telegram.NewTelegramRateLimiter(&cfg.Telegram, log, bot), nil, svc, cache.NewCache(cache.NoExpiration, 0))
	h.runAsync = func(fn func()) { fn() }
	return h, bot
}

func TestParseInputs(t *testing.T) {
	lots := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{in: "0.05", want: 0.05},
		{in: " 0,1 ", want: 0.1},
		{in: "0", wantErr: true},
		{in: "-1", wantErr: true},
		{in: "NaN", wantErr: true},
		{in: "abc", wantErr: true},
	}
	for _, tt := range lots {
		got, err := parseLotSize(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	targets := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "150", want: 150},
		{in: "$200", want: 200},
		{in: "0", wantErr: true},
		{in: "12.5", wantErr: true},
	}
	for _, tt := range targets {
		got, err := parseProfitTarget(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestFormatAnalysis(t *testing.T) {
	result := sampleResult("A")
	text := formatAnalysis("XAU/USD", "16 Oct 2026 - 14:05 UTC", result.Analysis, result.Plan, model.DefaultPreferences())

	assert.Contains(t, text, "XAU/USD Analysis")
	assert.Contains(t, text, "HH/HL &lt;H4&gt;")
	assert.Contains(t, text, "2380.50")
	assert.Contains(t, text, "BUY LIMIT")
	assert.Contains(t, text, "68%")
	assert.Contains(t, text, "risk -$45.00, reward +$145.00")
	assert.Contains(t, text, string(model.StatusWaiting))
	assert.Contains(t, text, `<a href="https://kitco.com">Kitco</a>`)

	noPlan := formatAnalysis("XAU/USD", "", result.Analysis, nil, model.DefaultPreferences())
	assert.Contains(t, noPlan, "No actionable setup")
}

func TestHandleAnalyze(t *testing.T) {
	ai := &stubAIRepo{result: sampleResult("A")}
	h, bot := newTestHandler(t, ai)
	ctx := context.Background()

	require.NoError(t, h.handleAnalyze(ctx, &fakeContext{}))
	assert.Equal(t, messageAnalysisRunning, bot.lastSent())
	assert.Contains(t, bot.lastEdited(), "BUY LIMIT")
	assert.Len(t, h.service.SessionService.History(), 1)

	ai.err = errors.New("provider down")
	require.NoError(t, h.handleAnalyze(ctx, &fakeContext{}))
	assert.Equal(t, "❌ "+model.AnalysisFailedMessage, bot.lastEdited())
}

func TestPreferenceCommands(t *testing.T) {
	h, bot := newTestHandler(t, &stubAIRepo{})
	ctx := context.Background()

	require.NoError(t, h.handleLotSize(ctx, &fakeContext{args: []string{"0.2"}}))
	assert.Equal(t, 0.2, h.service.SessionService.Preferences().LotSize)

	require.NoError(t, h.handleLotSize(ctx, &fakeContext{args: []string{"zero"}}))
	assert.Equal(t, messageInvalidLotSize, bot.lastSent())
	assert.Equal(t, 0.2, h.service.SessionService.Preferences().LotSize)

	// two-step flow: ask, then read the next text message
	require.NoError(t, h.handleProfitTarget(ctx, &fakeContext{}))
	assert.Equal(t, messageAskProfitTarget, bot.lastSent())
	require.NoError(t, h.handleConversation(ctx, &fakeContext{text: "350"}))
	assert.Equal(t, 350, h.service.SessionService.Preferences().ProfitTarget)

	require.NoError(t, h.handleConversation(ctx, &fakeContext{text: "hello"}))
	assert.Equal(t, messageUnknownCommand, bot.lastSent())

	require.NoError(t, h.handleBtnRiskProfile(ctx, &fakeContext{data: "Aggressive"}))
	assert.Equal(t, model.RiskAggressive, h.service.SessionService.Preferences().RiskProfile)

	require.NoError(t, h.handleRiskProfile(ctx, &fakeContext{args: []string{"conservative"}}))
	assert.Equal(t, model.RiskConservative, h.service.SessionService.Preferences().RiskProfile)
}

func TestHistoryCommands(t *testing.T) {
	ai := &stubAIRepo{result: sampleResult("A")}
	h, bot := newTestHandler(t, ai)
	ctx := context.Background()

	require.NoError(t, h.handleHistory(ctx, &fakeContext{}))
	assert.Equal(t, messageHistoryEmpty, bot.lastSent())

	require.NoError(t, h.handleAnalyze(ctx, &fakeContext{}))
	ai.result = sampleResult("B")
	require.NoError(t, h.handleAnalyze(ctx, &fakeContext{}))

	require.NoError(t, h.handleHistory(ctx, &fakeContext{}))
	assert.Contains(t, bot.lastSent(), "Saved analyses")

	// position 2 is the older entry
	require.NoError(t, h.handleShowHistory(ctx, &fakeContext{args: []string{"2"}}))
	assert.Equal(t, "A", h.service.SessionService.State().SelectedID)

	require.NoError(t, h.handleDeleteHistory(ctx, &fakeContext{args: []string{"missing"}}))
	assert.Equal(t, messageHistoryNotFound, bot.lastSent())

	require.NoError(t, h.handleDeleteHistory(ctx, &fakeContext{args: []string{"A"}}))
	state := h.service.SessionService.State()
	assert.Nil(t, state.Analysis)
	require.Len(t, state.History, 1)
	assert.Equal(t, "B", state.History[0].ID)

	require.NoError(t, h.handleBtnHistoryDelete(ctx, &fakeContext{data: "B"}))
	assert.Equal(t, messageHistoryEmpty, bot.lastEdited())
}
