package cmd

import (
	"bytes"
	"context"
	"testing"

	"gold-analyst/config"
	"gold-analyst/internal/model"
	"gold-analyst/internal/repository"
	"gold-analyst/pkg/cache"
	"gold-analyst/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEntry(id string, plan bool) model.HistoryEntry {
	e := model.HistoryEntry{
		ID:        id,
		Timestamp: "16 Oct 2026 - 09:30 UTC",
		Analysis: model.Analysis{
			ID:               id,
			Trend:            model.TrendBearish,
			Structure:        "LH/LL",
			SupportLevels:    []float64{2380.5, 2365},
			ResistanceLevels: []float64{2410},
		},
		Preferences: model.Preferences{LotSize: 0.1, ProfitTarget: 150, RiskProfile: model.RiskAggressive},
	}
	if plan {
		e.Plan = &model.TradePlan{
			Direction:  model.DirectionSell,
			EntryPrice: 2405,
			TakeProfit: 2390,
			StopLoss:   2410,
			RiskReward: "1:3",
			Confidence: 0.7,
			Status:     model.StatusWaiting,
			Timestamp:  "09:30:00",
		}
	}
	return e
}

func newTestHistory(t *testing.T, ids ...string) repository.HistoryRepository {
	t.Helper()
	ctx := context.Background()
	h := repository.NewHistoryRepository(repository.NewMemorySlot(cache.NewCache(cache.NoExpiration, 0), "test"), 5, logger.NewNop())
	for i := len(ids) - 1; i >= 0; i-- {
		require.NoError(t, h.Append(ctx, testEntry(ids[i], false)))
	}
	return h
}

func TestFindEntry(t *testing.T) {
	h := newTestHistory(t, "a", "b", "c")

	tests := []struct {
		name    string
		ref     string
		wantID  string
		wantErr bool
	}{
		{name: "by id", ref: "b", wantID: "b"},
		{name: "by position", ref: "3", wantID: "c"},
		{name: "first position", ref: "1", wantID: "a"},
		{name: "position out of range", ref: "4", wantErr: true},
		{name: "zero position", ref: "0", wantErr: true},
		{name: "unknown id", ref: "zzz", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, err := findEntry(h, tt.ref)
			if tt.wantErr {
				assert.ErrorIs(t, err, model.ErrHistoryNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, entry.ID)
		})
	}
}

func TestMigrationTarget(t *testing.T) {
	cfg := &config.Config{
		DB: config.Database{
			SQLitePath: "data/app.db",
			Host:       "db",
			Port:       5432,
			User:       "u",
			Password:   "p",
			DBName:     "gold",
			SSLMode:    "disable",
		},
	}

	cfg.Storage.Driver = "sqlite"
	source, dsn, err := migrationTarget(cfg)
	require.NoError(t, err)
	assert.Equal(t, "file://migrations/sqlite", source)
	assert.Equal(t, "sqlite3://data/app.db", dsn)

	cfg.Storage.Driver = "postgres"
	source, dsn, err = migrationTarget(cfg)
	require.NoError(t, err)
	assert.Equal(t, "file://migrations/postgres", source)
	assert.Equal(t, "postgres://u:p@db:5432/gold?sslmode=disable", dsn)

	for _, driver := range []string{"file", "memory"} {
		cfg.Storage.Driver = driver
		_, _, err = migrationTarget(cfg)
		assert.Error(t, err, driver)
	}
}

func TestPrintEntry(t *testing.T) {
	var buf bytes.Buffer
	printEntry(&buf, "XAU/USD", testEntry("abc", true))
	out := buf.String()

	assert.Contains(t, out, "XAU/USD analysis abc")
	assert.Contains(t, out, "lot 0.1, target $150, Aggressive")
	assert.Contains(t, out, "2380.50, 2365.00")
	assert.Contains(t, out, "SELL LIMIT @ 2405.00")
	// 15 points * 0.1 lot * 100 oz
	assert.Contains(t, out, "+$150.00")
	assert.Contains(t, out, "-$50.00")
	assert.Contains(t, out, "70%")

	buf.Reset()
	printEntry(&buf, "XAU/USD", testEntry("nop", false))
	assert.Contains(t, buf.String(), "No trade plan.")
}

func TestPrintHistoryList(t *testing.T) {
	var buf bytes.Buffer
	printHistoryList(&buf, nil)
	assert.Equal(t, "History is empty.\n", buf.String())

	buf.Reset()
	printHistoryList(&buf, []model.HistoryEntry{testEntry("x1", true), testEntry("x2", false)})
	out := buf.String()
	assert.Contains(t, out, "x1")
	assert.Contains(t, out, "SELL @ 2405.00")
	assert.Contains(t, out, "x2")
}
