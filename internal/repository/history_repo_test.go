package repository

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"gold-analyst/internal/model"
	"gold-analyst/pkg/cache"
	"gold-analyst/pkg/logger"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingSlot wraps a slot and records writes.
type countingSlot struct {
	StorageSlot
	writes   int
	writeErr error
}

func (s *countingSlot) Write(ctx context.Context, data []byte) error {
	s.writes++
	if s.writeErr != nil {
		return s.writeErr
	}
	return s.StorageSlot.Write(ctx, data)
}

func newMemSlot(name string) *countingSlot {
	return &countingSlot{StorageSlot: NewMemorySlot(cache.NewCache(cache.NoExpiration, 0), name)}
}

func entry(id string) model.HistoryEntry {
	return model.HistoryEntry{
		ID:        id,
		Timestamp: "16 Oct 2026 - 09:30 UTC",
		Analysis: model.Analysis{
			ID:               id,
			Trend:            model.TrendBullish,
			Structure:        "HH/HL",
			SupportLevels:    []float64{2380},
			ResistanceLevels: []float64{2410},
			LiquidityZones:   []string{},
			NewsWarnings:     []string{},
			GroundingSources: []model.GroundingSource{},
		},
		Plan: &model.TradePlan{
			Direction:  model.DirectionBuy,
			EntryPrice: 2381,
			TakeProfit: 2410,
			StopLoss:   2372,
			Status:     model.StatusWaiting,
			Timestamp:  "09:30:15",
		},
		Preferences: model.DefaultPreferences(),
	}
}

func ids(entries []model.HistoryEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

func TestHistoryRepository_AppendEvictsOldest(t *testing.T) {
	ctx := context.Background()
	slot := newMemSlot("fifo")
	repo := NewHistoryRepository(slot, 3, logger.NewNop())

	for _, id := range []string{"A", "B", "C"} {
		require.NoError(t, repo.Append(ctx, entry(id)))
	}
	assert.Equal(t, []string{"C", "B", "A"}, ids(repo.List()))

	require.NoError(t, repo.Append(ctx, entry("D")))
	assert.Equal(t, []string{"D", "C", "B"}, ids(repo.List()))

	reloaded := NewHistoryRepository(slot, 3, logger.NewNop())
	assert.Equal(t, []string{"D", "C", "B"}, ids(reloaded.Load(ctx)))
}

func TestHistoryRepository_AppendRejectsDuplicateAndEmptyID(t *testing.T) {
	ctx := context.Background()
	slot := newMemSlot("dup")
	repo := NewHistoryRepository(slot, 5, logger.NewNop())

	require.NoError(t, repo.Append(ctx, entry("A")))
	err := repo.Append(ctx, entry("A"))
	assert.ErrorIs(t, err, model.ErrDuplicateHistoryEntry)
	assert.Error(t, repo.Append(ctx, entry("")))

	assert.Equal(t, []string{"A"}, ids(repo.List()))
	assert.Equal(t, 1, slot.writes)
}

func TestHistoryRepository_Remove(t *testing.T) {
	ctx := context.Background()
	slot := newMemSlot("remove")
	repo := NewHistoryRepository(slot, 5, logger.NewNop())
	for _, id := range []string{"A", "B", "C"} {
		require.NoError(t, repo.Append(ctx, entry(id)))
	}
	writes := slot.writes

	require.NoError(t, repo.Remove(ctx, "missing"))
	assert.Equal(t, []string{"C", "B", "A"}, ids(repo.List()))
	assert.Equal(t, writes, slot.writes)

	require.NoError(t, repo.Remove(ctx, "B"))
	assert.Equal(t, []string{"C", "A"}, ids(repo.List()))
	assert.Equal(t, writes+1, slot.writes)

	reloaded := NewHistoryRepository(slot, 5, logger.NewNop())
	assert.Equal(t, []string{"C", "A"}, ids(reloaded.Load(ctx)))
}

func TestHistoryRepository_PersistFailureKeepsMemory(t *testing.T) {
	ctx := context.Background()
	slot := newMemSlot("broken")
	slot.writeErr = errors.New("disk full")
	repo := NewHistoryRepository(slot, 5, logger.NewNop())

	err := repo.Append(ctx, entry("A"))
	assert.Error(t, err)
	assert.Equal(t, []string{"A"}, ids(repo.List()))
}

func TestHistoryRepository_SelectReturnsCopy(t *testing.T) {
	ctx := context.Background()
	repo := NewHistoryRepository(newMemSlot("select"), 5, logger.NewNop())
	require.NoError(t, repo.Append(ctx, entry("A")))

	got, ok := repo.Select("A")
	require.True(t, ok)
	assert.Equal(t, entry("A"), got)

	got.Analysis.SupportLevels[0] = 1
	got.Plan.EntryPrice = 1
	again, _ := repo.Select("A")
	assert.Equal(t, entry("A"), again)

	_, ok = repo.Select("missing")
	assert.False(t, ok)
}

func TestHistoryRepository_LoadFailSoft(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
		want    []string
	}{
		{name: "absent slot", payload: nil, want: []string{}},
		{name: "corrupt payload", payload: []byte("{not json"), want: []string{}},
		{name: "wrong shape", payload: []byte(`{"id":"A"}`), want: []string{}},
		{name: "null payload", payload: []byte("null"), want: []string{}},
		{name: "empty list", payload: []byte("[]"), want: []string{}},
		{
			name:    "drops entries without id and duplicates",
			payload: []byte(`[{"id":"A"},{"id":""},{"id":"B"},{"id":"A"},{"id":"C"}]`),
			want:    []string{"A", "B", "C"},
		},
		{
			name:    "truncates to capacity",
			payload: []byte(`[{"id":"1"},{"id":"2"},{"id":"3"},{"id":"4"},{"id":"5"}]`),
			want:    []string{"1", "2", "3"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			slot := newMemSlot("load")
			if tt.payload != nil {
				require.NoError(t, slot.StorageSlot.Write(ctx, tt.payload))
			}
			repo := NewHistoryRepository(slot, 3, logger.NewNop())
			assert.Equal(t, tt.want, ids(repo.Load(ctx)))
			assert.Equal(t, tt.want, ids(repo.List()))
			assert.Zero(t, slot.writes)
		})
	}
}

type failingSlot struct{}

func (failingSlot) Read(context.Context) ([]byte, error) { return nil, errors.New("permission denied") }
func (failingSlot) Write(context.Context, []byte) error  { return errors.New("permission denied") }
func (failingSlot) Clear(context.Context) error          { return errors.New("permission denied") }

func TestHistoryRepository_UnreadableSlot(t *testing.T) {
	repo := NewHistoryRepository(failingSlot{}, 3, logger.NewNop())
	assert.Empty(t, repo.Load(context.Background()))
	assert.Error(t, repo.Clear(context.Background()))
	assert.Empty(t, repo.List())
}

func TestHistoryRepository_Clear(t *testing.T) {
	ctx := context.Background()
	slot := newMemSlot("clear")
	repo := NewHistoryRepository(slot, 3, logger.NewNop())
	require.NoError(t, repo.Append(ctx, entry("A")))

	require.NoError(t, repo.Clear(ctx))
	assert.Empty(t, repo.List())

	data, err := slot.Read(ctx)
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestHistoryRepository_DefaultCapacity(t *testing.T) {
	repo := NewHistoryRepository(newMemSlot("default"), 0, logger.NewNop())
	assert.Equal(t, DefaultHistoryCapacity, repo.Capacity())
}

func genEntry(id string) gopter.Gen {
	return gopter.CombineGens(
		gen.OneConstOf(model.TrendBullish, model.TrendBearish, model.TrendNeutral),
		gen.AlphaString(),
		gen.SliceOf(gen.Float64Range(1000, 3000)),
		gen.SliceOf(gen.Float64Range(1000, 3000)),
		gen.SliceOf(gen.AlphaString()),
		gen.Bool(),
		gen.Float64Range(1000, 3000),
		gen.Float64Range(0, 1),
		gen.OneConstOf(model.RiskConservative, model.RiskBalanced, model.RiskAggressive),
	).Map(func(v []interface{}) model.HistoryEntry {
		e := model.HistoryEntry{
			ID:        id,
			Timestamp: "16 Oct 2026 - 09:30 UTC",
			Analysis: model.Analysis{
				ID:               id,
				Trend:            v[0].(model.Trend),
				Structure:        v[1].(string),
				SupportLevels:    v[2].([]float64),
				ResistanceLevels: v[3].([]float64),
				LiquidityZones:   v[4].([]string),
				NewsWarnings:     []string{},
				GroundingSources: []model.GroundingSource{},
			},
			Preferences: model.Preferences{LotSize: 0.05, ProfitTarget: 100, RiskProfile: v[8].(model.RiskProfile)},
		}
		if v[5].(bool) {
			e.Plan = &model.TradePlan{
				Direction:  model.DirectionSell,
				EntryPrice: v[6].(float64),
				TakeProfit: v[6].(float64) - 20,
				StopLoss:   v[6].(float64) + 10,
				Confidence: v[7].(float64),
				Status:     model.StatusWaiting,
				Timestamp:  "09:30:15",
			}
		}
		return e
	})
}

func genHistory(maxLen int) gopter.Gen {
	return gen.IntRange(0, maxLen).FlatMap(func(n interface{}) gopter.Gen {
		count := n.(int)
		gens := make([]gopter.Gen, count)
		for i := range gens {
			gens[i] = genEntry(fmt.Sprintf("entry-%d", i))
		}
		return gopter.CombineGens(gens...).Map(func(v []interface{}) []model.HistoryEntry {
			out := make([]model.HistoryEntry, len(v))
			for i := range v {
				out[i] = v[i].(model.HistoryEntry)
			}
			return out
		})
	}, reflect.TypeOf([]model.HistoryEntry{}))
}

func TestHistoryRepository_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("length is min(appends, capacity) and newest first", prop.ForAll(
		func(appends, capacity int) bool {
			ctx := context.Background()
			repo := NewHistoryRepository(newMemSlot("len"), capacity, logger.NewNop())
			for i := 0; i < appends; i++ {
				if err := repo.Append(ctx, entry(fmt.Sprintf("id-%d", i))); err != nil {
					return false
				}
			}
			list := repo.List()
			if len(list) != min(appends, capacity) {
				return false
			}
			for i, e := range list {
				if e.ID != fmt.Sprintf("id-%d", appends-1-i) {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 40),
		gen.IntRange(1, 25),
	))

	properties.Property("stored history loads back unchanged", prop.ForAll(
		func(entries []model.HistoryEntry) bool {
			ctx := context.Background()
			slot := newMemSlot("roundtrip")
			data, err := encodeHistory(entries)
			if err != nil {
				return false
			}
			if err := slot.StorageSlot.Write(ctx, data); err != nil {
				return false
			}
			loaded := NewHistoryRepository(slot, DefaultHistoryCapacity, logger.NewNop()).Load(ctx)
			return assert.ObjectsAreEqual(entries, loaded)
		},
		genHistory(DefaultHistoryCapacity),
	))

	properties.Property("appended entries survive a reload", prop.ForAll(
		func(entries []model.HistoryEntry) bool {
			ctx := context.Background()
			slot := newMemSlot("reload")
			repo := NewHistoryRepository(slot, DefaultHistoryCapacity, logger.NewNop())
			for i := len(entries) - 1; i >= 0; i-- {
				if err := repo.Append(ctx, entries[i]); err != nil {
					return false
				}
			}
			loaded := NewHistoryRepository(slot, DefaultHistoryCapacity, logger.NewNop()).Load(ctx)
			return assert.ObjectsAreEqual(repo.List(), loaded) && len(loaded) == len(entries)
		},
		genHistory(DefaultHistoryCapacity),
	))

	properties.TestingRun(t)
}
