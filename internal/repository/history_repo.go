package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"gold-analyst/internal/model"
	"gold-analyst/pkg/logger"
)

const DefaultHistoryCapacity = 20

// HistoryRepository is the bounded, most-recent-first list of past analyses.
// Every mutation rewrites the whole list into the storage slot.
type HistoryRepository interface {
	Load(ctx context.Context) []model.HistoryEntry
	List() []model.HistoryEntry
	Append(ctx context.Context, entry model.HistoryEntry) error
	Remove(ctx context.Context, id string) error
	Select(id string) (model.HistoryEntry, bool)
	Clear(ctx context.Context) error
	Capacity() int
}

type historyRepository struct {
	mu       sync.Mutex
	slot     StorageSlot
	capacity int
	entries  []model.HistoryEntry
	log      *logger.Logger
}

func NewHistoryRepository(slot StorageSlot, capacity int, log *logger.Logger) HistoryRepository {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &historyRepository{
		slot:     slot,
		capacity: capacity,
		entries:  []model.HistoryEntry{},
		log:      log,
	}
}

func (r *historyRepository) Capacity() int {
	return r.capacity
}

// Load replaces the in-memory list with the slot content. It never fails:
// an absent, unreadable or corrupt slot yields an empty history.
func (r *historyRepository) Load(ctx context.Context) []model.HistoryEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = r.readSlot(ctx)
	return model.CloneHistory(r.entries)
}

func (r *historyRepository) readSlot(ctx context.Context) []model.HistoryEntry {
	data, err := r.slot.Read(ctx)
	if err != nil {
		r.log.WarnContext(ctx, "Failed to read history slot, starting empty", logger.ErrorField(err))
		return []model.HistoryEntry{}
	}
	if len(data) == 0 {
		return []model.HistoryEntry{}
	}

	entries, err := decodeHistory(data)
	if err != nil {
		r.log.WarnContext(ctx, "Stored history is unreadable, starting empty", logger.ErrorField(err))
		return []model.HistoryEntry{}
	}

	cleaned := r.sanitize(entries)
	if len(cleaned) != len(entries) {
		r.log.WarnContext(ctx, "Dropped invalid history entries",
			logger.IntField("stored", len(entries)),
			logger.IntField("kept", len(cleaned)),
		)
	}
	r.log.InfoContext(ctx, "History loaded", logger.IntField("entries", len(cleaned)))
	return cleaned
}

// sanitize drops entries without id, repeated ids and anything past capacity.
func (r *historyRepository) sanitize(entries []model.HistoryEntry) []model.HistoryEntry {
	seen := make(map[string]struct{}, len(entries))
	out := make([]model.HistoryEntry, 0, len(entries))
	for _, e := range entries {
		if e.ID == "" {
			continue
		}
		if _, dup := seen[e.ID]; dup {
			continue
		}
		seen[e.ID] = struct{}{}
		out = append(out, e)
		if len(out) == r.capacity {
			break
		}
	}
	return out
}

func (r *historyRepository) List() []model.HistoryEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return model.CloneHistory(r.entries)
}

// Append inserts at the head and evicts the oldest entries beyond capacity.
func (r *historyRepository) Append(ctx context.Context, entry model.HistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry.ID == "" {
		return fmt.Errorf("history entry has no id")
	}
	for _, e := range r.entries {
		if e.ID == entry.ID {
			return fmt.Errorf("%w: %s", model.ErrDuplicateHistoryEntry, entry.ID)
		}
	}

	next := make([]model.HistoryEntry, 0, min(len(r.entries)+1, r.capacity))
	next = append(next, entry.Clone())
	for _, e := range r.entries {
		if len(next) == r.capacity {
			r.log.DebugContext(ctx, "Evicting history entry", logger.StringField("id", e.ID))
			continue
		}
		next = append(next, e)
	}
	r.entries = next

	return r.persist(ctx)
}

// Remove deletes the entry with id. Unknown ids are a no-op and do not touch storage.
func (r *historyRepository) Remove(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := -1
	for i, e := range r.entries {
		if e.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}

	next := make([]model.HistoryEntry, 0, len(r.entries)-1)
	next = append(next, r.entries[:idx]...)
	next = append(next, r.entries[idx+1:]...)
	r.entries = next

	return r.persist(ctx)
}

func (r *historyRepository) Select(id string) (model.HistoryEntry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.entries {
		if e.ID == id {
			return e.Clone(), true
		}
	}
	return model.HistoryEntry{}, false
}

// Clear empties the history and the storage slot.
func (r *historyRepository) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = []model.HistoryEntry{}
	if err := r.slot.Clear(ctx); err != nil {
		r.log.ErrorContext(ctx, "Failed to clear history slot", logger.ErrorField(err))
		return err
	}
	return nil
}

func (r *historyRepository) persist(ctx context.Context) error {
	data, err := encodeHistory(r.entries)
	if err != nil {
		r.log.ErrorContext(ctx, "Failed to encode history", logger.ErrorField(err))
		return fmt.Errorf("failed to encode history: %w", err)
	}
	if err := r.slot.Write(ctx, data); err != nil {
		r.log.ErrorContext(ctx, "Failed to persist history", logger.ErrorField(err))
		return err
	}
	return nil
}

func encodeHistory(entries []model.HistoryEntry) ([]byte, error) {
	if entries == nil {
		entries = []model.HistoryEntry{}
	}
	return json.Marshal(entries)
}

func decodeHistory(data []byte) ([]model.HistoryEntry, error) {
	var entries []model.HistoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrPersistenceCorruption, err)
	}
	if entries == nil {
		entries = []model.HistoryEntry{}
	}
	return entries, nil
}
