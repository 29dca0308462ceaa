package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gold-analyst/internal/model"
	"gold-analyst/pkg/cache"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	SlotDriverFile     = "file"
	SlotDriverSQLite   = "sqlite"
	SlotDriverPostgres = "postgres"
	SlotDriverMemory   = "memory"
)

// StorageSlot is a single named slot holding the whole serialized history.
// Read returns nil, nil when the slot has never been written.
type StorageSlot interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
	Clear(ctx context.Context) error
}

// fileSlot keeps the slot in one file; writes go through a temp file and rename.
type fileSlot struct {
	path string
}

func NewFileSlot(path string) StorageSlot {
	return &fileSlot{path: path}
}

func (s *fileSlot) Read(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}
	return data, nil
}

func (s *fileSlot) Write(ctx context.Context, data []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp history file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write history file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close history file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace history file: %w", err)
	}
	return nil
}

func (s *fileSlot) Clear(ctx context.Context) error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove history file: %w", err)
	}
	return nil
}

// memorySlot lives in the process cache; nothing survives a restart.
type memorySlot struct {
	cache cache.Cache
	key   string
}

func NewMemorySlot(c cache.Cache, name string) StorageSlot {
	return &memorySlot{cache: c, key: "history_slot:" + name}
}

func (s *memorySlot) Read(ctx context.Context) ([]byte, error) {
	data, ok := cache.GetFromCache[[]byte](s.cache, s.key)
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (s *memorySlot) Write(ctx context.Context, data []byte) error {
	stored := make([]byte, len(data))
	copy(stored, data)
	s.cache.Set(s.key, stored, cache.NoExpiration)
	return nil
}

func (s *memorySlot) Clear(ctx context.Context) error {
	s.cache.Delete(s.key)
	return nil
}

// gormSlot stores the slot as one row of history_slots (sqlite or postgres).
type gormSlot struct {
	db   *gorm.DB
	name string
}

func NewGormSlot(db *gorm.DB, name string) StorageSlot {
	return &gormSlot{db: db, name: name}
}

func (s *gormSlot) Read(ctx context.Context) ([]byte, error) {
	var row model.HistorySlot
	err := s.db.WithContext(ctx).Where("name = ?", s.name).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history slot: %w", err)
	}
	return []byte(row.Payload), nil
}

func (s *gormSlot) Write(ctx context.Context, data []byte) error {
	row := model.HistorySlot{Name: s.name, Payload: datatypes.JSON(data)}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to write history slot: %w", err)
	}
	return nil
}

func (s *gormSlot) Clear(ctx context.Context) error {
	err := s.db.WithContext(ctx).Where("name = ?", s.name).Delete(&model.HistorySlot{}).Error
	if err != nil {
		return fmt.Errorf("failed to clear history slot: %w", err)
	}
	return nil
}
