package repository

import (
	"fmt"

	"gold-analyst/config"
	"gold-analyst/internal/model"
	"gold-analyst/pkg/cache"
	"gold-analyst/pkg/logger"

	goValidator "github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

type Repository struct {
	GeminiAIRepo AIRepository
	HistoryRepo  HistoryRepository
}

func NewRepository(cfg *config.Config, log *logger.Logger, validator *goValidator.Validate, slot StorageSlot) (*Repository, error) {
	geminiAIRepo, err := NewGeminiAIRepository(cfg, log, validator)
	if err != nil {
		return nil, err
	}

	return &Repository{
		GeminiAIRepo: geminiAIRepo,
		HistoryRepo:  NewHistoryRepository(slot, cfg.App.HistoryCapacity, log),
	}, nil
}

// NewStorageSlot picks the history slot backend. db is only used by the sql drivers.
func NewStorageSlot(cfg *config.Config, db *gorm.DB, inmemoryCache cache.Cache) (StorageSlot, error) {
	switch cfg.Storage.Driver {
	case SlotDriverFile, "":
		return NewFileSlot(cfg.Storage.FilePath), nil
	case SlotDriverMemory:
		return NewMemorySlot(inmemoryCache, cfg.Storage.SlotName), nil
	case SlotDriverSQLite, SlotDriverPostgres:
		if db == nil {
			return nil, fmt.Errorf("storage driver %q needs a database connection", cfg.Storage.Driver)
		}
		if cfg.Storage.AutoMigrate {
			if err := db.AutoMigrate(&model.HistorySlot{}); err != nil {
				return nil, fmt.Errorf("failed to migrate history slot table: %w", err)
			}
		}
		return NewGormSlot(db, cfg.Storage.SlotName), nil
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
}
