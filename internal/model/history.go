package model

import "gorm.io/datatypes"

// HistoryEntry pairs one past result with the preferences that produced it.
type HistoryEntry struct {
	ID          string      `json:"id"`
	Timestamp   string      `json:"timestamp"`
	Analysis    Analysis    `json:"analysis"`
	Plan        *TradePlan  `json:"plan"`
	Preferences Preferences `json:"preferences"`
}

func (e HistoryEntry) Clone() HistoryEntry {
	e.Analysis = e.Analysis.Clone()
	e.Plan = e.Plan.Clone()
	return e
}

func CloneHistory(entries []HistoryEntry) []HistoryEntry {
	out := make([]HistoryEntry, len(entries))
	for i, e := range entries {
		out[i] = e.Clone()
	}
	return out
}

// HistorySlot is the single named row that holds the serialized history in SQL storage.
type HistorySlot struct {
	Name      string         `gorm:"primaryKey;size:128"`
	Payload   datatypes.JSON `gorm:"not null"`
	UpdatedAt int64          `gorm:"autoUpdateTime:milli"`
}

func (HistorySlot) TableName() string {
	return "history_slots"
}
