package domain

import (
	"time"

	"gorm.io/datatypes"
)

// CREATE TABLE public.decision_stats (
//     place_id       TEXT PRIMARY KEY,
//     success_count  BIGINT NOT NULL DEFAULT 0,
//     failure_count  BIGINT NOT NULL DEFAULT 0,
//     updated_at     TIMESTAMPTZ DEFAULT NOW()
// );

// DecisionStat is the accept/reject history of one place.
// Counts only ever grow.
type DecisionStat struct {
	ID           string    `gorm:"column:place_id;primaryKey" json:"id"`
	SuccessCount int64     `gorm:"column:success_count;not null;default:0" json:"success_count"`
	FailureCount int64     `gorm:"column:failure_count;not null;default:0" json:"failure_count"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (DecisionStat) TableName() string {
	return "decision_stats"
}

// DecisionEvent is the append-only audit row written for every swipe.
type DecisionEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"column:user_id;not null" json:"user_id"`
	PlaceID   string    `gorm:"column:place_id;not null" json:"place_id"`
	Accepted  bool      `gorm:"column:accepted;not null" json:"accepted"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`

	Context datatypes.JSONMap `gorm:"column:context;type:jsonb" json:"context"`
}

func (DecisionEvent) TableName() string {
	return "decision_events"
}
