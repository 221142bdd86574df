package postgres

import (
	"context"
	"fmt"

	"myFoodFinder/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DecisionRepository struct {
	DB *gorm.DB
}

func NewDecisionRepository(db *gorm.DB) *DecisionRepository {
	return &DecisionRepository{DB: db}
}

// ---- Stats ----

// GetStats loads counters for ids in one query. Ids without a row come back
// with zero counts.
func (r *DecisionRepository) GetStats(ctx context.Context, ids []string) (map[string]domain.DecisionStat, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	out := make(map[string]domain.DecisionStat, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var rows []domain.DecisionStat
	if err := r.DB.WithContext(ctx).
		Where("place_id IN ?", ids).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query decision_stats: %w", err)
	}

	for _, row := range rows {
		out[row.ID] = row
	}
	for _, id := range ids {
		if _, ok := out[id]; !ok {
			out[id] = domain.DecisionStat{ID: id}
		}
	}

	return out, nil
}

// RecordDecision bumps one counter with a single upsert so concurrent
// writers never lose an increment.
func (r *DecisionRepository) RecordDecision(ctx context.Context, id string, accepted bool) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	row := domain.DecisionStat{ID: id}
	column := "failure_count"
	if accepted {
		row.SuccessCount = 1
		column = "success_count"
	} else {
		row.FailureCount = 1
	}

	if err := r.DB.WithContext(ctx).Clauses(
		clause.OnConflict{
			Columns: []clause.Column{{Name: "place_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				column:       gorm.Expr("decision_stats."+column+" + ?", 1),
				"updated_at": gorm.Expr("NOW()"),
			}),
		},
	).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to upsert decision_stats: %w", err)
	}

	return nil
}

// ---- Events ----

func (r *DecisionRepository) SaveEvent(ctx context.Context, event domain.DecisionEvent) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(&event).Error; err != nil {
		return fmt.Errorf("failed to save decision event: %w", err)
	}

	return nil
}

// Migrate creates the decision tables when missing.
func (r *DecisionRepository) Migrate(ctx context.Context) error {
	if err := r.DB.WithContext(ctx).AutoMigrate(&domain.DecisionStat{}, &domain.DecisionEvent{}); err != nil {
		return fmt.Errorf("failed to migrate decision tables: %w", err)
	}
	return nil
}
