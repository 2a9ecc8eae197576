package repository

import (
	"context"

	"vibelet/internal/models"

	"gorm.io/gorm"
)

// UserVibeCount is one row of the per-user content statistics.
type UserVibeCount struct {
	Username  string `json:"username"`
	VibeCount int    `json:"vibe_count"`
}

// AnalyticsRepository runs aggregate reporting queries that do not map onto
// a single model.
type AnalyticsRepository interface {
	GetUserVibeCounts(ctx context.Context) ([]UserVibeCount, error)
}

type analyticsRepository struct {
	db *gorm.DB
}

// NewAnalyticsRepository creates a new AnalyticsRepository.
func NewAnalyticsRepository(db *gorm.DB) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) GetUserVibeCounts(ctx context.Context) ([]UserVibeCount, error) {
	var stats []UserVibeCount
	if err := r.db.WithContext(ctx).
		Raw("SELECT u.username AS username, COUNT(v.id) AS vibe_count FROM users u LEFT JOIN vibes v ON u.id = v.user_id GROUP BY u.username ORDER BY u.username").
		Scan(&stats).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return stats, nil
}
