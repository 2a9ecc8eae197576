package repository

import (
	"context"
	"errors"
	"time"

	"vibelet/internal/models"

	"gorm.io/gorm"
)

// VibeRepository defines the interface for vibe data operations, including
// the feed query and the like ledger.
type VibeRepository interface {
	Create(ctx context.Context, vibe *models.Vibe) error
	GetByID(ctx context.Context, id uint) (*models.Vibe, error)
	Update(ctx context.Context, vibe *models.Vibe) error
	Delete(ctx context.Context, id uint) error
	Feed(ctx context.Context, viewerID uint, limit, offset int) ([]models.Vibe, error)
	GetByUserID(ctx context.Context, userID uint, limit, offset int) ([]models.Vibe, error)
	ExistsByOwnerContentCreatedAt(ctx context.Context, userID uint, content string, createdAt time.Time) (bool, error)
	IsLiked(ctx context.Context, userID, vibeID uint) (bool, error)
	Like(ctx context.Context, userID, vibeID uint) error
	Unlike(ctx context.Context, userID, vibeID uint) error
	CountLikes(ctx context.Context, vibeID uint) (int64, error)
}

type vibeRepository struct {
	db *gorm.DB
}

// NewVibeRepository creates a new vibe repository.
func NewVibeRepository(db *gorm.DB) VibeRepository {
	return &vibeRepository{db: db}
}

func (r *vibeRepository) Create(ctx context.Context, vibe *models.Vibe) error {
	if err := r.db.WithContext(ctx).Create(vibe).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *vibeRepository) GetByID(ctx context.Context, id uint) (*models.Vibe, error) {
	var vibe models.Vibe
	if err := r.db.WithContext(ctx).Preload("User").First(&vibe, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Vibe", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &vibe, nil
}

func (r *vibeRepository) Update(ctx context.Context, vibe *models.Vibe) error {
	if err := r.db.WithContext(ctx).Save(vibe).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *vibeRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Vibe{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Feed returns the viewer's own vibes plus non-private vibes of accepted
// friends, newest first. Public vibes of strangers are intentionally not
// part of the feed even though a direct visibility check would allow them.
func (r *vibeRepository) Feed(ctx context.Context, viewerID uint, limit, offset int) ([]models.Vibe, error) {
	var vibes []models.Vibe

	sentFriends := r.db.Model(&models.Friendship{}).
		Select("receiver_id").
		Where("requester_id = ? AND status = ?", viewerID, models.FriendshipStatusAccepted)
	receivedFriends := r.db.Model(&models.Friendship{}).
		Select("requester_id").
		Where("receiver_id = ? AND status = ?", viewerID, models.FriendshipStatusAccepted)

	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("user_id = ? OR (privacy <> ? AND (user_id IN (?) OR user_id IN (?)))",
			viewerID, models.PrivacyPrivate, sentFriends, receivedFriends).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&vibes).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return vibes, nil
}

func (r *vibeRepository) GetByUserID(ctx context.Context, userID uint, limit, offset int) ([]models.Vibe, error) {
	var vibes []models.Vibe
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&vibes).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return vibes, nil
}

// ExistsByOwnerContentCreatedAt is the dedup key for snapshot imports.
func (r *vibeRepository) ExistsByOwnerContentCreatedAt(ctx context.Context, userID uint, content string, createdAt time.Time) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Vibe{}).
		Where("user_id = ? AND content = ? AND created_at = ?", userID, content, createdAt).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *vibeRepository) IsLiked(ctx context.Context, userID, vibeID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND vibe_id = ?", userID, vibeID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *vibeRepository) Like(ctx context.Context, userID, vibeID uint) error {
	like := models.Like{UserID: userID, VibeID: vibeID}
	if err := r.db.WithContext(ctx).Create(&like).Error; err != nil {
		if isUniqueViolation(err) {
			// A concurrent toggle won; the like is already present.
			return models.NewConflictError("Vibe is already liked")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *vibeRepository) Unlike(ctx context.Context, userID, vibeID uint) error {
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND vibe_id = ?", userID, vibeID).
		Delete(&models.Like{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *vibeRepository) CountLikes(ctx context.Context, vibeID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("vibe_id = ?", vibeID).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
