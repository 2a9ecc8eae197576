package service

import (
	"context"
	"log/slog"
	"strings"

	"vibelet/internal/cache"
	"vibelet/internal/middleware"
	"vibelet/internal/models"
	"vibelet/internal/observability"
	"vibelet/internal/repository"
	"vibelet/internal/storage"
)

const (
	maxVibeContentLen = 10000
	maxCommentLen     = 2000
	// DefaultPageSize is used when the caller does not request a size.
	DefaultPageSize = 10
	// MaxPageSize caps a single page regardless of the request.
	MaxPageSize = 100
)

// VibeService owns vibe lifecycle, the feed, and the interaction ledger
// (likes and comments). All read authorization funnels through the
// visibility check.
type VibeService struct {
	vibeRepo    repository.VibeRepository
	userRepo    repository.UserRepository
	friendRepo  repository.FriendRepository
	commentRepo repository.CommentRepository
	images      storage.ImageStore
}

// CreateVibeInput carries the fields for a new vibe. Image, when non-nil,
// is stored and referenced by the created vibe.
type CreateVibeInput struct {
	UserID       uint
	Content      string
	Privacy      models.PrivacyStatus
	ImageName    string
	ImageContent []byte
}

// UpdateVibeInput carries a partial vibe update. Blank content leaves the
// existing text; an empty privacy leaves the existing tier.
type UpdateVibeInput struct {
	UserID  uint
	VibeID  uint
	Content string
	Privacy models.PrivacyStatus
}

// NewVibeService returns a new VibeService. images may be nil when the
// deployment has no writable storage; vibes are then text-only.
func NewVibeService(
	vibeRepo repository.VibeRepository,
	userRepo repository.UserRepository,
	friendRepo repository.FriendRepository,
	commentRepo repository.CommentRepository,
	images storage.ImageStore,
) *VibeService {
	return &VibeService{
		vibeRepo:    vibeRepo,
		userRepo:    userRepo,
		friendRepo:  friendRepo,
		commentRepo: commentRepo,
		images:      images,
	}
}

// CreateVibe creates a vibe owned by the given user.
func (s *VibeService) CreateVibe(ctx context.Context, in CreateVibeInput) (*models.Vibe, error) {
	if strings.TrimSpace(in.Content) == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxVibeContentLen {
		return nil, models.NewValidationError("Content too long (max 10000 characters)")
	}
	if in.Privacy == "" {
		in.Privacy = models.PrivacyPublic
	}
	if !in.Privacy.Valid() {
		return nil, models.NewValidationError("Invalid privacy status")
	}

	if _, err := s.userRepo.GetByID(ctx, in.UserID); err != nil {
		return nil, err
	}

	vibe := &models.Vibe{
		Content: in.Content,
		Privacy: in.Privacy,
		UserID:  in.UserID,
	}

	if len(in.ImageContent) > 0 && s.images != nil {
		name, err := s.images.Save(in.ImageName, in.ImageContent)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		vibe.ImageURL = name
	}

	if err := s.vibeRepo.Create(ctx, vibe); err != nil {
		return nil, err
	}
	// Only the author's cached page is dropped here. Friends' cached first
	// pages may serve the old content until FeedTTL expires.
	cache.InvalidateFeed(ctx, in.UserID)

	return s.vibeRepo.GetByID(ctx, vibe.ID)
}

// UpdateVibe lets the owner change content and privacy.
func (s *VibeService) UpdateVibe(ctx context.Context, in UpdateVibeInput) (*models.Vibe, error) {
	vibe, err := s.vibeRepo.GetByID(ctx, in.VibeID)
	if err != nil {
		return nil, err
	}
	if vibe.UserID != in.UserID {
		return nil, models.NewForbiddenError("You are not the owner of this vibe")
	}

	if strings.TrimSpace(in.Content) != "" {
		if len(in.Content) > maxVibeContentLen {
			return nil, models.NewValidationError("Content too long (max 10000 characters)")
		}
		vibe.Content = in.Content
	}
	if in.Privacy != "" {
		if !in.Privacy.Valid() {
			return nil, models.NewValidationError("Invalid privacy status")
		}
		vibe.Privacy = in.Privacy
	}

	if err := s.vibeRepo.Update(ctx, vibe); err != nil {
		return nil, err
	}
	cache.InvalidateFeed(ctx, in.UserID)
	return vibe, nil
}

// DeleteVibe removes an owner's vibe. The associated stored image, if any,
// is released best-effort: storage failures are logged and never fail the
// delete itself.
func (s *VibeService) DeleteVibe(ctx context.Context, userID, vibeID uint) error {
	vibe, err := s.vibeRepo.GetByID(ctx, vibeID)
	if err != nil {
		return err
	}
	if vibe.UserID != userID {
		return models.NewForbiddenError("You are not the owner of this vibe")
	}

	if err := s.vibeRepo.Delete(ctx, vibeID); err != nil {
		return err
	}

	if vibe.ImageURL != "" && s.images != nil {
		if err := s.images.Remove(vibe.ImageURL); err != nil {
			middleware.Logger.ErrorContext(ctx, "could not delete vibe image",
				slog.String("image", vibe.ImageURL),
				slog.String("error", err.Error()),
			)
		}
	}

	cache.InvalidateFeed(ctx, userID)
	return nil
}

// GetVibe returns a single vibe, gated by the visibility check.
func (s *VibeService) GetVibe(ctx context.Context, viewerID, vibeID uint) (*models.Vibe, error) {
	vibe, err := s.vibeRepo.GetByID(ctx, vibeID)
	if err != nil {
		return nil, err
	}
	if err := checkVibeAccess(ctx, s.friendRepo, vibe, viewerID); err != nil {
		return nil, err
	}
	return vibe, nil
}

// CanView reports whether the viewer may see the vibe, with the denial
// reason as the error.
func (s *VibeService) CanView(ctx context.Context, vibe *models.Vibe, viewerID uint) error {
	return checkVibeAccess(ctx, s.friendRepo, vibe, viewerID)
}

// GetFeed assembles the viewer's reverse-chronological feed: own vibes plus
// accepted friends' non-private vibes. Pages are zero-based; out-of-range
// pages yield an empty slice, never an error. The first page is served
// through the cache.
func (s *VibeService) GetFeed(ctx context.Context, viewerID uint, page, size int) ([]models.Vibe, error) {
	if _, err := s.userRepo.GetByID(ctx, viewerID); err != nil {
		return nil, err
	}
	page, size = normalizePage(page, size)

	if page == 0 && size == DefaultPageSize {
		var vibes []models.Vibe
		outcome := "hit"
		err := cache.Aside(ctx, cache.FeedKey(viewerID), &vibes, cache.FeedTTL, func() error {
			outcome = "miss"
			var fetchErr error
			vibes, fetchErr = s.vibeRepo.Feed(ctx, viewerID, size, 0)
			return fetchErr
		})
		if err != nil {
			return nil, err
		}
		observability.FeedRequestsTotal.WithLabelValues(outcome).Inc()
		return vibes, nil
	}

	observability.FeedRequestsTotal.WithLabelValues("bypass").Inc()
	return s.vibeRepo.Feed(ctx, viewerID, size, page*size)
}

// GetUserVibes lists one user's vibes newest first, without privacy
// filtering; gating who may call this is the boundary's concern.
func (s *VibeService) GetUserVibes(ctx context.Context, targetUserID uint, page, size int) ([]models.Vibe, error) {
	if _, err := s.userRepo.GetByID(ctx, targetUserID); err != nil {
		return nil, err
	}
	page, size = normalizePage(page, size)
	return s.vibeRepo.GetByUserID(ctx, targetUserID, size, page*size)
}

// AddComment creates a comment on a vibe the author is allowed to see.
func (s *VibeService) AddComment(ctx context.Context, vibeID, authorID uint, content string) (*models.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(content) > maxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 2000 characters)")
	}

	if _, err := s.userRepo.GetByID(ctx, authorID); err != nil {
		return nil, err
	}
	vibe, err := s.vibeRepo.GetByID(ctx, vibeID)
	if err != nil {
		return nil, err
	}
	if err := checkVibeAccess(ctx, s.friendRepo, vibe, authorID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Content: content,
		UserID:  authorID,
		VibeID:  vibeID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	return s.commentRepo.GetByID(ctx, comment.ID)
}

// ListComments returns the comments on a vibe the viewer may see.
func (s *VibeService) ListComments(ctx context.Context, vibeID, viewerID uint) ([]models.Comment, error) {
	vibe, err := s.vibeRepo.GetByID(ctx, vibeID)
	if err != nil {
		return nil, err
	}
	if err := checkVibeAccess(ctx, s.friendRepo, vibe, viewerID); err != nil {
		return nil, err
	}
	return s.commentRepo.ListByVibe(ctx, vibeID)
}

// ToggleLike flips the actor's like on a vibe: like when absent, unlike
// when present. Two consecutive toggles restore the original state; the
// unique (user, vibe) index keeps concurrent toggles from double-inserting.
func (s *VibeService) ToggleLike(ctx context.Context, vibeID, actorID uint) (liked bool, err error) {
	if _, err := s.userRepo.GetByID(ctx, actorID); err != nil {
		return false, err
	}
	vibe, err := s.vibeRepo.GetByID(ctx, vibeID)
	if err != nil {
		return false, err
	}
	if err := checkVibeAccess(ctx, s.friendRepo, vibe, actorID); err != nil {
		return false, err
	}

	isLiked, err := s.vibeRepo.IsLiked(ctx, actorID, vibeID)
	if err != nil {
		return false, err
	}

	if isLiked {
		if err := s.vibeRepo.Unlike(ctx, actorID, vibeID); err != nil {
			return false, err
		}
		return false, nil
	}
	if err := s.vibeRepo.Like(ctx, actorID, vibeID); err != nil {
		return false, err
	}
	return true, nil
}

// normalizePage clamps paging inputs. Negative pages read as the first
// page; sizes fall back to the default and are capped.
func normalizePage(page, size int) (int, int) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return page, size
}
