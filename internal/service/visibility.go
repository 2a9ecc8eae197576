package service

import (
	"context"

	"vibelet/internal/models"
	"vibelet/internal/repository"
)

// checkVibeAccess is the single authorization gate for reading a vibe or
// interacting with it (comments, likes). It decides, never mutates, and
// only consults the friendship graph for the FRIENDS_ONLY tier.
//
// Owners always see their own content. The feed query applies a narrower
// predicate than this check; see VibeRepository.Feed.
func checkVibeAccess(ctx context.Context, friendRepo repository.FriendRepository, vibe *models.Vibe, viewerID uint) error {
	if vibe.UserID == viewerID {
		return nil
	}

	switch vibe.Privacy {
	case models.PrivacyPublic:
		return nil
	case models.PrivacyPrivate:
		return models.NewForbiddenError("This vibe is private")
	}

	isFriend, err := friendRepo.AreFriends(ctx, vibe.UserID, viewerID)
	if err != nil {
		return err
	}
	if !isFriend {
		return models.NewForbiddenError("This vibe is visible to friends only")
	}
	return nil
}
