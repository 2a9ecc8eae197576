// Package service implements the application's business logic on top of the
// repository layer.
package service

import (
	"context"

	"vibelet/internal/cache"
	"vibelet/internal/models"
	"vibelet/internal/repository"
)

// FriendService owns the friendship lifecycle: request, accept, remove.
// An edge moves PENDING -> ACCEPTED, or is deleted from either state; a
// deleted edge is gone and a fresh request creates a new one.
type FriendService struct {
	friendRepo repository.FriendRepository
	userRepo   repository.UserRepository
}

// NewFriendService returns a new FriendService.
func NewFriendService(friendRepo repository.FriendRepository, userRepo repository.UserRepository) *FriendService {
	return &FriendService{
		friendRepo: friendRepo,
		userRepo:   userRepo,
	}
}

// SendFriendRequest creates a PENDING edge from requester to receiver.
// At most one edge may exist between a pair of users in either direction,
// so a second request cannot be queued while one is outstanding or accepted.
func (s *FriendService) SendFriendRequest(ctx context.Context, requesterID, receiverID uint) (*models.Friendship, error) {
	if requesterID == receiverID {
		return nil, models.NewConflictError("Cannot send a friend request to yourself")
	}

	if _, err := s.userRepo.GetByID(ctx, requesterID); err != nil {
		return nil, err
	}
	if _, err := s.userRepo.GetByID(ctx, receiverID); err != nil {
		return nil, err
	}

	existing, err := s.friendRepo.GetBetweenUsers(ctx, requesterID, receiverID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("Friendship or pending request already exists")
	}

	friendship := &models.Friendship{
		RequesterID: requesterID,
		ReceiverID:  receiverID,
		Status:      models.FriendshipStatusPending,
	}
	// The unordered-pair unique index closes the check-then-create race;
	// a loss there surfaces as Conflict from the repository.
	if err := s.friendRepo.Create(ctx, friendship); err != nil {
		return nil, err
	}

	return s.friendRepo.GetByID(ctx, friendship.ID)
}

// AcceptFriendRequest transitions a PENDING edge to ACCEPTED. Only the
// receiver of that specific edge may accept; accepting an already-accepted
// edge is a Conflict, not a silent no-op.
func (s *FriendService) AcceptFriendRequest(ctx context.Context, actorID, friendshipID uint) (*models.Friendship, error) {
	friendship, err := s.friendRepo.GetByID(ctx, friendshipID)
	if err != nil {
		return nil, err
	}

	if friendship.ReceiverID != actorID {
		return nil, models.NewForbiddenError("Only the receiver may accept this request")
	}
	if friendship.Status != models.FriendshipStatusPending {
		return nil, models.NewConflictError("Friend request is not pending")
	}

	if err := s.friendRepo.UpdateStatus(ctx, friendshipID, models.FriendshipStatusAccepted); err != nil {
		return nil, err
	}

	// The new edge widens what both parties' feeds may show, so their
	// cached first pages must not outlive the transition.
	cache.InvalidateFeed(ctx, friendship.RequesterID)
	cache.InvalidateFeed(ctx, friendship.ReceiverID)

	return s.friendRepo.GetByID(ctx, friendshipID)
}

// RemoveFriendship deletes the edge unconditionally, whatever its status.
// The same operation covers rejecting a pending request and unfriending an
// accepted one; either participant may perform it.
func (s *FriendService) RemoveFriendship(ctx context.Context, actorID, friendshipID uint) (*models.Friendship, error) {
	friendship, err := s.friendRepo.GetByID(ctx, friendshipID)
	if err != nil {
		return nil, err
	}

	if !friendship.Involves(actorID) {
		return nil, models.NewForbiddenError("Only a participant may remove this relationship")
	}

	if err := s.friendRepo.Delete(ctx, friendshipID); err != nil {
		return nil, err
	}

	// Removing an accepted edge narrows both parties' feeds; drop their
	// cached first pages so unfriending takes effect immediately.
	cache.InvalidateFeed(ctx, friendship.RequesterID)
	cache.InvalidateFeed(ctx, friendship.ReceiverID)

	return friendship, nil
}

// ListPendingRequests returns requests awaiting the user's decision.
func (s *FriendService) ListPendingRequests(ctx context.Context, userID uint) ([]models.Friendship, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.friendRepo.GetPendingRequests(ctx, userID)
}

// ListFriends returns the other party of every accepted edge touching the user.
func (s *FriendService) ListFriends(ctx context.Context, userID uint) ([]models.User, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.friendRepo.GetFriends(ctx, userID)
}

// AreFriends reports whether an accepted edge exists between the users in
// either direction.
func (s *FriendService) AreFriends(ctx context.Context, userID1, userID2 uint) (bool, error) {
	return s.friendRepo.AreFriends(ctx, userID1, userID2)
}

// IsPending reports whether a pending edge exists between the users in
// either direction.
func (s *FriendService) IsPending(ctx context.Context, requesterID, receiverID uint) (bool, error) {
	return s.friendRepo.IsPending(ctx, requesterID, receiverID)
}
