package service

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"vibelet/internal/cache"
	"vibelet/internal/models"
	"vibelet/internal/repository"
	"vibelet/internal/validation"
)

// RelationStatus describes how a found user relates to the searcher.
type RelationStatus string

const (
	RelationSelf    RelationStatus = "SELF"
	RelationFriend  RelationStatus = "FRIEND"
	RelationPending RelationStatus = "PENDING"
	RelationNone    RelationStatus = "NONE"
)

// UserSearchResult is a user row annotated with the searcher's relation
// to that user.
type UserSearchResult struct {
	User     models.User    `json:"user"`
	Relation RelationStatus `json:"relation"`
}

// UpdateProfileInput carries a partial profile update. Nil fields are
// left untouched.
type UpdateProfileInput struct {
	UserID    uint
	Bio       *string
	Status    *string
	AvatarURL *string
}

// UpdateSecurityInput changes username, email or password. The current
// password must be supplied and match; nil fields keep their value.
type UpdateSecurityInput struct {
	UserID          uint
	CurrentPassword string
	Username        *string
	Email           *string
	NewPassword     *string
}

// UserService owns account reads and mutations past signup.
type UserService struct {
	userRepo   repository.UserRepository
	friendRepo repository.FriendRepository
}

func NewUserService(userRepo repository.UserRepository, friendRepo repository.FriendRepository) *UserService {
	return &UserService{userRepo: userRepo, friendRepo: friendRepo}
}

// GetUser returns a user by id.
func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// GetUserByUsername returns a user by username.
func (s *UserService) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.userRepo.GetByUsername(ctx, username)
}

// SearchUsers finds users by a case-insensitive username fragment and
// annotates each hit with the searcher's relation to it.
func (s *UserService) SearchUsers(ctx context.Context, searcherID uint, query string, page, size int) ([]UserSearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, models.NewValidationError("Search query is required")
	}
	page, size = normalizePage(page, size)

	users, err := s.userRepo.Search(ctx, query, size, page*size)
	if err != nil {
		return nil, err
	}

	results := make([]UserSearchResult, 0, len(users))
	for _, u := range users {
		relation, err := s.relationTo(ctx, searcherID, u.ID)
		if err != nil {
			return nil, err
		}
		results = append(results, UserSearchResult{User: u, Relation: relation})
	}
	return results, nil
}

func (s *UserService) relationTo(ctx context.Context, searcherID, otherID uint) (RelationStatus, error) {
	if searcherID == otherID {
		return RelationSelf, nil
	}
	friends, err := s.friendRepo.AreFriends(ctx, searcherID, otherID)
	if err != nil {
		return "", err
	}
	if friends {
		return RelationFriend, nil
	}
	pending, err := s.friendRepo.IsPending(ctx, searcherID, otherID)
	if err != nil {
		return "", err
	}
	if pending {
		return RelationPending, nil
	}
	return RelationNone, nil
}

// UpdateProfile applies the non-nil profile fields.
func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	if in.Bio != nil {
		if len(*in.Bio) > 500 {
			return nil, models.NewValidationError("Bio too long (max 500 characters)")
		}
		user.Bio = *in.Bio
	}
	if in.Status != nil {
		if len(*in.Status) > 100 {
			return nil, models.NewValidationError("Status too long (max 100 characters)")
		}
		user.Status = *in.Status
	}
	if in.AvatarURL != nil {
		user.AvatarURL = *in.AvatarURL
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateSecurity changes credential fields after re-authenticating with
// the current password.
func (s *UserService) UpdateSecurity(ctx context.Context, in UpdateSecurityInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.CurrentPassword)); err != nil {
		return nil, models.NewForbiddenError("Current password is incorrect")
	}

	if in.Username != nil && *in.Username != user.Username {
		if err := validation.ValidateUsername(*in.Username); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		taken, err := s.userRepo.ExistsByUsername(ctx, *in.Username)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, models.NewConflictError("Username already taken")
		}
		user.Username = *in.Username
	}

	if in.Email != nil && *in.Email != user.Email {
		if err := validation.ValidateEmail(*in.Email); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		taken, err := s.userRepo.ExistsByEmail(ctx, *in.Email)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, models.NewConflictError("Email already taken")
		}
		user.Email = *in.Email
	}

	if in.NewPassword != nil {
		if err := validation.ValidatePassword(*in.NewPassword); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		user.Password = string(hash)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes the account. Vibes, comments, likes and friendship
// edges go with it through the foreign key cascades.
func (s *UserService) DeleteUser(ctx context.Context, userID uint) error {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return err
	}
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return err
	}
	cache.InvalidateFeed(ctx, userID)
	return nil
}
