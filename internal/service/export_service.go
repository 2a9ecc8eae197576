package service

import (
	"context"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"vibelet/internal/middleware"
	"vibelet/internal/models"
	"vibelet/internal/observability"
	"vibelet/internal/repository"
)

// Snapshot timestamps are written as RFC 3339 with full sub-second
// precision so re-importing an export matches the stored rows exactly.
// Imports also accept the zoneless layouts older snapshots carry; those
// writers drop trailing zero seconds, so both variants appear in the wild.
const exportTimeFormat = time.RFC3339Nano

var importTimeFormats = []string{
	exportTimeFormat,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// ExportService builds portable account snapshots and reconciles them back
// in. Import runs in a single transaction so a half-applied snapshot never
// becomes visible.
type ExportService struct {
	db         *gorm.DB
	userRepo   repository.UserRepository
	vibeRepo   repository.VibeRepository
	friendRepo repository.FriendRepository
}

func NewExportService(db *gorm.DB, userRepo repository.UserRepository, vibeRepo repository.VibeRepository, friendRepo repository.FriendRepository) *ExportService {
	return &ExportService{
		db:         db,
		userRepo:   userRepo,
		vibeRepo:   vibeRepo,
		friendRepo: friendRepo,
	}
}

// Export assembles the user's snapshot: identity, bio, all vibes regardless
// of privacy, and accepted friends by username.
func (s *ExportService) Export(ctx context.Context, userID uint) (*models.DataExport, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	vibes, err := s.vibeRepo.GetByUserID(ctx, userID, -1, 0)
	if err != nil {
		return nil, err
	}
	friends, err := s.friendRepo.GetFriends(ctx, userID)
	if err != nil {
		return nil, err
	}

	export := &models.DataExport{
		Username: user.Username,
		Email:    user.Email,
		Vibes:    make([]models.VibeExport, 0, len(vibes)),
		Friends:  make([]string, 0, len(friends)),
	}
	if user.Bio != "" {
		bio := user.Bio
		export.Bio = &bio
	}
	for _, v := range vibes {
		export.Vibes = append(export.Vibes, models.VibeExport{
			Content:   v.Content,
			CreatedAt: v.CreatedAt.UTC().Format(exportTimeFormat),
		})
	}
	for _, f := range friends {
		export.Friends = append(export.Friends, f.Username)
	}
	return export, nil
}

// Import reconciles a snapshot into the user's account. Vibes already
// present (same content and timestamp) and friendship edges that exist in
// any state are skipped; unknown friend usernames and the user's own name
// are ignored. Imported vibes are forced PRIVATE until the owner reviews
// them. All of it commits or none of it does.
func (s *ExportService) Import(ctx context.Context, userID uint, data *models.DataExport) (*models.ImportResult, error) {
	if data == nil {
		return nil, models.NewValidationError("Import payload is required")
	}

	result := &models.ImportResult{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		userRepo := repository.NewUserRepository(tx)
		vibeRepo := repository.NewVibeRepository(tx)
		friendRepo := repository.NewFriendRepository(tx)

		user, err := userRepo.GetByID(ctx, userID)
		if err != nil {
			return err
		}

		if data.Bio != nil {
			user.Bio = *data.Bio
			if err := userRepo.Update(ctx, user); err != nil {
				return err
			}
		}

		for _, ve := range data.Vibes {
			createdAt := parseSnapshotTime(ctx, ve.CreatedAt)

			exists, err := vibeRepo.ExistsByOwnerContentCreatedAt(ctx, userID, ve.Content, createdAt)
			if err != nil {
				return err
			}
			if exists {
				continue
			}

			vibe := &models.Vibe{
				Content:   ve.Content,
				Privacy:   models.PrivacyPrivate,
				UserID:    userID,
				CreatedAt: createdAt,
			}
			if err := vibeRepo.Create(ctx, vibe); err != nil {
				return err
			}
			result.ImportedVibes++
		}

		for _, friendName := range data.Friends {
			if friendName == user.Username {
				// A snapshot never legitimately lists its own owner.
				continue
			}
			friend, err := userRepo.GetByUsername(ctx, friendName)
			if err != nil {
				if models.IsNotFound(err) {
					middleware.Logger.WarnContext(ctx, "skipping unknown friend during import",
						slog.String("username", friendName),
					)
					continue
				}
				return err
			}

			existing, err := friendRepo.GetBetweenUsers(ctx, userID, friend.ID)
			if err != nil {
				return err
			}
			if existing != nil {
				continue
			}

			edge := &models.Friendship{
				RequesterID: userID,
				ReceiverID:  friend.ID,
				Status:      models.FriendshipStatusAccepted,
			}
			if err := friendRepo.Create(ctx, edge); err != nil {
				return err
			}
			result.ImportedFriends++
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	observability.ImportedEntitiesTotal.WithLabelValues("vibe").Add(float64(result.ImportedVibes))
	observability.ImportedEntitiesTotal.WithLabelValues("friendship").Add(float64(result.ImportedFriends))
	return result, nil
}

// parseSnapshotTime accepts every supported snapshot layout and falls back
// to the current time when none matches, so one mangled timestamp does
// not sink the whole import.
func parseSnapshotTime(ctx context.Context, value string) time.Time {
	for _, layout := range importTimeFormats {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	middleware.Logger.WarnContext(ctx, "unparseable vibe timestamp in import, using current time",
		slog.String("created_at", value),
	)
	return time.Now()
}
