// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"vibelet/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var privacyTiers = []models.PrivacyStatus{
	models.PrivacyPublic,
	models.PrivacyFriendsOnly,
	models.PrivacyPrivate,
}

// Seeder populates the database with a plausible social mesh: users,
// friendships in both states, vibes across all privacy tiers, likes and
// comments.
type Seeder struct {
	db  *gorm.DB
	rng *rand.Rand
}

// NewSeeder creates a Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{
		db:  db,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ClearAll wipes every seeded table. Child tables go first so the foreign
// keys never block.
func (s *Seeder) ClearAll() error {
	for _, table := range []string{"likes", "comments", "vibes", "friendships", "users"} {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}
	log.Println("cleared all tables")
	return nil
}

// CreateUser persists a generated user. All seeded users share the password
// "Password123456" so logging in as any of them is easy.
func (s *Seeder) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("Password123456"), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:  fmt.Sprintf("%s%d", gofakeit.Username(), gofakeit.Number(100, 999)),
		Email:     gofakeit.Email(),
		Password:  string(hashed),
		Bio:       gofakeit.Sentence(10),
		Status:    gofakeit.HipsterWord(),
		AvatarURL: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
	}
	for _, override := range overrides {
		override(user)
	}

	if err := s.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateVibe persists a generated vibe for the user with a created_at spread
// over the last maxDays days.
func (s *Seeder) CreateVibe(user *models.User, maxDays int) (*models.Vibe, error) {
	if maxDays <= 0 {
		maxDays = 90
	}
	back := time.Duration(s.rng.Intn(maxDays*24*60)) * time.Minute

	vibe := &models.Vibe{
		Content:   gofakeit.HipsterParagraph(1, 2, 8, " "),
		Privacy:   privacyTiers[s.rng.Intn(len(privacyTiers))],
		UserID:    user.ID,
		CreatedAt: time.Now().Add(-back),
	}
	if s.rng.Intn(3) == 0 {
		vibe.ImageURL = fmt.Sprintf("https://picsum.photos/seed/%s/800/800", gofakeit.UUID())
	}

	if err := s.db.Create(vibe).Error; err != nil {
		return nil, err
	}
	return vibe, nil
}

// SeedSocialMesh creates numUsers users and wires friendship edges between
// them, roughly two thirds accepted and one third still pending.
func (s *Seeder) SeedSocialMesh(numUsers int) ([]*models.User, error) {
	users := make([]*models.User, 0, numUsers)
	for i := 0; i < numUsers; i++ {
		user, err := s.CreateUser()
		if err != nil {
			return nil, fmt.Errorf("creating user %d: %w", i, err)
		}
		users = append(users, user)
	}

	edges := 0
	for i := range users {
		for j := i + 1; j < len(users); j++ {
			if s.rng.Intn(4) != 0 {
				continue
			}
			status := models.FriendshipStatusAccepted
			if s.rng.Intn(3) == 0 {
				status = models.FriendshipStatusPending
			}
			edge := &models.Friendship{
				RequesterID: users[i].ID,
				ReceiverID:  users[j].ID,
				Status:      status,
			}
			if err := s.db.Create(edge).Error; err != nil {
				return nil, fmt.Errorf("creating friendship: %w", err)
			}
			edges++
		}
	}

	log.Printf("seeded %d users and %d friendship edges", len(users), edges)
	return users, nil
}

// SeedEngagement creates numVibes vibes spread across the users, then
// sprinkles likes and comments from their friends.
func (s *Seeder) SeedEngagement(users []*models.User, numVibes int) error {
	if len(users) == 0 {
		return fmt.Errorf("no users to seed vibes for")
	}

	vibes := make([]*models.Vibe, 0, numVibes)
	for i := 0; i < numVibes; i++ {
		owner := users[s.rng.Intn(len(users))]
		vibe, err := s.CreateVibe(owner, 90)
		if err != nil {
			return fmt.Errorf("creating vibe %d: %w", i, err)
		}
		vibes = append(vibes, vibe)
	}

	likes, comments := 0, 0
	for _, vibe := range vibes {
		for _, user := range users {
			if user.ID == vibe.UserID {
				continue
			}
			if s.rng.Intn(10) == 0 {
				like := &models.Like{UserID: user.ID, VibeID: vibe.ID}
				if err := s.db.Create(like).Error; err != nil {
					return fmt.Errorf("creating like: %w", err)
				}
				likes++
			}
			if s.rng.Intn(20) == 0 {
				comment := &models.Comment{
					Content: gofakeit.HipsterSentence(8),
					UserID:  user.ID,
					VibeID:  vibe.ID,
				}
				if err := s.db.Create(comment).Error; err != nil {
					return fmt.Errorf("creating comment: %w", err)
				}
				comments++
			}
		}
	}

	log.Printf("seeded %d vibes, %d likes, %d comments", len(vibes), likes, comments)
	return nil
}
