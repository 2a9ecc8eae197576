package service

import (
	"context"
	"testing"
	"time"

	"vibelet/internal/models"
	"vibelet/internal/repository"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupExportTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Vibe{},
		&models.Comment{},
		&models.Like{},
		&models.Friendship{},
	); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return db
}

func newExportService(db *gorm.DB) *ExportService {
	return NewExportService(
		db,
		repository.NewUserRepository(db),
		repository.NewVibeRepository(db),
		repository.NewFriendRepository(db),
	)
}

func createExportUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Email: username + "@example.com", Password: "pw"}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

func TestExportSnapshotShape(t *testing.T) {
	db := setupExportTestDB(t)
	svc := newExportService(db)
	ctx := context.Background()

	owner := createExportUser(t, db, "owner")
	owner.Bio = "hello there"
	if err := db.Save(owner).Error; err != nil {
		t.Fatalf("save bio: %v", err)
	}
	friend := createExportUser(t, db, "buddy")
	pending := createExportUser(t, db, "maybe")

	for _, f := range []models.Friendship{
		{RequesterID: owner.ID, ReceiverID: friend.ID, Status: models.FriendshipStatusAccepted},
		{RequesterID: pending.ID, ReceiverID: owner.ID, Status: models.FriendshipStatusPending},
	} {
		if err := db.Create(&f).Error; err != nil {
			t.Fatalf("create friendship: %v", err)
		}
	}

	for _, privacy := range []models.PrivacyStatus{models.PrivacyPublic, models.PrivacyPrivate} {
		vibe := models.Vibe{Content: "a " + string(privacy) + " vibe", Privacy: privacy, UserID: owner.ID}
		if err := db.Create(&vibe).Error; err != nil {
			t.Fatalf("create vibe: %v", err)
		}
	}

	export, err := svc.Export(ctx, owner.ID)
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	if export.Username != "owner" || export.Email != "owner@example.com" {
		t.Fatalf("wrong identity in snapshot: %#v", export)
	}
	if export.Bio == nil || *export.Bio != "hello there" {
		t.Fatalf("expected bio in snapshot, got %v", export.Bio)
	}
	// All vibes regardless of privacy.
	if len(export.Vibes) != 2 {
		t.Fatalf("expected 2 vibes, got %d", len(export.Vibes))
	}
	// Accepted friends only; the pending edge must not leak.
	if len(export.Friends) != 1 || export.Friends[0] != "buddy" {
		t.Fatalf("expected friends=[buddy], got %v", export.Friends)
	}
}

func TestImportCreatesEntitiesPrivateAndAccepted(t *testing.T) {
	db := setupExportTestDB(t)
	svc := newExportService(db)
	ctx := context.Background()

	owner := createExportUser(t, db, "owner")
	createExportUser(t, db, "buddy")

	result, err := svc.Import(ctx, owner.ID, &models.DataExport{
		Username: "owner",
		Email:    "owner@example.com",
		Vibes: []models.VibeExport{
			{Content: "from the old days", CreatedAt: "2024-03-01T10:00:00Z"},
		},
		Friends: []string{"buddy"},
	})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if result.ImportedVibes != 1 || result.ImportedFriends != 1 {
		t.Fatalf("expected 1/1 imported, got %+v", result)
	}

	var vibe models.Vibe
	if err := db.Where("user_id = ?", owner.ID).First(&vibe).Error; err != nil {
		t.Fatalf("imported vibe missing: %v", err)
	}
	if vibe.Privacy != models.PrivacyPrivate {
		t.Fatalf("imported vibes must be PRIVATE, got %s", vibe.Privacy)
	}
	wantTime := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	if !vibe.CreatedAt.UTC().Equal(wantTime) {
		t.Fatalf("expected created_at %v, got %v", wantTime, vibe.CreatedAt.UTC())
	}

	var edge models.Friendship
	if err := db.Where("requester_id = ?", owner.ID).First(&edge).Error; err != nil {
		t.Fatalf("imported friendship missing: %v", err)
	}
	if edge.Status != models.FriendshipStatusAccepted {
		t.Fatalf("imported friendship must be ACCEPTED, got %s", edge.Status)
	}
}

func TestImportReplayIsIdempotent(t *testing.T) {
	db := setupExportTestDB(t)
	svc := newExportService(db)
	ctx := context.Background()

	owner := createExportUser(t, db, "owner")
	createExportUser(t, db, "buddy")

	snapshot := &models.DataExport{
		Username: "owner",
		Email:    "owner@example.com",
		Vibes: []models.VibeExport{
			{Content: "repeat me", CreatedAt: "2024-03-01T10:00:00Z"},
		},
		Friends: []string{"buddy"},
	}

	first, err := svc.Import(ctx, owner.ID, snapshot)
	if err != nil {
		t.Fatalf("first import: %v", err)
	}
	second, err := svc.Import(ctx, owner.ID, snapshot)
	if err != nil {
		t.Fatalf("second import: %v", err)
	}

	if first.ImportedVibes != 1 || first.ImportedFriends != 1 {
		t.Fatalf("first import wrong counts: %+v", first)
	}
	if second.ImportedVibes != 0 || second.ImportedFriends != 0 {
		t.Fatalf("replay must create nothing, got %+v", second)
	}

	var vibeCount, edgeCount int64
	db.Model(&models.Vibe{}).Count(&vibeCount)
	db.Model(&models.Friendship{}).Count(&edgeCount)
	if vibeCount != 1 || edgeCount != 1 {
		t.Fatalf("replay duplicated rows: vibes=%d edges=%d", vibeCount, edgeCount)
	}
}

func TestImportBioOverwriteRules(t *testing.T) {
	db := setupExportTestDB(t)
	svc := newExportService(db)
	ctx := context.Background()

	owner := createExportUser(t, db, "owner")
	owner.Bio = "existing"
	if err := db.Save(owner).Error; err != nil {
		t.Fatalf("save bio: %v", err)
	}

	// Nil bio leaves the current one untouched.
	if _, err := svc.Import(ctx, owner.ID, &models.DataExport{Username: "owner"}); err != nil {
		t.Fatalf("import: %v", err)
	}
	var reloaded models.User
	if err := db.First(&reloaded, owner.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Bio != "existing" {
		t.Fatalf("nil bio must not overwrite, got %q", reloaded.Bio)
	}

	// A present bio, even empty, replaces the current one.
	empty := ""
	if _, err := svc.Import(ctx, owner.ID, &models.DataExport{Username: "owner", Bio: &empty}); err != nil {
		t.Fatalf("import: %v", err)
	}
	if err := db.First(&reloaded, owner.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Bio != "" {
		t.Fatalf("present bio must overwrite, got %q", reloaded.Bio)
	}
}

func TestImportSkipsUnknownAndSelfFriends(t *testing.T) {
	db := setupExportTestDB(t)
	svc := newExportService(db)
	ctx := context.Background()

	owner := createExportUser(t, db, "owner")

	result, err := svc.Import(ctx, owner.ID, &models.DataExport{
		Username: "owner",
		Friends:  []string{"ghost", "owner"},
	})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if result.ImportedFriends != 0 {
		t.Fatalf("unknown and self entries must be skipped, got %d", result.ImportedFriends)
	}

	var edgeCount int64
	db.Model(&models.Friendship{}).Count(&edgeCount)
	if edgeCount != 0 {
		t.Fatalf("no edges should exist, got %d", edgeCount)
	}
}

func TestImportBadTimestampFallsBackToNow(t *testing.T) {
	db := setupExportTestDB(t)
	svc := newExportService(db)
	ctx := context.Background()

	owner := createExportUser(t, db, "owner")

	before := time.Now().Add(-time.Minute)
	result, err := svc.Import(ctx, owner.ID, &models.DataExport{
		Username: "owner",
		Vibes: []models.VibeExport{
			{Content: "mangled clock", CreatedAt: "not-a-timestamp"},
		},
	})
	if err != nil {
		t.Fatalf("one bad timestamp must not sink the import: %v", err)
	}
	if result.ImportedVibes != 1 {
		t.Fatalf("expected the vibe to import anyway, got %+v", result)
	}

	var vibe models.Vibe
	if err := db.Where("user_id = ?", owner.ID).First(&vibe).Error; err != nil {
		t.Fatalf("imported vibe missing: %v", err)
	}
	if vibe.CreatedAt.Before(before) {
		t.Fatalf("expected a recent created_at, got %v", vibe.CreatedAt)
	}
}

func TestImportLegacyTimestampFormats(t *testing.T) {
	// Older zoneless snapshots carry second precision, and their writers
	// drop the seconds entirely when they are zero. Both must parse to the
	// same instant so a replayed import deduplicates instead of duplicating.
	tests := []struct {
		name      string
		createdAt string
		want      time.Time
	}{
		{"With Seconds", "2023-07-15T08:30:00", time.Date(2023, 7, 15, 8, 30, 0, 0, time.UTC)},
		{"Without Seconds", "2023-07-15T08:30", time.Date(2023, 7, 15, 8, 30, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := setupExportTestDB(t)
			svc := newExportService(db)
			ctx := context.Background()

			owner := createExportUser(t, db, "owner")
			snapshot := &models.DataExport{
				Username: "owner",
				Vibes: []models.VibeExport{
					{Content: "older snapshot", CreatedAt: tt.createdAt},
				},
			}

			if _, err := svc.Import(ctx, owner.ID, snapshot); err != nil {
				t.Fatalf("import: %v", err)
			}

			var vibe models.Vibe
			if err := db.Where("user_id = ?", owner.ID).First(&vibe).Error; err != nil {
				t.Fatalf("imported vibe missing: %v", err)
			}
			if !vibe.CreatedAt.UTC().Equal(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, vibe.CreatedAt.UTC())
			}

			replay, err := svc.Import(ctx, owner.ID, snapshot)
			if err != nil {
				t.Fatalf("replayed import: %v", err)
			}
			if replay.ImportedVibes != 0 {
				t.Fatalf("replay should dedup the vibe, got %+v", replay)
			}

			var count int64
			if err := db.Model(&models.Vibe{}).Where("user_id = ?", owner.ID).Count(&count).Error; err != nil {
				t.Fatalf("count vibes: %v", err)
			}
			if count != 1 {
				t.Fatalf("expected a single vibe after replay, got %d", count)
			}
		})
	}
}
