package models

// VibeExport is the serializable form of one vibe inside a data snapshot.
// CreatedAt is carried as a string so snapshots survive round-trips through
// systems with differing timestamp formats.
type VibeExport struct {
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

// DataExport is a portable snapshot of a user's bio, vibes and accepted
// friend list. A nil Bio on import means "leave the current bio untouched".
type DataExport struct {
	Username string       `json:"username"`
	Email    string       `json:"email"`
	Bio      *string      `json:"bio"`
	Vibes    []VibeExport `json:"vibes"`
	Friends  []string     `json:"friends"`
}

// ImportResult reports how many entities an import actually created.
// Items already present (same owner, content and timestamp, or an existing
// friendship edge) are skipped and not counted.
type ImportResult struct {
	ImportedVibes   int `json:"imported_vibes"`
	ImportedFriends int `json:"imported_friends"`
}
