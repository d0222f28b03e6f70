package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrBuildNotFound is returned when a saved build lookup yields no results.
var ErrBuildNotFound = errors.New("build not found")

// ErrInvalidBuild is returned when a build fails input validation.
var ErrInvalidBuild = errors.New("invalid build")

// maxBuildNameLength bounds user-supplied build names.
const maxBuildNameLength = 100

// SavedBuild is a persisted character snapshot with its evaluation context.
type SavedBuild struct {
	ID     uuid.UUID
	Name   string
	UserID string
	// CharacterData is the JSON character snapshot as supplied by the caller.
	CharacterData []byte
	CreatedAt     time.Time
}

// BuildRepository provides saved-build persistence operations.
type BuildRepository struct {
	db *pgxpool.Pool
}

// NewBuildRepository creates a BuildRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewBuildRepository(db *pgxpool.Pool) *BuildRepository {
	return &BuildRepository{db: db}
}

// Save persists a build snapshot and returns it with ID and timestamp set.
//
// Precondition: b.Name must be non-empty after sanitization; b.CharacterData
// must be valid JSON (enforced by the JSONB column).
// Postcondition: Returns the stored build with a fresh UUID, or ErrInvalidBuild.
func (r *BuildRepository) Save(ctx context.Context, b SavedBuild) (SavedBuild, error) {
	b.Name = sanitizeTerm(b.Name)
	b.UserID = sanitizeTerm(b.UserID)
	if b.Name == "" || len(b.Name) > maxBuildNameLength {
		return SavedBuild{}, ErrInvalidBuild
	}
	if len(b.CharacterData) == 0 {
		return SavedBuild{}, ErrInvalidBuild
	}

	b.ID = uuid.New()
	err := r.db.QueryRow(ctx, `
		INSERT INTO saved_builds (id, name, user_id, character_data)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`,
		b.ID, b.Name, b.UserID, b.CharacterData,
	).Scan(&b.CreatedAt)
	if err != nil {
		return SavedBuild{}, fmt.Errorf("inserting build: %w", err)
	}
	return b, nil
}

// Get returns the saved build with the given ID.
//
// Postcondition: Returns ErrBuildNotFound when no row matches.
func (r *BuildRepository) Get(ctx context.Context, id uuid.UUID) (SavedBuild, error) {
	var b SavedBuild
	err := r.db.QueryRow(ctx, `
		SELECT id, name, user_id, character_data, created_at
		FROM saved_builds WHERE id = $1`, id,
	).Scan(&b.ID, &b.Name, &b.UserID, &b.CharacterData, &b.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return SavedBuild{}, ErrBuildNotFound
	}
	if err != nil {
		return SavedBuild{}, fmt.Errorf("getting build %s: %w", id, err)
	}
	return b, nil
}

// List returns the builds saved by userID, newest first. An empty userID
// lists builds saved without an owner.
func (r *BuildRepository) List(ctx context.Context, userID string) ([]SavedBuild, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, user_id, character_data, created_at
		FROM saved_builds WHERE user_id = $1
		ORDER BY created_at DESC`, sanitizeTerm(userID))
	if err != nil {
		return nil, fmt.Errorf("listing builds: %w", err)
	}
	defer rows.Close()

	var builds []SavedBuild
	for rows.Next() {
		var b SavedBuild
		if err := rows.Scan(&b.ID, &b.Name, &b.UserID, &b.CharacterData, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning build row: %w", err)
		}
		builds = append(builds, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading build rows: %w", err)
	}
	return builds, nil
}
