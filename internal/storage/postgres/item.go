package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrItemNotFound is returned when an item lookup yields no results.
var ErrItemNotFound = errors.New("item not found")

// ErrInvalidQuery is returned when a search query fails input validation.
var ErrInvalidQuery = errors.New("invalid search query")

// searchResultCap bounds item search results.
const searchResultCap = 50

// maxQueryLength bounds user-supplied search terms.
const maxQueryLength = 100

// Item is one catalog entry: a base item or a notable unique.
type Item struct {
	ID        int64
	Name      string
	BaseType  string
	ItemClass string
	Rarity    string
	// Properties is the raw JSON property blob as imported.
	Properties []byte
}

// ItemFilters narrows an item search.
type ItemFilters struct {
	ItemClass string
	Rarity    string
}

// ItemRepository provides item catalog persistence operations.
type ItemRepository struct {
	db *pgxpool.Pool
}

// NewItemRepository creates an ItemRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewItemRepository(db *pgxpool.Pool) *ItemRepository {
	return &ItemRepository{db: db}
}

// Search finds items whose name contains the query, case-insensitively.
// User input is sanitized and LIKE wildcards are escaped so search terms can
// never act as patterns. At most 50 rows are returned.
//
// Precondition: query must be non-empty after sanitization.
// Postcondition: Returns matching items ordered by name, or ErrInvalidQuery.
func (r *ItemRepository) Search(ctx context.Context, query string, filters ItemFilters) ([]Item, error) {
	query = sanitizeTerm(query)
	if query == "" || len(query) > maxQueryLength {
		return nil, ErrInvalidQuery
	}

	sql := `
		SELECT id, name, base_type, item_class, rarity, properties
		FROM items
		WHERE name ILIKE '%' || $1 || '%' ESCAPE '\'`
	args := []any{escapeLikePattern(query)}

	if c := sanitizeTerm(filters.ItemClass); c != "" {
		args = append(args, c)
		sql += fmt.Sprintf(" AND item_class = $%d", len(args))
	}
	if rar := sanitizeTerm(filters.Rarity); rar != "" {
		args = append(args, rar)
		sql += fmt.Sprintf(" AND rarity = $%d", len(args))
	}
	args = append(args, searchResultCap)
	sql += fmt.Sprintf(" ORDER BY name LIMIT $%d", len(args))

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("searching items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.Name, &it.BaseType, &it.ItemClass, &it.Rarity, &it.Properties); err != nil {
			return nil, fmt.Errorf("scanning item row: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading item rows: %w", err)
	}
	return items, nil
}

// Get returns the item with the given ID.
//
// Postcondition: Returns ErrItemNotFound when no row matches.
func (r *ItemRepository) Get(ctx context.Context, id int64) (Item, error) {
	var it Item
	err := r.db.QueryRow(ctx, `
		SELECT id, name, base_type, item_class, rarity, properties
		FROM items WHERE id = $1`, id,
	).Scan(&it.ID, &it.Name, &it.BaseType, &it.ItemClass, &it.Rarity, &it.Properties)
	if errors.Is(err, pgx.ErrNoRows) {
		return Item{}, ErrItemNotFound
	}
	if err != nil {
		return Item{}, fmt.Errorf("getting item %d: %w", id, err)
	}
	return it, nil
}

// Insert adds an item to the catalog and returns its assigned ID.
//
// Precondition: name must be non-empty.
func (r *ItemRepository) Insert(ctx context.Context, it Item) (int64, error) {
	props := it.Properties
	if len(props) == 0 {
		props = []byte("{}")
	}
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO items (name, base_type, item_class, rarity, properties)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		it.Name, it.BaseType, it.ItemClass, it.Rarity, props,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting item: %w", err)
	}
	return id, nil
}

// sanitizeTerm strips control characters and anything outside the allowed
// search alphabet, then trims surrounding whitespace. Upstream item names use
// letters, digits, spaces, and light punctuation only.
func sanitizeTerm(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsControl(r):
		case unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r):
			b.WriteRune(r)
		case strings.ContainsRune("-_',.", r):
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// escapeLikePattern escapes LIKE wildcards so user input cannot inject
// pattern metacharacters. The escape character itself is escaped first.
func escapeLikePattern(pattern string) string {
	pattern = strings.ReplaceAll(pattern, `\`, `\\`)
	pattern = strings.ReplaceAll(pattern, "%", `\%`)
	pattern = strings.ReplaceAll(pattern, "_", `\_`)
	return pattern
}
