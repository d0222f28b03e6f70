package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dochoss/poe2-mcp/internal/storage/postgres"
)

// errStorageUnavailable is the tool-level answer when no database is
// configured; the calculators keep working regardless.
var errStorageUnavailable = fmt.Errorf("item storage is not configured on this server")

// SearchItemsInput is the search_items tool input.
type SearchItemsInput struct {
	Query     string `json:"query" jsonschema:"item name search term"`
	ItemClass string `json:"item_class,omitempty" jsonschema:"optional item class filter"`
	Rarity    string `json:"rarity,omitempty" jsonschema:"optional rarity filter"`
}

// ItemResult is one item in a search result.
type ItemResult struct {
	ID         int64           `json:"id" jsonschema:"catalog item id"`
	Name       string          `json:"name" jsonschema:"item name"`
	BaseType   string          `json:"base_type" jsonschema:"base item type"`
	ItemClass  string          `json:"item_class" jsonschema:"item class"`
	Rarity     string          `json:"rarity" jsonschema:"item rarity"`
	Properties json.RawMessage `json:"properties,omitempty" jsonschema:"raw item property blob"`
}

// SearchItemsResult is the search_items tool output.
type SearchItemsResult struct {
	Items []ItemResult `json:"items" jsonschema:"matching items, at most 50"`
}

func searchItemsTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "search_items",
		Description: "Searches the item catalog by name with optional class and rarity filters",
	}
}

func (s *Server) searchItems(ctx context.Context, _ *mcp.CallToolRequest, input SearchItemsInput) (*mcp.CallToolResult, SearchItemsResult, error) {
	if s.items == nil {
		return nil, SearchItemsResult{}, errStorageUnavailable
	}

	items, err := s.items.Search(ctx, input.Query, postgres.ItemFilters{
		ItemClass: input.ItemClass,
		Rarity:    input.Rarity,
	})
	if err != nil {
		return nil, SearchItemsResult{}, fmt.Errorf("searching items: %w", err)
	}

	out := SearchItemsResult{Items: make([]ItemResult, len(items))}
	for i, it := range items {
		out.Items[i] = ItemResult{
			ID:         it.ID,
			Name:       it.Name,
			BaseType:   it.BaseType,
			ItemClass:  it.ItemClass,
			Rarity:     it.Rarity,
			Properties: json.RawMessage(it.Properties),
		}
	}
	return nil, out, nil
}

// SaveBuildInput is the save_build tool input.
type SaveBuildInput struct {
	Name   string         `json:"name" jsonschema:"build name"`
	UserID string         `json:"user_id,omitempty" jsonschema:"optional owner identifier"`
	// Character is the full character snapshot to persist; stored verbatim.
	Character map[string]any `json:"character" jsonschema:"character snapshot to persist"`
}

// SaveBuildResult is the save_build tool output.
type SaveBuildResult struct {
	ID        string `json:"id" jsonschema:"assigned build id"`
	CreatedAt string `json:"created_at" jsonschema:"creation timestamp, RFC 3339"`
}

func saveBuildTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "save_build",
		Description: "Persists a character build snapshot for later retrieval",
	}
}

func (s *Server) saveBuild(ctx context.Context, _ *mcp.CallToolRequest, input SaveBuildInput) (*mcp.CallToolResult, SaveBuildResult, error) {
	if s.builds == nil {
		return nil, SaveBuildResult{}, errStorageUnavailable
	}
	if len(input.Character) == 0 {
		return nil, SaveBuildResult{}, fmt.Errorf("character snapshot is required")
	}

	data, err := json.Marshal(input.Character)
	if err != nil {
		return nil, SaveBuildResult{}, fmt.Errorf("encoding character snapshot: %w", err)
	}

	saved, err := s.builds.Save(ctx, postgres.SavedBuild{
		Name:          input.Name,
		UserID:        input.UserID,
		CharacterData: data,
	})
	if err != nil {
		return nil, SaveBuildResult{}, fmt.Errorf("saving build: %w", err)
	}

	return nil, SaveBuildResult{
		ID:        saved.ID.String(),
		CreatedAt: saved.CreatedAt.Format(time.RFC3339),
	}, nil
}

// ListBuildsInput is the list_builds tool input.
type ListBuildsInput struct {
	UserID string `json:"user_id,omitempty" jsonschema:"owner identifier; omit for unowned builds"`
}

// BuildSummary is one saved build in a listing.
type BuildSummary struct {
	ID        string `json:"id" jsonschema:"build id"`
	Name      string `json:"name" jsonschema:"build name"`
	CreatedAt string `json:"created_at" jsonschema:"creation timestamp, RFC 3339"`
}

// ListBuildsResult is the list_builds tool output.
type ListBuildsResult struct {
	Builds []BuildSummary `json:"builds" jsonschema:"saved builds, newest first"`
}

func listBuildsTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "list_builds",
		Description: "Lists saved build snapshots, newest first",
	}
}

func (s *Server) listBuilds(ctx context.Context, _ *mcp.CallToolRequest, input ListBuildsInput) (*mcp.CallToolResult, ListBuildsResult, error) {
	if s.builds == nil {
		return nil, ListBuildsResult{}, errStorageUnavailable
	}

	builds, err := s.builds.List(ctx, input.UserID)
	if err != nil {
		return nil, ListBuildsResult{}, fmt.Errorf("listing builds: %w", err)
	}

	out := ListBuildsResult{Builds: make([]BuildSummary, len(builds))}
	for i, b := range builds {
		out.Builds[i] = BuildSummary{
			ID:        b.ID.String(),
			Name:      b.Name,
			CreatedAt: b.CreatedAt.Format(time.RFC3339),
		}
	}
	return nil, out, nil
}

// GetBuildInput is the get_build tool input.
type GetBuildInput struct {
	ID string `json:"id" jsonschema:"build id"`
}

// GetBuildResult is the get_build tool output.
type GetBuildResult struct {
	ID        string          `json:"id" jsonschema:"build id"`
	Name      string          `json:"name" jsonschema:"build name"`
	UserID    string          `json:"user_id,omitempty" jsonschema:"owner identifier"`
	Character json.RawMessage `json:"character" jsonschema:"the persisted character snapshot"`
	CreatedAt string          `json:"created_at" jsonschema:"creation timestamp, RFC 3339"`
}

func getBuildTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "get_build",
		Description: "Retrieves a saved build snapshot by id",
	}
}

func (s *Server) getBuild(ctx context.Context, _ *mcp.CallToolRequest, input GetBuildInput) (*mcp.CallToolResult, GetBuildResult, error) {
	if s.builds == nil {
		return nil, GetBuildResult{}, errStorageUnavailable
	}

	id, err := uuid.Parse(input.ID)
	if err != nil {
		return nil, GetBuildResult{}, fmt.Errorf("invalid build id %q", input.ID)
	}

	b, err := s.builds.Get(ctx, id)
	if err != nil {
		return nil, GetBuildResult{}, fmt.Errorf("getting build: %w", err)
	}

	return nil, GetBuildResult{
		ID:        b.ID.String(),
		Name:      b.Name,
		UserID:    b.UserID,
		Character: json.RawMessage(b.CharacterData),
		CreatedAt: b.CreatedAt.Format(time.RFC3339),
	}, nil
}
