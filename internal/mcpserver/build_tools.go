package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/dochoss/poe2-mcp/internal/analyzer"
	"github.com/dochoss/poe2-mcp/internal/build/defense"
	"github.com/dochoss/poe2-mcp/internal/build/upgrade"
)

// ComputeEHPInput is the compute_ehp tool input.
type ComputeEHPInput struct {
	Profile ProfileInput `json:"profile" jsonschema:"the character's defensive stats"`
	Threat  string       `json:"threat,omitempty" jsonschema:"named threat profile; omit for the default"`
}

// ComputeEHPResult is the compute_ehp tool output.
type ComputeEHPResult struct {
	EHP map[string]float64 `json:"ehp" jsonschema:"effective health by damage type"`
	// Weighted collapses the per-type values using the threat profile weights.
	Weighted float64 `json:"weighted" jsonschema:"threat-weighted scalar effective health"`
}

func computeEHPTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "compute_ehp",
		Description: "Computes per-damage-type effective health for a character's defensive stats",
	}
}

func (s *Server) computeEHP(ctx context.Context, _ *mcp.CallToolRequest, input ComputeEHPInput) (*mcp.CallToolResult, ComputeEHPResult, error) {
	threat, err := s.resolveThreat(input.Threat)
	if err != nil {
		return nil, ComputeEHPResult{}, err
	}

	result := defense.ComputeEffectiveHealth(input.Profile.toProfile(), threat)
	out := ComputeEHPResult{
		EHP:      make(map[string]float64, len(result)),
		Weighted: finite(defense.WeightedEHP(result, threat)),
	}
	for dt, ehp := range result {
		out.EHP[dt.String()] = finite(ehp)
	}
	return nil, out, nil
}

// EvaluateUpgradeInput is the evaluate_upgrade tool input.
type EvaluateUpgradeInput struct {
	Base      *ProfileInput `json:"base_profile" jsonschema:"the character's stats without the slot under evaluation"`
	Current   GearInput     `json:"current" jsonschema:"the currently equipped item's contribution"`
	Candidate GearInput     `json:"candidate" jsonschema:"the candidate item's contribution"`
	Threat    string        `json:"threat,omitempty" jsonschema:"named threat profile; omit for the default"`
	Price     *float64      `json:"price,omitempty" jsonschema:"candidate market price in the trade currency"`
}

func evaluateUpgradeTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "evaluate_upgrade",
		Description: "Scores replacing the current item with a candidate: EHP/DPS deltas, priority score, tier, warnings",
	}
}

func (s *Server) evaluateUpgrade(ctx context.Context, _ *mcp.CallToolRequest, input EvaluateUpgradeInput) (*mcp.CallToolResult, UpgradeResult, error) {
	if err := validateProfilePresent(input.Base); err != nil {
		return nil, UpgradeResult{}, err
	}
	threat, err := s.resolveThreat(input.Threat)
	if err != nil {
		return nil, UpgradeResult{}, err
	}

	base := input.Base.toProfile()
	value, err := s.evaluator.EvaluateUpgrade(input.Current.toGear(), input.Candidate.toGear(), &base, threat, input.Price)
	if err != nil {
		return nil, UpgradeResult{}, err
	}

	s.logger.Debug("evaluated upgrade",
		zap.Float64("score", value.PriorityScore),
		zap.Stringer("tier", value.Tier),
		zap.Int("warnings", len(value.Warnings)),
	)
	return nil, toUpgradeResult(value), nil
}

// CandidateInput is one item in a rank_upgrades batch.
type CandidateInput struct {
	Name  string    `json:"name" jsonschema:"label for this candidate in the ranked output"`
	Gear  GearInput `json:"gear" jsonschema:"the candidate item's contribution"`
	Price *float64  `json:"price,omitempty" jsonschema:"market price in the trade currency"`
}

// RankUpgradesInput is the rank_upgrades tool input.
type RankUpgradesInput struct {
	Base       *ProfileInput    `json:"base_profile" jsonschema:"the character's stats without the slot under evaluation"`
	Current    GearInput        `json:"current" jsonschema:"the currently equipped item's contribution"`
	Candidates []CandidateInput `json:"candidates" jsonschema:"the items to rank"`
	Threat     string           `json:"threat,omitempty" jsonschema:"named threat profile; omit for the default"`
	TopK       int              `json:"top_k,omitempty" jsonschema:"number of results to return; omit for the server default"`
}

// RankedResult is one entry in the ranked output.
type RankedResult struct {
	Name   string        `json:"name" jsonschema:"candidate label"`
	Index  int           `json:"index" jsonschema:"candidate position in the request"`
	Result UpgradeResult `json:"result" jsonschema:"the candidate's evaluation"`
}

// RankUpgradesResult is the rank_upgrades tool output.
type RankUpgradesResult struct {
	Ranked []RankedResult `json:"ranked" jsonschema:"candidates sorted descending by priority score"`
}

func rankUpgradesTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "rank_upgrades",
		Description: "Evaluates a batch of candidate items against the same character and returns the best, ranked",
	}
}

func (s *Server) rankUpgrades(ctx context.Context, _ *mcp.CallToolRequest, input RankUpgradesInput) (*mcp.CallToolResult, RankUpgradesResult, error) {
	if err := validateProfilePresent(input.Base); err != nil {
		return nil, RankUpgradesResult{}, err
	}
	threat, err := s.resolveThreat(input.Threat)
	if err != nil {
		return nil, RankUpgradesResult{}, err
	}

	candidates := make([]upgrade.Candidate, len(input.Candidates))
	for i, c := range input.Candidates {
		candidates[i] = upgrade.Candidate{Name: c.Name, Gear: c.Gear.toGear(), Price: c.Price}
	}

	topK := input.TopK
	if topK <= 0 {
		topK = s.topK
	}

	base := input.Base.toProfile()
	ranked, err := s.evaluator.EvaluateMany(input.Current.toGear(), candidates, &base, threat, topK)
	if err != nil {
		return nil, RankUpgradesResult{}, err
	}

	out := RankUpgradesResult{Ranked: make([]RankedResult, len(ranked))}
	for i, r := range ranked {
		out.Ranked[i] = RankedResult{Name: r.Name, Index: r.Index, Result: toUpgradeResult(r.Value)}
	}
	return nil, out, nil
}

// CompareItemsInput is the compare_items tool input.
type CompareItemsInput struct {
	Base   *ProfileInput `json:"base_profile" jsonschema:"the character's stats without the slot under evaluation"`
	ItemA  GearInput     `json:"item_a" jsonschema:"first item"`
	ItemB  GearInput     `json:"item_b" jsonschema:"second item"`
	Threat string        `json:"threat,omitempty" jsonschema:"named threat profile; omit for the default"`
}

// CompareItemsResult is the compare_items tool output.
type CompareItemsResult struct {
	Winner   string        `json:"winner" jsonschema:"a, b, or tie"`
	ScoreA   float64       `json:"score_a" jsonschema:"first item's priority score"`
	ScoreB   float64       `json:"score_b" jsonschema:"second item's priority score"`
	ScoreGap float64       `json:"score_gap" jsonschema:"winner score minus loser score"`
	ItemA    UpgradeResult `json:"item_a" jsonschema:"first item's evaluation from an empty slot"`
	ItemB    UpgradeResult `json:"item_b" jsonschema:"second item's evaluation from an empty slot"`
}

func compareItemsTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "compare_items",
		Description: "Compares two items head-to-head for the same slot on the same character",
	}
}

func (s *Server) compareItems(ctx context.Context, _ *mcp.CallToolRequest, input CompareItemsInput) (*mcp.CallToolResult, CompareItemsResult, error) {
	if err := validateProfilePresent(input.Base); err != nil {
		return nil, CompareItemsResult{}, err
	}
	threat, err := s.resolveThreat(input.Threat)
	if err != nil {
		return nil, CompareItemsResult{}, err
	}

	base := input.Base.toProfile()
	cmp, err := s.evaluator.CompareTwo(input.ItemA.toGear(), input.ItemB.toGear(), &base, threat)
	if err != nil {
		return nil, CompareItemsResult{}, err
	}

	return nil, CompareItemsResult{
		Winner:   cmp.Winner,
		ScoreA:   cmp.ScoreA,
		ScoreB:   cmp.ScoreB,
		ScoreGap: cmp.ScoreGap,
		ItemA:    toUpgradeResult(cmp.A),
		ItemB:    toUpgradeResult(cmp.B),
	}, nil
}

// EquippedItemInput is one equipped gear reference in an analysis request.
type EquippedItemInput struct {
	Slot string `json:"slot" jsonschema:"equipment slot"`
	Name string `json:"name" jsonschema:"item name"`
}

// AnalyzeCharacterInput is the analyze_character tool input.
type AnalyzeCharacterInput struct {
	Name    string              `json:"name,omitempty" jsonschema:"character name"`
	League  string              `json:"league,omitempty" jsonschema:"league the character plays in"`
	Profile ProfileInput        `json:"profile" jsonschema:"the character's defensive stats"`
	Skills  []string            `json:"skills,omitempty" jsonschema:"equipped skill names"`
	Items   []EquippedItemInput `json:"items,omitempty" jsonschema:"equipped gear"`
	Threat  string              `json:"threat,omitempty" jsonschema:"named threat profile; omit for the default"`
}

// RecommendationResult is one improvement suggestion.
type RecommendationResult struct {
	Priority       string   `json:"priority" jsonschema:"suggestion priority"`
	Category       string   `json:"category" jsonschema:"suggestion category"`
	Title          string   `json:"title" jsonschema:"short suggestion title"`
	Description    string   `json:"description" jsonschema:"what to change and why"`
	SuggestedSlots []string `json:"suggested_slots,omitempty" jsonschema:"gear slots that commonly carry the needed stat"`
}

// AnalyzeCharacterResult is the analyze_character tool output.
type AnalyzeCharacterResult struct {
	CharacterName   string                 `json:"character_name,omitempty" jsonschema:"character name"`
	League          string                 `json:"league,omitempty" jsonschema:"league"`
	Quality         string                 `json:"quality" jsonschema:"defensive quality tier: good, weak, or critical"`
	EffectiveHP     float64                `json:"effective_hp" jsonschema:"threat-weighted scalar effective health"`
	EHPByType       map[string]float64     `json:"ehp_by_type" jsonschema:"effective health by damage type"`
	Issues          []string               `json:"issues,omitempty" jsonschema:"defensive shortcomings found"`
	SkillCount      int                    `json:"skill_count" jsonschema:"number of equipped skills"`
	ItemCount       int                    `json:"item_count" jsonschema:"number of equipped items"`
	Recommendations []RecommendationResult `json:"recommendations,omitempty" jsonschema:"prioritized improvement suggestions"`
}

func analyzeCharacterTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "analyze_character",
		Description: "Assesses a character's defenses and returns prioritized improvement recommendations",
	}
}

func (s *Server) analyzeCharacter(ctx context.Context, _ *mcp.CallToolRequest, input AnalyzeCharacterInput) (*mcp.CallToolResult, AnalyzeCharacterResult, error) {
	threat, err := s.resolveThreat(input.Threat)
	if err != nil {
		return nil, AnalyzeCharacterResult{}, err
	}

	items := make([]analyzer.Item, len(input.Items))
	for i, it := range input.Items {
		items[i] = analyzer.Item{Slot: it.Slot, Name: it.Name}
	}
	analysis := analyzer.NewAnalyzer(threat).AnalyzeCharacter(analyzer.Snapshot{
		Name:    input.Name,
		League:  input.League,
		Profile: input.Profile.toProfile(),
		Skills:  input.Skills,
		Items:   items,
	})

	out := AnalyzeCharacterResult{
		CharacterName: analysis.CharacterName,
		League:        analysis.League,
		Quality:       analysis.Defense.Quality.String(),
		EffectiveHP:   finite(analysis.Defense.EffectiveHP),
		EHPByType:     make(map[string]float64, len(analysis.Defense.EHPByType)),
		Issues:        analysis.Defense.Issues,
		SkillCount:    analysis.SkillCount,
		ItemCount:     analysis.ItemCount,
	}
	for dt, ehp := range analysis.Defense.EHPByType {
		out.EHPByType[dt.String()] = finite(ehp)
	}
	for _, rec := range analysis.Recommendations {
		out.Recommendations = append(out.Recommendations, RecommendationResult{
			Priority:       rec.Priority,
			Category:       rec.Category,
			Title:          rec.Title,
			Description:    rec.Description,
			SuggestedSlots: rec.SuggestedSlots,
		})
	}
	return nil, out, nil
}
