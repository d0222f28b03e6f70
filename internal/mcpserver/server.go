package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/dochoss/poe2-mcp/internal/build/defense"
	"github.com/dochoss/poe2-mcp/internal/build/upgrade"
	"github.com/dochoss/poe2-mcp/internal/storage/postgres"
)

const (
	serverName    = "poe2-build-advisor"
	serverVersion = "0.3.0"
)

// Options configures a Server.
type Options struct {
	// Logger must be non-nil.
	Logger *zap.Logger
	// Threats maps profile IDs to loaded threat profiles. May be empty.
	Threats map[string]defense.ThreatProfile
	// DefaultThreat selects the profile assumed when a tool call names none.
	// Empty means the built-in flat profile.
	DefaultThreat string
	// TopK is the default ranked-result count; <= 0 falls back to the
	// evaluator default.
	TopK int
	// DPS optionally overrides the built-in relative damage proxy.
	DPS upgrade.DPSSource
	// Items and Builds are nil when no database is configured; the
	// storage-backed tools then report unavailability.
	Items  *postgres.ItemRepository
	Builds *postgres.BuildRepository
}

// Server wires the calculators and repositories into an MCP server.
type Server struct {
	logger    *zap.Logger
	evaluator *upgrade.Evaluator
	threats   map[string]defense.ThreatProfile
	defThreat string
	topK      int
	items     *postgres.ItemRepository
	builds    *postgres.BuildRepository
	mcpServer *mcp.Server
}

// New creates a Server with all tools registered.
//
// Precondition: opts.Logger must be non-nil; opts.DefaultThreat, when set,
// must name a key in opts.Threats.
func New(opts Options) (*Server, error) {
	if opts.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if opts.DefaultThreat != "" {
		if _, ok := opts.Threats[opts.DefaultThreat]; !ok {
			return nil, fmt.Errorf("default threat profile %q is not loaded", opts.DefaultThreat)
		}
	}
	topK := opts.TopK
	if topK <= 0 {
		topK = upgrade.DefaultTopK
	}

	s := &Server{
		logger:    opts.Logger,
		evaluator: upgrade.NewEvaluator(opts.DPS),
		threats:   opts.Threats,
		defThreat: opts.DefaultThreat,
		topK:      topK,
		items:     opts.Items,
		builds:    opts.Builds,
	}

	s.mcpServer = mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)
	s.registerTools()
	return s, nil
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, computeEHPTool(), s.computeEHP)
	mcp.AddTool(s.mcpServer, evaluateUpgradeTool(), s.evaluateUpgrade)
	mcp.AddTool(s.mcpServer, rankUpgradesTool(), s.rankUpgrades)
	mcp.AddTool(s.mcpServer, compareItemsTool(), s.compareItems)
	mcp.AddTool(s.mcpServer, analyzeCharacterTool(), s.analyzeCharacter)
	mcp.AddTool(s.mcpServer, searchItemsTool(), s.searchItems)
	mcp.AddTool(s.mcpServer, saveBuildTool(), s.saveBuild)
	mcp.AddTool(s.mcpServer, getBuildTool(), s.getBuild)
	mcp.AddTool(s.mcpServer, listBuildsTool(), s.listBuilds)
}

// Run serves MCP over stdio until ctx is cancelled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("mcp server listening on stdio",
		zap.String("server", serverName),
		zap.String("version", serverVersion),
		zap.Int("threat_profiles", len(s.threats)),
		zap.Bool("storage", s.items != nil),
	)
	if err := s.mcpServer.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("running mcp server: %w", err)
	}
	return nil
}

// resolveThreat maps a tool call's threat profile name to a loaded profile.
// Empty selects the configured default; unknown names are an error so callers
// notice typos instead of silently evaluating against the wrong assumptions.
func (s *Server) resolveThreat(name string) (defense.ThreatProfile, error) {
	if name == "" {
		name = s.defThreat
	}
	if name == "" {
		return defense.DefaultThreatProfile(), nil
	}
	profile, ok := s.threats[name]
	if !ok {
		return nil, fmt.Errorf("unknown threat profile %q", name)
	}
	return profile, nil
}
