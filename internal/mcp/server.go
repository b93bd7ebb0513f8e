package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("PhysioTrainer", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("PhysioTrainer guided exercise server. Browse the exercise catalog and diet plan, check the running session, and read finished session reports. Sessions are started and controlled from the web UI or the terminal runner."),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolListExercises, Handler: h.listExercises},
		server.ServerTool{Tool: toolGetExercise, Handler: h.getExercise},
		server.ServerTool{Tool: toolGetDietPlan, Handler: h.getDietPlan},
		server.ServerTool{Tool: toolListReports, Handler: h.listReports},
		server.ServerTool{Tool: toolGetSessionStatus, Handler: h.getSessionStatus},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resCatalog, Handler: h.catalogResource},
		server.ServerResource{Resource: resDietPlan, Handler: h.dietPlanResource},
		server.ServerResource{Resource: resReports, Handler: h.reportsResource},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resCatalog = mcp.NewResource(
	"physio://catalog",
	"Exercise Catalog",
	mcp.WithResourceDescription("All categories, exercise types and exercises with steps and tips"),
	mcp.WithMIMEType("application/json"),
)

var resDietPlan = mcp.NewResource(
	"physio://diet_plan",
	"Diet Plan",
	mcp.WithResourceDescription("Recovery diet recommendations by section"),
	mcp.WithMIMEType("application/json"),
)

var resReports = mcp.NewResource(
	"physio://reports",
	"Session Reports",
	mcp.WithResourceDescription("Finished session reports in completion order"),
	mcp.WithMIMEType("application/json"),
)
