package mcp

import (
	"context"
	"strings"

	"github.com/claude/physiotrainer/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
)

// --- Tool definitions ---

var toolListExercises = mcp.NewTool("list_exercises",
	mcp.WithDescription("List the exercise catalog. Without arguments returns every category with its types and exercises. Pass category (and optionally type) to narrow the result."),
	mcp.WithString("category", mcp.Description("Category name (e.g. 'Spine (Neck & Back)', 'Knee Rehab')")),
	mcp.WithString("type", mcp.Description("Exercise type within the category (e.g. 'Stretching / Mobility')")),
)

var toolGetExercise = mcp.NewTool("get_exercise",
	mcp.WithDescription("Get one exercise with its duration, step-by-step instructions and tip."),
	mcp.WithString("category", mcp.Required(), mcp.Description("Category name")),
	mcp.WithString("type", mcp.Required(), mcp.Description("Exercise type name")),
	mcp.WithString("name", mcp.Required(), mcp.Description("Exercise name")),
)

var toolGetDietPlan = mcp.NewTool("get_diet_plan",
	mcp.WithDescription("Get the recovery diet plan: foods to eat, foods to avoid, hydration and supplement advice."),
)

var toolListReports = mcp.NewTool("list_reports",
	mcp.WithDescription("List finished session reports, oldest first. Each report has the user details, exercise, target and completed reps, hold time, total session time and status (Completed or Stopped by User)."),
	mcp.WithNumber("limit", mcp.Description("Return only the most recent N reports. Defaults to all.")),
	mcp.WithString("status", mcp.Description("Only reports with this status."), mcp.Enum(string(models.StatusCompleted), string(models.StatusStopped))),
)

var toolGetSessionStatus = mcp.NewTool("get_session_status",
	mcp.WithDescription("Get the current session state: phase, instruction, feedback line, rep count and progress. Reading the status never advances the session."),
)

// --- Tool handlers ---

func (h *handlers) listExercises(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	categories, err := h.ds.Catalog(ctx)
	if err != nil {
		h.log.Error("mcp list_exercises", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	category := req.GetString("category", "")
	exType := req.GetString("type", "")
	if category == "" {
		if exType != "" {
			return mcp.NewToolResultError("type requires category"), nil
		}
		return jsonResult(categories)
	}

	for _, c := range categories {
		if !strings.EqualFold(c.Name, category) {
			continue
		}
		if exType == "" {
			return jsonResult(c.Types)
		}
		for _, t := range c.Types {
			if strings.EqualFold(t.Name, exType) {
				return jsonResult(t.Exercises)
			}
		}
		return mcp.NewToolResultError("unknown type " + exType + " in category " + c.Name), nil
	}
	return mcp.NewToolResultError("unknown category " + category), nil
}

func (h *handlers) getExercise(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	category, err := req.RequireString("category")
	if err != nil {
		return mcp.NewToolResultError("category parameter is required"), nil
	}
	exType, err := req.RequireString("type")
	if err != nil {
		return mcp.NewToolResultError("type parameter is required"), nil
	}
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("name parameter is required"), nil
	}

	ex, err := h.ds.Exercise(ctx, category, exType, name)
	if err != nil {
		return mcp.NewToolResultError("lookup failed: " + err.Error()), nil
	}
	return jsonResult(ex)
}

func (h *handlers) getDietPlan(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	plan, err := h.ds.DietPlan(ctx)
	if err != nil {
		h.log.Error("mcp get_diet_plan", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(plan)
}

func (h *handlers) listReports(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entries, err := h.ds.Reports(ctx)
	if err != nil {
		h.log.Error("mcp list_reports", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	if status := req.GetString("status", ""); status != "" {
		filtered := make([]models.ReportEntry, 0, len(entries))
		for _, e := range entries {
			if string(e.Status) == status {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}

	limit := req.GetInt("limit", 0)
	if limit < 0 {
		return mcp.NewToolResultError("limit must not be negative"), nil
	}
	if limit > 0 && limit < len(entries) {
		entries = entries[len(entries)-limit:]
	}
	return jsonResult(entries)
}

func (h *handlers) getSessionStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	u, err := h.ds.SessionStatus(ctx)
	if err != nil {
		h.log.Error("mcp get_session_status", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(u)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
