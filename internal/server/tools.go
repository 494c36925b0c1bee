package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/rcliao/agent-sync/internal/syncer"
)

// SyncTool handles the sync_repo MCP tool.
type SyncTool struct {
	syncer *syncer.Syncer
}

// NewSyncTool creates a SyncTool.
func NewSyncTool(s *syncer.Syncer) *SyncTool {
	return &SyncTool{syncer: s}
}

// Definition returns the MCP tool definition for registration.
func (t *SyncTool) Definition() mcp.Tool {
	return mcp.NewTool("sync_repo",
		mcp.WithDescription(
			"Sync the repository into the agent's archival memory. Files changed "+
				"since the last sync are re-chunked and re-indexed; the first sync "+
				"indexes every tracked file. Call this after editing files so "+
				"ask_repo answers reflect the current tree.",
		),
		mcp.WithBoolean("full",
			mcp.Description("Re-index every tracked file instead of only changes."),
		),
	)
}

// Handle processes the sync_repo tool call.
func (t *SyncTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	full := boolArg(req, "full", false)

	res, err := t.syncer.Sync(ctx, full)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("sync failed: %v", err)), nil
	}
	return jsonResult(res)
}

// AskTool handles the ask_repo MCP tool.
type AskTool struct {
	syncer *syncer.Syncer
}

// NewAskTool creates an AskTool.
func NewAskTool(s *syncer.Syncer) *AskTool {
	return &AskTool{syncer: s}
}

// Definition returns the MCP tool definition for registration.
func (t *AskTool) Definition() mcp.Tool {
	return mcp.NewTool("ask_repo",
		mcp.WithDescription(
			"Ask the agent a question about the repository. Answers are cached "+
				"against the last sync commit, so repeated questions between syncs "+
				"are served locally.",
		),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("The question to ask."),
		),
		mcp.WithString("model",
			mcp.Description("Model override. Empty uses the agent's default model."),
		),
		mcp.WithBoolean("no_cache",
			mcp.Description("Skip the answer cache and always ask the agent."),
		),
	)
}

// Handle processes the ask_repo tool call.
func (t *AskTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q := req.GetString("question", "")
	if q == "" {
		return mcp.NewToolResultError("'question' is required"), nil
	}
	modelKey := req.GetString("model", "")
	noCache := boolArg(req, "no_cache", false)

	answer, _, err := t.syncer.Answer(ctx, q, modelKey, noCache)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("ask failed: %v", err)), nil
	}
	return mcp.NewToolResultText(answer), nil
}

// StatusTool handles the repo_sync_status MCP tool.
type StatusTool struct {
	syncer *syncer.Syncer
}

// NewStatusTool creates a StatusTool.
func NewStatusTool(s *syncer.Syncer) *StatusTool {
	return &StatusTool{syncer: s}
}

// Definition returns the MCP tool definition for registration.
func (t *StatusTool) Definition() mcp.Tool {
	return mcp.NewTool("repo_sync_status",
		mcp.WithDescription(
			"Show sync state: current HEAD, last-synced commit, indexed file and "+
				"passage counts, and files pending sync.",
		),
	)
}

// Handle processes the repo_sync_status tool call.
func (t *StatusTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st, err := t.syncer.Status(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("status failed: %v", err)), nil
	}
	return jsonResult(st)
}

// ReconcileTool handles the reconcile_repo MCP tool.
type ReconcileTool struct {
	syncer *syncer.Syncer
}

// NewReconcileTool creates a ReconcileTool.
func NewReconcileTool(s *syncer.Syncer) *ReconcileTool {
	return &ReconcileTool{syncer: s}
}

// Definition returns the MCP tool definition for registration.
func (t *ReconcileTool) Definition() mcp.Tool {
	return mcp.NewTool("reconcile_repo",
		mcp.WithDescription(
			"Detect and repair drift between the local passage map and the remote "+
				"store. Locally-recorded passages missing remotely are dropped; "+
				"orphaned remote passages are reported, and deleted when "+
				"delete_orphans is set.",
		),
		mcp.WithBoolean("delete_orphans",
			mcp.Description("Delete remote passages with no local record."),
		),
	)
}

// Handle processes the reconcile_repo tool call.
func (t *ReconcileTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	deleteOrphans := boolArg(req, "delete_orphans", false)

	plan, err := t.syncer.Reconcile(ctx, deleteOrphans)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("reconcile failed: %v", err)), nil
	}
	return jsonResult(plan)
}

// boolArg extracts a boolean argument from a tool request.
func boolArg(req mcp.CallToolRequest, key string, defaultVal bool) bool {
	v, ok := req.GetArguments()[key].(bool)
	if !ok {
		return defaultVal
	}
	return v
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}
