// Package planner computes the remote mutations a sync needs.
package planner

import "github.com/rcliao/agent-sync/internal/model"

// DefaultFullReindexThreshold is the changed-file count above which an
// incremental sync is abandoned for a full rebuild. Bulk changes like a
// branch switch would otherwise issue thousands of delete/store calls.
const DefaultFullReindexThreshold = 500

// Compute returns the plan for syncing the given changed files.
// Pure: it never mutates pm and performs no I/O. Files with no entry in
// pm (new files) contribute nothing to the delete list. The changed
// list is passed through to FilesToReindex as-is; deduplication and
// filtering are the caller's concern.
func Compute(pm model.PassageMap, changed []string, threshold int) model.SyncPlan {
	if threshold <= 0 {
		threshold = DefaultFullReindexThreshold
	}

	plan := model.SyncPlan{
		FilesToReindex: changed,
		FullReindex:    len(changed) > threshold,
	}
	for _, path := range changed {
		plan.PassagesToDelete = append(plan.PassagesToDelete, pm[path]...)
	}
	return plan
}
