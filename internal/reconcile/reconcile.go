// Package reconcile detects and repairs drift between the local
// PassageMap and the remote passage store.
package reconcile

import (
	"sort"

	"github.com/rcliao/agent-sync/internal/model"
)

// Compute compares the local map against the passages the server
// actually holds. Orphans are remote passages with no local record
// (created out-of-band, or left behind by a crashed sync); missing are
// local records whose passage is gone from the server. Pure: no I/O,
// no mutation of inputs.
func Compute(pm model.PassageMap, server []model.Passage) model.ReconcilePlan {
	local := make(map[string]bool)
	for _, ids := range pm {
		for _, id := range ids {
			local[id] = true
		}
	}

	remote := make(map[string]bool, len(server))
	var plan model.ReconcilePlan
	for _, p := range server {
		remote[p.ID] = true
		if !local[p.ID] {
			plan.OrphanIDs = append(plan.OrphanIDs, p.ID)
		}
	}
	for _, ids := range pm {
		for _, id := range ids {
			if !remote[id] {
				plan.MissingIDs = append(plan.MissingIDs, id)
			}
		}
	}

	// Map iteration order is random; sort so repeated runs agree.
	sort.Strings(plan.MissingIDs)

	plan.InSync = len(plan.OrphanIDs) == 0 && len(plan.MissingIDs) == 0
	return plan
}

// CleanMissing returns a copy of pm with every ID in missing removed.
// Files whose ID list empties out are dropped from the result. When
// missing is empty the same map is returned unchanged, so callers can
// use reference equality as a no-change signal.
func CleanMissing(pm model.PassageMap, missing []string) model.PassageMap {
	if len(missing) == 0 {
		return pm
	}

	drop := make(map[string]bool, len(missing))
	for _, id := range missing {
		drop[id] = true
	}

	out := make(model.PassageMap, len(pm))
	for path, ids := range pm {
		var kept []string
		for _, id := range ids {
			if !drop[id] {
				kept = append(kept, id)
			}
		}
		if len(kept) > 0 {
			out[path] = kept
		}
	}
	return out
}
