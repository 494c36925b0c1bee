// Package model defines the core sync data types.
package model

// PassageMap records which remote passage IDs came from which source file.
// Keys are repo-relative file paths; values are the ordered passage IDs
// created when the file was last indexed. A passage ID appears under at
// most one path, and no path maps to an empty list.
type PassageMap map[string][]string

// AllIDs returns every passage ID in the map, grouped by file in
// unspecified file order but preserving per-file ID order.
func (pm PassageMap) AllIDs() []string {
	var ids []string
	for _, fileIDs := range pm {
		ids = append(ids, fileIDs...)
	}
	return ids
}

// Clone returns a deep copy of the map.
func (pm PassageMap) Clone() PassageMap {
	out := make(PassageMap, len(pm))
	for path, ids := range pm {
		out[path] = append([]string(nil), ids...)
	}
	return out
}

// Chunk is one indexable unit of a source file. Text includes a header
// line identifying the file; chunks are derived and never persisted —
// only the passage IDs the remote store assigns them are.
type Chunk struct {
	Text       string `json:"text"`
	SourcePath string `json:"source_path"`
}

// SyncPlan describes the remote mutations needed to bring the passage
// store in line with a set of changed files. Computed fresh per sync.
type SyncPlan struct {
	PassagesToDelete []string `json:"passages_to_delete"`
	FilesToReindex   []string `json:"files_to_reindex"`
	FullReindex      bool     `json:"full_reindex"`
}

// ReconcilePlan describes drift between the local PassageMap and the
// remote store. OrphanIDs exist remotely with no local record;
// MissingIDs are recorded locally but gone from the remote.
type ReconcilePlan struct {
	OrphanIDs  []string `json:"orphan_ids"`
	MissingIDs []string `json:"missing_ids"`
	InSync     bool     `json:"in_sync"`
}

// Passage is a remote passage as reported by the provider.
type Passage struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// MemoryBlock is one labeled block of agent core memory.
type MemoryBlock struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Limit int    `json:"limit"`
}
