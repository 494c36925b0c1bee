// Package syncer orchestrates synchronization between a local git tree
// and the remote agent-memory store. It detects changes, computes a
// plan, executes it against the provider, and persists the updated
// passage map. Individual file or passage failures do not stop a sync;
// the drift they leave behind is caught by Reconcile.
package syncer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/rcliao/agent-sync/internal/cache"
	"github.com/rcliao/agent-sync/internal/chunker"
	"github.com/rcliao/agent-sync/internal/config"
	"github.com/rcliao/agent-sync/internal/gitx"
	"github.com/rcliao/agent-sync/internal/model"
	"github.com/rcliao/agent-sync/internal/planner"
	"github.com/rcliao/agent-sync/internal/provider"
	"github.com/rcliao/agent-sync/internal/reconcile"
	"github.com/rcliao/agent-sync/internal/state"
)

// Syncer coordinates the provider, git repo, state store, and answer
// cache for one repository/agent pair.
type Syncer struct {
	cfg      *config.Config
	provider provider.Provider
	store    *state.Store
	repo     *gitx.Repo
	answers  *cache.AnswerCache
}

// New wires a Syncer. The answer cache may be nil when the caller
// never asks questions (e.g. plain sync invocations).
func New(cfg *config.Config, p provider.Provider, store *state.Store, repo *gitx.Repo, answers *cache.AnswerCache) *Syncer {
	return &Syncer{cfg: cfg, provider: p, store: store, repo: repo, answers: answers}
}

// SyncResult reports what one sync did.
type SyncResult struct {
	Run      state.Run `json:"run"`
	Skipped  []string  `json:"skipped,omitempty"`
	Warnings []string  `json:"warnings,omitempty"`
}

// Sync brings the remote passage store up to date with the working
// tree. With full=true every tracked file is re-indexed regardless of
// what changed; the planner may also escalate to a full re-index on
// its own when too many files changed.
func (s *Syncer) Sync(ctx context.Context, full bool) (*SyncResult, error) {
	head, err := s.repo.Head(ctx)
	if err != nil {
		return nil, err
	}

	pm, err := s.store.LoadPassageMap(ctx)
	if err != nil {
		return nil, fmt.Errorf("load passage map: %w", err)
	}

	var changed []string
	if full {
		changed, err = s.repo.ListFiles(ctx)
	} else {
		var lastSync string
		lastSync, err = s.store.LastSyncCommit(ctx)
		if err != nil {
			return nil, fmt.Errorf("load last sync: %w", err)
		}
		if lastSync == "" {
			// First sync is always a full index.
			full = true
			changed, err = s.repo.ListFiles(ctx)
		} else {
			changed, err = s.repo.ChangedFiles(ctx, lastSync)
		}
	}
	if err != nil {
		return nil, err
	}
	changed = s.filterIgnored(changed)

	plan := planner.Compute(pm, changed, s.cfg.FullReindexThreshold)
	if plan.FullReindex && !full {
		// Too many individual mutations; rebuild everything instead.
		full = true
		all, err := s.repo.ListFiles(ctx)
		if err != nil {
			return nil, err
		}
		changed = s.filterIgnored(all)
		plan = planner.Compute(pm, changed, len(changed)+1)
	}
	if full {
		// A full re-index discards every known passage, including ones
		// whose files are gone.
		plan.PassagesToDelete = pm.AllIDs()
	}

	result := &SyncResult{}
	pm = pm.Clone()

	deleted := 0
	for _, id := range plan.PassagesToDelete {
		if err := s.provider.DeletePassage(ctx, s.cfg.AgentID, id); err != nil {
			// Leave it for Reconcile; the local record goes away so a
			// failed delete surfaces as an orphan, not a missing.
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("delete %s: %v", id, err))
			continue
		}
		deleted++
	}
	if full {
		pm = model.PassageMap{}
	} else {
		for _, path := range plan.FilesToReindex {
			delete(pm, path)
		}
	}

	created := 0
	indexed := 0
	for _, path := range plan.FilesToReindex {
		content, err := os.ReadFile(filepath.Join(s.repo.Dir(), path))
		if err != nil {
			if os.IsNotExist(err) {
				// Deleted file: its passages are already gone from pm.
				continue
			}
			result.Skipped = append(result.Skipped, path)
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("read %s: %v", path, err))
			continue
		}

		chunks := chunker.Chunk(path, string(content), s.cfg.MaxChunkSize)
		var ids []string
		for _, c := range chunks {
			id, err := s.provider.StorePassage(ctx, s.cfg.AgentID, c.Text)
			if err != nil {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("store chunk of %s: %v", path, err))
				continue
			}
			ids = append(ids, id)
			created++
		}
		if len(ids) > 0 {
			pm[path] = ids
			indexed++
		}
	}

	if err := s.store.SavePassageMap(ctx, pm); err != nil {
		return nil, fmt.Errorf("save passage map: %w", err)
	}
	if err := s.store.SetLastSyncCommit(ctx, head); err != nil {
		return nil, fmt.Errorf("save sync commit: %w", err)
	}

	run, err := s.store.RecordRun(ctx, state.Run{
		StartedAt:       time.Now().UTC(),
		Commit:          head,
		FilesIndexed:    indexed,
		PassagesCreated: created,
		PassagesDeleted: deleted,
		FullReindex:     full,
	})
	if err != nil {
		return nil, fmt.Errorf("record run: %w", err)
	}
	result.Run = *run

	return result, nil
}

// Reconcile compares the local passage map with remote truth and
// repairs it. Missing passages are always dropped locally; orphans are
// deleted remotely only when deleteOrphans is set, otherwise they are
// reported for the caller to decide.
func (s *Syncer) Reconcile(ctx context.Context, deleteOrphans bool) (*model.ReconcilePlan, error) {
	pm, err := s.store.LoadPassageMap(ctx)
	if err != nil {
		return nil, fmt.Errorf("load passage map: %w", err)
	}

	server, err := s.provider.ListPassages(ctx, s.cfg.AgentID)
	if err != nil {
		return nil, fmt.Errorf("list server passages: %w", err)
	}

	plan := reconcile.Compute(pm, server)

	if len(plan.MissingIDs) > 0 {
		cleaned := reconcile.CleanMissing(pm, plan.MissingIDs)
		if err := s.store.SavePassageMap(ctx, cleaned); err != nil {
			return nil, fmt.Errorf("save cleaned map: %w", err)
		}
	}

	if deleteOrphans {
		for _, id := range plan.OrphanIDs {
			if err := s.provider.DeletePassage(ctx, s.cfg.AgentID, id); err != nil {
				return nil, fmt.Errorf("delete orphan %s: %w", id, err)
			}
		}
	}

	return &plan, nil
}

// Answer asks the agent a question about the repo, serving from the
// answer cache when a fresh entry exists for the current sync state.
// modelKey overrides the configured model; empty means the agent's
// default. bypassCache forces a round trip to the agent.
func (s *Syncer) Answer(ctx context.Context, q, modelKey string, bypassCache bool) (string, bool, error) {
	if modelKey == "" {
		modelKey = s.cfg.Model
	}

	commit, err := s.store.LastSyncCommit(ctx)
	if err != nil {
		return "", false, fmt.Errorf("load sync commit: %w", err)
	}

	key := cache.Key(s.cfg.AgentID, modelKey, commit, q)
	if s.answers != nil && !bypassCache {
		if answer, ok := s.answers.Get(key); ok {
			return answer, true, nil
		}
	}

	answer, err := s.provider.SendMessage(ctx, s.cfg.AgentID, q)
	if err != nil {
		return "", false, err
	}

	if s.answers != nil {
		s.answers.Set(key, answer, time.Duration(s.cfg.AnswerTTLSeconds)*time.Second)
	}
	return answer, false, nil
}

// Status summarizes the sync state of the repository.
type Status struct {
	Head           string      `json:"head"`
	LastSyncCommit string      `json:"last_sync_commit,omitempty"`
	FilesIndexed   int         `json:"files_indexed"`
	Passages       int         `json:"passages"`
	PendingFiles   []string    `json:"pending_files,omitempty"`
	RecentRuns     []state.Run `json:"recent_runs,omitempty"`
}

// Status reports what is indexed and what would sync next.
func (s *Syncer) Status(ctx context.Context) (*Status, error) {
	head, err := s.repo.Head(ctx)
	if err != nil {
		return nil, err
	}

	pm, err := s.store.LoadPassageMap(ctx)
	if err != nil {
		return nil, err
	}

	lastSync, err := s.store.LastSyncCommit(ctx)
	if err != nil {
		return nil, err
	}

	st := &Status{
		Head:           head,
		LastSyncCommit: lastSync,
		FilesIndexed:   len(pm),
		Passages:       len(pm.AllIDs()),
	}

	if lastSync != "" {
		changed, err := s.repo.ChangedFiles(ctx, lastSync)
		if err != nil {
			return nil, err
		}
		st.PendingFiles = s.filterIgnored(changed)
	}

	if runs, err := s.store.ListRuns(ctx, 5); err == nil {
		st.RecentRuns = runs
	}

	return st, nil
}

// Memory fetches the configured core-memory blocks from the agent.
func (s *Syncer) Memory(ctx context.Context) ([]model.MemoryBlock, error) {
	return provider.RetrieveMemory(ctx, s.provider, s.cfg.AgentID, s.cfg.MemoryLabels)
}

func (s *Syncer) filterIgnored(files []string) []string {
	if len(s.cfg.Ignore) == 0 {
		return files
	}
	var kept []string
	for _, f := range files {
		ignored := false
		for _, pattern := range s.cfg.Ignore {
			if ok, _ := doublestar.Match(pattern, f); ok {
				ignored = true
				break
			}
		}
		if !ignored {
			kept = append(kept, f)
		}
	}
	return kept
}
