// Package provider defines the remote agent-memory boundary and its
// HTTP implementation.
package provider

import (
	"context"
	"errors"

	"github.com/rcliao/agent-sync/internal/model"
)

// ErrBlockNotFound reports that an agent has no core-memory block with
// the requested label. Callers treat this as "block absent", not as a
// failure.
var ErrBlockNotFound = errors.New("memory block not found")

// Provider is the remote memory store an agent's passages live in.
// The sync core never calls it directly; the syncer executes plans
// against it and feeds its responses back into the core.
type Provider interface {
	// ListPassages returns every archival passage attached to the agent.
	ListPassages(ctx context.Context, agentID string) ([]model.Passage, error)

	// StorePassage creates a passage and returns its server-assigned ID.
	StorePassage(ctx context.Context, agentID, text string) (string, error)

	// DeletePassage removes a passage by ID.
	DeletePassage(ctx context.Context, agentID, id string) error

	// SendMessage sends a user message to the agent and returns the
	// assistant's reply text.
	SendMessage(ctx context.Context, agentID, text string) (string, error)

	// GetMemoryBlock fetches one labeled core-memory block.
	// Returns ErrBlockNotFound if the agent has no block with that label.
	GetMemoryBlock(ctx context.Context, agentID, label string) (model.MemoryBlock, error)
}

// RetrieveMemory fetches the given block labels, skipping any the
// agent doesn't have. Only transport-level failures are returned.
func RetrieveMemory(ctx context.Context, p Provider, agentID string, labels []string) ([]model.MemoryBlock, error) {
	var blocks []model.MemoryBlock
	for _, label := range labels {
		b, err := p.GetMemoryBlock(ctx, agentID, label)
		if errors.Is(err, ErrBlockNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}
