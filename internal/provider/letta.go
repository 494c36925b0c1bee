package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rcliao/agent-sync/internal/model"
)

// LettaClient talks to a Letta-compatible agent server over HTTP.
type LettaClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewLettaClient creates a client for the given server.
// Default base URL: http://localhost:8283.
func NewLettaClient(baseURL, apiKey string) *LettaClient {
	if baseURL == "" {
		baseURL = "http://localhost:8283"
	}
	return &LettaClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

type passageRecord struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type createPassageRequest struct {
	Text string `json:"text"`
}

type messageRequest struct {
	Messages []messagePayload `json:"messages"`
}

type messagePayload struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messageResponse struct {
	Messages []struct {
		MessageType string `json:"message_type"`
		Content     string `json:"content"`
	} `json:"messages"`
}

type blockResponse struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Limit int    `json:"limit"`
}

func (c *LettaClient) ListPassages(ctx context.Context, agentID string) ([]model.Passage, error) {
	var records []passageRecord
	path := fmt.Sprintf("/v1/agents/%s/archival-memory", url.PathEscape(agentID))
	if err := c.do(ctx, "GET", path, nil, &records); err != nil {
		return nil, fmt.Errorf("list passages: %w", err)
	}

	passages := make([]model.Passage, 0, len(records))
	for _, r := range records {
		if r.ID == "" {
			return nil, fmt.Errorf("list passages: server returned passage without id")
		}
		passages = append(passages, model.Passage{ID: r.ID, Text: r.Text})
	}
	return passages, nil
}

func (c *LettaClient) StorePassage(ctx context.Context, agentID, text string) (string, error) {
	// The create endpoint returns the passages it made; chunk sizes are
	// bounded upstream so there is exactly one.
	var records []passageRecord
	path := fmt.Sprintf("/v1/agents/%s/archival-memory", url.PathEscape(agentID))
	if err := c.do(ctx, "POST", path, createPassageRequest{Text: text}, &records); err != nil {
		return "", fmt.Errorf("store passage: %w", err)
	}
	if len(records) == 0 || records[0].ID == "" {
		return "", fmt.Errorf("store passage: server returned no passage id")
	}
	return records[0].ID, nil
}

func (c *LettaClient) DeletePassage(ctx context.Context, agentID, id string) error {
	path := fmt.Sprintf("/v1/agents/%s/archival-memory/%s",
		url.PathEscape(agentID), url.PathEscape(id))
	if err := c.do(ctx, "DELETE", path, nil, nil); err != nil {
		return fmt.Errorf("delete passage %s: %w", id, err)
	}
	return nil
}

func (c *LettaClient) SendMessage(ctx context.Context, agentID, text string) (string, error) {
	req := messageRequest{Messages: []messagePayload{{Role: "user", Content: text}}}
	var resp messageResponse
	path := fmt.Sprintf("/v1/agents/%s/messages", url.PathEscape(agentID))
	if err := c.do(ctx, "POST", path, req, &resp); err != nil {
		return "", fmt.Errorf("send message: %w", err)
	}

	// The reply stream mixes reasoning and tool events; the answer is
	// the last assistant message.
	for i := len(resp.Messages) - 1; i >= 0; i-- {
		if resp.Messages[i].MessageType == "assistant_message" && resp.Messages[i].Content != "" {
			return resp.Messages[i].Content, nil
		}
	}
	return "", fmt.Errorf("send message: no assistant reply in response")
}

func (c *LettaClient) GetMemoryBlock(ctx context.Context, agentID, label string) (model.MemoryBlock, error) {
	var resp blockResponse
	path := fmt.Sprintf("/v1/agents/%s/core-memory/blocks/%s",
		url.PathEscape(agentID), url.PathEscape(label))
	err := c.do(ctx, "GET", path, nil, &resp)
	if err != nil {
		var se *statusError
		if errors.As(err, &se) && se.code == http.StatusNotFound {
			return model.MemoryBlock{}, ErrBlockNotFound
		}
		return model.MemoryBlock{}, err
	}
	if resp.Label == "" {
		resp.Label = label
	}
	return model.MemoryBlock{Label: resp.Label, Value: resp.Value, Limit: resp.Limit}, nil
}

// statusError is a non-2xx response from the server.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("server error %d: %s", e.code, e.body)
}

// do performs one JSON round trip. A nil out discards the body.
func (c *LettaClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return &statusError{code: resp.StatusCode, body: string(b)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
