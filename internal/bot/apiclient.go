package bot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/askus/askus/internal/core/domain"
)

// APIError carries the server's human-readable error message so it can be
// relayed verbatim to the participant.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// APIClient talks to the voting service's HTTP surface.
type APIClient struct {
	baseURL string
	client  *http.Client
}

func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *APIClient) CreatePoll(ctx context.Context, question string) (*domain.PollStarted, error) {
	var payload domain.PollStarted
	err := c.post(ctx, "/poll", map[string]string{"question": question}, &payload)
	if err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *APIClient) Vote(ctx context.Context, userID, option string, pollID *int64) (*domain.VoteUpdate, error) {
	body := map[string]any{
		"userId": userID,
		"option": option,
	}
	if pollID != nil {
		body["pollId"] = *pollID
	}

	var payload domain.VoteUpdate
	if err := c.post(ctx, "/vote", body, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *APIClient) ActivePoll(ctx context.Context) (*domain.PollSnapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/poll", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch active poll: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeAPIError(resp)
	}

	var payload domain.PollSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode active poll: %w", err)
	}
	return &payload, nil
}

func (c *APIClient) post(ctx context.Context, path string, body any, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return decodeAPIError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Error == "" {
		return &APIError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("request failed with status %d", resp.StatusCode)}
	}
	return &APIError{StatusCode: resp.StatusCode, Message: body.Error}
}
