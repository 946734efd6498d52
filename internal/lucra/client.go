// Package lucra implements the client for the Lucra REST API.
package lucra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Event types delivered by Lucra webhooks.
const (
	EventGameCreated   = "RecreationalGameCreated"
	EventGameJoined    = "RecreationalGameJoined"
	EventGameCanceled  = "RecreationalGameCanceled"
	EventGameCompleted = "RecreationalGameCompleted"
)

// WebhookConfig is the subscription definition registered with Lucra.
type WebhookConfig struct {
	Subscriptions  []string `json:"subscriptions"`
	WebhookURL     string   `json:"webhookUrl"`
	Name           string   `json:"name,omitempty"`
	Description    string   `json:"description,omitempty"`
	Active         bool     `json:"active"`
	Headers        string   `json:"headers,omitempty"`
	ExpirationDate string   `json:"expirationDate,omitempty"`
}

// GroupUser is one participant inside a matchup group.
type GroupUser struct {
	UserID string `json:"userId"`
}

// Group is one side of a matchup.
type Group struct {
	GroupID string      `json:"groupId"`
	Name    string      `json:"name"`
	Users   []GroupUser `json:"users"`
}

// WebhookEvent is the payload Lucra posts to our webhook endpoint.
type WebhookEvent struct {
	ID              string  `json:"id"`
	Event           string  `json:"event"`
	CreatedByUserID string  `json:"createdByUserId"`
	WinnerGroupID   string  `json:"winnerGroupId,omitempty"`
	GameID          string  `json:"gameId"`
	Type            string  `json:"type"`
	Subtype         string  `json:"subtype"`
	BuyInAmount     float64 `json:"buyInAmount"`
	JoinedByUserID  string  `json:"joinedByUserId,omitempty"`
	Groups          []Group `json:"groups"`
}

// Matchup is the detail returned by the Lucra matchup API.
type Matchup struct {
	ID     string  `json:"id"`
	Groups []Group `json:"groups"`
}

// Outcome reports a locally computed matchup result back to Lucra.
type Outcome struct {
	MatchupID      string `json:"matchupId"`
	WinningGroupID string `json:"winningGroupId,omitempty"`
	IsTie          bool   `json:"isTie"`
}

// Client is a Lucra API client. Requests are authenticated by embedding the
// tenant API key in the payload envelope, as the Lucra REST API expects.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// envelope wraps every outbound write the way Lucra expects.
type envelope struct {
	APIKey string `json:"apiKey"`
	Object any    `json:"object"`
}

// NewClient creates a new Lucra API client.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// CreateWebhookConfig registers a webhook subscription with Lucra and returns
// the raw response body.
func (c *Client) CreateWebhookConfig(ctx context.Context, cfg WebhookConfig) (json.RawMessage, error) {
	var out json.RawMessage
	err := c.post(ctx, c.baseURL+"/api/rest/webhook/configs", envelope{APIKey: c.apiKey, Object: cfg}, &out)
	if err != nil {
		return nil, fmt.Errorf("failed to create webhook config: %w", err)
	}
	return out, nil
}

// GetMatchup fetches the full matchup detail, including groups and users.
func (c *Client) GetMatchup(ctx context.Context, matchupID string) (*Matchup, error) {
	var m Matchup
	if err := c.get(ctx, c.baseURL+"/api/rest/matchups/"+matchupID, &m); err != nil {
		return nil, fmt.Errorf("failed to fetch matchup %s: %w", matchupID, err)
	}
	return &m, nil
}

// ReportOutcome pushes a computed matchup result back to Lucra.
func (c *Client) ReportOutcome(ctx context.Context, outcome Outcome) error {
	url := c.baseURL + "/api/rest/matchups/" + outcome.MatchupID + "/outcome"
	if err := c.post(ctx, url, envelope{APIKey: c.apiKey, Object: outcome}, nil); err != nil {
		return fmt.Errorf("failed to report outcome for matchup %s: %w", outcome.MatchupID, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, url string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	return c.do(req, result)
}

func (c *Client) post(ctx context.Context, url string, body, result any) error {
	buf, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, result)
}

func (c *Client) do(req *http.Request, result any) error {
	req.Header.Set("X-Request-Id", uuid.New().String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("lucra API error: status %d, body: %s", resp.StatusCode, string(body))
	}
	if result == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(result)
}
