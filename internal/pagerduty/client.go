package pagerduty

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	DefaultBaseURL = "https://api.pagerduty.com"

	// defaultPageLimit is assumed when a page omits its limit field.
	defaultPageLimit = 25

	requestTimeout = 30 * time.Second
)

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		baseURL:    DefaultBaseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

// NewClientWithBaseURL points the client at an alternate API host. Used by
// tests and deployments behind an API proxy.
func NewClientWithBaseURL(apiKey, baseURL string) *Client {
	client := NewClient(apiKey)
	client.baseURL = strings.TrimSuffix(baseURL, "/")
	return client
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values) (map[string]json.RawMessage, error) {
	reqURL := c.baseURL + "/" + endpoint

	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)

	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/vnd.pagerduty+json;version=2")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Token token="+c.apiKey)

	resp, err := c.httpClient.Do(req)

	if err != nil {
		return nil, fmt.Errorf("request %s: %w", endpoint, err)
	}

	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("request %s: unexpected status %s: %s", endpoint, resp.Status, strings.TrimSpace(string(body)))
	}

	var envelope map[string]json.RawMessage

	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", endpoint, err)
	}

	return envelope, nil
}

// pageItems extracts the resource array from a list-response envelope. The
// key follows the endpoint path name, but some endpoints answer with the
// singular form, so both are tried.
func pageItems(envelope map[string]json.RawMessage, endpoint string) ([]json.RawMessage, error) {
	key := strings.TrimSuffix(endpoint, "s")
	raw, ok := envelope[key]

	if !ok {
		raw, ok = envelope[key+"s"]
	}

	if !ok {
		return nil, nil
	}

	var items []json.RawMessage

	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode %s items: %w", endpoint, err)
	}

	return items, nil
}

// fetchAllPages walks a paginated collection from offset 0 until the API
// reports no more pages, buffering every record. Reconciliation needs a
// stable full snapshot, so nothing is streamed.
func (c *Client) fetchAllPages(ctx context.Context, endpoint string, params url.Values) ([]json.RawMessage, error) {
	if params == nil {
		params = url.Values{}
	}

	var all []json.RawMessage
	offset := 0

	for {
		params.Set("offset", strconv.Itoa(offset))

		envelope, err := c.get(ctx, endpoint, params)

		if err != nil {
			return nil, err
		}

		items, err := pageItems(envelope, endpoint)

		if err != nil {
			return nil, err
		}

		all = append(all, items...)

		var more bool

		if raw, ok := envelope["more"]; ok {
			_ = json.Unmarshal(raw, &more)
		}

		if !more {
			break
		}

		limit := defaultPageLimit

		if raw, ok := envelope["limit"]; ok {
			var l int
			if json.Unmarshal(raw, &l) == nil && l > 0 {
				limit = l
			}
		}

		offset += limit
	}

	return all, nil
}

func decodeItems[T any](items []json.RawMessage, what string) ([]T, error) {
	result := make([]T, 0, len(items))

	for _, item := range items {
		var record T

		if err := json.Unmarshal(item, &record); err != nil {
			return nil, fmt.Errorf("decode %s: %w", what, err)
		}

		result = append(result, record)
	}

	return result, nil
}

func (c *Client) ListServices(ctx context.Context) ([]Service, error) {
	items, err := c.fetchAllPages(ctx, "services", nil)

	if err != nil {
		return nil, err
	}

	return decodeItems[Service](items, "service")
}

// ListIncidents fetches all incidents, optionally filtered to one service.
func (c *Client) ListIncidents(ctx context.Context, serviceID string) ([]Incident, error) {
	var params url.Values

	if serviceID != "" {
		params = url.Values{"service_ids[]": []string{serviceID}}
	}

	items, err := c.fetchAllPages(ctx, "incidents", params)

	if err != nil {
		return nil, err
	}

	return decodeItems[Incident](items, "incident")
}

func (c *Client) ListTeams(ctx context.Context) ([]Team, error) {
	items, err := c.fetchAllPages(ctx, "teams", nil)

	if err != nil {
		return nil, err
	}

	return decodeItems[Team](items, "team")
}

func (c *Client) ListEscalationPolicies(ctx context.Context) ([]EscalationPolicy, error) {
	items, err := c.fetchAllPages(ctx, "escalation_policies", nil)

	if err != nil {
		return nil, err
	}

	return decodeItems[EscalationPolicy](items, "escalation policy")
}

func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	items, err := c.fetchAllPages(ctx, "users", nil)

	if err != nil {
		return nil, err
	}

	return decodeItems[User](items, "user")
}

func (c *Client) ListSchedules(ctx context.Context) ([]Schedule, error) {
	items, err := c.fetchAllPages(ctx, "schedules", nil)

	if err != nil {
		return nil, err
	}

	return decodeItems[Schedule](items, "schedule")
}

// Ping issues a read-only probe against the abilities endpoint.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.get(ctx, "abilities", nil)
	return err
}

// Snapshot is one full pull of every resource type. Each resource carries
// its own error so one failed fetch does not discard the others.
type Snapshot struct {
	Services           []Service
	Incidents          []Incident
	Teams              []Team
	EscalationPolicies []EscalationPolicy
	Users              []User
	Schedules          []Schedule

	ServicesErr           error
	IncidentsErr          error
	TeamsErr              error
	EscalationPoliciesErr error
	UsersErr              error
	SchedulesErr          error
}

// FetchAll retrieves the six resource collections concurrently. Pagination
// is sequential within a resource type, so the parallelism is across types
// only. All six fetches run to completion regardless of sibling failures.
func (c *Client) FetchAll(ctx context.Context) *Snapshot {
	var (
		snap Snapshot
		wg   sync.WaitGroup
	)

	wg.Add(6)

	go func() {
		defer wg.Done()
		snap.Services, snap.ServicesErr = c.ListServices(ctx)
	}()

	go func() {
		defer wg.Done()
		snap.Incidents, snap.IncidentsErr = c.ListIncidents(ctx, "")
	}()

	go func() {
		defer wg.Done()
		snap.Teams, snap.TeamsErr = c.ListTeams(ctx)
	}()

	go func() {
		defer wg.Done()
		snap.EscalationPolicies, snap.EscalationPoliciesErr = c.ListEscalationPolicies(ctx)
	}()

	go func() {
		defer wg.Done()
		snap.Users, snap.UsersErr = c.ListUsers(ctx)
	}()

	go func() {
		defer wg.Done()
		snap.Schedules, snap.SchedulesErr = c.ListSchedules(ctx)
	}()

	wg.Wait()

	return &snap
}
