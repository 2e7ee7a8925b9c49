// Package client talks to the mapletrack HTTP API. It implements board.Backend so the
// CLI can drive the optimistic board against a remote server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"mapletrack/internal/checklist"
	"mapletrack/internal/period"
)

// APIError is a non-2xx response decoded from the server's error body.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Token:      token,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Periods are the server's current period keys.
type Periods struct {
	WeeklyPeriodKey  string `json:"weeklyPeriodKey"`
	MonthlyPeriodKey string `json:"monthlyPeriodKey"`
	MonthKey         string `json:"monthKey"`
	SelectedDate     string `json:"selectedDate"`
}

type Calendar struct {
	MonthKey     string          `json:"monthKey"`
	SelectedDate string          `json:"selectedDate"`
	Weeks        [][]period.Cell `json:"weeks"`
}

func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/health", nil, nil)
}

func (c *Client) CurrentPeriods(ctx context.Context) (Periods, error) {
	var out Periods
	err := c.do(ctx, http.MethodGet, "/api/periods/current", nil, &out)
	return out, err
}

func (c *Client) Calendar(ctx context.Context, monthKey string) (Calendar, error) {
	var out Calendar
	err := c.do(ctx, http.MethodGet, "/api/calendar/"+url.PathEscape(monthKey), nil, &out)
	return out, err
}

func (c *Client) LoadWeeklyBossState(ctx context.Context, periodKey string) (checklist.WeeklyBossState, error) {
	var raw any
	if err := c.do(ctx, http.MethodGet, keyPath("weekly-boss", periodKey), nil, &raw); err != nil {
		return checklist.EmptyWeeklyState(), err
	}
	return checklist.SanitizeWeeklyState(raw), nil
}

func (c *Client) SaveWeeklyBossState(ctx context.Context, periodKey string, state checklist.WeeklyBossState) error {
	return c.do(ctx, http.MethodPut, keyPath("weekly-boss", periodKey), state, nil)
}

func (c *Client) LoadMonthlyBossState(ctx context.Context, periodKey string) (checklist.MonthlyBossState, error) {
	var raw any
	if err := c.do(ctx, http.MethodGet, keyPath("monthly-boss", periodKey), nil, &raw); err != nil {
		return checklist.SanitizeMonthlyState(nil), err
	}
	return checklist.SanitizeMonthlyState(raw), nil
}

func (c *Client) SaveMonthlyBossState(ctx context.Context, periodKey string, state checklist.MonthlyBossState) error {
	return c.do(ctx, http.MethodPut, keyPath("monthly-boss", periodKey), state, nil)
}

func (c *Client) LoadMemos(ctx context.Context, periodKey string) ([]checklist.Memo, error) {
	var raw any
	if err := c.do(ctx, http.MethodGet, keyPath("memos", periodKey), nil, &raw); err != nil {
		return []checklist.Memo{}, err
	}
	memos := checklist.SanitizeMemos(raw)
	checklist.SortMemos(memos)
	return memos, nil
}

func (c *Client) SaveMemos(ctx context.Context, periodKey string, memos []checklist.Memo) error {
	if memos == nil {
		memos = []checklist.Memo{}
	}
	return c.do(ctx, http.MethodPut, keyPath("memos", periodKey), memos, nil)
}

func (c *Client) LoadCalendarEvents(ctx context.Context, periodKey string) ([]checklist.CalendarEvent, error) {
	var raw any
	if err := c.do(ctx, http.MethodGet, keyPath("calendar-events", periodKey), nil, &raw); err != nil {
		return []checklist.CalendarEvent{}, err
	}
	events := checklist.SanitizeEvents(raw)
	checklist.SortEvents(events)
	return events, nil
}

func (c *Client) SaveCalendarEvents(ctx context.Context, periodKey string, events []checklist.CalendarEvent) error {
	if events == nil {
		events = []checklist.CalendarEvent{}
	}
	return c.do(ctx, http.MethodPut, keyPath("calendar-events", periodKey), events, nil)
}

func (c *Client) WeeklyHistory(ctx context.Context, months int) ([]checklist.WeeklyHistoryEntry, error) {
	var out []checklist.WeeklyHistoryEntry
	err := c.do(ctx, http.MethodGet, historyPath("weekly-boss", months), nil, &out)
	return out, err
}

func (c *Client) MonthlyHistory(ctx context.Context, months int) ([]checklist.MonthlyHistoryEntry, error) {
	var out []checklist.MonthlyHistoryEntry
	err := c.do(ctx, http.MethodGet, historyPath("monthly-boss", months), nil, &out)
	return out, err
}

func (c *Client) Dashboard(ctx context.Context) (checklist.Dashboard, error) {
	var out checklist.Dashboard
	err := c.do(ctx, http.MethodGet, "/api/dashboard", nil, &out)
	return out, err
}

func (c *Client) Cleanup(ctx context.Context) (checklist.CleanupReport, error) {
	var out checklist.CleanupReport
	err := c.do(ctx, http.MethodPost, "/api/cleanup", nil, &out)
	return out, err
}

func keyPath(resource, periodKey string) string {
	return "/api/" + resource + "/" + url.PathEscape(periodKey)
}

func historyPath(resource string, months int) string {
	path := "/api/" + resource + "/history"
	if months > 0 {
		path += "?months=" + strconv.Itoa(months)
	}
	return path
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	var body struct {
		Code  string `json:"code"`
		Error string `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body); err == nil {
		apiErr.Code = body.Code
		apiErr.Message = body.Error
	}
	return apiErr
}
