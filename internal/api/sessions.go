package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// SessionItem is one row of the session list.
type SessionItem struct {
	ID           int64
	Company      string
	JobTitle     string
	Status       string
	Total        int
	Answered     int
	AverageScore float64
	CreatedAt    string
}

type wireSession struct {
	ID           FlexInt   `json:"id"`
	SessionID    FlexInt   `json:"sessionId"`
	SessionIDSn  FlexInt   `json:"session_id"`
	Company      string    `json:"company"`
	JobTitle     string    `json:"jobTitle"`
	JobTitleSn   string    `json:"job_title"`
	Status       string    `json:"status"`
	Total        FlexInt   `json:"total"`
	Count        FlexInt   `json:"count"`
	Answered     FlexInt   `json:"answered"`
	AvgScore     FlexFloat `json:"avgScore"`
	AvgScoreSn   FlexFloat `json:"avg_score"`
	AverageScore FlexFloat `json:"averageScore"`
	CreatedAt    string    `json:"createdAt"`
	CreatedAtSn  string    `json:"created_at"`
}

func (w wireSession) toItem() SessionItem {
	avg := w.AvgScore
	if avg == 0 {
		if w.AverageScore != 0 {
			avg = w.AverageScore
		} else {
			avg = w.AvgScoreSn
		}
	}
	return SessionItem{
		ID:           firstInt(w.ID, w.SessionID, w.SessionIDSn),
		Company:      strings.TrimSpace(w.Company),
		JobTitle:     firstString(w.JobTitle, w.JobTitleSn),
		Status:       strings.TrimSpace(w.Status),
		Total:        int(firstInt(w.Total, w.Count)),
		Answered:     int(w.Answered),
		AverageScore: float64(avg),
		CreatedAt:    firstString(w.CreatedAt, w.CreatedAtSn),
	}
}

func decodeSessions(raws []wireSession) []SessionItem {
	if len(raws) == 0 {
		return nil
	}
	out := make([]SessionItem, 0, len(raws))
	for _, w := range raws {
		out = append(out, w.toItem())
	}
	return out
}

// ListSessions returns one page of the caller's sessions.
func (c *Client) ListSessions(ctx context.Context, page, size int) ([]SessionItem, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if size > 0 {
		q.Set("size", strconv.Itoa(size))
	}
	var resp struct {
		Items    []wireSession `json:"items"`
		Sessions []wireSession `json:"sessions"`
	}
	if err := c.do(ctx, http.MethodGet, "/sessions", q, nil, &resp, reqOpts{}); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	items := resp.Items
	if len(items) == 0 {
		items = resp.Sessions
	}
	return decodeSessions(items), nil
}

// RecentSessions returns the caller's most recent sessions.
func (c *Client) RecentSessions(ctx context.Context) ([]SessionItem, error) {
	var resp struct {
		Items    []wireSession `json:"items"`
		Sessions []wireSession `json:"sessions"`
	}
	if err := c.do(ctx, http.MethodGet, "/sessions/recent", nil, nil, &resp, reqOpts{}); err != nil {
		return nil, fmt.Errorf("recent sessions: %w", err)
	}
	items := resp.Items
	if len(items) == 0 {
		items = resp.Sessions
	}
	return decodeSessions(items), nil
}
