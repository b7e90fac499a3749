// Package remote implements the HTTP client for the managed database
// backend. The backend speaks a PostgREST-style protocol: tables under
// /rest/v1/{table} with filter/order/range query parameters and join
// embedding via select, stored procedures under /rest/v1/rpc/{fn}.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrNotConfigured is returned by callers that consult the configuration
// gate before reaching this client; it never originates here but lives in
// this package so both sides share one sentinel.
var ErrNotConfigured = errors.New("remote store not configured")

// StatusError reports a non-2xx response from the remote store.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("remote store returned %d: %s", e.Status, e.Body)
}

// IsConflict reports whether err is a uniqueness-violation response.
func IsConflict(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == http.StatusConflict
}

// Filter is a single column predicate, rendered as column=op.value.
type Filter struct {
	Column string
	Op     string // "eq", "neq", "is", ...
	Value  string
}

// Eq builds an equality filter.
func Eq(column, value string) Filter {
	return Filter{Column: column, Op: "eq", Value: value}
}

// Neq builds an inequality filter.
func Neq(column, value string) Filter {
	return Filter{Column: column, Op: "neq", Value: value}
}

// Query describes a row select against one table.
type Query struct {
	Table   string
	Select  string // column list, with join embeds like "*,categories(*)"
	Filters []Filter
	Order   string // e.g. "published_at.desc"
	Limit   int
	Offset  int
}

// Client issues requests against the remote store. All methods take a
// context and respect the configured per-request timeout.
type Client struct {
	baseURL string
	key     string
	http    *http.Client
	logger  *slog.Logger
}

// New creates a client for the store at baseURL authenticated with the
// anonymous access key.
func New(baseURL, key string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		key:     key,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("apikey", c.key)
	req.Header.Set("Authorization", "Bearer "+c.key)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (c *Client) do(req *http.Request) ([]byte, http.Header, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("remote request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := string(data)
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		return nil, resp.Header, &StatusError{Status: resp.StatusCode, Body: snippet}
	}
	return data, resp.Header, nil
}

func (q Query) encode() string {
	v := url.Values{}
	sel := q.Select
	if sel == "" {
		sel = "*"
	}
	v.Set("select", sel)
	for _, f := range q.Filters {
		v.Set(f.Column, f.Op+"."+f.Value)
	}
	if q.Order != "" {
		v.Set("order", q.Order)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		v.Set("offset", strconv.Itoa(q.Offset))
	}
	return v.Encode()
}

// Select runs a row select and decodes the JSON array response into dest,
// which must be a pointer to a slice. An empty result decodes to an empty
// slice, not an error: "no rows" is an expected outcome.
func (c *Client) Select(ctx context.Context, q Query, dest any) error {
	req, err := c.newRequest(ctx, http.MethodGet, "/rest/v1/"+q.Table+"?"+q.encode(), nil)
	if err != nil {
		return err
	}

	data, _, err := c.do(req)
	if err != nil {
		return fmt.Errorf("select %s: %w", q.Table, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("select %s: failed to decode response: %w", q.Table, err)
	}
	return nil
}

// Insert adds a row. With ignoreConflict, a uniqueness violation is asked to
// be resolved server-side and a 409 that slips through is swallowed, so
// duplicate likes never surface as errors.
func (c *Client) Insert(ctx context.Context, table string, row any, ignoreConflict bool) error {
	body, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("insert %s: failed to encode row: %w", table, err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/rest/v1/"+table, bytes.NewReader(body))
	if err != nil {
		return err
	}
	prefer := "return=minimal"
	if ignoreConflict {
		prefer += ",resolution=ignore-duplicates"
	}
	req.Header.Set("Prefer", prefer)

	if _, _, err := c.do(req); err != nil {
		if ignoreConflict && IsConflict(err) {
			c.logger.Debug("duplicate row ignored", "table", table)
			return nil
		}
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}

// Update patches every row matching the filters.
func (c *Client) Update(ctx context.Context, table string, patch any, filters ...Filter) error {
	body, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("update %s: failed to encode patch: %w", table, err)
	}

	q := Query{Table: table, Filters: filters}
	req, err := c.newRequest(ctx, http.MethodPatch, "/rest/v1/"+table+"?"+q.encode(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Prefer", "return=minimal")

	if _, _, err := c.do(req); err != nil {
		return fmt.Errorf("update %s: %w", table, err)
	}
	return nil
}

// Delete removes every row matching the filters.
func (c *Client) Delete(ctx context.Context, table string, filters ...Filter) error {
	q := Query{Table: table, Filters: filters}
	req, err := c.newRequest(ctx, http.MethodDelete, "/rest/v1/"+table+"?"+q.encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Prefer", "return=minimal")

	if _, _, err := c.do(req); err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	return nil
}

// RPC calls a stored procedure and decodes its response into dest when dest
// is non-nil. The atomic counter increments live behind this.
func (c *Client) RPC(ctx context.Context, fn string, args any, dest any) error {
	body, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("rpc %s: failed to encode args: %w", fn, err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/rest/v1/rpc/"+fn, bytes.NewReader(body))
	if err != nil {
		return err
	}

	data, _, err := c.do(req)
	if err != nil {
		return fmt.Errorf("rpc %s: %w", fn, err)
	}
	if dest != nil && len(data) > 0 {
		if err := json.Unmarshal(data, dest); err != nil {
			return fmt.Errorf("rpc %s: failed to decode response: %w", fn, err)
		}
	}
	return nil
}

// Count returns the exact number of rows matching the filters, read from the
// Content-Range header of a HEAD request.
func (c *Client) Count(ctx context.Context, table string, filters ...Filter) (int, error) {
	q := Query{Table: table, Filters: filters}
	req, err := c.newRequest(ctx, http.MethodHead, "/rest/v1/"+table+"?"+q.encode(), nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Prefer", "count=exact")

	_, header, err := c.do(req)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}

	// Content-Range looks like "0-24/3573" or "*/0"
	cr := header.Get("Content-Range")
	idx := strings.LastIndex(cr, "/")
	if idx < 0 {
		return 0, fmt.Errorf("count %s: missing content range", table)
	}
	n, err := strconv.Atoi(cr[idx+1:])
	if err != nil {
		return 0, fmt.Errorf("count %s: bad content range %q: %w", table, cr, err)
	}
	return n, nil
}
