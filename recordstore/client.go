// Package recordstore provides a client for a record-oriented remote
// datastore reachable over a REST API. Tables hold free-form field
// dictionaries; every read goes through an explicit decode step so that
// missing required fields fail loudly instead of surfacing as zero values.
package recordstore

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

	"postframe/queue-api/config"
)

// The remote API rejects batched writes above this many records.
const maxBatchSize = 10

type Client struct {
	HTTP    *http.Client
	BaseURL string
	APIKey  string
	BaseID  string
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		HTTP:    &http.Client{Timeout: 30 * time.Second},
		BaseURL: strings.TrimSuffix(cfg.RecordStore.Endpoint, "/"),
		APIKey:  cfg.RecordStore.APIKey,
		BaseID:  cfg.RecordStore.BaseID,
	}
}

// Record is the raw envelope returned by the remote store.
type Record struct {
	ID          string         `json:"id"`
	CreatedTime string         `json:"createdTime,omitempty"`
	Fields      map[string]any `json:"fields"`
}

// FieldUpdate addresses one record in a batched PATCH.
type FieldUpdate struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

// APIError is a non-2xx response from the remote store.
type APIError struct {
	Status  int
	Type    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("record store returned status %d", e.Status)
	}
	return fmt.Sprintf("record store returned status %d: %s", e.Status, e.Message)
}

// ListOptions narrows a table listing. An empty value lists everything.
type ListOptions struct {
	FilterByFormula string
	SortField       string
	SortDesc        bool
	MaxRecords      int
}

// List fetches records from a table, following pagination offsets until
// the remote store stops returning one.
func (c *Client) List(ctx context.Context, table string, opts ListOptions) ([]Record, error) {
	q := url.Values{}
	if opts.FilterByFormula != "" {
		q.Set("filterByFormula", opts.FilterByFormula)
	}
	if opts.SortField != "" {
		q.Set("sort[0][field]", opts.SortField)
		dir := "asc"
		if opts.SortDesc {
			dir = "desc"
		}
		q.Set("sort[0][direction]", dir)
	}
	if opts.MaxRecords > 0 {
		q.Set("maxRecords", strconv.Itoa(opts.MaxRecords))
	}

	var out []Record
	offset := ""

	for {
		if offset != "" {
			q.Set("offset", offset)
		}

		var page struct {
			Records []Record `json:"records"`
			Offset  string   `json:"offset"`
		}

		err := c.do(ctx, http.MethodGet, c.tableURL(table)+"?"+q.Encode(), nil, &page)
		if err != nil {
			return nil, err
		}

		out = append(out, page.Records...)

		if page.Offset == "" {
			return out, nil
		}
		offset = page.Offset
	}
}

// Create writes one record and returns the stored envelope with the
// identifier the remote store assigned.
func (c *Client) Create(ctx context.Context, table string, fields map[string]any) (*Record, error) {
	body := map[string]any{"fields": fields}

	var rec Record
	if err := c.do(ctx, http.MethodPost, c.tableURL(table), body, &rec); err != nil {
		return nil, err
	}

	if rec.ID == "" {
		return nil, fmt.Errorf("record store create response is missing a record id")
	}

	return &rec, nil
}

// Update applies field changes as batched PATCH calls, chunked to the
// remote store's batch limit. The store's own batch semantics decide
// whether a rejected chunk partially applied; no post-condition is
// verified here.
func (c *Client) Update(ctx context.Context, table string, updates []FieldUpdate) error {
	for start := 0; start < len(updates); start += maxBatchSize {
		end := min(start+maxBatchSize, len(updates))

		body := map[string]any{"records": updates[start:end]}
		if err := c.do(ctx, http.MethodPatch, c.tableURL(table), body, nil); err != nil {
			return err
		}
	}

	return nil
}

// Delete removes one record by id.
func (c *Client) Delete(ctx context.Context, table, id string) error {
	return c.do(ctx, http.MethodDelete, c.tableURL(table)+"/"+url.PathEscape(id), nil, nil)
}

func (c *Client) tableURL(table string) string {
	return c.BaseURL + "/" + url.PathEscape(c.BaseID) + "/" + url.PathEscape(table)
}

func (c *Client) do(ctx context.Context, method, u string, body, out any) error {
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body, %w", err)
		}
		rd = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return fmt.Errorf("failed to build request, %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("record store request failed, %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}

		var parsed struct {
			Error struct {
				Type    string `json:"type"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&parsed); err == nil {
			apiErr.Type = parsed.Error.Type
			apiErr.Message = parsed.Error.Message
		}

		return apiErr
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode record store response, %w", err)
	}

	return nil
}

// EscapeFormulaString quotes a value for use inside a filter formula's
// single-quoted string literal.
func EscapeFormulaString(s string) string {
	return strings.ReplaceAll(s, "'", "\\'")
}
