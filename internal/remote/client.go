// Package remote implements the HTTP client for the document-oriented
// backend. Documents are addressed by user and collection; fields beyond the
// record envelope are whatever the application wrote.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/NayandG07/LifeSync-AI-sub001/internal/record"
)

// MaxBatchSize is the backend-imposed limit on operations per batch commit.
const MaxBatchSize = 500

var (
	// ErrNotFound is returned when the addressed document does not exist.
	ErrNotFound = errors.New("remote: not found")
	// ErrBatchTooLarge is returned when a batch exceeds MaxBatchSize.
	ErrBatchTooLarge = fmt.Errorf("remote: batch exceeds %d operations", MaxBatchSize)
)

// StatusError is returned for non-2xx responses other than 404.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("remote: status %d: %s", e.Code, e.Message)
}

// Client talks to the remote document store.
type Client struct {
	baseURL string
	httpc   *http.Client
	logger  *zap.Logger
}

// NewClient creates a client with the given request timeout.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Ping performs a minimal read against the backend. Any failure means
// the backend is treated as unreachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer drain(resp)
	if resp.StatusCode >= 400 {
		return &StatusError{Code: resp.StatusCode, Message: "health check failed"}
	}
	return nil
}

// Create stores a single record in the user's collection and returns the
// stored copy. Records without an ID get a store-assigned UUID before the
// request is sent, so retries are idempotent on the backend.
func (c *Client) Create(ctx context.Context, userID, collection string, rec record.Record) (record.Record, error) {
	if err := rec.Validate(); err != nil {
		return record.Record{}, err
	}
	if rec.ID == "" {
		rec.ID = record.NewID()
	}
	var stored record.Record
	err := c.doJSON(ctx, http.MethodPost, c.collectionURL(userID, collection), rec, &stored)
	if err != nil {
		return record.Record{}, err
	}
	return stored, nil
}

// List returns all records in the user's collection.
func (c *Client) List(ctx context.Context, userID, collection string) ([]record.Record, error) {
	var out struct {
		Records []record.Record `json:"records"`
	}
	if err := c.doJSON(ctx, http.MethodGet, c.collectionURL(userID, collection), nil, &out); err != nil {
		return nil, err
	}
	return out.Records, nil
}

// Delete removes a single record. Returns ErrNotFound if absent.
func (c *Client) Delete(ctx context.Context, userID, collection, id string) error {
	return c.doJSON(ctx, http.MethodDelete, c.collectionURL(userID, collection)+"/"+id, nil, nil)
}

// DeleteAll removes every record in the user's collection.
func (c *Client) DeleteAll(ctx context.Context, userID, collection string) error {
	return c.doJSON(ctx, http.MethodDelete, c.collectionURL(userID, collection), nil, nil)
}

// BatchCreate commits up to MaxBatchSize records in one request.
func (c *Client) BatchCreate(ctx context.Context, userID, collection string, recs []record.Record) error {
	if len(recs) > MaxBatchSize {
		return ErrBatchTooLarge
	}
	body := struct {
		Records []record.Record `json:"records"`
	}{Records: recs}
	return c.doJSON(ctx, http.MethodPost, c.collectionURL(userID, collection)+":batch", body, nil)
}

// GetProfile reads the user's profile document.
func (c *Client) GetProfile(ctx context.Context, userID string) (record.Profile, error) {
	var p record.Profile
	err := c.doJSON(ctx, http.MethodGet, c.userURL(userID)+"/profile", nil, &p)
	return p, err
}

// PutProfile writes the user's profile document.
func (c *Client) PutProfile(ctx context.Context, p record.Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return c.doJSON(ctx, http.MethodPut, c.userURL(p.UserID)+"/profile", p, nil)
}

func (c *Client) userURL(userID string) string {
	return c.baseURL + "/v1/users/" + userID
}

func (c *Client) collectionURL(userID, collection string) string {
	return c.userURL(userID) + "/" + collection
}

func (c *Client) doJSON(ctx context.Context, method, url string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer drain(resp)

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Code: resp.StatusCode, Message: strings.TrimSpace(string(msg))}
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()
}
