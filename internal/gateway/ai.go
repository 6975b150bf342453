// Package gateway hosts the AI-assistant HTTP endpoint: a thin proxy in
// front of the hosted language model, with a fixed health-check response.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// UpstreamTimeout bounds the call to the hosted model.
const UpstreamTimeout = 15 * time.Second

const (
	defaultMaxTokens = 1024
	healthText       = "Service is working"
)

// Request is the AI endpoint request body.
type Request struct {
	Text      string `json:"text"`
	Model     string `json:"model,omitempty"`
	MaxTokens int    `json:"max_tokens,omitempty"`
}

// Response is the AI endpoint success body.
type Response struct {
	Text      string `json:"text"`
	Model     string `json:"model,omitempty"`
	MaxTokens int    `json:"max_tokens"`
}

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// KeySource supplies the upstream API key at request time.
type KeySource func() string

// Handler serves the AI endpoint.
type Handler struct {
	upstreamURL string
	model       string
	key         KeySource
	httpc       *http.Client
	logger      *zap.Logger
}

// NewHandler creates the AI gateway handler. key may be nil (no auth header).
func NewHandler(upstreamURL, model string, key KeySource, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		upstreamURL: upstreamURL,
		model:       model,
		key:         key,
		httpc:       &http.Client{Timeout: UpstreamTimeout},
		logger:      logger,
	}
}

// ServeHTTP implements the endpoint contract: POST and OPTIONS only, CORS
// fully open, `{"text":"test"}` short-circuits to a fixed health response.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusNoContent)
		return
	case http.MethodPost:
		// Handled below.
	default:
		w.Header().Set("Allow", "POST, OPTIONS")
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "Method not allowed"})
		return
	}

	var req Request
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid JSON body", Details: err.Error()})
		return
	}
	if req.Text == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Missing required field: text"})
		return
	}

	// Health-check request: fixed response, upstream never called.
	if req.Text == "test" {
		writeJSON(w, http.StatusOK, Response{Text: healthText, MaxTokens: defaultMaxTokens})
		return
	}

	if req.Model == "" {
		req.Model = h.model
	}
	if req.MaxTokens <= 0 {
		req.MaxTokens = defaultMaxTokens
	}

	text, err := h.callUpstream(r.Context(), req)
	if err != nil {
		h.logger.Error("upstream model call failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorBody{
			Error:   "Upstream model request failed",
			Details: err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, Response{Text: text, Model: req.Model, MaxTokens: req.MaxTokens})
}

func (h *Handler) callUpstream(ctx context.Context, req Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, UpstreamTimeout)
	defer cancel()

	body, err := json.Marshal(map[string]any{
		"inputs": req.Text,
		"parameters": map[string]any{
			"max_new_tokens": req.MaxTokens,
		},
	})
	if err != nil {
		return "", err
	}

	url := strings.TrimRight(h.upstreamURL, "/") + "/" + req.Model
	hreq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	hreq.Header.Set("Content-Type", "application/json")
	if h.key != nil {
		if k := h.key(); k != "" {
			hreq.Header.Set("Authorization", "Bearer "+k)
		}
	}

	resp, err := h.httpc.Do(hreq)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("upstream status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return parseUpstream(raw)
}

// parseUpstream accepts both inference API shapes:
// `[{"generated_text": "..."}]` and `{"text": "..."}`.
func parseUpstream(raw []byte) (string, error) {
	var list []struct {
		GeneratedText string `json:"generated_text"`
	}
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return list[0].GeneratedText, nil
	}
	var obj struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Text != "" {
		return obj.Text, nil
	}
	return "", fmt.Errorf("unrecognized upstream response: %s", strings.TrimSpace(string(raw)))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
