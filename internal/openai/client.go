// Package openai is a minimal REST client for the vector-store and
// responses endpoints this tool consumes.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config contains the resolved client configuration.
type Config struct {
	BaseURL    string
	APIKey     string
	Model      string
	MaxResults int
	Timeout    time.Duration
}

// Client issues sequential, blocking calls; it keeps no inter-call state
// beyond connection reuse, so it tolerates being invoked repeatedly across a
// batch.
type Client struct {
	baseURL      string
	apiKey       string
	model        string
	maxResults   int
	client       *http.Client
	pollInterval time.Duration
}

// NewClient constructs a client for the given API root.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:       cfg.APIKey,
		model:        cfg.Model,
		maxResults:   cfg.MaxResults,
		client:       &http.Client{Timeout: timeout},
		pollInterval: 500 * time.Millisecond,
	}
}

// APIError is a non-2xx response from the service. Status 400 is the
// explicit "request rejected" class callers treat differently from
// unexpected failures.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API request failed: HTTP %d: %s", e.StatusCode, e.Message)
}

// IsBadRequest reports whether err is the service's explicit rejection class.
func IsBadRequest(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusBadRequest
}

// Message is one turn of a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CreateVectorStore creates a new remote vector store and returns its id.
func (c *Client) CreateVectorStore(ctx context.Context, name string) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	body := map[string]any{"name": name}
	if err := c.doJSON(ctx, http.MethodPost, "/vector_stores", body, &out); err != nil {
		return "", fmt.Errorf("cannot create vector store: %w", err)
	}
	if out.ID == "" {
		return "", errors.New("vector store response missing id")
	}
	return out.ID, nil
}

// UploadFile uploads path, attaches it to storeID and waits for the file to
// finish processing. It returns the remote file id.
func (c *Client) UploadFile(ctx context.Context, storeID, path string) (string, error) {
	fileID, err := c.uploadFile(ctx, path)
	if err != nil {
		return "", err
	}

	var assoc struct {
		Status string `json:"status"`
	}
	body := map[string]any{"file_id": fileID}
	if err := c.doJSON(ctx, http.MethodPost, "/vector_stores/"+storeID+"/files", body, &assoc); err != nil {
		return "", fmt.Errorf("cannot attach file to %s: %w", storeID, err)
	}

	if err := c.pollFileStatus(ctx, storeID, fileID); err != nil {
		return "", err
	}
	return fileID, nil
}

// Answer runs one retrieval-augmented responses call over the conversation
// and returns the answer text. ask supplies a single-turn conversation; chat
// supplies the full accumulated history plus the new turn.
func (c *Client) Answer(ctx context.Context, storeID string, conversation []Message) (string, error) {
	body := map[string]any{
		"model": c.model,
		"input": conversation,
		"tools": []map[string]any{{
			"type":             "file_search",
			"vector_store_ids": []string{storeID},
			"max_num_results":  c.maxResults,
		}},
	}

	var out struct {
		Output []struct {
			Type    string `json:"type"`
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
		} `json:"output"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/responses", body, &out); err != nil {
		return "", err
	}

	var b strings.Builder
	for _, item := range out.Output {
		if item.Type != "message" {
			continue
		}
		for _, part := range item.Content {
			if part.Type == "output_text" {
				b.WriteString(part.Text)
			}
		}
	}
	if b.Len() == 0 {
		return "", errors.New("response contained no output text")
	}
	return b.String(), nil
}

// uploadFile POSTs path to /files with purpose=assistants.
func (c *Client) uploadFile(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("cannot open %s: %w", path, err)
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("purpose", "assistants"); err != nil {
		return "", err
	}
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", fmt.Errorf("cannot read %s: %w", path, err)
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/files", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	var out struct {
		ID string `json:"id"`
	}
	if err := c.do(req, &out); err != nil {
		return "", fmt.Errorf("cannot upload %s: %w", path, err)
	}
	if out.ID == "" {
		return "", fmt.Errorf("upload response for %s missing file id", path)
	}
	return out.ID, nil
}

// pollFileStatus waits until the vector-store file association leaves the
// in_progress state.
func (c *Client) pollFileStatus(ctx context.Context, storeID, fileID string) error {
	for {
		var out struct {
			Status    string `json:"status"`
			LastError *struct {
				Message string `json:"message"`
			} `json:"last_error"`
		}
		if err := c.doJSON(ctx, http.MethodGet, "/vector_stores/"+storeID+"/files/"+fileID, nil, &out); err != nil {
			return err
		}
		switch out.Status {
		case "completed":
			return nil
		case "failed", "cancelled":
			msg := out.Status
			if out.LastError != nil && out.LastError.Message != "" {
				msg = out.LastError.Message
			}
			return fmt.Errorf("file processing %s: %s", out.Status, msg)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.pollInterval):
		}
	}
}

// doJSON issues a JSON request and decodes the JSON response into out.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(respBody)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("cannot parse response: %w", err)
	}
	return nil
}

// errorMessage extracts the service's error message, falling back to the raw
// body.
func errorMessage(body []byte) string {
	var parsed struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Message != "" {
		return parsed.Error.Message
	}
	return strings.TrimSpace(string(body))
}
