package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(url string) *Client {
	c := NewClient(Config{
		BaseURL:    url,
		APIKey:     "sk-test",
		Model:      "gpt-4.1-mini",
		MaxResults: 8,
	})
	c.pollInterval = time.Millisecond
	return c
}

func TestCreateVectorStore(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/vector_stores" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("auth header = %q", got)
		}
		var body struct {
			Name string `json:"name"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Name != "rag-cli:notes" {
			t.Errorf("name = %q", body.Name)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "vs_new"})
	}))
	defer srv.Close()

	id, err := newTestClient(srv.URL).CreateVectorStore(context.Background(), "rag-cli:notes")
	if err != nil {
		t.Fatal(err)
	}
	if id != "vs_new" {
		t.Errorf("id = %q", id)
	}
}

func TestUploadFile_PollsUntilCompleted(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.md")
	if err := os.WriteFile(path, []byte("content"), 0o644); err != nil {
		t.Fatal(err)
	}

	var polls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/files":
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				t.Errorf("multipart parse: %v", err)
			}
			if got := r.FormValue("purpose"); got != "assistants" {
				t.Errorf("purpose = %q", got)
			}
			_ = json.NewEncoder(w).Encode(map[string]string{"id": "file_1"})

		case r.Method == http.MethodPost && r.URL.Path == "/vector_stores/vs_1/files":
			var body struct {
				FileID string `json:"file_id"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body.FileID != "file_1" {
				t.Errorf("file_id = %q", body.FileID)
			}
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "in_progress"})

		case r.Method == http.MethodGet && r.URL.Path == "/vector_stores/vs_1/files/file_1":
			status := "in_progress"
			if polls.Add(1) >= 3 {
				status = "completed"
			}
			_ = json.NewEncoder(w).Encode(map[string]string{"status": status})

		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	id, err := newTestClient(srv.URL).UploadFile(context.Background(), "vs_1", path)
	if err != nil {
		t.Fatal(err)
	}
	if id != "file_1" {
		t.Errorf("file id = %q", id)
	}
	if polls.Load() < 3 {
		t.Errorf("expected at least 3 polls, got %d", polls.Load())
	}
}

func TestUploadFile_ProcessingFailed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.md")
	if err := os.WriteFile(path, []byte("content"), 0o644); err != nil {
		t.Fatal(err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/files":
			_ = json.NewEncoder(w).Encode(map[string]string{"id": "file_1"})
		case r.Method == http.MethodPost:
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "in_progress"})
		default:
			_ = json.NewEncoder(w).Encode(map[string]any{
				"status":     "failed",
				"last_error": map[string]string{"message": "unsupported content"},
			})
		}
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).UploadFile(context.Background(), "vs_1", path)
	if err == nil {
		t.Fatal("expected failure")
	}
}

func TestAnswer_ExtractsOutputText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/responses" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var body struct {
			Model string    `json:"model"`
			Input []Message `json:"input"`
			Tools []struct {
				Type           string   `json:"type"`
				VectorStoreIDs []string `json:"vector_store_ids"`
				MaxNumResults  int      `json:"max_num_results"`
			} `json:"tools"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Model != "gpt-4.1-mini" {
			t.Errorf("model = %q", body.Model)
		}
		if len(body.Tools) != 1 || body.Tools[0].Type != "file_search" {
			t.Errorf("tools = %+v", body.Tools)
		}
		if body.Tools[0].MaxNumResults != 8 || len(body.Tools[0].VectorStoreIDs) != 1 {
			t.Errorf("file_search tool = %+v", body.Tools[0])
		}
		if len(body.Input) != 1 || body.Input[0].Role != "user" {
			t.Errorf("input = %+v", body.Input)
		}

		resp := map[string]any{
			"output": []map[string]any{
				{"type": "file_search_call"},
				{"type": "message", "content": []map[string]string{
					{"type": "output_text", "text": "The answer "},
					{"type": "output_text", "text": "is 42."},
				}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	answer, err := newTestClient(srv.URL).Answer(context.Background(), "vs_1",
		[]Message{{Role: "user", Content: "what is the answer?"}})
	if err != nil {
		t.Fatal(err)
	}
	if answer != "The answer is 42." {
		t.Errorf("answer = %q", answer)
	}
}

func TestBadRequestClassification(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "invalid file type"},
		})
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).CreateVectorStore(context.Background(), "x")
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsBadRequest(err) {
		t.Errorf("expected bad-request classification: %v", err)
	}

	srv500 := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv500.Close()

	_, err = newTestClient(srv500.URL).CreateVectorStore(context.Background(), "x")
	if err == nil {
		t.Fatal("expected error")
	}
	if IsBadRequest(err) {
		t.Errorf("500 must not classify as bad request: %v", err)
	}
}
