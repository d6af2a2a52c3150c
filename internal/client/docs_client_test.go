package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/edlbridge/api/internal/config"
)

func newDocsClient(t *testing.T, handler http.HandlerFunc) *DocsClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewDocsClient(&config.DocsConfig{
		BaseURL: server.URL,
		Token:   "secret-token",
		Timeout: 5,
	})
}

func TestDocsClient_GetContent(t *testing.T) {
	client := newDocsClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/documents/doc-1" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret-token" {
			t.Errorf("auth header = %q", got)
		}
		json.NewEncoder(w).Encode(map[string]string{
			"content":     "hello\n```edljson\n{}\n```",
			"revision_id": "rev-42",
		})
	})

	content, revision, err := client.GetContent(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("GetContent failed: %v", err)
	}
	if !strings.Contains(content, "edljson") {
		t.Errorf("content = %q", content)
	}
	if revision != "rev-42" {
		t.Errorf("revision = %q, want rev-42", revision)
	}
}

func TestDocsClient_AppendText(t *testing.T) {
	var gotBody []byte
	client := newDocsClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/documents/doc-1/append" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	})

	if err := client.AppendText(context.Background(), "doc-1", "✅ EDL updated"); err != nil {
		t.Fatalf("AppendText failed: %v", err)
	}
	var body struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(gotBody, &body); err != nil {
		t.Fatal(err)
	}
	if body.Text != "✅ EDL updated" {
		t.Errorf("text = %q", body.Text)
	}
}

func TestDocsClient_AppendCodeBlock(t *testing.T) {
	var gotBody []byte
	client := newDocsClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/documents/doc-1/append_code" {
			t.Errorf("path = %s", r.URL.Path)
		}
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	})

	if err := client.AppendCodeBlock(context.Background(), "doc-1", "engineevents", `{"type":"progress"}`); err != nil {
		t.Fatalf("AppendCodeBlock failed: %v", err)
	}
	var body struct {
		Language string `json:"language"`
		Content  string `json:"content"`
	}
	if err := json.Unmarshal(gotBody, &body); err != nil {
		t.Fatal(err)
	}
	if body.Language != "engineevents" || body.Content != `{"type":"progress"}` {
		t.Errorf("body = %+v", body)
	}
}

func TestDocsClient_NonOKStatus(t *testing.T) {
	client := newDocsClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "document not found", http.StatusNotFound)
	})

	_, _, err := client.GetContent(context.Background(), "missing")
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Fatalf("err = %v, want status in message", err)
	}
}
