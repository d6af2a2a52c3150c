package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/edlbridge/api/internal/config"
)

// DocumentProvider is the surface of the watched-document service the
// bridge consumes. Revision tokens are opaque and compared by equality
// only.
type DocumentProvider interface {
	GetContent(ctx context.Context, docID string) (content string, revision string, err error)
	AppendText(ctx context.Context, docID, text string) error
	AppendCodeBlock(ctx context.Context, docID, language, content string) error
}

// DocsClient implements DocumentProvider against the document service's
// HTTP API. Credential resolution is not handled here; a pre-resolved
// bearer token is passed through as-is.
type DocsClient struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

func NewDocsClient(cfg *config.DocsConfig) *DocsClient {
	return &DocsClient{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
	}
}

type documentResponse struct {
	Content    string `json:"content"`
	RevisionID string `json:"revision_id"`
}

type appendTextRequest struct {
	Text string `json:"text"`
}

type appendCodeRequest struct {
	Language string `json:"language"`
	Content  string `json:"content"`
}

// GetContent fetches the document body and its current revision token.
func (c *DocsClient) GetContent(ctx context.Context, docID string) (string, string, error) {
	var doc documentResponse
	if err := c.do(ctx, http.MethodGet, "/documents/"+docID, nil, &doc); err != nil {
		return "", "", err
	}
	return doc.Content, doc.RevisionID, nil
}

// AppendText appends one paragraph to the end of the document.
func (c *DocsClient) AppendText(ctx context.Context, docID, text string) error {
	return c.do(ctx, http.MethodPost, "/documents/"+docID+"/append", appendTextRequest{Text: text}, nil)
}

// AppendCodeBlock appends a fenced code block to the end of the document.
func (c *DocsClient) AppendCodeBlock(ctx context.Context, docID, language, content string) error {
	return c.do(ctx, http.MethodPost, "/documents/"+docID+"/append_code", appendCodeRequest{
		Language: language,
		Content:  content,
	}, nil)
}

func (c *DocsClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("document service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("document service returned %d: %s", resp.StatusCode, string(data))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
