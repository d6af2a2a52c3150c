package client

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/edlbridge/api/internal/config"
	"github.com/edlbridge/api/internal/model"
)

// RenderEngine is the surface of the audio engine the bridge consumes.
// UpdateEdl replaces or merges the engine's EDL; RenderEdlWindow renders
// a sample-accurate window and streams events until a terminal
// "complete" event or an error.
type RenderEngine interface {
	Connect(ctx context.Context) error
	Close() error
	UpdateEdl(ctx context.Context, edl *model.Edl, replace bool) (*model.UpdateResult, error)
	RenderEdlWindow(ctx context.Context, req RenderWindowRequest) (EventStream, error)
}

// RenderWindowRequest addresses a window of a named EDL in samples.
type RenderWindowRequest struct {
	EdlID           string `json:"edl_id"`
	StartSamples    int64  `json:"start_samples"`
	DurationSamples int64  `json:"duration_samples"`
	OutPath         string `json:"out_path"`
	BitDepth        int    `json:"bit_depth"`
}

// EventStream yields render events in emission order. Recv returns the
// next event, or a non-nil error which ends the stream.
type EventStream interface {
	Recv() (*model.EngineEvent, error)
	Close() error
}

// EngineClient implements RenderEngine over the engine's HTTP API. Render
// event streams are newline-delimited JSON; each line carries either an
// event or an error, and a "complete" event ends the stream.
type EngineClient struct {
	httpClient   *http.Client
	streamClient *http.Client
	baseURL      string
}

func NewEngineClient(cfg *config.EngineConfig) *EngineClient {
	return &EngineClient{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		// Render streams run for the length of the render; no client-side
		// deadline beyond the request context.
		streamClient: &http.Client{},
		baseURL:      cfg.BaseURL,
	}
}

// Connect verifies the engine is reachable. The connection itself is
// stateless; this exists so startup fails fast when the engine is down.
func (c *EngineClient) Connect(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("engine unreachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("engine unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

// Close releases idle connections held toward the engine.
func (c *EngineClient) Close() error {
	c.httpClient.CloseIdleConnections()
	c.streamClient.CloseIdleConnections()
	return nil
}

type updateEdlRequest struct {
	Edl     *model.Edl `json:"edl"`
	Replace bool       `json:"replace"`
}

type updateEdlResponse struct {
	Result *model.UpdateResult `json:"result"`
	Error  string              `json:"error,omitempty"`
}

// UpdateEdl pushes an EDL to the engine.
func (c *EngineClient) UpdateEdl(ctx context.Context, edl *model.Edl, replace bool) (*model.UpdateResult, error) {
	data, err := json.Marshal(updateEdlRequest{Edl: edl, Replace: replace})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal EDL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/edl", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("UpdateEdl request failed: %w", err)
	}
	defer resp.Body.Close()

	var out updateEdlResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode UpdateEdl response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || out.Error != "" {
		if out.Error == "" {
			out.Error = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("UpdateEdl rejected: %s", out.Error)
	}
	if out.Result == nil {
		return nil, fmt.Errorf("UpdateEdl response missing result")
	}
	return out.Result, nil
}

// RenderEdlWindow starts a streaming render. The caller must drain or
// close the returned stream.
func (c *EngineClient) RenderEdlWindow(ctx context.Context, reqBody RenderWindowRequest) (EventStream, error) {
	data, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal render request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/render", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/x-ndjson")

	resp, err := c.streamClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("RenderEdlWindow request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, fmt.Errorf("RenderEdlWindow returned %d: %s", resp.StatusCode, string(data))
	}

	return &renderStream{
		body:    resp.Body,
		scanner: bufio.NewScanner(resp.Body),
	}, nil
}

// renderStream decodes NDJSON render events from the response body.
type renderStream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
}

type renderLine struct {
	model.EngineEvent
	Error string `json:"error,omitempty"`
}

func (s *renderStream) Recv() (*model.EngineEvent, error) {
	for s.scanner.Scan() {
		line := bytes.TrimSpace(s.scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var decoded renderLine
		if err := json.Unmarshal(line, &decoded); err != nil {
			return nil, fmt.Errorf("malformed render event: %w", err)
		}
		if decoded.Error != "" {
			return nil, fmt.Errorf("%s", decoded.Error)
		}
		event := decoded.EngineEvent
		return &event, nil
	}
	if err := s.scanner.Err(); err != nil {
		return nil, fmt.Errorf("render stream broken: %w", err)
	}
	return nil, io.EOF
}

func (s *renderStream) Close() error {
	return s.body.Close()
}
