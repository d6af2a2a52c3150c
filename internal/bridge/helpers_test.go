package bridge

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/edlbridge/api/internal/client"
	"github.com/edlbridge/api/internal/config"
	"github.com/edlbridge/api/internal/edl"
	"github.com/edlbridge/api/internal/model"
)

// fakeDocs is an in-memory DocumentProvider.
type fakeDocs struct {
	mu        sync.Mutex
	content   string
	revision  string
	fetchErr  error
	appendErr error

	texts      []string
	codeBlocks []fakeCodeBlock
}

type fakeCodeBlock struct {
	language string
	content  string
}

func (d *fakeDocs) GetContent(_ context.Context, _ string) (string, string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fetchErr != nil {
		return "", "", d.fetchErr
	}
	return d.content, d.revision, nil
}

func (d *fakeDocs) AppendText(_ context.Context, _ string, text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.appendErr != nil {
		return d.appendErr
	}
	d.texts = append(d.texts, text)
	return nil
}

func (d *fakeDocs) AppendCodeBlock(_ context.Context, _ string, language, content string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.appendErr != nil {
		return d.appendErr
	}
	d.codeBlocks = append(d.codeBlocks, fakeCodeBlock{language: language, content: content})
	return nil
}

func (d *fakeDocs) appendedTexts() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.texts...)
}

func (d *fakeDocs) appendedBlocks() []fakeCodeBlock {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]fakeCodeBlock(nil), d.codeBlocks...)
}

// scriptedStream replays a fixed sequence of events, then an error or
// EOF. An optional gate blocks the first Recv until released.
type scriptedStream struct {
	mu     sync.Mutex
	events []*model.EngineEvent
	err    error
	gate   chan struct{}
	closed bool
}

func (s *scriptedStream) Recv() (*model.EngineEvent, error) {
	if s.gate != nil {
		<-s.gate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.events) > 0 {
		event := s.events[0]
		s.events = s.events[1:]
		return event, nil
	}
	if s.err != nil {
		return nil, s.err
	}
	return nil, io.EOF
}

func (s *scriptedStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// fakeEngine records calls and hands out scripted streams in order.
type fakeEngine struct {
	mu           sync.Mutex
	connectErr   error
	closed       bool
	updateResult *model.UpdateResult
	updateErr    error
	updates      []*model.Edl
	renderErr    error
	streams      []*scriptedStream
	renderReqs   []client.RenderWindowRequest
}

func (e *fakeEngine) Connect(_ context.Context) error { return e.connectErr }

func (e *fakeEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}

func (e *fakeEngine) UpdateEdl(_ context.Context, edl *model.Edl, _ bool) (*model.UpdateResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.updateErr != nil {
		return nil, e.updateErr
	}
	e.updates = append(e.updates, edl)
	if e.updateResult == nil {
		return &model.UpdateResult{EdlID: edl.ID, TrackCount: len(edl.Tracks), ClipCount: edl.ClipCount()}, nil
	}
	return e.updateResult, nil
}

func (e *fakeEngine) RenderEdlWindow(_ context.Context, req client.RenderWindowRequest) (client.EventStream, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.renderReqs = append(e.renderReqs, req)
	if e.renderErr != nil {
		return nil, e.renderErr
	}
	if len(e.streams) == 0 {
		return nil, fmt.Errorf("no stream scripted for call %d", len(e.renderReqs))
	}
	stream := e.streams[0]
	e.streams = e.streams[1:]
	return stream, nil
}

func (e *fakeEngine) renderCalls() []client.RenderWindowRequest {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]client.RenderWindowRequest(nil), e.renderReqs...)
}

func newTestBridge(t *testing.T, docs *fakeDocs, engine *fakeEngine) *Bridge {
	t.Helper()
	cfg := &config.Config{
		Docs: config.DocsConfig{DocID: "doc-1"},
		Bridge: config.BridgeConfig{
			PollInterval:       10 * time.Millisecond,
			WorkerPollInterval: 5 * time.Millisecond,
			StopTimeout:        time.Second,
		},
	}
	return New(cfg, docs, engine, edl.NewRateCache(48000), nil)
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func docWithEdl(edlJSON string) string {
	return "Notes about the mix.\n```edljson\n" + edlJSON + "\n```\nMore prose.\n"
}

const validEdlJSON = `{
	"id": "edl42",
	"sample_rate": 48000,
	"media": [{"id": "m1", "path": "/media/a.wav"}],
	"tracks": [
		{"id": "t1", "clips": [
			{"id": "c1", "media_id": "m1", "start_in_media": 0, "duration": 1000, "start_in_timeline": 0},
			{"id": "c2", "media_id": "m1", "start_in_media": 500, "duration": 1000, "start_in_timeline": 1000},
			{"id": "c3", "media_id": "m1", "start_in_media": 0, "duration": 200, "start_in_timeline": 2200}
		]},
		{"id": "t2", "clips": [
			{"id": "c4", "media_id": "m1", "start_in_media": 0, "duration": 400, "start_in_timeline": 0},
			{"id": "c5", "media_id": "m1", "start_in_media": 100, "duration": 300, "start_in_timeline": 500}
		]}
	]
}`
