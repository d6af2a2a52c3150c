package bridge

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/edlbridge/api/internal/model"
)

func pendingJob(id, edlID string, start, dur float64) *model.Job {
	return &model.Job{
		ID:              id,
		EdlID:           edlID,
		StartSeconds:    start,
		DurationSeconds: dur,
		OutputPath:      "/tmp/out.wav",
		BitDepth:        16,
	}
}

func TestProcessJob_CompleteStream(t *testing.T) {
	docs := &fakeDocs{}
	terminal := &model.EngineEvent{Type: model.EventTypeComplete, SHA256: "abc", OutPath: "/tmp/out.wav"}
	stream := &scriptedStream{events: []*model.EngineEvent{
		{Type: model.EventTypeProgress, Progress: 0, Message: "Starting render..."},
		{Type: model.EventTypeProgress, Progress: 50, Message: "Rendering... 50%"},
		terminal,
	}}
	engine := &fakeEngine{streams: []*scriptedStream{stream}}
	b := newTestBridge(t, docs, engine)

	job := pendingJob("job-a", "edl42", 0, 2)
	b.registry.Add(job)
	b.processJob(context.Background(), job)

	snap, ok := b.JobStatus("job-a")
	if !ok {
		t.Fatal("job missing from registry")
	}
	if snap.Status != model.JobStatusCompleted {
		t.Fatalf("status = %s, want completed", snap.Status)
	}
	if snap.Result == nil || snap.Result.SHA256 != "abc" {
		t.Errorf("result should equal the terminal event payload, got %+v", snap.Result)
	}
	if snap.Error != nil {
		t.Errorf("error should be nil on success, got %q", *snap.Error)
	}

	texts := docs.appendedTexts()
	if len(texts) != 1 || !strings.Contains(texts[0], "abc") {
		t.Fatalf("expected success feedback with digest, got %v", texts)
	}

	blocks := docs.appendedBlocks()
	if len(blocks) != 1 {
		t.Fatalf("expected one consolidated event block, got %d", len(blocks))
	}
	if blocks[0].language != "engineevents" {
		t.Errorf("block language = %q", blocks[0].language)
	}
	lines := strings.Split(blocks[0].content, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 serialized events, got %d: %q", len(lines), blocks[0].content)
	}
	if !strings.Contains(lines[0], "Starting render") || !strings.Contains(lines[2], "complete") {
		t.Errorf("events out of order: %q", blocks[0].content)
	}
}

func TestProcessJob_ErrorEventStopsConsumption(t *testing.T) {
	docs := &fakeDocs{}
	stream := &scriptedStream{
		events: []*model.EngineEvent{{Type: model.EventTypeProgress, Progress: 10}},
		err:    errors.New("backend unavailable"),
	}
	engine := &fakeEngine{streams: []*scriptedStream{stream}}
	b := newTestBridge(t, docs, engine)

	job := pendingJob("job-b", "edl42", 0, 2)
	b.registry.Add(job)
	b.processJob(context.Background(), job)

	snap, _ := b.JobStatus("job-b")
	if snap.Status != model.JobStatusFailed {
		t.Fatalf("status = %s, want failed", snap.Status)
	}
	if snap.Error == nil || *snap.Error != "backend unavailable" {
		t.Errorf("error = %v, want backend unavailable", snap.Error)
	}
	if snap.Result != nil {
		t.Errorf("result must be nil on failure")
	}
	if !stream.closed {
		t.Errorf("stream should be closed after failure")
	}

	texts := docs.appendedTexts()
	if len(texts) != 1 || !strings.Contains(texts[0], "RenderEdlWindow") {
		t.Fatalf("expected one render failure feedback, got %v", texts)
	}
	if len(docs.appendedBlocks()) != 0 {
		t.Errorf("no event block should be appended on failure")
	}
}

func TestProcessJob_StreamOpenFailure(t *testing.T) {
	docs := &fakeDocs{}
	engine := &fakeEngine{renderErr: errors.New("connection refused")}
	b := newTestBridge(t, docs, engine)

	job := pendingJob("job-c", "edl42", 0, 2)
	b.registry.Add(job)
	b.processJob(context.Background(), job)

	snap, _ := b.JobStatus("job-c")
	if snap.Status != model.JobStatusFailed {
		t.Fatalf("status = %s, want failed", snap.Status)
	}
	if snap.Error == nil || !strings.Contains(*snap.Error, "connection refused") {
		t.Errorf("error = %v", snap.Error)
	}
}

func TestProcessJob_TruncatedStreamFails(t *testing.T) {
	docs := &fakeDocs{}
	stream := &scriptedStream{events: []*model.EngineEvent{{Type: model.EventTypeProgress, Progress: 10}}}
	engine := &fakeEngine{streams: []*scriptedStream{stream}}
	b := newTestBridge(t, docs, engine)

	job := pendingJob("job-d", "edl42", 0, 2)
	b.registry.Add(job)
	b.processJob(context.Background(), job)

	snap, _ := b.JobStatus("job-d")
	if snap.Status != model.JobStatusFailed {
		t.Fatalf("status = %s, want failed", snap.Status)
	}
	if snap.Error == nil || !strings.Contains(*snap.Error, "without completion") {
		t.Errorf("error = %v", snap.Error)
	}
}

func TestProcessJob_PanicIsContained(t *testing.T) {
	docs := &fakeDocs{}
	// A nil event makes the worker dereference nil when checking for the
	// terminal kind, which must be caught at the job boundary.
	stream := &scriptedStream{events: []*model.EngineEvent{nil}}
	engine := &fakeEngine{streams: []*scriptedStream{stream}}
	b := newTestBridge(t, docs, engine)

	job := pendingJob("job-e", "edl42", 0, 2)
	b.registry.Add(job)
	b.processJob(context.Background(), job)

	snap, _ := b.JobStatus("job-e")
	if snap.Status != model.JobStatusFailed {
		t.Fatalf("status = %s, want failed", snap.Status)
	}
	if snap.Error == nil || !strings.Contains(*snap.Error, "internal error") {
		t.Errorf("error = %v, want internal error", snap.Error)
	}
	texts := docs.appendedTexts()
	if len(texts) != 1 || !strings.Contains(texts[0], "RenderJob") {
		t.Errorf("expected RenderJob failure feedback, got %v", texts)
	}
}

func TestProcessJob_SampleRateConversion(t *testing.T) {
	docs := &fakeDocs{}
	engine := &fakeEngine{streams: []*scriptedStream{
		{events: []*model.EngineEvent{{Type: model.EventTypeComplete, SHA256: "x", OutPath: "/tmp/a.wav"}}},
		{events: []*model.EngineEvent{{Type: model.EventTypeComplete, SHA256: "y", OutPath: "/tmp/b.wav"}}},
	}}
	b := newTestBridge(t, docs, engine)
	b.rates.Set("e44", 44100)

	cached := pendingJob("job-f", "e44", 1.0, 0.5)
	b.registry.Add(cached)
	b.processJob(context.Background(), cached)

	unknown := pendingJob("job-g", "missing", 1.0, 0.5)
	b.registry.Add(unknown)
	b.processJob(context.Background(), unknown)

	calls := engine.renderCalls()
	if len(calls) != 2 {
		t.Fatalf("expected 2 render calls, got %d", len(calls))
	}
	if calls[0].StartSamples != 44100 || calls[0].DurationSamples != 22050 {
		t.Errorf("cached rate conversion wrong: %+v", calls[0])
	}
	if calls[1].StartSamples != 48000 || calls[1].DurationSamples != 24000 {
		t.Errorf("default rate conversion wrong: %+v", calls[1])
	}
	if calls[0].BitDepth != 16 || calls[0].OutPath != "/tmp/out.wav" {
		t.Errorf("request parameters not forwarded: %+v", calls[0])
	}
}
