package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestStreamTracerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelPhase, Mode: ModeStream, Output: &buf, Format: FormatText})
	if err != nil {
		t.Fatal(err)
	}
	stage := Begin(tr, ScopeStage, "build_graph", 0)
	mod := Begin(tr, ScopeModule, "module", stage.ID())
	mod.End("")
	stage.WithExtra("modules", "2").End("ok")

	out := buf.String()
	if !strings.Contains(out, "→ build_graph") || !strings.Contains(out, "← build_graph (ok) [") || !strings.Contains(out, "{modules=2}") {
		t.Fatalf("stage events missing:\n%s", out)
	}
	if strings.Contains(out, "module\n") || strings.Contains(out, "→ module") {
		t.Fatalf("module events must be filtered at phase level:\n%s", out)
	}
}

func TestNDJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDebug, FormatNDJSON)
	Point(tr, ScopeModule, "resolved", "/p/a.js")
	var ev map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &ev); err != nil {
		t.Fatalf("not JSON: %v\n%s", err, buf.String())
	}
	if ev["kind"] != "point" || ev["scope"] != "module" || ev["detail"] != "/p/a.js" {
		t.Fatalf("event = %v", ev)
	}
}

func TestRingKeepsLastEvents(t *testing.T) {
	r := NewRingTracer(2, LevelDebug)
	for _, name := range []string{"a", "b", "c"} {
		Point(r, ScopeStage, name, "")
	}
	snap := r.Snapshot()
	if len(snap) != 2 || snap[0].Name != "b" || snap[1].Name != "c" {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestErrorLevelUsesRing(t *testing.T) {
	tr, err := New(Config{Level: LevelError, Mode: ModeStream})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := Ring(tr); !ok {
		t.Fatalf("error level must record into a ring, got %T", tr)
	}
}

func TestContextPropagation(t *testing.T) {
	if FromContext(context.Background()) != Nop {
		t.Fatal("default tracer must be Nop")
	}
	r := NewRingTracer(4, LevelDebug)
	ctx := WithTracer(context.Background(), r)
	if FromContext(ctx) != Tracer(r) {
		t.Fatal("tracer not propagated")
	}
	if FromContext(WithTracer(ctx, nil)) != Nop {
		t.Fatal("nil tracer must install Nop")
	}
	if parentSpan(ctx) != 0 {
		t.Fatal("no span opened yet")
	}
}

func TestParseLevelAndFormat(t *testing.T) {
	if l, err := ParseLevel("DETAIL"); err != nil || l != LevelDetail {
		t.Fatalf("ParseLevel = %v, %v", l, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatal("expected error")
	}
	if f, err := ParseFormat("ndjson"); err != nil || f != FormatNDJSON {
		t.Fatalf("ParseFormat = %v, %v", f, err)
	}
}

func TestStartNestsUnderCurrentSpan(t *testing.T) {
	r := NewRingTracer(16, LevelDebug)
	ctx := WithTracer(context.Background(), r)
	ctx, outer := Start(ctx, ScopeDriver, "build")
	_, inner := Start(ctx, ScopeStage, "render")
	inner.End("")
	if outer.End("") < 0 {
		t.Fatal("negative span duration")
	}

	snap := r.Snapshot()
	if len(snap) != 4 {
		t.Fatalf("expected 4 events, got %d", len(snap))
	}
	if snap[1].Name != "render" || snap[1].ParentID != outer.ID() {
		t.Fatalf("render span parent = %d, want %d", snap[1].ParentID, outer.ID())
	}
	if snap[3].Kind != KindSpanEnd || snap[3].Name != "build" {
		t.Fatalf("last event = %+v", snap[3])
	}
}

func TestDisabledSpanKeepsContext(t *testing.T) {
	ctx := context.Background()
	got, span := Start(ctx, ScopeStage, "generate")
	if got != ctx || span.ID() != 0 {
		t.Fatalf("Nop tracer must not open spans")
	}
	if span.WithExtra("k", "v").End("done") != 0 {
		t.Fatal("disabled span must report zero duration")
	}
}

func TestHeartbeatStop(t *testing.T) {
	r := NewRingTracer(64, LevelPhase)
	h := StartHeartbeat(r, time.Millisecond)
	if h == nil {
		t.Fatal("heartbeat not started")
	}
	time.Sleep(10 * time.Millisecond)
	h.Stop()
	h.Stop()
	n := len(r.Snapshot())
	time.Sleep(5 * time.Millisecond)
	if len(r.Snapshot()) != n {
		t.Fatal("heartbeat kept ticking after Stop")
	}
	if StartHeartbeat(Nop, time.Millisecond) != nil {
		t.Fatal("Nop tracer must not start a heartbeat")
	}
}
