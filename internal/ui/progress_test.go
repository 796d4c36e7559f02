package ui

import (
	"strings"
	"testing"

	"mako/internal/buildpipeline"
)

func TestProgressAddsModulesAsDiscovered(t *testing.T) {
	m := NewProgressModel("build", nil).(*progressModel)
	events := []buildpipeline.Event{
		{File: "index.js", Stage: buildpipeline.StageLoad, Status: buildpipeline.StatusQueued},
		{File: "index.js", Stage: buildpipeline.StageParse, Status: buildpipeline.StatusWorking},
		{File: "a.js", Stage: buildpipeline.StageLoad, Status: buildpipeline.StatusQueued},
		{File: "index.js", Stage: buildpipeline.StageResolve, Status: buildpipeline.StatusDone},
	}
	for _, ev := range events {
		m.applyEvent(ev)
	}
	if len(m.rows) != 2 || m.rows[0].label() != "done" || m.rows[1].label() != "queued" {
		t.Fatalf("rows = %+v", m.rows)
	}
	if got := m.percent(); got != 0.35 {
		t.Fatalf("percent = %v", got)
	}
	view := m.View()
	if !strings.Contains(view, "build: 2 modules") || !strings.Contains(view, "a.js") {
		t.Fatalf("view:\n%s", view)
	}

	m.applyEvent(buildpipeline.Event{Stage: buildpipeline.StageGenerate, Status: buildpipeline.StatusWorking})
	if !strings.Contains(m.header(), "(generating)") || m.percent() != 0.75 {
		t.Fatalf("header %q percent %v", m.header(), m.percent())
	}
}

func TestProgressRowLabelsFollowStage(t *testing.T) {
	m := NewProgressModel("build", nil).(*progressModel)
	m.applyEvent(buildpipeline.Event{File: "a.js", Stage: buildpipeline.StageResolve, Status: buildpipeline.StatusWorking})
	if got := m.rows[0].label(); got != "resolving" {
		t.Fatalf("label = %q", got)
	}
	m.applyEvent(buildpipeline.Event{File: "a.js", Stage: buildpipeline.StageResolve, Status: buildpipeline.StatusError})
	if got := m.rows[0].label(); got != "error" || !m.failed {
		t.Fatalf("label = %q failed = %v", got, m.failed)
	}
}

func TestProgressErrorMarksFailed(t *testing.T) {
	m := NewProgressModel("build", nil).(*progressModel)
	m.applyEvent(buildpipeline.Event{Stage: buildpipeline.StageLoad, Status: buildpipeline.StatusError})
	m.done = true
	if !m.failed || !strings.Contains(m.View(), "failed: build") {
		t.Fatalf("view:\n%s", m.View())
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"index.js", 20, "index.js"},
		{"very/long/path/module.js", 10, "very..."},
		{"abcdef", 3, "abc"},
		{"модуль.js", 0, "модуль.js"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Fatalf("truncate(%q, %d) = %q; want %q", tt.in, tt.width, got, tt.want)
		}
	}
}
