package deps

import (
	"testing"

	"clipforge/internal/config"
)

func TestCheckBinariesUnknownCommand(t *testing.T) {
	statuses := CheckBinaries([]Requirement{
		{Name: "Bogus", Command: "definitely-not-a-real-binary-xyz"},
	})
	if len(statuses) != 1 {
		t.Fatalf("expected 1 status, got %d", len(statuses))
	}
	if statuses[0].Available {
		t.Fatal("nonexistent binary should not be available")
	}
	if statuses[0].Detail == "" {
		t.Fatal("unavailable status should carry a detail")
	}
}

func TestCheckBinariesEmptyCommand(t *testing.T) {
	statuses := CheckBinaries([]Requirement{{Name: "Empty", Command: "  "}})
	if statuses[0].Available {
		t.Fatal("empty command should not be available")
	}
	if statuses[0].Detail != "command not configured" {
		t.Fatalf("unexpected detail %q", statuses[0].Detail)
	}
}

func TestRequirementsCoverPipelineTools(t *testing.T) {
	reqs := Requirements(config.Media{FFmpegBinary: "ffmpeg", FFprobeBinary: "ffprobe"})
	names := map[string]bool{}
	for _, req := range reqs {
		names[req.Name] = req.Optional
	}
	if optional, ok := names["FFmpeg"]; !ok || optional {
		t.Fatal("FFmpeg must be a required tool")
	}
	if optional, ok := names["uvx"]; !ok || !optional {
		t.Fatal("uvx must be listed as optional")
	}
}

func TestMissingRequired(t *testing.T) {
	missing := MissingRequired([]Status{
		{Name: "A", Available: false, Optional: false},
		{Name: "B", Available: false, Optional: true},
		{Name: "C", Available: true},
	})
	if len(missing) != 1 || missing[0] != "A" {
		t.Fatalf("expected only A missing, got %v", missing)
	}
}
