package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	output, err := runCommand(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if !strings.Contains(output, target) {
		t.Fatalf("expected output to mention %s, got %q", target, output)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[paths]") {
		t.Fatalf("sample config missing paths section: %q", data)
	}
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	if _, err := runCommand(t, "config", "init", "--path", target); err != nil {
		t.Fatalf("first init failed: %v", err)
	}
	if _, err := runCommand(t, "config", "init", "--path", target); err == nil {
		t.Fatal("second init without --overwrite should fail")
	}
	if _, err := runCommand(t, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("init with --overwrite failed: %v", err)
	}
}

func TestRenderTable(t *testing.T) {
	output := renderTable(
		[]string{"Part", "File"},
		[][]string{{"1", "a_part01.mp3"}, {"2", "a_part02.mp3"}},
		[]columnAlignment{alignRight, alignLeft},
	)
	if !strings.Contains(output, "a_part01.mp3") || !strings.Contains(output, "a_part02.mp3") {
		t.Fatalf("table missing rows: %q", output)
	}
	if !strings.Contains(output, "PART") && !strings.Contains(output, "Part") {
		t.Fatalf("table missing header: %q", output)
	}
}

func TestFormatTimestamp(t *testing.T) {
	cases := map[int64]string{
		0:      "00:00.000",
		2800:   "00:02.800",
		61500:  "01:01.500",
		754321: "12:34.321",
	}
	for ms, want := range cases {
		if got := formatTimestamp(ms); got != want {
			t.Fatalf("formatTimestamp(%d) = %s, want %s", ms, got, want)
		}
	}
}

func TestEnsureLoggerTeesToLogFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	content := fmt.Sprintf("[paths]\noutput_dir = %q\nstaging_dir = %q\nlog_dir = %q\n",
		filepath.Join(dir, "output"), filepath.Join(dir, "staging"), filepath.Join(dir, "logs"))
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	ctx := newCommandContext(&cfgPath)
	logger, err := ctx.ensureLogger()
	if err != nil {
		t.Fatalf("ensureLogger failed: %v", err)
	}
	logger.Info("daemon ready")

	data, err := os.ReadFile(filepath.Join(dir, "logs", "clipforge.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "daemon ready") {
		t.Fatalf("expected log line in file sink, got %q", data)
	}
}
