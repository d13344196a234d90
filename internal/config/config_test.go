package config

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestParseArgsLocalDefault(t *testing.T) {
	cfg, err := ParseArgs(nil)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if cfg.Mode != ModeLocal || cfg.Command != CommandReport {
		t.Fatalf("expected local report, got %s/%s", cfg.Mode, cfg.Command)
	}
	if cfg.NoAlert || cfg.NoColor || cfg.CSV {
		t.Fatalf("alerts and colors are on by default")
	}
	if cfg.CommandTimeout != 60*time.Second || cfg.Retries != 2 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestParseArgsShortFlags(t *testing.T) {
	cfg, err := ParseArgs([]string{"-a", "-c", "-s", "r,C", "-f", "qstat.xml"})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !cfg.NoAlert || !cfg.NoColor {
		t.Fatalf("expected alerts and colors disabled")
	}
	if strings.Join(cfg.States, ",") != "R,C" {
		t.Fatalf("unexpected states %v", cfg.States)
	}
	if cfg.Mode != ModeFile || cfg.InFile != "qstat.xml" {
		t.Fatalf("expected file mode, got %s %q", cfg.Mode, cfg.InFile)
	}
}

func TestParseArgsJobIDs(t *testing.T) {
	cfg, err := ParseArgs([]string{"3046233", "--csv", "3046234[2]"})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if strings.Join(cfg.JobIDs, " ") != "3046233 3046234[2]" {
		t.Fatalf("unexpected job ids %v", cfg.JobIDs)
	}
	if !cfg.CSV {
		t.Fatalf("expected csv output")
	}
}

func TestParseArgsRejectsInvalidJobID(t *testing.T) {
	_, err := ParseArgs([]string{"abc"})
	if err == nil || !strings.Contains(err.Error(), "abc is not a valid jobID") {
		t.Fatalf("expected invalid jobID error, got %v", err)
	}
}

func TestParseArgsRejectsInvalidState(t *testing.T) {
	_, err := ParseArgs([]string{"--state", "R,X"})
	if err == nil || !strings.Contains(err.Error(), `"X"`) {
		t.Fatalf("expected invalid state error, got %v", err)
	}
}

func TestParseArgsRemoteTarget(t *testing.T) {
	cfg, err := ParseArgs([]string{"--ssh", "vsc10000@login.hpc.example.org", "--port", "2222"})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if cfg.Mode != ModeRemote || cfg.Target != "vsc10000@login.hpc.example.org" || cfg.Port != 2222 {
		t.Fatalf("unexpected remote config: %+v", cfg)
	}
}

func TestParseArgsConflicts(t *testing.T) {
	for _, args := range [][]string{
		{"--ssh-config", "/tmp/x"},
		{"--port", "22"},
		{"-f", "x.xml", "--ssh", "host"},
		{"--csv", "-i"},
		{"--retries", "-1"},
		{"--command-timeout", "0s"},
	} {
		if _, err := ParseArgs(args); err == nil {
			t.Fatalf("expected error for %v", args)
		}
	}
}

func TestParseArgsCommands(t *testing.T) {
	tests := []struct {
		args []string
		want Command
	}{
		{args: []string{"doctor"}, want: CommandDoctor},
		{args: []string{"dry-run", "-s", "R"}, want: CommandDryRun},
		{args: []string{"report", "123"}, want: CommandReport},
		{args: []string{"123"}, want: CommandReport},
	}
	for _, tt := range tests {
		cfg, err := ParseArgs(tt.args)
		if err != nil {
			t.Fatalf("%v: unexpected error %v", tt.args, err)
		}
		if cfg.Command != tt.want {
			t.Fatalf("%v: expected %s, got %s", tt.args, tt.want, cfg.Command)
		}
	}
}

func TestParseArgsDemoWins(t *testing.T) {
	cfg, err := ParseArgs([]string{"-d", "-f", "ignored.xml"})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if cfg.Mode != ModeDemo {
		t.Fatalf("expected demo mode, got %s", cfg.Mode)
	}
}

func TestParseArgsHelpRequested(t *testing.T) {
	for _, arg := range []string{"--help", "-h"} {
		_, err := ParseArgs([]string{arg})
		if !errors.Is(err, ErrHelpRequested) {
			t.Fatalf("%s: expected ErrHelpRequested, got %v", arg, err)
		}
	}
}

func TestHelpTextIncludesUsageAndExamples(t *testing.T) {
	text := HelpText()
	for _, item := range []string{
		"Usage:",
		"myresources [flags] [jobID...]",
		"Color codes corresponding to ratings:",
		"Examples:",
		"-a, --noalert",
		"-f, --infile",
		"--ssh",
	} {
		if !strings.Contains(text, item) {
			t.Fatalf("help text missing %q", item)
		}
	}
}
