package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"myresources/internal/config"
	"myresources/internal/report"
	"myresources/internal/torque"
	"myresources/internal/transport"
)

type doctorCheck struct {
	name   string
	detail string
	err    error
}

type doctorDeps struct {
	lookPath          func(string) (string, error)
	stat              func(string) (os.FileInfo, error)
	buildTransport    func(config.Config) (transport.Transport, error)
	checkAvailability func(context.Context, transport.Transport, time.Duration) error
}

func defaultDoctorDeps() doctorDeps {
	return doctorDeps{
		lookPath:          exec.LookPath,
		stat:              os.Stat,
		buildTransport:    buildTransport,
		checkAvailability: checkSchedulerAvailability,
	}
}

func RunDoctor(cfg config.Config, out io.Writer) error {
	return runDoctorWithDeps(cfg, out, defaultDoctorDeps())
}

func describeTarget(cfg config.Config) string {
	switch cfg.Mode {
	case config.ModeRemote:
		return cfg.Target
	case config.ModeFile:
		return cfg.InFile
	case config.ModeDemo:
		return "built-in demo jobs"
	default:
		return "local"
	}
}

func runDoctorWithDeps(cfg config.Config, out io.Writer, deps doctorDeps) error {
	fmt.Fprintln(out, "myresources doctor")
	fmt.Fprintf(out, "mode: %s\n", cfg.Mode)
	fmt.Fprintf(out, "target: %s\n\n", describeTarget(cfg))

	checks := buildDoctorChecks(cfg, deps)
	failed := false
	for _, check := range checks {
		if check.err != nil {
			failed = true
			fmt.Fprintf(out, "[fail] %s: %v\n", check.name, check.err)
			continue
		}
		fmt.Fprintf(out, "[ok] %s: %s\n", check.name, check.detail)
	}

	if failed {
		fmt.Fprintln(out, "\ndoctor result: FAIL")
		return errors.New("doctor checks failed")
	}

	fmt.Fprintln(out, "\ndoctor result: PASS")
	return nil
}

func buildDoctorChecks(cfg config.Config, deps doctorDeps) []doctorCheck {
	checks := make([]doctorCheck, 0, 6)

	appendToolCheck := func(scope string, tool string) {
		name := scope + " tool " + tool
		if path, err := deps.lookPath(tool); err != nil {
			checks = append(checks, doctorCheck{name: name, err: fmt.Errorf("not found in PATH")})
		} else {
			checks = append(checks, doctorCheck{name: name, detail: path})
		}
	}

	appendFileCheck := func(name string, path string) {
		if strings.TrimSpace(path) == "" {
			return
		}
		resolved := resolveHomePath(path)
		info, err := deps.stat(resolved)
		if err != nil {
			checks = append(checks, doctorCheck{name: name, err: fmt.Errorf("path is not readable: %s", resolved)})
			return
		}
		if info.IsDir() {
			checks = append(checks, doctorCheck{name: name, err: fmt.Errorf("expected a file but found a directory: %s", resolved)})
			return
		}
		checks = append(checks, doctorCheck{name: name, detail: resolved})
	}

	switch cfg.Mode {
	case config.ModeDemo:
		checks = append(checks, doctorCheck{
			name:   "demo data",
			detail: fmt.Sprintf("%d sample jobs, no scheduler needed", len(report.DemoJobs())),
		})
		return checks
	case config.ModeFile:
		appendFileCheck("qstat document", cfg.InFile)
		return checks
	case config.ModeLocal:
		for _, tool := range []string{"bash", "qstat"} {
			appendToolCheck("local", tool)
		}
	default:
		appendToolCheck("local", "ssh")
		appendFileCheck("ssh config file", cfg.SSHConfig)
		appendFileCheck("ssh identity file", cfg.IdentityFile)
	}

	tr, err := deps.buildTransport(cfg)
	if err != nil {
		checks = append(checks, doctorCheck{name: "transport initialization", err: err})
		return checks
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.CommandTimeout)
	defer cancel()

	if err := deps.checkAvailability(ctx, tr, cfg.CommandTimeout); err != nil {
		checks = append(checks, doctorCheck{name: "torque preflight", err: err})
	} else {
		checks = append(checks, doctorCheck{
			name:   "torque preflight",
			detail: "qstat is reachable on " + tr.Describe(),
		})
	}

	return checks
}

func RunDryRun(cfg config.Config, out io.Writer) error {
	states := "all"
	if len(cfg.States) > 0 {
		states = strings.Join(cfg.States, ",")
	}
	jobs := "all"
	if len(cfg.JobIDs) > 0 {
		jobs = strings.Join(cfg.JobIDs, " ")
	}
	output := "console"
	switch {
	case cfg.CSV:
		output = "csv"
	case cfg.Interactive:
		output = "interactive"
	}

	fmt.Fprintln(out, "myresources dry-run")
	fmt.Fprintf(out, "mode: %s\n", cfg.Mode)
	fmt.Fprintf(out, "target: %s\n", describeTarget(cfg))
	fmt.Fprintf(out, "jobs: %s\n", jobs)
	fmt.Fprintf(out, "states: %s\n", states)
	fmt.Fprintf(out, "output: %s\n", output)
	fmt.Fprintf(out, "alerts: %t\n", !cfg.NoAlert)
	fmt.Fprintf(out, "color: %t\n", !cfg.NoColor)
	if cfg.Mode == config.ModeLocal || cfg.Mode == config.ModeRemote {
		fmt.Fprintf(out, "connect-timeout: %s\n", cfg.ConnectTimeout)
		fmt.Fprintf(out, "command-timeout: %s\n", cfg.CommandTimeout)
		fmt.Fprintf(out, "retries: %d\n", cfg.Retries)
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "planned sequence:")
	fmt.Fprintln(out, "1. Parse flags and build the configured job source.")
	switch cfg.Mode {
	case config.ModeDemo:
		fmt.Fprintln(out, "2. Use the built-in demo jobs.")
	case config.ModeFile:
		fmt.Fprintf(out, "2. Read the saved qstat document %s.\n", cfg.InFile)
	case config.ModeLocal:
		fmt.Fprintf(out, "2. Check that qstat is available locally, then run '%s'.\n", torque.QstatCommand)
	default:
		fmt.Fprintf(out, "2. Connect over OpenSSH to %s, check qstat, then run '%s' remotely.\n", cfg.Target, torque.QstatCommand)
	}
	fmt.Fprintln(out, "3. Extract every job, apply the job and state filters, and compute usage.")
	if cfg.Interactive {
		fmt.Fprintln(out, "4. Open the interactive viewer until q is pressed.")
	} else {
		fmt.Fprintf(out, "4. Print the %s report to stdout and exit.\n", output)
	}
	fmt.Fprintln(out, "\ndry-run only: no local or remote commands were executed.")

	return nil
}

func resolveHomePath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil && strings.TrimSpace(home) != "" {
			return filepath.Join(home, strings.TrimPrefix(path, "~/"))
		}
	}
	return path
}
