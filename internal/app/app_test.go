package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"myresources/internal/config"
	"myresources/internal/logging"
	"myresources/internal/torque"
	"myresources/internal/transport"
	"myresources/internal/tui"
)

const reportXML = `<?xml version="1.0"?>
<Data>
<Job>
	<Job_Id>3046233.master01.hydra.brussel.vsc</Job_Id>
	<Job_Name>relax_run</Job_Name>
	<job_state>C</job_state>
	<queue>smp</queue>
	<exit_status>0</exit_status>
	<Resource_List>
		<mem>20gb</mem>
		<nodes>1:ppn=4</nodes>
		<walltime>16:00:00</walltime>
	</Resource_List>
	<resources_used>
		<cput>64:00:00</cput>
		<mem>26214400kb</mem>
		<walltime>16:00:00</walltime>
	</resources_used>
</Job>
<Job>
	<Job_Id>3046234[7].master01.hydra.brussel.vsc</Job_Id>
	<Job_Name>array_task</Job_Name>
	<job_state>Q</job_state>
	<queue>single_core</queue>
	<Resource_List>
		<mem>2gb</mem>
		<walltime>01:00:00</walltime>
	</Resource_List>
</Job>
</Data>
`

const malformedXML = `<Data>
<Job>
	<Job_Id>1.master</Job_Id>
	<Job_Name>ok</Job_Name>
	<job_state>Q</job_state>
	<Resource_List><nodes>1</nodes></Resource_List>
</Job>
<Job>
	<Job_Id>2.master</Job_Id>
	<Job_Name>broken</Job_Name>
	<job_state>Q</job_state>
	<Resource_List><nodes>2:ppn=many</nodes></Resource_List>
</Job>
</Data>`

type fakeTransport struct {
	result transport.RunResult
	err    error
}

func (f fakeTransport) Run(context.Context, string) (transport.RunResult, error) {
	return f.result, f.err
}

func (f fakeTransport) Describe() string {
	return "fake"
}

// qstatTransport passes the capability check and answers qstat with a fixed
// document.
type qstatTransport struct {
	document string
	commands []string
}

func (q *qstatTransport) Run(_ context.Context, command string) (transport.RunResult, error) {
	q.commands = append(q.commands, command)
	if command == torque.QstatCommand {
		return transport.RunResult{Stdout: q.document}, nil
	}
	return transport.RunResult{}, nil
}

func (q *qstatTransport) Describe() string {
	return "qstat-fake"
}

func testDeps(out io.Writer, files map[string]string) runDeps {
	return runDeps{
		out:    out,
		logger: logging.Discard(),
		buildTransport: func(config.Config) (transport.Transport, error) {
			return nil, errors.New("no transport in this test")
		},
		openFile: func(path string) (io.ReadCloser, error) {
			doc, ok := files[path]
			if !ok {
				return nil, os.ErrNotExist
			}
			return io.NopCloser(strings.NewReader(doc)), nil
		},
		interactive: func(tui.Options) error {
			return errors.New("interactive not expected")
		},
	}
}

func fileConfig(path string) config.Config {
	return config.Config{Command: config.CommandReport, Mode: config.ModeFile, InFile: path, NoColor: true}
}

func TestCheckSchedulerAvailabilityMissingCommands(t *testing.T) {
	tr := fakeTransport{
		result: transport.RunResult{Stdout: "qstat\n"},
		err:    errors.New("exit 7"),
	}
	err := checkSchedulerAvailability(context.Background(), tr, 2*time.Second)
	var missingErr *missingSchedulerCommandsError
	if !errors.As(err, &missingErr) {
		t.Fatalf("expected missingSchedulerCommandsError, got %T: %v", err, err)
	}
	if !strings.Contains(err.Error(), "--infile") {
		t.Fatalf("expected a hint about --infile, got %v", err)
	}
}

func TestCheckSchedulerAvailabilityPasses(t *testing.T) {
	if err := checkSchedulerAvailability(context.Background(), fakeTransport{}, 2*time.Second); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestCheckSchedulerAvailabilityTimeout(t *testing.T) {
	tr := fakeTransport{err: &transport.RunError{Command: "check", Target: "fake", Timeout: true}}
	err := checkSchedulerAvailability(context.Background(), tr, 2*time.Second)
	if err == nil || !strings.Contains(err.Error(), "--command-timeout") {
		t.Fatalf("expected timeout hint, got %v", err)
	}
}

func TestRunVersion(t *testing.T) {
	var out bytes.Buffer
	cfg := fileConfig("unused.xml")
	cfg.Version = true
	if err := runWithDeps(context.Background(), cfg, testDeps(&out, nil)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.String() != "version: 3.2\n" {
		t.Fatalf("unexpected version output %q", out.String())
	}
}

func TestRunDemo(t *testing.T) {
	var out bytes.Buffer
	cfg := config.Config{Mode: config.ModeDemo, NoColor: true}
	if err := runWithDeps(context.Background(), cfg, testDeps(&out, nil)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, id := range []string{"100001", "100002", "100003", "100004"} {
		if !strings.Contains(out.String(), id+" C my_super_job") {
			t.Fatalf("demo output missing job %s", id)
		}
	}
}

func TestRunFileReport(t *testing.T) {
	var out bytes.Buffer
	deps := testDeps(&out, map[string]string{"qstat.xml": reportXML})
	if err := runWithDeps(context.Background(), fileConfig("qstat.xml"), deps); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text := out.String()
	for _, item := range []string{
		"3046233 C relax_run",
		"3046234[7] Q array_task",
		"Alert: memory close to the limit (125 %). If your job failed, request more memory.",
	} {
		if !strings.Contains(text, item) {
			t.Fatalf("report missing %q:\n%s", item, text)
		}
	}
	if strings.Contains(text, "\x1b[") {
		t.Fatalf("expected no color codes with --nocolor")
	}
}

func TestRunFileFilters(t *testing.T) {
	var out bytes.Buffer
	cfg := fileConfig("qstat.xml")
	cfg.States = []string{"Q"}
	cfg.CSV = true
	deps := testDeps(&out, map[string]string{"qstat.xml": reportXML})
	if err := runWithDeps(context.Background(), cfg, deps); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and one row, got %q", lines)
	}
	if lines[1] != "3046234[7],Q,array_task,1.0,,2.0,,1," {
		t.Fatalf("unexpected csv row %q", lines[1])
	}

	out.Reset()
	cfg = fileConfig("qstat.xml")
	cfg.JobIDs = []string{"3046233"}
	if err := runWithDeps(context.Background(), cfg, deps); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(out.String(), "array_task") || !strings.Contains(out.String(), "relax_run") {
		t.Fatalf("expected only job 3046233:\n%s", out.String())
	}
}

func TestRunEmptyDocumentPrintsNothing(t *testing.T) {
	var out bytes.Buffer
	deps := testDeps(&out, map[string]string{"empty.xml": "<Data></Data>", "blank.xml": "  \n"})
	for _, path := range []string{"empty.xml", "blank.xml"} {
		if err := runWithDeps(context.Background(), fileConfig(path), deps); err != nil {
			t.Fatalf("%s: unexpected error: %v", path, err)
		}
	}
	if out.Len() != 0 {
		t.Fatalf("expected no output, got %q", out.String())
	}
}

func TestRunMalformedJobAbortsBeforeOutput(t *testing.T) {
	var out bytes.Buffer
	deps := testDeps(&out, map[string]string{"bad.xml": malformedXML})
	err := runWithDeps(context.Background(), fileConfig("bad.xml"), deps)
	if !errors.Is(err, torque.ErrMalformedNodeSpec) {
		t.Fatalf("expected malformed node spec, got %v", err)
	}
	if !strings.Contains(err.Error(), "job 2") {
		t.Fatalf("expected job id in error, got %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("expected nothing written, got %q", out.String())
	}
}

func TestRunUnreadableFile(t *testing.T) {
	var out bytes.Buffer
	deps := testDeps(&out, map[string]string{"junk.xml": "qstat: not xml <"})
	for _, path := range []string{"junk.xml", "missing.xml"} {
		err := runWithDeps(context.Background(), fileConfig(path), deps)
		if !errors.Is(err, torque.ErrUnreadableDocument) {
			t.Fatalf("%s: expected unreadable document, got %v", path, err)
		}
		if !strings.Contains(err.Error(), path) {
			t.Fatalf("%s: expected path in error, got %v", path, err)
		}
	}
}

func TestRunLocalQueriesQstat(t *testing.T) {
	var out bytes.Buffer
	tr := &qstatTransport{document: reportXML}
	deps := testDeps(&out, nil)
	deps.buildTransport = func(config.Config) (transport.Transport, error) {
		return tr, nil
	}
	cfg := config.Config{Mode: config.ModeLocal, NoAlert: true, NoColor: true, CommandTimeout: time.Second}

	if err := runWithDeps(context.Background(), cfg, deps); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tr.commands) != 2 || tr.commands[1] != torque.QstatCommand {
		t.Fatalf("expected capability check then qstat, got %q", tr.commands)
	}
	if strings.Contains(out.String(), "Alert:") || !strings.Contains(out.String(), "relax_run") {
		t.Fatalf("unexpected report:\n%s", out.String())
	}
}

func TestRunLocalMissingQstat(t *testing.T) {
	deps := testDeps(io.Discard, nil)
	deps.buildTransport = func(config.Config) (transport.Transport, error) {
		return fakeTransport{
			result: transport.RunResult{Stdout: "qstat"},
			err:    &transport.RunError{Command: "check", Target: "fake", ExitCode: 7},
		}, nil
	}
	cfg := config.Config{Mode: config.ModeLocal, CommandTimeout: time.Second, Retries: 3}

	err := runWithDeps(context.Background(), cfg, deps)
	var missingErr *missingSchedulerCommandsError
	if !errors.As(err, &missingErr) {
		t.Fatalf("expected missing command error, got %v", err)
	}
}

func TestRunInteractiveGetsComputedJobs(t *testing.T) {
	var got tui.Options
	deps := testDeps(io.Discard, map[string]string{"qstat.xml": reportXML})
	deps.interactive = func(opts tui.Options) error {
		got = opts
		return nil
	}
	cfg := fileConfig("qstat.xml")
	cfg.Interactive = true
	cfg.States = []string{"C"}

	if err := runWithDeps(context.Background(), cfg, deps); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Source != "qstat.xml" || got.Color || !got.Alerts {
		t.Fatalf("unexpected options: %+v", got)
	}
	// The viewer owns the state filter.
	if len(got.Jobs) != 2 || strings.Join(got.States, ",") != "C" {
		t.Fatalf("expected all jobs and the starting filter, got %d jobs %v", len(got.Jobs), got.States)
	}
	if got.Jobs[0].Memory.Usage == nil || *got.Jobs[0].Memory.Usage != 125 {
		t.Fatalf("expected computed usage on jobs passed to the viewer")
	}
}
