package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"myresources/internal/config"
	"myresources/internal/fetch"
	"myresources/internal/logging"
	"myresources/internal/report"
	"myresources/internal/torque"
	"myresources/internal/transport"
	"myresources/internal/tui"
)

// missingSchedulerCommandsError is typed so retry classification is stable
// and does not depend on brittle string matching.
type missingSchedulerCommandsError struct {
	source  string
	missing string
}

func (e *missingSchedulerCommandsError) Error() string {
	return fmt.Sprintf("missing required Torque commands on %s: %s (use --infile to read a saved 'qstat -xt' document)", e.source, e.missing)
}

type runDeps struct {
	out            io.Writer
	logger         zerolog.Logger
	buildTransport func(config.Config) (transport.Transport, error)
	openFile       func(string) (io.ReadCloser, error)
	interactive    func(tui.Options) error
}

func defaultRunDeps(cfg config.Config) runDeps {
	return runDeps{
		out:            os.Stdout,
		logger:         logging.New(cfg.Verbose),
		buildTransport: buildTransport,
		openFile: func(path string) (io.ReadCloser, error) {
			return os.Open(path)
		},
		interactive: runInteractive,
	}
}

func Run(cfg config.Config) error {
	switch cfg.Command {
	case config.CommandDoctor:
		return RunDoctor(cfg, os.Stdout)
	case config.CommandDryRun:
		return RunDryRun(cfg, os.Stdout)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	return runWithDeps(ctx, cfg, defaultRunDeps(cfg))
}

func runWithDeps(ctx context.Context, cfg config.Config, deps runDeps) error {
	if cfg.Version {
		fmt.Fprintf(deps.out, "version: %s\n", config.Version)
		return nil
	}

	jobs, source, err := loadJobs(ctx, cfg, deps)
	if err != nil {
		return err
	}
	// Nothing in the document at all: print nothing, not even a header.
	if jobs == nil {
		deps.logger.Debug().Str("source", source).Msg("no jobs reported")
		return nil
	}
	deps.logger.Debug().Str("source", source).Int("jobs", len(jobs)).Msg("jobs computed")

	if cfg.Interactive {
		return deps.interactive(tui.Options{
			Source: source,
			Jobs:   jobs,
			States: cfg.States,
			Color:  !cfg.NoColor,
			Alerts: !cfg.NoAlert,
		})
	}

	w := report.NewWriter(deps.out, report.Options{
		Color:  !cfg.NoColor,
		Alerts: !cfg.NoAlert,
		CSV:    cfg.CSV,
	})
	return w.WriteReport(jobs)
}

// loadJobs returns the computed jobs to report. The slice is nil only when
// the source held no job entries. The state filter is left to the
// interactive view, which can change it.
func loadJobs(ctx context.Context, cfg config.Config, deps runDeps) ([]torque.Job, string, error) {
	if cfg.Mode == config.ModeDemo {
		return report.DemoJobs(), "demo", nil
	}

	entries, source, err := loadEntries(ctx, cfg, deps)
	if err != nil {
		return nil, source, err
	}
	if len(entries) == 0 {
		return nil, source, nil
	}

	all, err := torque.ExtractJobs(entries)
	if err != nil {
		return nil, source, err
	}

	filter := torque.Filter{JobIDs: cfg.JobIDs}
	if !cfg.Interactive {
		filter.States = cfg.States
	}
	return torque.ComputeAll(filter.Apply(all)), source, nil
}

func loadEntries(ctx context.Context, cfg config.Config, deps runDeps) ([]torque.Fields, string, error) {
	if cfg.Mode == config.ModeFile {
		return readDocumentFile(cfg.InFile, deps)
	}

	tr, err := deps.buildTransport(cfg)
	if err != nil {
		return nil, "", err
	}
	retrier := fetch.NewRetrier(tr, cfg.Retries, cfg.CommandTimeout, deps.logger)

	if err := checkSchedulerAvailability(ctx, retrier, retrier.Budget()); err != nil {
		return nil, tr.Describe(), err
	}

	entries, err := torque.NewCollector(retrier, retrier.Budget()).Collect(ctx)
	return entries, tr.Describe(), err
}

func readDocumentFile(path string, deps runDeps) ([]torque.Fields, string, error) {
	f, err := deps.openFile(path)
	if err != nil {
		return nil, path, &torque.UnreadableDocumentError{Source: path, Err: err}
	}
	defer f.Close()

	entries, err := torque.DecodeDocument(f)
	if err != nil {
		var docErr *torque.UnreadableDocumentError
		if errors.As(err, &docErr) {
			docErr.Source = path
		}
		return nil, path, err
	}
	return entries, path, nil
}

func buildTransport(cfg config.Config) (transport.Transport, error) {
	switch cfg.Mode {
	case config.ModeLocal:
		return transport.NewLocalTransport(), nil
	case config.ModeRemote:
		return transport.NewSSHTransport(transport.SSHOptions{
			Target:         cfg.Target,
			ConfigPath:     cfg.SSHConfig,
			IdentityFile:   cfg.IdentityFile,
			Port:           cfg.Port,
			ConnectTimeout: cfg.ConnectTimeout,
		}), nil
	default:
		return nil, fmt.Errorf("unsupported mode: %s", cfg.Mode)
	}
}

func checkSchedulerAvailability(ctx context.Context, tr transport.Transport, timeout time.Duration) error {
	const checkCmd = `if ! command -v qstat >/dev/null 2>&1; then echo qstat; exit 7; fi`

	checkCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	res, err := tr.Run(checkCtx, checkCmd)
	if err != nil {
		if missing := strings.TrimSpace(res.Stdout); missing != "" {
			return &missingSchedulerCommandsError{
				source:  tr.Describe(),
				missing: missing,
			}
		}
		var runErr *transport.RunError
		if errors.As(err, &runErr) && runErr.Timeout {
			return fmt.Errorf("Torque capability check timed out on %s; consider increasing --command-timeout", tr.Describe())
		}
		return fmt.Errorf("failed Torque capability check on %s: %w", tr.Describe(), err)
	}
	return nil
}

func runInteractive(opts tui.Options) error {
	prog := tea.NewProgram(tui.NewModel(opts), tea.WithAltScreen())
	if _, err := prog.Run(); err != nil {
		return err
	}
	return nil
}
