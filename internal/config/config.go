package config

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"myresources/internal/torque"
)

// Version of the report format and command line.
const Version = "3.2"

type Mode string

const (
	ModeLocal  Mode = "local"
	ModeRemote Mode = "remote"
	ModeFile   Mode = "file"
	ModeDemo   Mode = "demo"
)

type Command string

const (
	CommandReport Command = "report"
	CommandDoctor Command = "doctor"
	CommandDryRun Command = "dry-run"
)

type Config struct {
	Command Command
	Mode    Mode

	JobIDs []string
	States []string

	InFile      string
	NoAlert     bool
	NoColor     bool
	CSV         bool
	Demo        bool
	Version     bool
	Interactive bool
	Verbose     bool

	Target         string
	SSHConfig      string
	IdentityFile   string
	Port           int
	ConnectTimeout time.Duration
	CommandTimeout time.Duration
	Retries        int
}

var ErrHelpRequested = errors.New("help requested")

var jobIDArgRe = regexp.MustCompile(`^[0-9]+(\[[0-9]*\])?$`)

func defaultConfig() Config {
	return Config{
		Command:        CommandReport,
		ConnectTimeout: 10 * time.Second,
		CommandTimeout: 60 * time.Second,
		Retries:        2,
	}
}

func newFlagSet(cfg *Config, states *string) *pflag.FlagSet {
	fs := pflag.NewFlagSet("myresources", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SortFlags = false

	fs.BoolVarP(&cfg.NoAlert, "noalert", "a", false, "do not show alert messages")
	fs.StringVarP(&cfg.InFile, "infile", "f", "", "xml file (output of 'qstat -xt') instead of querying the scheduler")
	fs.BoolVarP(&cfg.NoColor, "nocolor", "c", false, "do not use colors in the output")
	fs.BoolVar(&cfg.CSV, "csv", false, "print as csv")
	fs.StringVarP(states, "state", "s", "", `show only jobs with given state(s) as comma-separated list: "Q,H,R,E,C" (default: show all)`)
	fs.BoolVarP(&cfg.Demo, "demo", "d", false, "show demo output and exit")
	fs.BoolVarP(&cfg.Version, "version", "v", false, "show version and exit")
	fs.BoolVarP(&cfg.Interactive, "interactive", "i", false, "browse the report in a terminal viewer")
	fs.StringVar(&cfg.Target, "ssh", "", "run qstat on this ssh target (alias or user@host) instead of locally")
	fs.StringVar(&cfg.SSHConfig, "ssh-config", "", "alternate OpenSSH config path (with --ssh)")
	fs.StringVar(&cfg.IdentityFile, "identity-file", "", "SSH private key passed to ssh -i (with --ssh)")
	fs.IntVar(&cfg.Port, "port", 0, "override SSH port (with --ssh)")
	fs.DurationVar(&cfg.ConnectTimeout, "connect-timeout", cfg.ConnectTimeout, "max SSH connection setup time (with --ssh)")
	fs.DurationVar(&cfg.CommandTimeout, "command-timeout", cfg.CommandTimeout, "max runtime of the qstat query")
	fs.IntVar(&cfg.Retries, "retries", cfg.Retries, "extra attempts after a transient qstat or ssh failure")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "log diagnostics to stderr")

	return fs
}

func HelpText() string {
	cfg := defaultConfig()
	var states string
	fs := newFlagSet(&cfg, &states)

	var b strings.Builder
	b.WriteString("myresources: calculate job resource usage for running or recently finished jobs\n\n")
	b.WriteString("This tool can be used to check if requested resources are/were used optimally.\n\n")
	b.WriteString("Usage:\n")
	b.WriteString("  myresources [flags] [jobID...]\n")
	b.WriteString("  myresources doctor [flags]\n")
	b.WriteString("  myresources dry-run [flags] [jobID...]\n\n")
	b.WriteString("Commands:\n")
	b.WriteString("  report   Print the usage report (default when no command is given).\n")
	b.WriteString("  doctor   Check that qstat (or ssh) is reachable and exit.\n")
	b.WriteString("  dry-run  Print the planned execution order and exit.\n\n")
	b.WriteString("Resources:\n")
	b.WriteString("  memory     random access memory\n")
	b.WriteString("  walltime   wall-clock time\n")
	b.WriteString("  cores      number of CPU cores doing actual work\n\n")
	b.WriteString("Color codes corresponding to ratings:\n")
	b.WriteString("  green      good\n")
	b.WriteString("  yellow     medium\n")
	b.WriteString("  red        bad - wasting resources\n")
	b.WriteString("  magenta    danger - close to the limit\n")
	b.WriteString("  blue       no rating\n\n")
	b.WriteString("Flags:\n")
	b.WriteString(fs.FlagUsages())
	b.WriteString("\nExamples:\n")
	b.WriteString("  myresources\n")
	b.WriteString("  myresources 3046233 3046234\n")
	b.WriteString("  myresources -s R,C --nocolor\n")
	b.WriteString("  myresources --csv -f qstat.xml\n")
	b.WriteString("  myresources --ssh login.hpc.example.org -s R\n")
	b.WriteString("  myresources doctor --ssh login.hpc.example.org\n")

	return b.String()
}

func splitCommand(args []string) (Command, []string) {
	if len(args) == 0 {
		return CommandReport, args
	}

	switch strings.TrimSpace(args[0]) {
	case string(CommandDoctor):
		return CommandDoctor, args[1:]
	case string(CommandDryRun):
		return CommandDryRun, args[1:]
	case string(CommandReport):
		return CommandReport, args[1:]
	default:
		return CommandReport, args
	}
}

func parseStates(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var out []string
	for _, s := range strings.Split(raw, ",") {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if !torque.IsValidState(s) {
			return nil, fmt.Errorf("invalid job state %q (expected one of %s)", s, strings.Join(torque.States, ","))
		}
		out = append(out, s)
	}
	return out, nil
}

func ParseArgs(args []string) (Config, error) {
	cfg := defaultConfig()
	cfg.Command, args = splitCommand(args)
	var states string
	fs := newFlagSet(&cfg, &states)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return Config{}, ErrHelpRequested
		}
		return Config{}, err
	}

	for _, id := range fs.Args() {
		id = strings.TrimSpace(id)
		if !jobIDArgRe.MatchString(id) {
			return Config{}, fmt.Errorf("%s is not a valid jobID", id)
		}
		cfg.JobIDs = append(cfg.JobIDs, id)
	}

	var err error
	if cfg.States, err = parseStates(states); err != nil {
		return Config{}, err
	}

	switch {
	case cfg.Demo:
		cfg.Mode = ModeDemo
	case cfg.InFile != "":
		cfg.Mode = ModeFile
	case cfg.Target != "":
		cfg.Mode = ModeRemote
	default:
		cfg.Mode = ModeLocal
	}

	if cfg.InFile != "" && cfg.Target != "" {
		return Config{}, fmt.Errorf("--infile and --ssh are mutually exclusive")
	}
	if cfg.Target == "" && (cfg.SSHConfig != "" || cfg.IdentityFile != "" || cfg.Port != 0) {
		return Config{}, fmt.Errorf("ssh-specific flags require --ssh")
	}
	if cfg.CSV && cfg.Interactive {
		return Config{}, fmt.Errorf("--csv cannot be combined with --interactive")
	}
	if cfg.ConnectTimeout <= 0 {
		return Config{}, fmt.Errorf("--connect-timeout must be > 0")
	}
	if cfg.CommandTimeout <= 0 {
		return Config{}, fmt.Errorf("--command-timeout must be > 0")
	}
	if cfg.Retries < 0 {
		return Config{}, fmt.Errorf("--retries must be >= 0")
	}
	if cfg.Port < 0 {
		return Config{}, fmt.Errorf("--port must be >= 0")
	}

	return cfg, nil
}
