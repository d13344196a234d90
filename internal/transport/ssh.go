package transport

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type SSHOptions struct {
	Target         string
	ConfigPath     string
	IdentityFile   string
	Port           int
	ConnectTimeout time.Duration
}

// SSHTransport runs commands on a cluster login node with the system
// OpenSSH client. Repeated runs share one multiplexed connection.
type SSHTransport struct {
	opts        SSHOptions
	controlPath string
}

func NewSSHTransport(opts SSHOptions) *SSHTransport {
	return &SSHTransport{
		opts:        opts,
		controlPath: buildControlPath(opts),
	}
}

func (t *SSHTransport) Describe() string {
	return "ssh:" + t.opts.Target
}

func (t *SSHTransport) Run(ctx context.Context, command string) (RunResult, error) {
	return execute(ctx, t.Describe(), command, "ssh", t.buildSSHArgs(command)...)
}

// clientOptions are the -o settings for every run. BatchMode keeps ssh from
// prompting since nobody answers a password prompt mid-report. Connection
// sharing is only requested when a control socket path is available.
func (t *SSHTransport) clientOptions() []string {
	opts := make([]string, 0, 8)
	if t.opts.ConnectTimeout > 0 {
		seconds := int(math.Ceil(t.opts.ConnectTimeout.Seconds()))
		opts = append(opts, "ConnectTimeout="+strconv.Itoa(max(1, seconds)))
	}
	opts = append(opts,
		"BatchMode=yes",
		"ConnectionAttempts=2",
		"ServerAliveInterval=15",
		"ServerAliveCountMax=3",
	)
	if t.controlPath != "" {
		opts = append(opts, "ControlMaster=auto", "ControlPersist=60", "ControlPath="+t.controlPath)
	}
	return opts
}

func (t *SSHTransport) buildSSHArgs(command string) []string {
	var args []string
	for _, opt := range t.clientOptions() {
		args = append(args, "-o", opt)
	}
	for _, flag := range []struct {
		name  string
		value string
	}{
		{"-F", t.opts.ConfigPath},
		{"-i", t.opts.IdentityFile},
	} {
		if flag.value != "" {
			args = append(args, flag.name, flag.value)
		}
	}
	if t.opts.Port > 0 {
		args = append(args, "-p", strconv.Itoa(t.opts.Port))
	}

	// A login shell loads the site modules that put qstat on PATH.
	return append(args, t.opts.Target, "bash -lc "+shellQuote(command))
}

func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}

// buildControlPath names one socket per login node and ssh settings, under
// a private directory in the temp dir. Sockets must stay short (the unix
// limit is about 100 bytes), hence the truncated hash. An empty result
// disables connection sharing.
func buildControlPath(opts SSHOptions) string {
	h := sha1.New()
	for _, part := range []string{opts.Target, opts.ConfigPath, opts.IdentityFile, strconv.Itoa(opts.Port)} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	dir := filepath.Join(os.TempDir(), "myresources-ssh")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return ""
	}
	return filepath.Join(dir, hex.EncodeToString(h.Sum(nil)[:8]))
}
