package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"myresources/internal/app"
	"myresources/internal/config"
)

func main() {
	ignoreBrokenPipe()
	os.Exit(run(os.Args[1:]))
}

// ignoreBrokenPipe keeps the runtime from killing the process when stdout is
// a closed pipe, so the write returns EPIPE and the report ends with status 0.
func ignoreBrokenPipe() {
	signal.Ignore(syscall.SIGPIPE)
}

func run(args []string) int {
	if len(args) > 0 && strings.TrimSpace(args[0]) == "completion" {
		return runCompletion(args[1:])
	}

	cfg, err := config.ParseArgs(args)
	switch {
	case errors.Is(err, config.ErrHelpRequested):
		fmt.Fprint(os.Stdout, config.HelpText())
		return 0
	case err != nil:
		fmt.Fprintf(os.Stderr, "argument error: %v\n", err)
		fmt.Fprintln(os.Stderr, "run 'myresources --help' for usage details")
		return 2
	}

	if err := app.Run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "myresources error: %v\n", err)
		return 1
	}
	return 0
}

func runCompletion(args []string) int {
	if len(args) >= 1 && isHelpArg(args[0]) {
		fmt.Fprint(os.Stdout, completionHelpText())
		return 0
	}
	if len(args) > 1 {
		fmt.Fprintln(os.Stderr, "argument error: completion accepts zero or one shell argument (bash or zsh)")
		return 2
	}
	shell := "bash"
	if len(args) == 1 {
		shell = strings.ToLower(strings.TrimSpace(args[0]))
	}
	script, err := completionScript(shell)
	if err != nil {
		fmt.Fprintf(os.Stderr, "argument error: %v\n", err)
		return 2
	}
	fmt.Fprint(os.Stdout, script)
	return 0
}

func isHelpArg(arg string) bool {
	return arg == "-h" || arg == "--help" || arg == "help"
}

func completionHelpText() string {
	return `myresources completion

Print shell completion script output for myresources.

Usage:
  myresources completion [bash|zsh]

Examples:
  myresources completion bash > ~/.local/share/bash-completion/completions/myresources
  mkdir -p ~/.zsh/completions
  myresources completion zsh > ~/.zsh/completions/_myresources
`
}

const completionFlags = "--noalert --nocolor --csv --infile --state --demo --version --interactive --ssh --ssh-config --identity-file --port --connect-timeout --command-timeout --retries --verbose --help"

func completionScript(shell string) (string, error) {
	switch shell {
	case "bash":
		return `# bash completion for myresources
_myresources_completion() {
  local cur prev words cword
  _init_completion || return
  local commands="report doctor dry-run completion"
  local flags="` + completionFlags + `"
  case "${prev}" in
    -s|--state)
      COMPREPLY=( $(compgen -W "Q H R E C" -- "${cur}") )
      return
      ;;
    -f|--infile|--ssh-config|--identity-file)
      _filedir
      return
      ;;
  esac
  if [[ ${cword} -eq 1 && ${cur} != -* ]]; then
    COMPREPLY=( $(compgen -W "${commands}" -- "${cur}") )
    return
  fi
  case "${words[1]}" in
    completion)
      COMPREPLY=( $(compgen -W "bash zsh" -- "${cur}") )
      ;;
    *)
      COMPREPLY=( $(compgen -W "${flags}" -- "${cur}") )
      ;;
  esac
}
complete -F _myresources_completion myresources
`, nil
	case "zsh":
		return `#compdef myresources
_myresources() {
  local -a commands
  commands=(
    'report:print the usage report (default)'
    'doctor:run non-mutating preflight checks'
    'dry-run:print planned execution order'
    'completion:print shell completion script'
  )
  if (( CURRENT == 2 )) && [[ ${words[2]} != -* ]]; then
    _describe 'command' commands
    return
  fi
  case "${words[2]}" in
    completion)
      _values 'shell' bash zsh
      ;;
    *)
      _values 'flag' ` + completionFlags + `
      ;;
  esac
}
_myresources "$@"
`, nil
	default:
		return "", fmt.Errorf("unsupported shell %q (expected bash or zsh)", shell)
	}
}
