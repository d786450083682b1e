// Package interactive provides the interactive shell for sc-query.
package interactive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/printpipe/sidechannel-go/internal/config"
	"github.com/printpipe/sidechannel-go/internal/query"
	"github.com/printpipe/sidechannel-go/pkg/mib"
)

// Shell reads query commands from a terminal and runs them one at a time.
type Shell struct {
	runner *query.Runner
	rl     *readline.Instance
	out    io.Writer
}

// New creates a shell around runner. The runner's output is redirected to
// the terminal.
func New(runner *query.Runner) (*Shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "sc> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    completer(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	runner.Out = rl.Stdout()
	return &Shell{runner: runner, rl: rl, out: rl.Stdout()}, nil
}

// Stdout returns a writer that coordinates with the prompt.
func (s *Shell) Stdout() io.Writer {
	return s.rl.Stdout()
}

// Stderr returns a writer that coordinates with the prompt.
func (s *Shell) Stderr() io.Writer {
	return s.rl.Stderr()
}

// Run reads commands until EOF, quit, or ctx is done.
func (s *Shell) Run(ctx context.Context) {
	defer s.rl.Close()

	s.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := s.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(s.rl.Stdout(), "Exiting...")
			return
		}

		if quit := s.exec(line); quit {
			fmt.Fprintln(s.rl.Stdout(), "Exiting...")
			return
		}
	}
}

// exec runs one input line and reports whether the shell should exit.
func (s *Shell) exec(line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false
	}

	switch strings.ToLower(parts[0]) {
	case "help", "?":
		s.printHelp()
	case "names":
		s.printNames()
	case "timeout":
		s.cmdTimeout(parts[1:])
	case "quit", "exit", "q":
		return true
	default:
		if err := s.runner.Run(parts); err != nil {
			if errors.Is(err, query.ErrUsage) {
				fmt.Fprintf(s.out, "%v (type 'help' for commands)\n", err)
			} else {
				fmt.Fprintf(s.out, "Error: %v\n", err)
			}
		}
	}
	return false
}

func (s *Shell) cmdTimeout(args []string) {
	out := s.out
	switch len(args) {
	case 0:
		fmt.Fprintf(out, "Timeout: %s\n", config.Timeout(s.runner.Timeout))
	case 1:
		t, err := config.ParseTimeout(args[0])
		if err != nil {
			fmt.Fprintf(out, "Invalid timeout: %s\n", args[0])
			return
		}
		s.runner.Timeout = t.Duration()
		fmt.Fprintf(out, "Timeout: %s\n", t)
	default:
		fmt.Fprintln(out, "Usage: timeout [duration]")
	}
}

func (s *Shell) printNames() {
	out := s.out
	for _, name := range mib.Names() {
		oid, _ := mib.Lookup(name)
		fmt.Fprintf(out, "  %-30s %s\n", name, oid)
	}
}

func (s *Shell) printHelp() {
	var b strings.Builder
	b.WriteString("\nSide Channel Commands:\n")
	for _, c := range query.Commands() {
		usage := c.Name
		if c.Args != "" {
			usage += " " + c.Args
		}
		fmt.Fprintf(&b, "  %-20s - %s\n", usage, c.Usage)
	}
	b.WriteString(`
Shell:
  names                - List known OID names
  timeout [duration]   - Show or set the per-request timeout ("forever" blocks)
  help                 - Show this help
  quit                 - Exit
`)
	fmt.Fprint(s.out, b.String())
}

func completer() *readline.PrefixCompleter {
	names := make([]readline.PrefixCompleterInterface, 0, len(mib.Names()))
	for _, n := range mib.Names() {
		names = append(names, readline.PcItem(n))
	}

	items := []readline.PrefixCompleterInterface{
		readline.PcItem("help"),
		readline.PcItem("names"),
		readline.PcItem("timeout"),
		readline.PcItem("quit"),
	}
	for _, c := range query.Commands() {
		if c.Name == "get" || c.Name == "walk" {
			items = append(items, readline.PcItem(c.Name, names...))
			continue
		}
		items = append(items, readline.PcItem(c.Name))
	}
	return readline.NewPrefixCompleter(items...)
}
