package handoff

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// Runner starts an external program without waiting for it to finish.
type Runner func(ctx context.Context, name string, args ...string) error

// StartDetached launches the command and reaps it in the background.
func StartDetached(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

// CommandStrategy opens the link with an external program.
type CommandStrategy struct {
	name    string
	command string
	args    []string
	run     Runner
}

func NewCommandStrategy(name, command string, args []string, run Runner) *CommandStrategy {
	if run == nil {
		run = StartDetached
	}
	return &CommandStrategy{name: name, command: command, args: args, run: run}
}

// SystemOpener hands the link to the desktop's default URL handler.
func SystemOpener(goos string, run Runner) *CommandStrategy {
	switch goos {
	case "darwin":
		return NewCommandStrategy("system_opener", "open", nil, run)
	case "windows":
		return NewCommandStrategy("system_opener", "rundll32", []string{"url.dll,FileProtocolHandler"}, run)
	default:
		return NewCommandStrategy("system_opener", "xdg-open", nil, run)
	}
}

// BrowserFromEnv opens the link with the program named by $BROWSER. It fails
// when the variable is unset.
func BrowserFromEnv(run Runner) *CommandStrategy {
	return NewCommandStrategy("browser_env", strings.TrimSpace(os.Getenv("BROWSER")), nil, run)
}

func (s *CommandStrategy) Name() string { return s.name }

func (s *CommandStrategy) Open(ctx context.Context, link string) error {
	if s.command == "" {
		return errors.New("no command configured")
	}
	args := append(append([]string(nil), s.args...), link)
	return s.run(ctx, s.command, args...)
}

// WriterStrategy prints the link so the user can open it by hand. It is the
// last resort and only fails when the writer does.
type WriterStrategy struct {
	w      io.Writer
	prompt string
}

func NewWriterStrategy(w io.Writer, prompt string) *WriterStrategy {
	if prompt == "" {
		prompt = "Open this link to send your order:"
	}
	return &WriterStrategy{w: w, prompt: prompt}
}

func (s *WriterStrategy) Name() string { return "print_link" }

func (s *WriterStrategy) Open(_ context.Context, link string) error {
	_, err := fmt.Fprintf(s.w, "%s\n%s\n", s.prompt, link)
	return err
}

// FuncStrategy adapts a function, e.g. to capture the link for an HTTP response.
type FuncStrategy struct {
	name string
	fn   func(ctx context.Context, link string) error
}

func NewFuncStrategy(name string, fn func(ctx context.Context, link string) error) *FuncStrategy {
	return &FuncStrategy{name: name, fn: fn}
}

func (s *FuncStrategy) Name() string { return s.name }

func (s *FuncStrategy) Open(ctx context.Context, link string) error {
	return s.fn(ctx, link)
}

// DesktopStrategies is the ordered chain used by the CLI: the system opener,
// then $BROWSER, then printing the link to out.
func DesktopStrategies(out io.Writer, run Runner) []Strategy {
	return []Strategy{
		SystemOpener(runtime.GOOS, run),
		BrowserFromEnv(run),
		NewWriterStrategy(out, ""),
	}
}
