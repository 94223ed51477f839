// ABOUTME: Shared state and helpers for CLI commands
// ABOUTME: Holds the store, scoring engine, and deal mover plus prompt handling
package cli

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/harperreed/leadflow/db"
	"github.com/harperreed/leadflow/events"
	"github.com/harperreed/leadflow/pipeline"
	"github.com/harperreed/leadflow/scoring"
	"golang.org/x/term"
)

// App carries everything a command needs. Commands write to Out and read
// confirmations from In.
type App struct {
	Store     *db.Store
	Engine    *scoring.Engine
	Mover     *pipeline.Mover
	Publisher events.Publisher
	Out       io.Writer
	In        io.Reader

	// Interactive allows yes/no prompts. Without it destructive commands need --yes.
	Interactive bool
}

// StdinIsTerminal reports whether confirmations can be asked for.
func StdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func (a *App) publisher() events.Publisher {
	if a.Publisher == nil {
		return events.Nop
	}
	return a.Publisher
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return fs
}

func (a *App) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(a.Out, format, args...)
}

func (a *App) confirm(prompt string, yes bool) (bool, error) {
	if yes {
		return true, nil
	}
	if !a.Interactive {
		return false, errors.New("refusing to delete without --yes")
	}

	a.printf("%s [y/N]: ", prompt)
	line, err := bufio.NewReader(a.In).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

func parseID(kind string, fs *flag.FlagSet) (int64, error) {
	if fs.NArg() < 1 {
		return 0, fmt.Errorf("%s ID is required", kind)
	}
	id, err := strconv.ParseInt(fs.Arg(0), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s ID: %q", kind, fs.Arg(0))
	}
	return id, nil
}

// optionalID turns a zero flag value into no ID.
func optionalID(id int64) *int64 {
	if id <= 0 {
		return nil
	}
	return &id
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
