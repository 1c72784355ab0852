package shell

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Session is the shell's process-wide state: the builtin table, the
// history buffer, the writers builtins and diagnostics write through, and
// the file opener redirections use.
type Session struct {
	Out      io.Writer
	Err      io.Writer
	Builtins *BuiltinRegistry
	History  *History
	Opener   FileOpener

	historyFile string
}

// NewSession builds a session wired to real stdio and the host
// filesystem, loading HISTFILE (if set) into the history buffer.
func NewSession(out, err io.Writer) *Session {
	s := &Session{
		Out:         out,
		Err:         err,
		Builtins:    NewBuiltinRegistry(),
		History:     NewHistory(),
		Opener:      DefaultFileOpener{},
		historyFile: os.Getenv("HISTFILE"),
	}

	if s.historyFile != "" {
		if err := s.History.LoadFile(s.historyFile); err != nil && !os.IsNotExist(err) {
			fmt.Fprintf(s.Err, "history: %s: %v\n", s.historyFile, err)
		}
	}

	return s
}

func (s *Session) env(key string) string {
	return os.Getenv(key)
}

// persistHistory performs the equivalent of `history -w HISTFILE`, used
// both by the exit builtin and by the REPL on end-of-input.
func (s *Session) persistHistory() {
	if s.historyFile == "" {
		return
	}
	if err := s.History.WriteFile(s.historyFile); err != nil {
		fmt.Fprintf(s.Err, "history: %s: %v\n", s.historyFile, err)
	}
}

// PersistHistoryOnExit is persistHistory's exported form, for the REPL to
// call on end-of-input (spec.md §4.8's "on normal exit and end-of-input").
func (s *Session) PersistHistoryOnExit() {
	s.persistHistory()
}

// CompletionCandidates returns every builtin name plus every executable
// visible on PATH, for the LineEditor's tab-completion list.
func (s *Session) CompletionCandidates() []string {
	names := append([]string{}, s.Builtins.Names()...)
	names = append(names, AllExecutables(s.env("PATH"))...)
	return names
}

// RunLine parses and executes one line of input. A blank line is a no-op
// (no history entry, no error). The returned error is non-nil only when
// the exit builtin was invoked; the caller should stop the REPL loop.
func (s *Session) RunLine(line string) error {
	if strings.TrimSpace(line) == "" {
		return nil
	}

	s.History.Add(line)

	pipeline, err := Parse(line)
	if err != nil {
		fmt.Fprintln(s.Err, err)
		return nil
	}

	if len(pipeline.Stages) == 1 {
		return s.runSingle(pipeline.Stages[0])
	}
	return s.runPipeline(pipeline)
}

// IsExit reports whether err (as returned by RunLine) was the exit
// builtin, and its requested status code.
func IsExit(err error) (int, bool) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code, true
	}
	return 0, false
}
