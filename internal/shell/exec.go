package shell

import (
	"fmt"
	"os"
	"os/exec"
)

// runSingle dispatches a single-stage command: a builtin runs in-process
// with its redirections applied and reverted around the call; anything
// else is resolved on PATH and run as a child process inheriting the
// session's current stdio (adjusted per its own redirections).
func (s *Session) runSingle(stage Stage) error {
	if len(stage.Argv) == 0 {
		return nil
	}

	base := ioBindings{Out: s.Out, Err: s.Err}

	if handler, ok := s.Builtins.Lookup(stage.Argv[0]); ok {
		bound, revert, err := applyRedirections(base, stage.Redirs, s.Opener)
		if err != nil {
			fmt.Fprintln(s.Err, err)
			return nil
		}
		defer revert()

		_, runErr := handler(s, stage.Argv, bound)
		if runErr != nil {
			return runErr
		}
		return nil
	}

	return s.runExternal(stage, base)
}

// runExternal resolves stage.Argv[0] on PATH and execs it, wiring its
// stdio to the session's writers (or this stage's own redirections) and
// waiting for it to finish.
func (s *Session) runExternal(stage Stage, base ioBindings) error {
	path, ok := Resolve(stage.Argv[0], s.env("PATH"))
	if !ok {
		fmt.Fprintf(s.Err, "%s: command not found\n", stage.Argv[0])
		return nil
	}

	bound, revert, err := applyRedirections(base, stage.Redirs, s.Opener)
	if err != nil {
		fmt.Fprintln(s.Err, err)
		return nil
	}
	defer revert()

	cmd := exec.Command(path, stage.Argv[1:]...)
	cmd.Args = append([]string{stage.Argv[0]}, stage.Argv[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = bound.Out
	cmd.Stderr = bound.Err

	if err := cmd.Run(); err != nil {
		if _, ok := err.(*exec.ExitError); !ok {
			fmt.Fprintf(s.Err, "%s: %v\n", stage.Argv[0], err)
		}
	}
	return nil
}
