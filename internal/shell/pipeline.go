package shell

import (
	"fmt"
	"io"
	"os"
	"os/exec"
)

// stageRunner is the common capability every pipeline stage exposes:
// start it, then wait for its exit status. Every stage that starts is a
// real child process — a builtin included, via reexecCommand — run by
// cmdRunner, a thin wrapper over *exec.Cmd; noopRunner stands in for a
// stage that could not be resolved or started and reports status 1.
type stageRunner interface {
	start() error
	wait() (int, error)
}

type cmdRunner struct {
	cmd *exec.Cmd
}

func (r *cmdRunner) start() error { return r.cmd.Start() }

func (r *cmdRunner) wait() (int, error) {
	err := r.cmd.Wait()
	if err == nil {
		return 0, nil
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode(), nil
	}
	return -1, err
}

// pipePair is one anonymous pipe created for a pipeline: the read end
// feeds the next stage's stdin, the write end receives the previous
// stage's stdout.
type pipePair struct{ r, w *os.File }

func closePipes(pipes []pipePair) {
	for _, p := range pipes {
		p.r.Close()
		p.w.Close()
	}
}

// runPipeline implements spec.md §4.6: create N-1 anonymous pipes, fork
// every stage before waiting on any of them, close every pipe descriptor
// in this process once all stages are running, then wait on each stage
// in the order it was started. A builtin stage is "forked" by
// re-executing this binary in its one-shot builtin mode (reexecCommand)
// rather than run as a goroutine sharing the session — §5 requires that
// no two handlers ever execute simultaneously in the shell process, and
// cd/history/exit mutate state that must not leak back into the
// interactive shell once the pipeline stage exits. Each stage's exit
// status is read by wait but not reported: runPipeline returns nil
// whatever the stages exit with.
func (s *Session) runPipeline(p *Pipeline) error {
	n := len(p.Stages)

	pipes := make([]pipePair, n-1)
	for i := range pipes {
		r, w, err := os.Pipe()
		if err != nil {
			closePipes(pipes[:i])
			fmt.Fprintln(s.Err, "Failed to create pipe")
			return nil
		}
		pipes[i] = pipePair{r: r, w: w}
	}

	runners := make([]stageRunner, n)
	var reverts []func()
	var parentOwned []io.Closer

	for i, stage := range p.Stages {
		bound := ioBindings{Out: s.Out, Err: s.Err}

		var stdinFile *os.File
		if i > 0 {
			stdinFile = pipes[i-1].r
		}

		var pipeWrite *os.File
		if i < n-1 {
			pipeWrite = pipes[i].w
			bound.Out = pipeWrite
		}

		bound, revert, err := applyRedirections(bound, stage.Redirs, s.Opener)
		if err != nil {
			fmt.Fprintln(s.Err, err)
			closePipes(pipes)
			for _, revert := range reverts {
				revert()
			}
			return nil
		}
		reverts = append(reverts, revert)

		var cmd *exec.Cmd
		if _, ok := s.Builtins.Lookup(stage.Argv[0]); ok {
			c, err := reexecCommand(stage.Argv)
			if err != nil {
				fmt.Fprintf(s.Err, "Failed to fork: %v\n", err)
				runners[i] = &noopRunner{code: 1}
				if stdinFile != nil {
					parentOwned = append(parentOwned, stdinFile)
				}
				if pipeWrite != nil {
					parentOwned = append(parentOwned, pipeWrite)
				}
				continue
			}
			cmd = c
		} else {
			path, ok := Resolve(stage.Argv[0], s.env("PATH"))
			if !ok {
				fmt.Fprintf(s.Err, "%s: command not found\n", stage.Argv[0])
				runners[i] = &noopRunner{code: 1}
				if stdinFile != nil {
					parentOwned = append(parentOwned, stdinFile)
				}
				if pipeWrite != nil {
					parentOwned = append(parentOwned, pipeWrite)
				}
				continue
			}
			cmd = exec.Command(path, stage.Argv[1:]...)
			cmd.Args = append([]string{stage.Argv[0]}, stage.Argv[1:]...)
		}

		if stdinFile != nil {
			cmd.Stdin = stdinFile
		} else {
			cmd.Stdin = os.Stdin
		}
		cmd.Stdout = bound.Out
		cmd.Stderr = bound.Err

		runners[i] = &cmdRunner{cmd: cmd}

		if stdinFile != nil {
			parentOwned = append(parentOwned, stdinFile)
		}
		if pipeWrite != nil {
			parentOwned = append(parentOwned, pipeWrite)
		}
	}

	for i, r := range runners {
		if err := r.start(); err != nil {
			fmt.Fprintf(s.Err, "Failed to start %s: %v\n", p.Stages[i].Argv[0], err)
			runners[i] = &noopRunner{code: 1}
		}
	}

	for _, c := range parentOwned {
		c.Close()
	}

	for i, r := range runners {
		if _, err := r.wait(); err != nil {
			fmt.Fprintf(s.Err, "%s: %v\n", p.Stages[i].Argv[0], err)
		}
	}

	for _, revert := range reverts {
		revert()
	}

	return nil
}

type noopRunner struct{ code int }

func (r *noopRunner) start() error       { return nil }
func (r *noopRunner) wait() (int, error) { return r.code, nil }
