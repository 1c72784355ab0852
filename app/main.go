package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/arjunsdev/goshell/internal/editor"
	"github.com/arjunsdev/goshell/internal/shell"
)

func main() {
	// A pipeline stage whose argv[0] is a builtin re-execs this same
	// binary to get a real forked child (see internal/shell/reexec.go);
	// answer that one-shot mode before anything else starts up.
	if shell.IsReexecInvocation(os.Args) {
		shell.RunReexeced(os.Args)
	}

	os.Exit(run())
}

func run() int {
	session := shell.NewSession(os.Stdout, os.Stderr)

	ed, err := editor.New(io.NopCloser(os.Stdin), os.Stdout)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to initialize line editor:", err)
		return 1
	}
	defer ed.Close()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)
	go func() {
		for range sigCh {
			// A foreground child receives SIGINT directly from the
			// terminal's process group; the shell itself just keeps
			// reading the next line rather than dying with it.
		}
	}()

	for {
		ed.SetCompletionCandidates(session.CompletionCandidates())

		line, err := ed.Readline()
		switch {
		case err == io.EOF:
			session.PersistHistoryOnExit()
			return 0
		case err != nil:
			continue
		}

		runErr := session.RunLine(line)
		if code, exited := shell.IsExit(runErr); exited {
			return code
		}
	}
}
