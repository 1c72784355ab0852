package shell

import (
	"fmt"
	"os"
	"os/exec"
)

// reexecFlag marks the hidden "run one builtin and exit" invocation this
// binary answers to when a builtin appears as a pipeline stage. spec.md
// §4.6 forks a real child for every pipeline stage, builtins included, so
// a stage's cd/history/exit never mutates the interactive shell's own
// cwd, history buffer, or lifetime. A goroutine sharing the parent's
// address space can't give a stage its own cwd or its own History
// without a mutex serializing it against the rest of the shell, so
// instead this re-execs the binary itself as that forked child.
const reexecFlag = "__goshell_pipeline_builtin__"

// IsReexecInvocation reports whether args (os.Args) requests the
// one-shot builtin mode reexecCommand produces.
func IsReexecInvocation(args []string) bool {
	return len(args) > 1 && args[1] == reexecFlag
}

// RunReexeced runs the single builtin named by args[2:] against a freshly
// constructed Session (which reloads HISTFILE itself, mirroring what a
// real fork would hand the child) and exits with its status. It never
// returns.
func RunReexeced(args []string) {
	argv := args[2:]
	if len(argv) == 0 {
		os.Exit(1)
	}

	s := NewSession(os.Stdout, os.Stderr)
	handler, ok := s.Builtins.Lookup(argv[0])
	if !ok {
		fmt.Fprintf(os.Stderr, "%s: command not found\n", argv[0])
		os.Exit(127)
	}

	code, _ := handler(s, argv, ioBindings{Out: os.Stdout, Err: os.Stderr})
	os.Exit(code)
}

// reexecArgs and reexecEnv are test seams. Production leaves them at
// their defaults (plain argv prefixed with reexecFlag, no extra
// environment); the package's tests substitute the go test binary's own
// "-test.run=TestHelperProcess" + GO_WANT_HELPER_PROCESS-style
// invocation, the same helper-process pattern os/exec's own test suite
// uses to exercise fork+exec behavior without a standalone binary to
// re-exec.
var reexecArgs = func(argv []string) []string {
	return append([]string{reexecFlag}, argv...)
}

var reexecEnv = func() []string { return nil }

// reexecCommand builds the *exec.Cmd standing in for "fork; child runs
// this builtin" for a pipeline stage whose argv[0] is a registered
// builtin. Its Stdin/Stdout/Stderr are wired by the caller exactly like
// any other pipeline stage.
func reexecCommand(argv []string) (*exec.Cmd, error) {
	self, err := os.Executable()
	if err != nil {
		return nil, err
	}
	cmd := exec.Command(self, reexecArgs(argv)...)
	if env := reexecEnv(); env != nil {
		cmd.Env = append(os.Environ(), env...)
	}
	return cmd, nil
}
