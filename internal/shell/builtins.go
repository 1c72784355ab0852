package shell

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Builtin is the handler capability for an internal command: given its
// argv (argv[0] is the name) and the writers its output/errors should go
// through, run the command and return its exit status. A non-nil error
// (always an *ExitError in this registry) tells the caller to stop the
// REPL loop rather than continue to the next prompt.
type Builtin func(s *Session, argv []string, io ioBindings) (int, error)

// BuiltinRegistry is the name -> handler table for echo, exit, type, pwd,
// cd and history.
type BuiltinRegistry struct {
	handlers map[string]Builtin
}

// NewBuiltinRegistry builds the fixed builtin set.
func NewBuiltinRegistry() *BuiltinRegistry {
	r := &BuiltinRegistry{handlers: make(map[string]Builtin)}
	r.handlers["echo"] = builtinEcho
	r.handlers["exit"] = builtinExit
	r.handlers["type"] = builtinType
	r.handlers["pwd"] = builtinPwd
	r.handlers["cd"] = builtinCd
	r.handlers["history"] = builtinHistory
	return r
}

// Lookup returns the handler for name, if any.
func (r *BuiltinRegistry) Lookup(name string) (Builtin, bool) {
	h, ok := r.handlers[name]
	return h, ok
}

// IsBuiltin reports whether name is registered.
func (r *BuiltinRegistry) IsBuiltin(name string) bool {
	_, ok := r.handlers[name]
	return ok
}

// Names returns the registered builtin names, sorted, for feeding the
// LineEditor's completion candidate list.
func (r *BuiltinRegistry) Names() []string {
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func builtinEcho(s *Session, argv []string, io ioBindings) (int, error) {
	fmt.Fprintln(io.Out, strings.Join(argv[1:], " "))
	return 0, nil
}

func builtinExit(s *Session, argv []string, io ioBindings) (int, error) {
	code := 0
	if len(argv) > 1 {
		n, err := strconv.Atoi(argv[1])
		if err != nil {
			fmt.Fprintf(io.Err, "exit: %s: numeric argument required\n", argv[1])
			return 2, nil
		}
		code = n
	}
	s.persistHistory()
	return code, &ExitError{Code: code}
}

func builtinType(s *Session, argv []string, io ioBindings) (int, error) {
	if len(argv) < 2 {
		fmt.Fprintln(io.Out, "type: missing argument")
		return 0, nil
	}

	name := argv[1]
	if s.Builtins.IsBuiltin(name) {
		fmt.Fprintf(io.Out, "%s is a shell builtin\n", name)
		return 0, nil
	}

	if path, ok := Resolve(name, s.env("PATH")); ok {
		fmt.Fprintf(io.Out, "%s is %s\n", name, path)
		return 0, nil
	}

	fmt.Fprintf(io.Out, "%s: not found\n", name)
	return 0, nil
}

func builtinPwd(s *Session, argv []string, io ioBindings) (int, error) {
	dir, err := os.Getwd()
	if err != nil {
		fmt.Fprintln(io.Err, "pwd: error retrieving current directory")
		return 1, nil
	}
	fmt.Fprintln(io.Out, dir)
	return 0, nil
}

func builtinCd(s *Session, argv []string, io ioBindings) (int, error) {
	if len(argv) < 2 || argv[1] == "" {
		return 0, nil
	}

	target := argv[1]
	if target == "~" {
		target = s.env("HOME")
	}

	if err := os.Chdir(target); err != nil {
		fmt.Fprintf(io.Err, "cd: %s: No such file or directory\n", argv[1])
		return 1, nil
	}
	return 0, nil
}

func builtinHistory(s *Session, argv []string, io ioBindings) (int, error) {
	args := argv[1:]

	if len(args) >= 2 {
		switch args[0] {
		case "-r":
			if err := s.History.LoadFile(args[1]); err != nil {
				fmt.Fprintf(io.Err, "history: %s: %v\n", args[1], err)
				return 1, nil
			}
			return 0, nil
		case "-w":
			if err := s.History.WriteFile(args[1]); err != nil {
				fmt.Fprintf(io.Err, "history: %s: %v\n", args[1], err)
				return 1, nil
			}
			return 0, nil
		case "-a":
			if err := s.History.AppendFile(args[1]); err != nil {
				fmt.Fprintf(io.Err, "history: %s: %v\n", args[1], err)
				return 1, nil
			}
			return 0, nil
		}
	}

	entries := s.History.Entries()
	start := 0
	if len(args) >= 1 {
		if n, err := strconv.Atoi(args[0]); err == nil && n < len(entries) {
			start = len(entries) - n
		}
	}

	for i := start; i < len(entries); i++ {
		fmt.Fprintf(io.Out, "    %d  %s\n", i+1, entries[i])
	}
	return 0, nil
}
