// Package editor wraps github.com/chzyer/readline, the line-editing
// collaborator spec.md §1 places out of scope for the core: prompt
// display, key bindings, in-session history recall, and completion menu
// rendering all live here. The core never touches terminal modes; it only
// calls Readline and feeds SetCompletionCandidates a fresh name list.
package editor

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/chzyer/readline"
)

const prompt = "$ "

// Editor is the interactive line reader the REPL consumes completed
// lines from.
type Editor struct {
	rl        *readline.Instance
	completer *readline.PrefixCompleter
	tab       *tabCompleter
}

// New builds an Editor reading from in and writing prompts/echo to out.
// No HistoryFile is configured on the underlying readline.Instance: it
// keeps its own in-memory recall list for arrow-key navigation only, but
// persistence to disk is always done through the core's own History type,
// never through this library's file.
func New(in io.ReadCloser, out io.Writer) (*Editor, error) {
	completer := readline.NewPrefixCompleter()
	tab := &tabCompleter{PrefixCompleterInterface: completer, out: out}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		Stdin:           in,
		Stdout:          out,
		Stderr:          out,
		AutoComplete:    tab,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, err
	}

	return &Editor{rl: rl, completer: completer, tab: tab}, nil
}

// Readline blocks for one line of input. It returns io.EOF on end of
// input and readline.ErrInterrupt on Ctrl-C.
func (e *Editor) Readline() (string, error) {
	return e.rl.Readline()
}

// SetCompletionCandidates refreshes the tab-completion name list. It is
// cheap enough to call before every Readline, so renamed or newly
// installed PATH executables and the fixed builtin set are always
// reflected.
func (e *Editor) SetCompletionCandidates(names []string) {
	seen := map[string]struct{}{}
	sorted := make([]string, 0, len(names))
	for _, name := range names {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)

	items := make([]readline.PrefixCompleterInterface, 0, len(sorted))
	for _, name := range sorted {
		items = append(items, readline.PcItem(name))
	}
	e.completer.SetChildren(items)
}

// Close releases the underlying terminal state.
func (e *Editor) Close() error {
	return e.rl.Close()
}

// tabCompleter layers bash's double-tab behavior over the library's plain
// prefix completer: a single TAB on an ambiguous prefix rings the bell (or
// completes to the longest common prefix when one exists), a second TAB
// lists every match. Grounded on the reference shell's
// rl_attempted_completion_function wiring, which does the same via
// GNU readline's completion hooks.
type tabCompleter struct {
	readline.PrefixCompleterInterface
	out      io.Writer
	lastLine string
	tabCount int
}

func (t *tabCompleter) Do(line []rune, pos int) (newLine [][]rune, length int) {
	suggestions, length := t.PrefixCompleterInterface.Do(line, pos)
	input := string(line[:pos])

	if input == t.lastLine {
		t.tabCount++
	} else {
		t.tabCount = 1
		t.lastLine = input
	}

	if len(suggestions) == 0 {
		fmt.Fprint(t.out, "\a")
		return suggestions, length
	}

	if len(suggestions) == 1 {
		return suggestions, length
	}

	lcp := string(suggestions[0])
	for _, s := range suggestions[1:] {
		lcp = commonPrefix(lcp, string(s))
	}
	if lcp != "" {
		return [][]rune{[]rune(lcp)}, length
	}

	if t.tabCount == 1 {
		fmt.Fprint(t.out, "\a")
		return nil, 0
	}

	fmt.Fprintln(t.out)
	names := make([]string, 0, len(suggestions))
	for _, s := range suggestions {
		names = append(names, input+string(s))
	}
	sort.Strings(names)
	fmt.Fprintln(t.out, strings.Join(names, "  "))
	fmt.Fprint(t.out, prompt+input)
	return nil, 0
}

func commonPrefix(a, b string) string {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return a[:i]
}
