package shell

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestRunPipelineBuiltinsOnlyNoDeadlock(t *testing.T) {
	// Each stage is a real forked child (see reexec.go), so neither
	// stage's pipe descriptors linger once its process exits; this just
	// guards against a regression back to a shared-goroutine model that
	// could reintroduce the deadlock.
	s, out, _ := newTestSession(t)

	p, err := Parse("echo first | echo second")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	done := make(chan struct{})
	go func() {
		if err := s.runPipeline(p); err != nil {
			t.Errorf("runPipeline: %v", err)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-timeoutAfter(t):
		t.Fatal("runPipeline deadlocked on an all-builtin pipeline")
	}

	if out.String() != "second\n" {
		t.Errorf("output = %q, want %q", out.String(), "second\n")
	}
}

func TestRunPipelineExternalCommand(t *testing.T) {
	catPath, ok := Resolve("cat", os.Getenv("PATH"))
	if !ok {
		t.Skip("cat not found on PATH")
	}
	_ = catPath

	s, out, _ := newTestSession(t)
	p, err := Parse("echo piped | cat")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	done := make(chan struct{})
	go func() {
		if err := s.runPipeline(p); err != nil {
			t.Errorf("runPipeline: %v", err)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-timeoutAfter(t):
		t.Fatal("runPipeline deadlocked piping a builtin into an external command")
	}

	if out.String() != "piped\n" {
		t.Errorf("output = %q, want %q", out.String(), "piped\n")
	}
}

func TestRunPipelineStageRedirectionOverridesPipe(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "captured.txt")

	s, out, _ := newTestSession(t)
	p, err := Parse("echo redirected > " + target + " | echo downstream")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	done := make(chan struct{})
	go func() {
		if err := s.runPipeline(p); err != nil {
			t.Errorf("runPipeline: %v", err)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-timeoutAfter(t):
		t.Fatal("runPipeline deadlocked when a non-last stage's stdout was redirected to a file")
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("reading redirected file: %v", err)
	}
	if string(data) != "redirected\n" {
		t.Errorf("file contents = %q, want %q", data, "redirected\n")
	}
	if out.String() != "downstream\n" {
		t.Errorf("session output = %q, want %q", out.String(), "downstream\n")
	}
}

func TestRunPipelineCommandNotFoundMidPipeline(t *testing.T) {
	s, _, errw := newTestSession(t)
	p, err := Parse("does-not-exist-xyz | echo after")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	done := make(chan struct{})
	go func() {
		if err := s.runPipeline(p); err != nil {
			t.Errorf("runPipeline: %v", err)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-timeoutAfter(t):
		t.Fatal("runPipeline deadlocked when the first stage could not be resolved")
	}

	if errw.String() == "" {
		t.Errorf("expected a command-not-found diagnostic on stderr")
	}
}

func TestRunPipelineCdStageDoesNotMutateRealShell(t *testing.T) {
	start, err := os.Getwd()
	if err != nil {
		t.Fatalf("os.Getwd: %v", err)
	}

	s, out, _ := newTestSession(t)
	p, parseErr := Parse("cd " + os.TempDir() + " | echo done")
	if parseErr != nil {
		t.Fatalf("Parse: %v", parseErr)
	}

	done := make(chan struct{})
	go func() {
		if err := s.runPipeline(p); err != nil {
			t.Errorf("runPipeline: %v", err)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-timeoutAfter(t):
		t.Fatal("runPipeline deadlocked running cd as a pipeline stage")
	}

	if out.String() != "done\n" {
		t.Errorf("output = %q, want %q", out.String(), "done\n")
	}

	got, err := os.Getwd()
	if err != nil {
		t.Fatalf("os.Getwd: %v", err)
	}
	if got != start {
		t.Errorf("real shell cwd changed to %q, want unchanged %q (cd in a pipeline stage must run isolated)", got, start)
	}
}

func TestRunPipelineHistoryStageDoesNotMutateRealSession(t *testing.T) {
	s, _, _ := newTestSession(t)
	s.History.Add("pre-existing")

	dir := t.TempDir()
	target := filepath.Join(dir, "appended")

	p, err := Parse("history -a " + target + " | echo done")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	done := make(chan struct{})
	go func() {
		if err := s.runPipeline(p); err != nil {
			t.Errorf("runPipeline: %v", err)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-timeoutAfter(t):
		t.Fatal("runPipeline deadlocked running history as a pipeline stage")
	}

	// The pipeline stage ran against its own forked copy of the session;
	// the real in-memory History here must be untouched.
	if s.History.Len() != 1 || s.History.Entries()[0] != "pre-existing" {
		t.Errorf("real session history = %#v, want unchanged", s.History.Entries())
	}
}

func timeoutAfter(t *testing.T) <-chan time.Time {
	t.Helper()
	return time.After(5 * time.Second)
}
