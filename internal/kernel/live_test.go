package kernel

import (
	"context"
	"log/slog"
	"os/exec"
	"syscall"
	"testing"
	"time"
)

// startLiveSession launches a real interpreter, skipping when none is
// installed.
func startLiveSession(t *testing.T) *Session {
	t.Helper()
	python, err := exec.LookPath("python3")
	if err != nil {
		t.Skip("python3 not installed")
	}
	s := NewSession(python, Options{Logger: slog.New(slog.DiscardHandler)})
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestLiveInterruptReturnsToReady(t *testing.T) {
	s := startLiveSession(t)

	fut, err := s.Execute("import time\ntime.sleep(30)")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	// Let the interpreter enter the sleep before signalling.
	time.Sleep(200 * time.Millisecond)
	if err := s.Interrupt(); err != nil {
		t.Fatalf("Interrupt: %v", err)
	}

	res := wait(t, fut)
	if res.OK() || res.ErrorKind != ErrorKindInterrupted {
		t.Errorf("interrupted result = %+v", res)
	}
	if got := s.State(); got != StateReady {
		t.Fatalf("state after interrupt = %s, want ready", got)
	}

	// The same interpreter keeps serving requests.
	fut, err = s.Execute("1 + 1")
	if err != nil {
		t.Fatalf("Execute after interrupt: %v", err)
	}
	if res := wait(t, fut); !res.OK() || res.ResultRepr != "2" {
		t.Errorf("result after interrupt = %+v", res)
	}
}

func TestLiveIdleSigintKeepsKernelAlive(t *testing.T) {
	s := startLiveSession(t)

	// A signal that lands between requests must not kill the REPL loop.
	if err := syscall.Kill(-s.cmd.Process.Pid, syscall.SIGINT); err != nil {
		t.Fatalf("kill: %v", err)
	}
	time.Sleep(200 * time.Millisecond)

	fut, err := s.Execute("40 + 2")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res := wait(t, fut); !res.OK() || res.ResultRepr != "42" {
		t.Errorf("result = %+v", res)
	}
}
