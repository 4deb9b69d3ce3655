package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pyglue-generator/internal/policy"
)

type runLog struct {
	mu   sync.Mutex
	runs []*Summary
	errs []error
}

func (l *runLog) record(s *Summary, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.runs = append(l.runs, s)
	l.errs = append(l.errs, err)
}

func (l *runLog) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.runs)
}

func startWatcher(t *testing.T, w *Watcher) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() { done <- w.Watch(ctx) }()

	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-done)
	})
}

func TestWatcher_RerunsOnHeaderChange(t *testing.T) {
	ws := newWorkspace(t, map[string]string{"axis.h": axisHeader})

	var runs runLog

	startWatcher(t, &Watcher{
		GC:       newContext(t, nil),
		Inputs:   []string{ws.dir},
		Options:  ws.options(),
		Debounce: 20 * time.Millisecond,
		OnRun:    runs.record,
	})

	require.Eventually(t, func() bool { return runs.count() == 1 }, 5*time.Second, 10*time.Millisecond)
	assert.NotContains(t, read(t, ws.glue), "reset")

	write(t, ws.path("reset.h"), resetHeader)

	require.Eventually(t, func() bool {
		return strings.Contains(read(t, ws.glue), "m.def(\"reset\"")
	}, 5*time.Second, 10*time.Millisecond)

	// Writes to the destinations and to unrelated files never trigger a run.
	n := runs.count()
	write(t, filepath.Join(ws.dir, "notes.txt"), "hello")
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, n, runs.count())
}

func TestWatcher_ReloadsPolicy(t *testing.T) {
	ws := newWorkspace(t, map[string]string{"axis.h": axisHeader})
	policyPath := filepath.Join(ws.dir, "pyglue.yaml")
	write(t, policyPath, "naming:\n  snake_case: true\n")

	load := func() (*policy.Policy, error) {
		pf, err := policy.LoadFile(policyPath)
		if err != nil {
			return nil, err
		}

		return policy.Compile(pf)
	}

	pol, err := load()
	require.NoError(t, err)

	var runs runLog

	startWatcher(t, &Watcher{
		GC:       newContext(t, pol),
		Inputs:   []string{ws.path("axis.h")},
		Options:  ws.options(),
		Extra:    []string{policyPath},
		Reload:   load,
		Debounce: 20 * time.Millisecond,
		OnRun:    runs.record,
	})

	require.Eventually(t, func() bool {
		return strings.Contains(read(t, ws.stub), "def set_axis(")
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(policyPath, []byte("naming:\n  snake_case: false\n"), 0o644))

	require.Eventually(t, func() bool {
		return strings.Contains(read(t, ws.stub), "def SetAxis(")
	}, 5*time.Second, 10*time.Millisecond)
}
