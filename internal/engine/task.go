// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import (
	"context"
	"sync/atomic"

	"github.com/pdiddy/paper-collector/pkg/types"
)

// Task is one background pipeline run. Stop is advisory: it is polled at
// the keyword-loop boundary only, so an in-flight page fetch or
// generation call still completes before the run winds down.
type Task struct {
	stop   atomic.Bool
	done   chan struct{}
	result types.CollectionResult
}

// Submit starts the pipeline in a background goroutine and returns its
// task handle. Observers registered on the engine receive notifications
// from that goroutine.
func (e *Engine) Submit(ctx context.Context, keywords []string, maxPapers int) *Task {
	t := &Task{done: make(chan struct{})}
	go func() {
		defer close(t.done)
		t.result = e.run(ctx, keywords, maxPapers, t)
	}()
	return t
}

// Stop requests a cooperative shutdown. The run finishes the current
// keyword, then validates, persists, and exports what it has.
func (t *Task) Stop() {
	t.stop.Store(true)
}

// Done returns a channel closed when the run finishes.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the run finishes and returns its result.
func (t *Task) Wait() types.CollectionResult {
	<-t.done
	return t.result
}

// stopped reports whether a stop was requested. Nil-safe for synchronous
// runs that have no task handle.
func (t *Task) stopped() bool {
	return t != nil && t.stop.Load()
}
