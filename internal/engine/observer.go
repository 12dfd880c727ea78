// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import "github.com/pdiddy/paper-collector/pkg/types"

// Observer receives the pipeline's one-way notifications. Progress is a
// monotonically non-decreasing percentage in [0,100] emitted at fixed
// checkpoints; status pairs the current state with a display message.
type Observer interface {
	OnProgress(percent int)
	OnStatus(state State, message string)
	OnError(message string)
	OnResult(result types.CollectionResult)
}

// FuncObserver adapts plain functions to Observer. Nil fields are skipped.
type FuncObserver struct {
	Progress func(percent int)
	Status   func(state State, message string)
	Error    func(message string)
	Result   func(result types.CollectionResult)
}

func (f FuncObserver) OnProgress(percent int) {
	if f.Progress != nil {
		f.Progress(percent)
	}
}

func (f FuncObserver) OnStatus(state State, message string) {
	if f.Status != nil {
		f.Status(state, message)
	}
}

func (f FuncObserver) OnError(message string) {
	if f.Error != nil {
		f.Error(message)
	}
}

func (f FuncObserver) OnResult(result types.CollectionResult) {
	if f.Result != nil {
		f.Result(result)
	}
}
