package pipeline

import (
	"fmt"
	"time"
)

// StageType is a stage's declared input or output type tag. Composition
// between adjacent stages requires strict equality of these tags.
type StageType string

// Stage is a pure transformation (typed-in, time) -> typed-out with
// declared input/output types.
type Stage interface {
	InputType() StageType
	OutputType() StageType
	Apply(in any, at time.Time) (any, error)
}

// Pipeline is an ordered, validated list of stages.
type Pipeline struct {
	stages []Stage
}

// NewPipeline validates adjacent-stage type equality at construction and
// returns a Pipeline, or an error naming the first mismatch.
func NewPipeline(stages []Stage) (*Pipeline, error) {
	for i := 1; i < len(stages); i++ {
		prevOut := stages[i-1].OutputType()
		curIn := stages[i].InputType()
		if prevOut != curIn {
			return nil, fmt.Errorf("pipeline: stage %d output type %q does not match stage %d input type %q", i-1, prevOut, i, curIn)
		}
	}
	return &Pipeline{stages: append([]Stage(nil), stages...)}, nil
}

// InputType returns the declared input type of the first stage, or ""
// for an empty pipeline.
func (p *Pipeline) InputType() StageType {
	if len(p.stages) == 0 {
		return ""
	}
	return p.stages[0].InputType()
}

// OutputType returns the declared output type of the last stage, or ""
// for an empty pipeline.
func (p *Pipeline) OutputType() StageType {
	if len(p.stages) == 0 {
		return ""
	}
	return p.stages[len(p.stages)-1].OutputType()
}

// Run feeds in through every stage in order. On failure at stage i, Run
// returns a nil value and the wrapped error; no partial result is
// returned (StreamCache.Write then keeps its previous post-processed
// value).
func (p *Pipeline) Run(in any, at time.Time) (any, error) {
	val := in
	for i, s := range p.stages {
		out, err := s.Apply(val, at)
		if err != nil {
			return nil, fmt.Errorf("pipeline: stage %d (%s): %w", i, s.InputType(), err)
		}
		val = out
	}
	return val, nil
}

// IdentityStage passes its input through unchanged; used where the
// pipeline contract requires a stage list but no transformation is
// needed (e.g. MiscData channels).
type IdentityStage struct {
	Type StageType
}

func (s IdentityStage) InputType() StageType  { return s.Type }
func (s IdentityStage) OutputType() StageType { return s.Type }
func (s IdentityStage) Apply(in any, _ time.Time) (any, error) {
	return in, nil
}

// FuncStage adapts a plain function into a Stage.
type FuncStage struct {
	In, Out StageType
	Fn      func(in any, at time.Time) (any, error)
}

func (s FuncStage) InputType() StageType  { return s.In }
func (s FuncStage) OutputType() StageType { return s.Out }
func (s FuncStage) Apply(in any, at time.Time) (any, error) {
	return s.Fn(in, at)
}
