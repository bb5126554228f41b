package gate

import (
	"errors"

	"go.uber.org/atomic"
)

var (
	ErrNilComparator = errors.New("nil comparator")
	ErrNilCondition  = errors.New("nil condition")
)

// Condition is evaluated once per detected event. Args is whatever the framework captures for the event.
// A GatedCondition produces a value of the same type, so it can be registered wherever a plain
// condition is accepted.
type Condition[Args any] func(args Args) (Result, error)

// Comparator decides, from the number of matches seen so far, what a match should return.
// It is called with 1, 2, 3, ... once per truthy inner evaluation.
type Comparator func(count uint64) (Result, error)

/*
========================
Gate (first stage)
========================
*/

// Gate binds a comparator. Every Wrap call produces a new GatedCondition with its own counter.
type Gate[Args any] struct {
	comparator Comparator
}

// GuardedBy binds cmp and returns the reusable first stage of the combinator.
// It panics when cmp is nil.
func GuardedBy[Args any](cmp Comparator) *Gate[Args] {
	if cmp == nil {
		panic(ErrNilComparator)
	}
	return &Gate[Args]{comparator: cmp}
}

// Wrap applies the gate to inner. It panics when inner is nil.
// Register the result through its Condition(), which has the same type as inner.
func (g *Gate[Args]) Wrap(inner Condition[Args]) *GatedCondition[Args] {
	gated, err := NewGatedCondition(g.comparator, inner)
	if err != nil {
		panic(err)
	}
	return gated
}

// Func exposes the second stage as a plain function, for decorator style use.
func (g *Gate[Args]) Func() func(Condition[Args]) *GatedCondition[Args] {
	return g.Wrap
}

/*
========================
GatedCondition
========================
*/

// GatedCondition adds occurrence counting to an inner condition.
//
// count is owned by the instance: registering the same instance (or its Condition()) at several sites
// shares one counter, two instances never share. The counter is incremented atomically, so concurrent
// evaluations never lose a match, but comparator calls are not serialized and may overlap.
type GatedCondition[Args any] struct {
	inner      Condition[Args]
	comparator Comparator
	count      atomic.Uint64
}

func NewGatedCondition[Args any](cmp Comparator, inner Condition[Args]) (*GatedCondition[Args], error) {
	if cmp == nil {
		return nil, ErrNilComparator
	}
	if inner == nil {
		return nil, ErrNilCondition
	}
	return &GatedCondition[Args]{
		inner:      inner,
		comparator: cmp,
	}, nil
}

// Evaluate runs the inner condition. A falsy result (False or any signal) is returned as is, without
// touching the counter. A truthy result bumps the counter and returns comparator(count) verbatim.
// Errors from either collaborator are returned unmodified; a failing comparator still leaves the
// match counted.
func (g *GatedCondition[Args]) Evaluate(args Args) (Result, error) {
	result, err := g.inner(args)
	if err != nil {
		return result, err
	}
	if !result.Truthy() {
		return result, nil
	}

	return g.comparator(g.count.Inc())
}

// Condition returns Evaluate as a plain Condition. All values returned by it share this instance's counter.
func (g *GatedCondition[Args]) Condition() Condition[Args] {
	return g.Evaluate
}

// Count returns the number of truthy inner evaluations seen so far.
func (g *GatedCondition[Args]) Count() uint64 {
	return g.count.Load()
}
