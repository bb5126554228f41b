package trigger

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jtomasevic/dowhen/pkg/gate"
)

func eval(t *testing.T, spec *ConditionSpec, locals Locals) bool {
	t.Helper()
	condition, err := spec.Compile()
	require.NoError(t, err)
	result, err := condition(newEvent("f", printSite, locals))
	require.NoError(t, err)
	return result.Truthy()
}

/*
========================
Basic compilation
========================
*/

func TestConditionSpec_Compile_LocalComparisons(t *testing.T) {
	locals := Locals{"x": 7, "y": 2.5, "name": "cpu", "n": uint8(3)}

	require.True(t, eval(t, NewCondition().Local("x", Gt, 5), locals))
	require.False(t, eval(t, NewCondition().Local("x", Lt, 5), locals))
	require.True(t, eval(t, NewCondition().Local("x", Ge, 7), locals))
	require.True(t, eval(t, NewCondition().Local("x", Le, 7.0), locals))
	require.True(t, eval(t, NewCondition().Local("y", Lt, 3), locals))
	require.True(t, eval(t, NewCondition().Local("n", Eq, 3), locals))
	require.True(t, eval(t, NewCondition().Local("name", Eq, "cpu"), locals))
	require.True(t, eval(t, NewCondition().Local("name", Ne, "mem"), locals))
	require.False(t, eval(t, NewCondition().Local("missing", Eq, 1), locals))
}

func TestConditionSpec_Compile_HasFunctionPredicate(t *testing.T) {
	locals := Locals{"x": 1}

	require.True(t, eval(t, NewCondition().Has("x"), locals))
	require.False(t, eval(t, NewCondition().Has("y"), locals))
	require.True(t, eval(t, NewCondition().InFunction("f"), locals))
	require.True(t, eval(t, NewCondition().Matches(func(e *Event) bool { return e.Site == printSite }), locals))
}

/*
========================
AND / OR / NOT / grouping
========================
*/

func TestConditionSpec_Compile_Precedence(t *testing.T) {
	// true OR false AND false => true (AND binds tighter)
	spec := NewCondition().
		Local("x", Eq, 1).
		Or().
		Local("x", Eq, 2).
		And().
		Local("x", Eq, 3)
	require.True(t, eval(t, spec, Locals{"x": 1}))

	grouped := NewCondition().
		Group().
		Local("x", Eq, 1).
		Or().
		Local("x", Eq, 2).
		Ungroup().
		And().
		Local("x", Eq, 3)
	require.False(t, eval(t, grouped, Locals{"x": 1}))
}

func TestConditionSpec_Compile_Not(t *testing.T) {
	require.True(t, eval(t, NewCondition().Not().Has("done"), Locals{}))
	require.False(t, eval(t, NewCondition().Not().Has("done"), Locals{"done": true}))

	spec := NewCondition().
		Local("x", Gt, 5).
		And().
		Not().
		Group().
		Local("x", Eq, 7).
		Or().
		Local("x", Eq, 8).
		Ungroup()
	require.True(t, eval(t, spec, Locals{"x": 6}))
	require.False(t, eval(t, spec, Locals{"x": 7}))
	require.False(t, eval(t, spec, Locals{"x": 4}))
}

/*
========================
Errors
========================
*/

func TestConditionSpec_Compile_Errors(t *testing.T) {
	var nilSpec *ConditionSpec
	_, err := nilSpec.Compile()
	require.ErrorIs(t, err, ErrNilConditionSpec)

	_, err = NewCondition().Compile()
	require.ErrorIs(t, err, ErrEmptyCondition)

	_, err = NewCondition().Group().Has("x").Compile()
	require.ErrorIs(t, err, ErrMismatchedGroups)

	_, err = NewCondition().Has("x").Ungroup().Compile()
	require.ErrorIs(t, err, ErrMismatchedGroups)

	_, err = NewCondition().Has("x").And().Compile()
	require.ErrorIs(t, err, ErrInvalidCondition)

	_, err = NewCondition().Has("x").Has("y").Compile()
	require.ErrorIs(t, err, ErrInvalidCondition)

	_, err = NewCondition().Not().Compile()
	require.ErrorIs(t, err, ErrInvalidCondition)

	// Not negates what follows it, never what precedes it
	_, err = NewCondition().Has("x").Not().Compile()
	require.ErrorIs(t, err, ErrInvalidCondition)

	_, err = NewCondition().Not().And().Has("x").Compile()
	require.ErrorIs(t, err, ErrInvalidCondition)

	_, err = NewCondition().Group().Has("x").Not().Ungroup().Compile()
	require.ErrorIs(t, err, ErrInvalidCondition)

	_, err = NewCondition().Not().Not().Has("x").Compile()
	require.NoError(t, err)

	require.Panics(t, func() { NewCondition().MustCompile() })
}

func TestConditionSpec_Eval_IncomparableValues(t *testing.T) {
	condition := NewCondition().Local("x", Gt, 5).MustCompile()
	_, err := condition(newEvent("f", printSite, Locals{"x": "seven"}))
	require.ErrorIs(t, err, ErrIncomparableValues)

	condition = NewCondition().Local("x", Eq, 5).MustCompile()
	_, err = condition(newEvent("f", printSite, Locals{"x": []int{5}}))
	require.ErrorIs(t, err, ErrIncomparableValues)

	// comparable static type, incomparable dynamic value
	condition = NewCondition().Local("x", Eq, [1]any{[]int{1}}).MustCompile()
	require.NotPanics(t, func() {
		_, err = condition(newEvent("f", printSite, Locals{"x": [1]any{[]int{1}}}))
	})
	require.ErrorIs(t, err, ErrIncomparableValues)

	rt := NewRuntime()
	_, err = rt.When(printSite, condition).Do(func(*Event) error { return nil })
	require.NoError(t, err)
	require.NotPanics(t, func() {
		_, err = rt.Emit("f", printSite, Locals{"x": [1]any{[]int{1}}})
	})
	require.ErrorIs(t, err, ErrIncomparableValues)

	// comparable dynamic values inside interfaces still compare
	require.True(t, eval(t, NewCondition().Local("x", Eq, [1]any{1}), Locals{"x": [1]any{1}}))
}

func TestConditionSpec_Eval_LargeIntegers(t *testing.T) {
	const big = int64(1) << 53

	require.False(t, eval(t, NewCondition().Local("x", Eq, big), Locals{"x": big + 1}))
	require.True(t, eval(t, NewCondition().Local("x", Gt, big), Locals{"x": big + 1}))
	require.True(t, eval(t, NewCondition().Local("x", Ne, uint64(1<<63)), Locals{"x": uint64(1<<63 + 1)}))
	require.True(t, eval(t, NewCondition().Local("x", Lt, uint64(1<<63)), Locals{"x": int64(-1)}))
	require.True(t, eval(t, NewCondition().Local("x", Ge, int8(-3)), Locals{"x": uint(0)}))
	require.True(t, eval(t, NewCondition().Local("x", Eq, 7), Locals{"x": uint16(7)}))
}

/*
========================
Gating compiled conditions
========================
*/

func TestConditionSpec_GatedOnRuntime(t *testing.T) {
	rt := NewRuntime()
	rec := &recorder{}

	check := NewCondition().Local("x", Gt, 5).MustCompile()
	gated := gate.GuardedBy[*Event](gate.Skip(10)).Wrap(check)

	_, err := rt.When(printSite, gated.Condition()).Do(rec.action)
	require.NoError(t, err)

	loop(t, rt, 20)

	require.Equal(t, []int{16, 17, 18, 19}, rec.Xs())
	require.Equal(t, uint64(14), gated.Count())
}

func TestConditionSpec_DisableAfterRemovesTrigger(t *testing.T) {
	rt := NewRuntime()
	rec := &recorder{}

	check := NewCondition().Local("x", Gt, 5).MustCompile()
	gated := gate.GuardedBy[*Event](gate.DisableAfter(3, Disable)).Wrap(check)

	handler, err := rt.When(printSite, gated.Condition()).Do(rec.action)
	require.NoError(t, err)

	loop(t, rt, 20)

	require.Equal(t, []int{6, 7, 8}, rec.Xs())
	require.True(t, handler.Removed())
	require.Equal(t, uint64(4), gated.Count())
}
