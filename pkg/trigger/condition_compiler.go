package trigger

import (
	"cmp"
	"reflect"

	"github.com/pkg/errors"
	"github.com/spf13/cast"

	"github.com/jtomasevic/dowhen/pkg/gate"
)

var (
	ErrNilConditionSpec   = errors.New("nil condition")
	ErrEmptyCondition     = errors.New("empty condition")
	ErrMismatchedGroups   = errors.New("mismatched Group/Ungroup")
	ErrInvalidCondition   = errors.New("invalid condition")
	ErrIncomparableValues = errors.New("incomparable values")
)

/*
========================
Condition Compiler
========================
*/

// Compile validates the condition and returns it in the form the runtime accepts.
// Later changes to c do not affect the compiled condition.
func (c *ConditionSpec) Compile() (Condition, error) {
	if c == nil {
		return nil, ErrNilConditionSpec
	}
	if len(c.tokens) == 0 {
		return nil, ErrEmptyCondition
	}

	rpn, err := toRPN(c.tokens)
	if err != nil {
		return nil, err
	}
	if err := validateRPN(rpn); err != nil {
		return nil, err
	}

	return func(event *Event) (gate.Result, error) {
		ok, err := evalRPN(rpn, event)
		if err != nil {
			return gate.False, err
		}
		return gate.Bool(ok), nil
	}, nil
}

// MustCompile is Compile for conditions known to be valid.
func (c *ConditionSpec) MustCompile() Condition {
	condition, err := c.Compile()
	if err != nil {
		panic(err)
	}
	return condition
}

func toRPN(tokens []specToken) ([]specToken, error) {
	var out []specToken
	var stack []specToken

	prec := func(tk specToken) int {
		switch {
		case tk.kind == tkNot:
			return 3
		case tk.op == opAnd:
			return 2
		default:
			return 1
		}
	}

	// pendingNot is set while a Not still waits for its term or group.
	pendingNot := false

	for _, tk := range tokens {
		if pendingNot && (tk.kind == tkOp || tk.kind == tkRParen) {
			return nil, errors.Wrap(ErrInvalidCondition, "Not without operand")
		}

		switch tk.kind {

		case tkTerm:
			pendingNot = false
			out = append(out, tk)

		case tkNot:
			pendingNot = true
			stack = append(stack, tk)

		case tkLParen:
			pendingNot = false
			stack = append(stack, tk)

		case tkOp:
			for len(stack) > 0 {
				top := stack[len(stack)-1]
				if (top.kind == tkOp || top.kind == tkNot) && prec(top) >= prec(tk) {
					out = append(out, top)
					stack = stack[:len(stack)-1]
				} else {
					break
				}
			}
			stack = append(stack, tk)

		case tkRParen:
			for len(stack) > 0 && stack[len(stack)-1].kind != tkLParen {
				out = append(out, stack[len(stack)-1])
				stack = stack[:len(stack)-1]
			}
			if len(stack) == 0 {
				return nil, ErrMismatchedGroups
			}
			stack = stack[:len(stack)-1]
		}
	}

	if pendingNot {
		return nil, errors.Wrap(ErrInvalidCondition, "Not without operand")
	}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.kind == tkLParen {
			return nil, ErrMismatchedGroups
		}
		out = append(out, top)
		stack = stack[:len(stack)-1]
	}

	return out, nil
}

// validateRPN checks operand counts so evaluation never underflows.
func validateRPN(rpn []specToken) error {
	depth := 0
	for _, tk := range rpn {
		switch tk.kind {
		case tkTerm:
			depth++
		case tkNot:
			if depth < 1 {
				return errors.Wrap(ErrInvalidCondition, "Not without operand")
			}
		case tkOp:
			if depth < 2 {
				return errors.Wrap(ErrInvalidCondition, "operator without operands")
			}
			depth--
		}
	}
	if depth != 1 {
		return errors.Wrap(ErrInvalidCondition, "condition did not collapse")
	}
	return nil
}

func evalRPN(rpn []specToken, event *Event) (bool, error) {
	stack := make([]bool, 0, len(rpn))

	for _, tk := range rpn {
		switch tk.kind {
		case tkTerm:
			v, err := evalTerm(tk.term, event)
			if err != nil {
				return false, err
			}
			stack = append(stack, v)

		case tkNot:
			stack[len(stack)-1] = !stack[len(stack)-1]

		case tkOp:
			b := stack[len(stack)-1]
			a := stack[len(stack)-2]
			stack = stack[:len(stack)-2]

			if tk.op == opAnd {
				stack = append(stack, a && b)
			} else {
				stack = append(stack, a || b)
			}
		}
	}

	return stack[0], nil
}

func evalTerm(t specTerm, event *Event) (bool, error) {
	switch t.kind {
	case termHas:
		_, ok := event.Local(t.name)
		return ok, nil

	case termFunction:
		return event.Function == t.name, nil

	case termPredicate:
		return t.predicate != nil && t.predicate(event), nil

	case termLocal:
		actual, ok := event.Local(t.name)
		if !ok {
			return false, nil
		}
		matched, err := compare(t.op, actual, t.value)
		if err != nil {
			return false, errors.Wrapf(err, "local %q", t.name)
		}
		return matched, nil
	}

	return false, errors.Wrapf(ErrInvalidCondition, "unknown term %d", t.kind)
}

func compare(op Operator, actual, expected any) (bool, error) {
	if order, ok := compareIntegers(actual, expected); ok {
		return ordered(op, order), nil
	}

	if a, ok := number(actual); ok {
		if e, ok := number(expected); ok {
			switch op {
			case Eq:
				return a == e, nil
			case Ne:
				return a != e, nil
			case Gt:
				return a > e, nil
			case Ge:
				return a >= e, nil
			case Lt:
				return a < e, nil
			case Le:
				return a <= e, nil
			}
		}
	}

	if op != Eq && op != Ne {
		return false, errors.Wrapf(ErrIncomparableValues, "%T %s %T", actual, op, expected)
	}
	if !isComparable(actual) || !isComparable(expected) {
		return false, errors.Wrapf(ErrIncomparableValues, "%T %s %T", actual, op, expected)
	}

	equal := actual == expected
	if op == Eq {
		return equal, nil
	}
	return !equal, nil
}

func ordered(op Operator, order int) bool {
	switch op {
	case Eq:
		return order == 0
	case Ne:
		return order != 0
	case Gt:
		return order > 0
	case Ge:
		return order >= 0
	case Lt:
		return order < 0
	case Le:
		return order <= 0
	}
	return false
}

// compareIntegers orders two integers of any width and signedness without going through float64.
// ok is false unless both sides are integers.
func compareIntegers(a, b any) (order int, ok bool) {
	av, bv := reflect.ValueOf(a), reflect.ValueOf(b)
	aSigned, aok := integerKind(av)
	bSigned, bok := integerKind(bv)
	if !aok || !bok {
		return 0, false
	}

	switch {
	case aSigned && bSigned:
		return cmp.Compare(av.Int(), bv.Int()), true
	case !aSigned && !bSigned:
		return cmp.Compare(av.Uint(), bv.Uint()), true
	case aSigned:
		if av.Int() < 0 {
			return -1, true
		}
		return cmp.Compare(uint64(av.Int()), bv.Uint()), true
	default:
		if bv.Int() < 0 {
			return 1, true
		}
		return cmp.Compare(av.Uint(), uint64(bv.Int())), true
	}
}

func integerKind(v reflect.Value) (signed bool, ok bool) {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return false, true
	}
	return false, false
}

func number(v any) (float64, bool) {
	switch v.(type) {
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		f, err := cast.ToFloat64E(v)
		return f, err == nil
	}
	return 0, false
}

// isComparable looks at the dynamic values, so an array of interfaces holding a slice is rejected.
func isComparable(v any) bool {
	return v == nil || reflect.ValueOf(v).Comparable()
}
