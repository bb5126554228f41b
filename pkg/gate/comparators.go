package gate

// Below fires while count < n.
func Below(n uint64) Comparator {
	return func(count uint64) (Result, error) {
		return Bool(count < n), nil
	}
}

func AtMost(n uint64) Comparator {
	return func(count uint64) (Result, error) {
		return Bool(count <= n), nil
	}
}

// Above fires once count > n.
func Above(n uint64) Comparator {
	return func(count uint64) (Result, error) {
		return Bool(count > n), nil
	}
}

func AtLeast(n uint64) Comparator {
	return func(count uint64) (Result, error) {
		return Bool(count >= n), nil
	}
}

// Skip ignores the first n matches.
func Skip(n uint64) Comparator {
	return Above(n)
}

func Exactly(n uint64) Comparator {
	return func(count uint64) (Result, error) {
		return Bool(count == n), nil
	}
}

// Between fires for from <= count <= to.
func Between(from, to uint64) Comparator {
	return func(count uint64) (Result, error) {
		return Bool(count >= from && count <= to), nil
	}
}

// Every fires on every k-th match. Every(0) never fires.
func Every(k uint64) Comparator {
	return func(count uint64) (Result, error) {
		if k == 0 {
			return False, nil
		}
		return Bool(count%k == 0), nil
	}
}

// DisableAfter fires for the first n matches and returns sentinel from then on.
// sentinel is supplied by the framework, usually its "disable" signal.
func DisableAfter(n uint64, sentinel Result) Comparator {
	return func(count uint64) (Result, error) {
		if count <= n {
			return True, nil
		}
		return sentinel, nil
	}
}

// Not inverts boolean results. Signals pass through.
func Not(cmp Comparator) Comparator {
	return func(count uint64) (Result, error) {
		result, err := cmp(count)
		if err != nil || result.IsSignal() {
			return result, err
		}
		return Bool(!result.Truthy()), nil
	}
}

// All fires when every comparator fires. The first non-truthy result (or error) is returned.
func All(cmps ...Comparator) Comparator {
	return func(count uint64) (Result, error) {
		for _, cmp := range cmps {
			result, err := cmp(count)
			if err != nil || !result.Truthy() {
				return result, err
			}
		}
		return True, nil
	}
}

// Any fires when at least one comparator fires. If none does, the first signal seen is returned,
// otherwise False.
func Any(cmps ...Comparator) Comparator {
	return func(count uint64) (Result, error) {
		fallback := False
		for _, cmp := range cmps {
			result, err := cmp(count)
			if err != nil {
				return result, err
			}
			if result.Truthy() {
				return True, nil
			}
			if result.IsSignal() && !fallback.IsSignal() {
				fallback = result
			}
		}
		return fallback, nil
	}
}
