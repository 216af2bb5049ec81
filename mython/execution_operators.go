package mython

// evalArithmetic dispatches the four arithmetic operators over the value
// tags. Add additionally handles string concatenation and a left-hand
// instance with a single-argument __add__.
func (exec *Execution) evalArithmetic(op TokenType, lhs, rhs Value, pos Position) (Value, error) {
	if op == tokenPlus {
		if lhs.Kind() == KindString && rhs.Kind() == KindString {
			return NewString(lhs.Str() + rhs.Str()), nil
		}
		if inst := lhs.Instance(); inst != nil && inst.Class.HasMethod(addMethod, 1) {
			return exec.callMethod(inst, addMethod, []Value{rhs}, pos)
		}
	}

	if lhs.Kind() != KindNumber || rhs.Kind() != KindNumber {
		return NewNone(), exec.errorAt(pos, errKindType, "unsupported operand types for %s: %v and %v", op, lhs.Kind(), rhs.Kind())
	}

	switch op {
	case tokenPlus:
		return NewNumber(lhs.Number() + rhs.Number()), nil
	case tokenMinus:
		return NewNumber(lhs.Number() - rhs.Number()), nil
	case tokenAsterisk:
		return NewNumber(lhs.Number() * rhs.Number()), nil
	default:
		if rhs.Number() == 0 {
			return NewNone(), exec.errorAt(pos, errKindArithmetic, "division by zero")
		}
		return NewNumber(lhs.Number() / rhs.Number()), nil
	}
}

// compare evaluates a comparison operator. The derived relations are
// built from Equal and Less; a runtime error in either component
// surfaces as a ComparisonError, while quota and cancellation failures
// pass through unchanged.
func (exec *Execution) compare(op TokenType, lhs, rhs Value, pos Position) (Value, error) {
	var res bool
	var err error
	switch op {
	case tokenEQ:
		res, err = exec.valuesEqual(lhs, rhs, pos)
	case tokenNotEQ:
		res, err = exec.valuesEqual(lhs, rhs, pos)
		res = !res
	case tokenLT:
		res, err = exec.valuesLess(lhs, rhs, pos)
	case tokenGT:
		var eq, lt bool
		if eq, err = exec.valuesEqual(lhs, rhs, pos); err == nil {
			if lt, err = exec.valuesLess(lhs, rhs, pos); err == nil {
				res = !eq && !lt
			}
		}
	case tokenLTE:
		var eq, lt bool
		if eq, err = exec.valuesEqual(lhs, rhs, pos); err == nil {
			if lt, err = exec.valuesLess(lhs, rhs, pos); err == nil {
				res = eq || lt
			}
		}
	case tokenGTE:
		res, err = exec.valuesLess(lhs, rhs, pos)
		res = !res
	default:
		return NewNone(), exec.errorAt(pos, errKindRuntime, "unsupported operator %s", op)
	}
	if err != nil {
		return NewNone(), exec.asComparisonError(err, pos)
	}
	return NewBool(res), nil
}

func (exec *Execution) valuesEqual(lhs, rhs Value, pos Position) (bool, error) {
	switch {
	case lhs.Kind() == KindNumber && rhs.Kind() == KindNumber:
		return lhs.Number() == rhs.Number(), nil
	case lhs.Kind() == KindBool && rhs.Kind() == KindBool:
		return lhs.Bool() == rhs.Bool(), nil
	case lhs.Kind() == KindString && rhs.Kind() == KindString:
		return lhs.Str() == rhs.Str(), nil
	case lhs.IsNone() && rhs.IsNone():
		return true, nil
	}
	if inst := lhs.Instance(); inst != nil && inst.Class.HasMethod(eqMethod, 1) {
		res, err := exec.callMethod(inst, eqMethod, []Value{rhs}, pos)
		if err != nil {
			return false, err
		}
		if res.Kind() != KindBool {
			return false, exec.errorAt(pos, errKindComparison, "%s must return a bool, got %v", eqMethod, res.Kind())
		}
		return res.Bool(), nil
	}
	return false, exec.errorAt(pos, errKindComparison, "cannot compare objects for equality")
}

func (exec *Execution) valuesLess(lhs, rhs Value, pos Position) (bool, error) {
	switch {
	case lhs.Kind() == KindNumber && rhs.Kind() == KindNumber:
		return lhs.Number() < rhs.Number(), nil
	case lhs.Kind() == KindBool && rhs.Kind() == KindBool:
		return !lhs.Bool() && rhs.Bool(), nil
	case lhs.Kind() == KindString && rhs.Kind() == KindString:
		return lhs.Str() < rhs.Str(), nil
	}
	if inst := lhs.Instance(); inst != nil && inst.Class.HasMethod(ltMethod, 1) {
		res, err := exec.callMethod(inst, ltMethod, []Value{rhs}, pos)
		if err != nil {
			return false, err
		}
		if res.Kind() != KindBool {
			return false, exec.errorAt(pos, errKindComparison, "%s must return a bool, got %v", ltMethod, res.Kind())
		}
		return res.Bool(), nil
	}
	return false, exec.errorAt(pos, errKindComparison, "cannot compare objects for less")
}

func (exec *Execution) asComparisonError(err error, pos Position) error {
	re, ok := err.(*RuntimeError)
	if !ok {
		// Quota and cancellation failures pass through untouched.
		return err
	}
	if re.Type == errKindComparison {
		return err
	}
	return exec.errorAt(pos, errKindComparison, "%s", re.Message)
}
