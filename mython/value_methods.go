package mython

import (
	"fmt"
	"strconv"
)

func (k ValueKind) String() string {
	switch k {
	case KindNone:
		return "None"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindClass:
		return "class"
	case KindInstance:
		return "class instance"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// String renders the value's printed form. Instances are rendered with
// their identity token; __str__ dispatch happens at the evaluator level,
// which needs a call frame, so callers that want it go through
// Execution.stringify instead.
func (v Value) String() string {
	switch v.kind {
	case KindNone:
		return "None"
	case KindBool:
		if v.Bool() {
			return "True"
		}
		return "False"
	case KindNumber:
		return strconv.FormatInt(v.Number(), 10)
	case KindString:
		return v.Str()
	case KindClass:
		return "Class " + v.Class().Name
	case KindInstance:
		inst := v.Instance()
		return fmt.Sprintf("<%s object %d>", inst.Class.Name, inst.id)
	default:
		return fmt.Sprintf("<%v>", v.kind)
	}
}

// Truthy implements the language's truthiness: numbers by non-zero,
// strings by non-emptiness, bools by value, everything else false.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindBool:
		return v.Bool()
	case KindNumber:
		return v.Number() != 0
	case KindString:
		return v.Str() != ""
	default:
		return false
	}
}
