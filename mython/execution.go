package mython

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Runtime error categories. Every runtime failure carries exactly one.
const (
	errKindRuntime    = "RuntimeError"
	errKindName       = "NameError"
	errKindType       = "TypeError"
	errKindMethod     = "MethodError"
	errKindArithmetic = "ArithmeticError"
	errKindComparison = "ComparisonError"
)

var errStepQuotaExceeded = errors.New("step quota exceeded")

type callFrame struct {
	Method string
	Pos    Position
}

type StackFrame struct {
	Method string
	Pos    Position
}

// RuntimeError is the structured failure surfaced to the host. User
// programs cannot catch it; evaluation unwinds to Script.Run.
type RuntimeError struct {
	Type      string
	Message   string
	CodeFrame string
	Frames    []StackFrame
}

func (re *RuntimeError) Error() string {
	var b strings.Builder
	b.WriteString(re.Type)
	b.WriteString(": ")
	b.WriteString(re.Message)
	if re.CodeFrame != "" {
		b.WriteString("\n")
		b.WriteString(re.CodeFrame)
	}
	for _, frame := range re.Frames {
		if frame.Pos.Line > 0 {
			fmt.Fprintf(&b, "\n  at %s (%d:%d)", frame.Method, frame.Pos.Line, frame.Pos.Column)
		} else {
			fmt.Fprintf(&b, "\n  at %s", frame.Method)
		}
	}
	return b.String()
}

// Execution threads the mutable interpreter state through evaluation: the
// output sink, the bounded step counter, and the method call stack.
type Execution struct {
	script       *Script
	ctx          context.Context
	out          io.Writer
	quota        int
	recursionCap int
	steps        int
	callStack    []callFrame
	instances    int
}

func (exec *Execution) step() error {
	exec.steps++
	if exec.quota > 0 && exec.steps > exec.quota {
		return fmt.Errorf("%w (%d)", errStepQuotaExceeded, exec.quota)
	}
	if exec.ctx != nil && (exec.steps&63) == 0 {
		select {
		case <-exec.ctx.Done():
			return exec.ctx.Err()
		default:
		}
	}
	return nil
}

func (exec *Execution) errorAt(pos Position, kind string, format string, args ...any) error {
	frames := make([]StackFrame, 0, len(exec.callStack)+1)
	if len(exec.callStack) > 0 {
		current := exec.callStack[len(exec.callStack)-1]
		frames = append(frames, StackFrame{Method: current.Method, Pos: pos})
		for i := len(exec.callStack) - 1; i >= 0; i-- {
			frames = append(frames, StackFrame(exec.callStack[i]))
		}
	} else {
		frames = append(frames, StackFrame{Method: "<script>", Pos: pos})
	}
	codeFrame := ""
	if exec.script != nil {
		codeFrame = formatCodeFrame(exec.script.source, pos)
	}
	return &RuntimeError{Type: kind, Message: fmt.Sprintf(format, args...), CodeFrame: codeFrame, Frames: frames}
}

// evalStatements runs a statement block in order. The boolean reports
// whether a return statement fired somewhere inside, in which case the
// value is the returned one and the rest of the block is skipped.
func (exec *Execution) evalStatements(stmts []Statement, env *Env) (Value, bool, error) {
	for _, stmt := range stmts {
		if err := exec.step(); err != nil {
			return NewNone(), false, err
		}
		val, returned, err := exec.evalStatement(stmt, env)
		if err != nil {
			return NewNone(), false, err
		}
		if returned {
			return val, true, nil
		}
	}
	return NewNone(), false, nil
}

func (exec *Execution) evalStatement(stmt Statement, env *Env) (Value, bool, error) {
	switch s := stmt.(type) {
	case *ExprStmt:
		val, err := exec.evalExpression(s.Expr, env)
		return val, false, err
	case *AssignStmt:
		val, err := exec.evalExpression(s.Value, env)
		if err != nil {
			return NewNone(), false, err
		}
		env.Define(s.Name, val)
		return val, false, nil
	case *FieldAssignStmt:
		obj, err := exec.evalExpression(s.Object, env)
		if err != nil {
			return NewNone(), false, err
		}
		inst := obj.Instance()
		if inst == nil {
			return NewNone(), false, exec.errorAt(s.Pos(), errKindType, "cannot assign field of %v", obj.Kind())
		}
		val, err := exec.evalExpression(s.Value, env)
		if err != nil {
			return NewNone(), false, err
		}
		inst.Fields[s.Field] = val
		return val, false, nil
	case *PrintStmt:
		return NewNone(), false, exec.evalPrint(s, env)
	case *ReturnStmt:
		if s.Value == nil {
			return NewNone(), true, nil
		}
		val, err := exec.evalExpression(s.Value, env)
		if err != nil {
			return NewNone(), false, err
		}
		return val, true, nil
	case *IfStmt:
		cond, err := exec.evalExpression(s.Condition, env)
		if err != nil {
			return NewNone(), false, err
		}
		if cond.Truthy() {
			return exec.evalStatements(s.Consequent, env)
		}
		if len(s.Alternate) > 0 {
			return exec.evalStatements(s.Alternate, env)
		}
		return NewNone(), false, nil
	case *ClassDefStmt:
		tracer().Debugf("defining class %s", s.Class.Name)
		env.Define(s.Class.Name, NewClassValue(s.Class))
		return NewNone(), false, nil
	default:
		return NewNone(), false, exec.errorAt(stmt.Pos(), errKindRuntime, "unsupported statement")
	}
}

func (exec *Execution) evalPrint(s *PrintStmt, env *Env) error {
	parts := make([]string, len(s.Args))
	for i, arg := range s.Args {
		val, err := exec.evalExpression(arg, env)
		if err != nil {
			return err
		}
		text, err := exec.stringify(val, arg.Pos())
		if err != nil {
			return err
		}
		parts[i] = text
	}
	if _, err := fmt.Fprintln(exec.out, strings.Join(parts, " ")); err != nil {
		return exec.errorAt(s.Pos(), errKindRuntime, "write output: %v", err)
	}
	return nil
}

func (exec *Execution) evalExpression(expr Expression, env *Env) (Value, error) {
	if err := exec.step(); err != nil {
		return NewNone(), err
	}
	switch e := expr.(type) {
	case *NumberLiteral:
		return NewNumber(e.Value), nil
	case *StringLiteral:
		return NewString(e.Value), nil
	case *BoolLiteral:
		return NewBool(e.Value), nil
	case *NoneLiteral:
		return NewNone(), nil
	case *VariableExpr:
		val, ok := env.Get(e.Path[0])
		if !ok {
			return NewNone(), exec.errorAt(e.Pos(), errKindName, "undefined variable %s", e.Path[0])
		}
		for _, field := range e.Path[1:] {
			inst := val.Instance()
			if inst == nil {
				return NewNone(), exec.errorAt(e.Pos(), errKindType, "cannot read field %s of %v", field, val.Kind())
			}
			// A missing field reads as None, not an error.
			val = inst.Fields[field]
		}
		return val, nil
	case *UnaryExpr:
		operand, err := exec.evalExpression(e.Operand, env)
		if err != nil {
			return NewNone(), err
		}
		return NewBool(!operand.Truthy()), nil
	case *BinaryExpr:
		return exec.evalBinaryExpr(e, env)
	case *MethodCallExpr:
		receiver, err := exec.evalExpression(e.Receiver, env)
		if err != nil {
			return NewNone(), err
		}
		inst := receiver.Instance()
		if inst == nil {
			return NewNone(), exec.errorAt(e.Pos(), errKindType, "cannot call method %s on %v", e.Method, receiver.Kind())
		}
		args := make([]Value, len(e.Args))
		for i, arg := range e.Args {
			val, err := exec.evalExpression(arg, env)
			if err != nil {
				return NewNone(), err
			}
			args[i] = val
		}
		return exec.callMethod(inst, e.Method, args, e.Pos())
	case *NewInstanceExpr:
		return exec.newInstanceOf(e, env)
	case *StringifyExpr:
		val, err := exec.evalExpression(e.Arg, env)
		if err != nil {
			return NewNone(), err
		}
		text, err := exec.stringify(val, e.Pos())
		if err != nil {
			return NewNone(), err
		}
		return NewString(text), nil
	default:
		return NewNone(), exec.errorAt(expr.Pos(), errKindRuntime, "unsupported expression")
	}
}

func (exec *Execution) evalBinaryExpr(e *BinaryExpr, env *Env) (Value, error) {
	switch e.Op {
	case tokenOr:
		lhs, err := exec.evalExpression(e.Lhs, env)
		if err != nil {
			return NewNone(), err
		}
		if lhs.Truthy() {
			return NewBool(true), nil
		}
		rhs, err := exec.evalExpression(e.Rhs, env)
		if err != nil {
			return NewNone(), err
		}
		return NewBool(rhs.Truthy()), nil
	case tokenAnd:
		lhs, err := exec.evalExpression(e.Lhs, env)
		if err != nil {
			return NewNone(), err
		}
		if !lhs.Truthy() {
			return NewBool(false), nil
		}
		rhs, err := exec.evalExpression(e.Rhs, env)
		if err != nil {
			return NewNone(), err
		}
		return NewBool(rhs.Truthy()), nil
	}

	lhs, err := exec.evalExpression(e.Lhs, env)
	if err != nil {
		return NewNone(), err
	}
	rhs, err := exec.evalExpression(e.Rhs, env)
	if err != nil {
		return NewNone(), err
	}

	switch e.Op {
	case tokenPlus, tokenMinus, tokenAsterisk, tokenSlash:
		return exec.evalArithmetic(e.Op, lhs, rhs, e.Pos())
	default:
		return exec.compare(e.Op, lhs, rhs, e.Pos())
	}
}
