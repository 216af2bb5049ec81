package mython

const (
	initMethod = "__init__"
	strMethod  = "__str__"
	eqMethod   = "__eq__"
	ltMethod   = "__lt__"
	addMethod  = "__add__"
)

// callMethod resolves name along the receiver's class chain and invokes
// it in a fresh frame holding only the formals and self. The caller's
// frame is never visible inside the callee.
func (exec *Execution) callMethod(inst *Instance, name string, args []Value, pos Position) (Value, error) {
	method := inst.Class.GetMethod(name)
	if method == nil || len(method.Params) != len(args) {
		return NewNone(), exec.errorAt(pos, errKindMethod, "class %s has no method %s taking %d arguments", inst.Class.Name, name, len(args))
	}
	if exec.recursionCap > 0 && len(exec.callStack) >= exec.recursionCap {
		return NewNone(), exec.errorAt(pos, errKindRuntime, "max recursion depth exceeded (%d)", exec.recursionCap)
	}
	tracer().Debugf("dispatch %s.%s/%d", inst.Class.Name, name, len(args))

	frame := newEnv()
	for i, param := range method.Params {
		frame.Define(param, args[i])
	}
	frame.Define("self", NewInstanceValue(inst))

	exec.callStack = append(exec.callStack, callFrame{Method: inst.Class.Name + "." + name, Pos: pos})
	val, returned, err := exec.evalStatements(method.Body, frame)
	exec.callStack = exec.callStack[:len(exec.callStack)-1]

	if err != nil {
		return NewNone(), err
	}
	if !returned {
		return NewNone(), nil
	}
	return val, nil
}

// newInstanceOf builds a fresh instance and runs __init__ when one with a
// matching arity exists. Without a match the constructor arguments are
// never evaluated; the initializer's return value is always discarded.
func (exec *Execution) newInstanceOf(e *NewInstanceExpr, env *Env) (Value, error) {
	exec.instances++
	inst := newInstance(e.Class, exec.instances)
	if !e.Class.HasMethod(initMethod, len(e.Args)) {
		return NewInstanceValue(inst), nil
	}
	args := make([]Value, len(e.Args))
	for i, arg := range e.Args {
		val, err := exec.evalExpression(arg, env)
		if err != nil {
			return NewNone(), err
		}
		args[i] = val
	}
	if _, err := exec.callMethod(inst, initMethod, args, e.Pos()); err != nil {
		return NewNone(), err
	}
	return NewInstanceValue(inst), nil
}

// stringify renders a value the way print would. Instances dispatch a
// zero-arity __str__ when the class chain has one, falling back to the
// per-run identity token otherwise.
func (exec *Execution) stringify(val Value, pos Position) (string, error) {
	inst := val.Instance()
	if inst == nil || !inst.Class.HasMethod(strMethod, 0) {
		return val.String(), nil
	}
	res, err := exec.callMethod(inst, strMethod, nil, pos)
	if err != nil {
		return "", err
	}
	return exec.stringify(res, pos)
}
