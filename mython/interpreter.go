package mython

import (
	"context"
	"io"
	"os"
)

// Config controls interpreter execution bounds.
type Config struct {
	StepQuota      int
	RecursionLimit int
}

// Engine compiles and executes Mython programs with deterministic limits.
type Engine struct {
	config Config
}

// NewEngine constructs an Engine, filling in default bounds.
func NewEngine(cfg Config) *Engine {
	if cfg.StepQuota <= 0 {
		cfg.StepQuota = 1_000_000
	}
	if cfg.RecursionLimit <= 0 {
		cfg.RecursionLimit = 256
	}
	return &Engine{config: cfg}
}

// Script is a compiled program bound to the engine that produced it.
type Script struct {
	engine  *Engine
	program *Program
	source  string
}

// Compile tokenizes and parses source. Lex and parse errors surface here;
// runtime errors only ever surface from Run.
func (e *Engine) Compile(source string) (*Script, error) {
	tracer().Debugf("compile: %d bytes of source", len(source))
	lex, err := newLexer(source)
	if err != nil {
		return nil, err
	}
	program, err := newParser(lex).parseProgram()
	if err != nil {
		return nil, err
	}
	return &Script{engine: e, program: program, source: source}, nil
}

// RunOptions configures a single execution of a script.
type RunOptions struct {
	// Output receives everything print emits. Defaults to os.Stdout.
	Output io.Writer
	// Globals, when non-nil, is used directly as the top-level frame's
	// binding map, so assignments made by the script remain visible to
	// the caller after Run returns.
	Globals map[string]Value
}

// Run evaluates the program top-down against a fresh top-level frame, or
// against opts.Globals when that map is non-nil.
// The context is polled during evaluation; cancellation aborts the run
// with the context's error.
func (s *Script) Run(ctx context.Context, opts RunOptions) error {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	exec := &Execution{
		script:       s,
		ctx:          ctx,
		out:          out,
		quota:        s.engine.config.StepQuota,
		recursionCap: s.engine.config.RecursionLimit,
	}
	env := newEnvWith(opts.Globals)
	_, _, err := exec.evalStatements(s.program.Statements, env)
	return err
}
