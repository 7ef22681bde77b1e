// Package rules evaluates small expressions against form snapshots. Forms
// use it to express validation-status predicates ("status == 422") and data
// transforms without compiling Go code, using expr, CEL or (with the js_eval
// build tag) JavaScript.
package rules

import "time"

// Context carries the inputs visible to an expression. Snapshot keys are
// exposed as top-level variables when Snapshot is a map[string]any.
type Context struct {
	Snapshot any
	Now      *time.Time
	Args     map[string]any
}

func (ctx Context) withDefaults() Context {
	if ctx.Now == nil {
		now := time.Now()
		ctx.Now = &now
	}
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	return ctx
}

func (ctx Context) timestamp() time.Time {
	return *ctx.withDefaults().Now
}

func (ctx Context) snapshotMap() map[string]any {
	if m, ok := ctx.Snapshot.(map[string]any); ok && m != nil {
		return m
	}
	return map[string]any{}
}

// Evaluator executes expressions against a rule context.
type Evaluator interface {
	Evaluate(ctx Context, expr string) (any, error)
	Compile(expr string) (Compiled, error)
}

// Compiled is a reusable expression program.
type Compiled interface {
	Evaluate(ctx Context) (any, error)
}

// ProgramCache stores compiled programs keyed by expression string.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}
