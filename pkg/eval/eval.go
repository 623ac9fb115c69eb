// Package eval implements the Evaluator (spec C4): a tree-walking
// visitor over pkg/ast that drives pkg/cmem's Memory model. Grounded
// directly on original_source/interpreter/interpreter/interpreter.py's
// method-by-method visitor (visit_Program, visit_FunctionCall,
// visit_CompoundStmt, ...), with dispatch organized the way the
// teacher repo's pkg/cshmgen and pkg/selection switch on AST node kind
// to drive a generation pass — here driving evaluation instead.
package eval

import (
	"fmt"

	"github.com/raymyers/cwalk/pkg/ast"
	"github.com/raymyers/cwalk/pkg/builtin"
	"github.com/raymyers/cwalk/pkg/cmem"
	"github.com/raymyers/cwalk/pkg/ctype"
	"github.com/raymyers/cwalk/pkg/cvalue"
)

// fault raises an internal "should-not-happen" condition (spec.md §7),
// recovered at Run's boundary. Mirrors cmem's private fault helper;
// kept as its own copy since cmem.Fault's constructor isn't exported.
func fault(format string, args ...interface{}) {
	panic(&cmem.Fault{Msg: fmt.Sprintf(format, args...)})
}

// flowKind distinguishes what a statement visit produced, standing in
// for spec.md §4.3's "control-flow flag" (BREAK/CONTINUE) plus the
// Return-value marker; flowNone is the "nothing meaningful" case.
type flowKind int

const (
	flowNone flowKind = iota
	flowReturn
	flowBreak
	flowContinue
)

// flow is a statement visit's result: a control-flow flag, optionally
// carrying a Return's Typed Value.
type flow struct {
	kind  flowKind
	value cvalue.Value
}

var none = flow{kind: flowNone}

// Evaluator walks a Program against one owned Memory instance (spec.md
// §5: "The Memory store is exclusively owned by one Evaluator
// instance").
type Evaluator struct {
	mem *cmem.Memory
}

// New creates an Evaluator with a fresh, empty Memory.
func New() *Evaluator {
	return &Evaluator{mem: cmem.New()}
}

// Run executes prog's preamble, then performs the synthetic call to
// main that original_source's interpret() method makes explicitly
// (SPEC_FULL.md Supplemented Features #2), and returns main's exit
// status. Any internal fault raised during evaluation is recovered
// here and surfaced as an error (spec.md §7: "any fault aborts
// interpretation and is surfaced to the driver").
func (e *Evaluator) Run(prog *ast.Program) (status int, err error) {
	defer func() {
		if r := recover(); r == nil {
			return
		} else if f, ok := r.(*cmem.Fault); ok {
			err = f
		} else {
			err = fmt.Errorf("eval: %v", r)
		}
		status = 0
	}()

	e.preamble(prog)

	entry, ok := e.mem.Entry("main")
	if !ok {
		return 0, fmt.Errorf("eval: no main function defined")
	}
	fc, ok := entry.(cmem.FunctionCell)
	if !ok {
		return 0, fmt.Errorf("eval: main is not a function")
	}
	ret := e.callUser(fc.Decl, nil)
	return int(ret.AsInt64()), nil
}

// preamble performs the Program preamble (spec.md §4.3): library
// includes, then function declarations, then struct declarations, then
// global variable declarations/assignments. Struct declarations are
// processed ahead of global variable declarations rather than after
// them as spec.md's prose lists them, since a struct-typed global
// needs its field schema registered before declare_struct_var can
// materialize it.
func (e *Evaluator) preamble(prog *ast.Program) {
	for _, d := range prog.Decls {
		if inc, ok := d.(ast.IncludeLibrary); ok {
			if err := builtin.Install(e.mem, inc.Library); err != nil {
				fault("eval: %v", err)
			}
		}
	}
	for _, d := range prog.Decls {
		if fn, ok := d.(ast.FunctionDecl); ok {
			e.mem.DeclareFun(fn.Name, &fn)
		}
	}
	for _, d := range prog.Decls {
		if sd, ok := d.(ast.StructDecl); ok {
			fields := make([]ctype.Field, len(sd.Fields))
			for i, f := range sd.Fields {
				t, err := ctype.ParseSpec(f.TypeSpec)
				if err != nil {
					fault("eval: struct %s field %s: %v", sd.Name, f.Name, err)
				}
				fields[i] = ctype.Field{Name: f.Name, Type: t}
			}
			e.mem.DeclareStruct(sd.Name, fields)
		}
	}
	for _, d := range prog.Decls {
		gv, ok := d.(ast.GlobalVarDecl)
		if !ok {
			continue
		}
		t, err := ctype.ParseSpec(gv.TypeSpec)
		if err != nil {
			fault("eval: global %s: %v", gv.Name, err)
		}
		var addr cmem.Address
		if t.IsStruct() {
			addr = e.mem.DeclareStructVar(t, gv.Name)
		} else {
			addr = e.mem.DeclareNum(t, gv.Name)
		}
		if gv.Init != nil {
			val := e.evalExpr(gv.Init)
			e.mem.SetAtAddress(addr, val)
		}
	}
}

// callUser performs steps 4 and the shared parts of step 1 of spec.md
// §4.3's Function call algorithm for a user-defined callee: push a
// frame, declare parameters in its root scope, visit the body, pop the
// frame on every exit path (spec.md §5 "Resource discipline").
func (e *Evaluator) callUser(decl *ast.FunctionDecl, args []cvalue.Value) cvalue.Value {
	e.mem.NewFrame(decl.Name)
	defer e.mem.DelFrame()

	for i, p := range decl.Params {
		t, err := ctype.ParseSpec(p.TypeSpec)
		if err != nil {
			fault("eval: %s parameter %s: %v", decl.Name, p.Name, err)
		}
		if t.IsStruct() {
			dst := e.mem.DeclareStructVar(t, p.Name)
			if i < len(args) {
				e.mem.CopyStruct(dst, cmem.Address(args[i].Int))
			}
			continue
		}
		addr := e.mem.DeclareNum(t, p.Name)
		if i < len(args) {
			e.mem.SetAtAddress(addr, args[i])
		}
	}

	result := e.visitStmt(decl.Body)

	retType, err := ctype.ParseSpec(decl.ReturnType)
	if err != nil {
		fault("eval: %s return type: %v", decl.Name, err)
	}
	if result.kind == flowReturn {
		return cvalue.Cast(retType, result.value)
	}
	// main without an explicit return exits 0 (SPEC_FULL.md Open
	// Question Decisions); any other function falls through the same
	// way, yielding the type's zero value.
	return cvalue.Zero(retType)
}

// callBuiltin performs step 3 of the Function call algorithm for a
// host-implemented callee.
func (e *Evaluator) callBuiltin(b cmem.BuiltinCell, args []cvalue.Value) cvalue.Value {
	result := b.Fn(args, e.mem)
	if b.Void {
		return cvalue.Value{}
	}
	return cvalue.Cast(b.ReturnType, result)
}

// call resolves name in the global namespace and dispatches to the
// user or builtin call path (spec.md §4.3 steps 2-4; the Memory handle
// is always passed to host callables directly as a Go parameter rather
// than conditionally appended as a trailing argument — see
// cmem.HostFunc's doc comment).
func (e *Evaluator) call(name string, argExprs []ast.Expr) cvalue.Value {
	args := make([]cvalue.Value, len(argExprs))
	for i, a := range argExprs {
		args[i] = e.evalExpr(a)
	}
	entry, ok := e.mem.Entry(name)
	if !ok {
		fault("eval: call to undeclared function %q", name)
	}
	switch c := entry.(type) {
	case cmem.FunctionCell:
		return e.callUser(c.Decl, args)
	case cmem.BuiltinCell:
		return e.callBuiltin(c, args)
	default:
		fault("eval: %q does not name a callable", name)
		return cvalue.Value{}
	}
}
