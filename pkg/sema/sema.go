// Package sema is the minimal semantic-analysis pass SPEC_FULL.md's
// Upstream Contract Packages section requires: the three checks
// spec.md §7's kind-1 error classification explicitly assumes an
// upstream analyzer already performed, so that pkg/eval never has to
// reason about them — undeclared identifiers, redeclaration, and
// break/continue used outside a loop or switch. It is not a type
// checker: it never inspects a declared type, only names and lexical
// nesting.
package sema

import (
	"fmt"

	"github.com/raymyers/cwalk/pkg/ast"
)

// Error is one analysis finding; Analyze collects every one it finds
// rather than stopping at the first, the way a real frontend reports
// all of a compilation unit's diagnostics at once.
type Error struct {
	Msg string
}

func (e *Error) Error() string { return e.Msg }

// analyzer threads the three checks through a single recursive walk: a
// stack of declared-name sets (one per lexical scope, function-call
// style rather than Memory-backed since no program is running yet)
// and a loop/switch nesting counter for break/continue validation.
type analyzer struct {
	errs    []error
	scopes  []map[string]bool
	structs map[string]bool
	loopDep int
}

// Analyze walks prog and returns every violation found, in source
// order. A nil result means prog is safe for pkg/eval to assume the
// three checks below never trigger a Fault.
func Analyze(prog *ast.Program) []error {
	a := &analyzer{structs: map[string]bool{}}
	a.pushScope()
	defer a.popScope()

	for _, d := range prog.Decls {
		a.declareTopLevel(d)
	}
	for _, d := range prog.Decls {
		if fn, ok := d.(ast.FunctionDecl); ok {
			a.checkFunction(fn)
		}
	}
	return a.errs
}

func (a *analyzer) pushScope() { a.scopes = append(a.scopes, map[string]bool{}) }
func (a *analyzer) popScope()  { a.scopes = a.scopes[:len(a.scopes)-1] }

func (a *analyzer) errorf(format string, args ...interface{}) {
	a.errs = append(a.errs, &Error{Msg: fmt.Sprintf(format, args...)})
}

func (a *analyzer) declare(name string) {
	top := a.scopes[len(a.scopes)-1]
	if top[name] {
		a.errorf("redeclaration of %q", name)
		return
	}
	top[name] = true
}

func (a *analyzer) isDeclared(name string) bool {
	for i := len(a.scopes) - 1; i >= 0; i-- {
		if a.scopes[i][name] {
			return true
		}
	}
	return false
}

// declareTopLevel binds the three kinds of names a Program preamble
// binds globally: included-library callables are invisible to sema
// (it has no builtin registry of its own — pkg/eval's fault on an
// undeclared call is the backstop for a bad #include, out of scope for
// a check that only reasons about user-declared names), function
// names, global variable names, and struct names.
func (a *analyzer) declareTopLevel(d ast.TopLevel) {
	switch n := d.(type) {
	case ast.FunctionDecl:
		a.declare(n.Name)
	case ast.GlobalVarDecl:
		a.declare(n.Name)
	case ast.StructDecl:
		if a.structs[n.Name] {
			a.errorf("redeclaration of struct %q", n.Name)
		}
		a.structs[n.Name] = true
	}
}

func (a *analyzer) checkFunction(fn ast.FunctionDecl) {
	a.pushScope()
	defer a.popScope()
	for _, p := range fn.Params {
		a.declare(p.Name)
	}
	if fn.Body != nil {
		a.checkBlock(*fn.Body)
	}
}

func (a *analyzer) checkBlock(b ast.Block) {
	a.pushScope()
	defer a.popScope()
	for _, s := range b.Stmts {
		a.checkStmt(s)
	}
}

func (a *analyzer) checkStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.Block:
		a.checkBlock(*n)
	case ast.VarDecl:
		if n.Init != nil {
			a.checkExpr(n.Init)
		}
		a.declare(n.Name)
	case ast.ExprStmt:
		if n.Expr != nil {
			a.checkExpr(n.Expr)
		}
	case ast.Return:
		if n.Expr != nil {
			a.checkExpr(n.Expr)
		}
	case ast.Break:
		if a.loopDep == 0 {
			a.errorf("break used outside a loop or switch")
		}
	case ast.Continue:
		if a.loopDep == 0 {
			a.errorf("continue used outside a loop")
		}
	case ast.If:
		a.checkExpr(n.Cond)
		a.checkStmt(n.Then)
		if n.Else != nil {
			a.checkStmt(n.Else)
		}
	case ast.While:
		a.checkExpr(n.Cond)
		a.inLoop(func() { a.checkStmt(n.Body) })
	case ast.DoWhile:
		a.inLoop(func() { a.checkStmt(n.Body) })
		a.checkExpr(n.Cond)
	case ast.For:
		a.pushScope()
		defer a.popScope()
		if n.Setup != nil {
			a.checkStmt(n.Setup)
		}
		if n.Cond != nil {
			a.checkExpr(n.Cond)
		}
		a.inLoop(func() { a.checkStmt(n.Body) })
		if n.Increment != nil {
			a.checkStmt(n.Increment)
		}
	case ast.Switch:
		a.checkExpr(n.Expr)
		a.inLoop(func() {
			for _, child := range n.Body {
				a.checkStmt(child)
			}
		})
	case ast.CaseLabel:
		a.checkExpr(n.Expr)
	case ast.DefaultLabel:
		// no-op
	}
}

// inLoop runs body with the loop/switch nesting counter incremented,
// the way break/continue validity is lexically scoped to the nearest
// enclosing loop or switch construct, not to function boundaries.
func (a *analyzer) inLoop(body func()) {
	a.loopDep++
	body()
	a.loopDep--
}

func (a *analyzer) checkExpr(e ast.Expr) {
	switch n := e.(type) {
	case ast.Ident:
		if !a.isDeclared(n.Name) {
			a.errorf("undeclared identifier %q", n.Name)
		}
	case ast.Unary:
		a.checkExpr(n.Expr)
	case ast.Postfix:
		a.checkExpr(n.Expr)
	case ast.Binary:
		a.checkExpr(n.Left)
		a.checkExpr(n.Right)
	case ast.Assign:
		a.checkExpr(n.Left)
		a.checkExpr(n.Right)
	case ast.Call:
		// Callee names resolve against the builtin registry or
		// function table at eval time; sema only validates argument
		// expressions, since it has no model of #include'd names.
		for _, arg := range n.Args {
			a.checkExpr(arg)
		}
	case ast.Member:
		a.checkExpr(n.Expr)
	case ast.Cast:
		a.checkExpr(n.Expr)
	}
}
