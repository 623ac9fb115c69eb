package eval

import (
	"github.com/raymyers/cwalk/pkg/ast"
	"github.com/raymyers/cwalk/pkg/cmem"
	"github.com/raymyers/cwalk/pkg/ctype"
)

// visitStmt dispatches on statement node kind (spec.md §4.3). It
// returns flowNone for "nothing meaningful" cases, propagating
// control-flow flags and Return values up through wrapping constructs
// exactly as spec.md's per-construct rules describe.
func (e *Evaluator) visitStmt(s ast.Stmt) flow {
	switch n := s.(type) {
	case *ast.Block:
		return e.visitBlock(n)
	case ast.ExprStmt:
		if n.Expr != nil {
			e.evalExpr(n.Expr)
		}
		return none
	case ast.VarDecl:
		e.visitVarDecl(n)
		return none
	case ast.Return:
		if n.Expr == nil {
			return flow{kind: flowReturn}
		}
		return flow{kind: flowReturn, value: e.evalExpr(n.Expr)}
	case ast.Break:
		return flow{kind: flowBreak}
	case ast.Continue:
		return flow{kind: flowContinue}
	case ast.If:
		if !e.evalExpr(n.Cond).IsZero() {
			return e.visitStmt(n.Then)
		}
		if n.Else != nil {
			return e.visitStmt(n.Else)
		}
		return none
	case ast.While:
		return e.visitWhile(n)
	case ast.DoWhile:
		return e.visitDoWhile(n)
	case ast.For:
		return e.visitFor(n)
	case ast.Switch:
		return e.visitSwitch(n)
	default:
		fault("eval: unhandled statement node %T", s)
		return none
	}
}

// visitBlock implements Compound statement (spec.md §4.3): push a
// scope, visit children in order, propagate the first control-flow
// flag or Return value, guaranteeing the matching del_scope on every
// exit path (spec.md §5 Resource discipline).
func (e *Evaluator) visitBlock(b *ast.Block) flow {
	e.mem.NewScope()
	defer e.mem.DelScope()
	for _, stmt := range b.Stmts {
		if res := e.visitStmt(stmt); res.kind != flowNone {
			return res
		}
	}
	return none
}

func (e *Evaluator) visitVarDecl(n ast.VarDecl) {
	t, err := ctype.ParseSpec(n.TypeSpec)
	if err != nil {
		fault("eval: variable %s: %v", n.Name, err)
	}
	if t.IsStruct() {
		addr := e.mem.DeclareStructVar(t, n.Name)
		if n.Init != nil {
			e.mem.CopyStruct(addr, cmem.Address(e.evalExpr(n.Init).Int))
		}
		return
	}
	addr := e.mem.DeclareNum(t, n.Name)
	if n.Init != nil {
		e.mem.SetAtAddress(addr, e.evalExpr(n.Init))
	}
}

// visitWhile implements the pretest loop (spec.md §4.3 Loops): BREAK
// exits, CONTINUE ends the current iteration (absorbed here since the
// body's Block already stops propagating once it returns a flag),
// Return propagates out.
func (e *Evaluator) visitWhile(n ast.While) flow {
	for !e.evalExpr(n.Cond).IsZero() {
		res := e.visitStmt(n.Body)
		switch res.kind {
		case flowBreak:
			return none
		case flowReturn:
			return res
		}
	}
	return none
}

func (e *Evaluator) visitDoWhile(n ast.DoWhile) flow {
	for {
		res := e.visitStmt(n.Body)
		switch res.kind {
		case flowBreak:
			return none
		case flowReturn:
			return res
		}
		if e.evalExpr(n.Cond).IsZero() {
			return none
		}
	}
}

// visitFor implements the for-loop (spec.md §4.3): run setup once,
// then while condition is nonzero (or absent), visit body, then run
// increment. Setup/Cond/Increment are any of nil, Setup introduces its
// own scope spanning the whole loop (so a `for (int i = 0; ...)` style
// declaration doesn't leak past the loop, but does survive across
// iterations, unlike the body's own per-iteration Block scope).
func (e *Evaluator) visitFor(n ast.For) flow {
	e.mem.NewScope()
	defer e.mem.DelScope()

	if n.Setup != nil {
		e.visitStmt(n.Setup)
	}
	for n.Cond == nil || !e.evalExpr(n.Cond).IsZero() {
		res := e.visitStmt(n.Body)
		switch res.kind {
		case flowBreak:
			return none
		case flowReturn:
			return res
		}
		if n.Increment != nil {
			e.visitStmt(n.Increment)
		}
	}
	return none
}

// visitSwitch implements spec.md §4.3's Switch: walk Body in source
// order with a boolean "active" latch. The latch turns on at a
// matching case label or at a default label encountered while still
// inactive (positional semantics: a default earlier in the body takes
// effect even if a later case would otherwise have matched). Once
// active, it never turns back off — fall-through is the default.
func (e *Evaluator) visitSwitch(n ast.Switch) flow {
	discriminant := e.evalExpr(n.Expr)
	active := false
	for _, child := range n.Body {
		switch c := child.(type) {
		case ast.CaseLabel:
			matches := !e.evalExpr(c.Expr).Eq(discriminant).IsZero()
			if !active && matches {
				active = true
			}
		case ast.DefaultLabel:
			if !active {
				active = true
			}
		default:
			if !active {
				continue
			}
			res := e.visitStmt(child)
			switch res.kind {
			case flowBreak:
				return none
			case flowReturn, flowContinue:
				return res
			}
		}
	}
	return none
}
