package sema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raymyers/cwalk/pkg/lexer"
	"github.com/raymyers/cwalk/pkg/parser"
)

func TestAcceptsWellFormedProgram(t *testing.T) {
	p := parser.New(lexer.New(`
		int add(int a, int b) { return a + b; }
		int main() { int x = add(1, 2); return x; }
	`))
	prog := p.ParseProgram()
	require.Empty(t, p.Errors())
	assert.Empty(t, Analyze(prog))
}

func TestFlagsUndeclaredIdentifier(t *testing.T) {
	p := parser.New(lexer.New(`int main() { return y; }`))
	prog := p.ParseProgram()
	require.Empty(t, p.Errors())
	errs := Analyze(prog)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "undeclared identifier")
}

func TestFlagsRedeclaration(t *testing.T) {
	p := parser.New(lexer.New(`int main() { int x = 1; int x = 2; return x; }`))
	prog := p.ParseProgram()
	require.Empty(t, p.Errors())
	errs := Analyze(prog)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "redeclaration")
}

func TestFlagsBreakOutsideLoop(t *testing.T) {
	p := parser.New(lexer.New(`int main() { break; return 0; }`))
	prog := p.ParseProgram()
	require.Empty(t, p.Errors())
	errs := Analyze(prog)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "break")
}

func TestFlagsContinueOutsideLoop(t *testing.T) {
	p := parser.New(lexer.New(`int main() { continue; return 0; }`))
	prog := p.ParseProgram()
	require.Empty(t, p.Errors())
	errs := Analyze(prog)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "continue")
}

func TestAllowsBreakInsideNestedLoop(t *testing.T) {
	p := parser.New(lexer.New(`
		int main() {
			int i;
			for (i = 0; i < 3; i++) { break; }
			return 0;
		}
	`))
	prog := p.ParseProgram()
	require.Empty(t, p.Errors())
	assert.Empty(t, Analyze(prog))
}

func TestAllowsBreakInsideSwitch(t *testing.T) {
	p := parser.New(lexer.New(`
		int main() {
			switch (1) { case 1: break; }
			return 0;
		}
	`))
	prog := p.ParseProgram()
	require.Empty(t, p.Errors())
	assert.Empty(t, Analyze(prog))
}

func TestScopeEndsIdentifierVisibility(t *testing.T) {
	p := parser.New(lexer.New(`
		int main() {
			{ int x = 1; }
			return x;
		}
	`))
	prog := p.ParseProgram()
	require.Empty(t, p.Errors())
	errs := Analyze(prog)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "undeclared identifier")
}

func TestGlobalsVisibleInsideFunctions(t *testing.T) {
	p := parser.New(lexer.New(`
		int counter;
		int bump() { counter = counter + 1; return counter; }
		int main() { return bump(); }
	`))
	prog := p.ParseProgram()
	require.Empty(t, p.Errors())
	assert.Empty(t, Analyze(prog))
}
