package ast

import (
	"bytes"
	"strings"
	"testing"
)

func TestPrinterRendersFunctionDecl(t *testing.T) {
	prog := &Program{
		Decls: []TopLevel{
			FunctionDecl{
				ReturnType: "int",
				Name:       "main",
				Body: &Block{
					Stmts: []Stmt{
						Return{Expr: IntLit{Value: 120}},
					},
				},
			},
		},
	}
	var buf bytes.Buffer
	NewPrinter(&buf).PrintProgram(prog)
	out := buf.String()
	if !strings.Contains(out, "int main() {") {
		t.Errorf("expected function signature in output, got %q", out)
	}
	if !strings.Contains(out, "return 120;") {
		t.Errorf("expected return statement in output, got %q", out)
	}
}

func TestPrinterRendersStructAndSwitch(t *testing.T) {
	prog := &Program{
		Decls: []TopLevel{
			StructDecl{Name: "S", Fields: []StructField{{TypeSpec: "int", Name: "a"}}},
			FunctionDecl{
				ReturnType: "int",
				Name:       "main",
				Body: &Block{Stmts: []Stmt{
					Switch{
						Expr: Ident{Name: "i"},
						Body: []Stmt{
							CaseLabel{Expr: IntLit{Value: 1}},
							ExprStmt{Expr: Assign{Op: OpAddAssign, Left: Ident{Name: "s"}, Right: IntLit{Value: 1}}},
							DefaultLabel{},
						},
					},
				}},
			},
		},
	}
	var buf bytes.Buffer
	NewPrinter(&buf).PrintProgram(prog)
	out := buf.String()
	for _, want := range []string{"struct S {", "case 1:", "default:", "s += 1;"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output, got %q", want, out)
		}
	}
}
