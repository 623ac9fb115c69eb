// Package builtin is the C5 Builtin registry: a static table of
// library name to host-implemented callables, installed into
// pkg/cmem's global namespace on a `#include` directive (spec.md §6).
// Grounded on spec.md §6 directly and on original_source's
// visit_IncludeLibrary (which looks a library name up in a fixed
// Python dict and binds each entry's host callable into the
// interpreter's global scope the same way); registry shape ("static
// table of (library-name -> list of (name, callable, return-type-tag,
// takes-memory?))") is spec.md §9's own re-architecture guidance for C5.
package builtin

import (
	"fmt"

	"github.com/raymyers/cwalk/pkg/cmem"
	"github.com/raymyers/cwalk/pkg/ctype"
)

// entry builds a cmem.BuiltinCell from a declared return-type spelling
// ("int", "double", "void", "char *", ...).
func entry(name, returnType string, takesMemory bool, fn cmem.HostFunc) cmem.BuiltinCell {
	if returnType == "void" {
		return cmem.BuiltinCell{Name: name, Void: true, TakesMemory: takesMemory, Fn: fn}
	}
	t, err := ctype.ParseSpec(returnType)
	if err != nil {
		panic(fmt.Sprintf("builtin: bad return type for %s: %v", name, err))
	}
	return cmem.BuiltinCell{Name: name, ReturnType: t, TakesMemory: takesMemory, Fn: fn}
}

// libraries maps a #include header name to the callables it injects.
// Populated by each library's own file (stdio.go, stdlib.go,
// mathlib.go, stringlib.go) via init, mirroring the teacher's convention of one file
// per concern rather than one monolithic table.
var libraries = map[string]map[string]cmem.BuiltinCell{}

func register(header string, entries ...cmem.BuiltinCell) {
	lib := libraries[header]
	if lib == nil {
		lib = make(map[string]cmem.BuiltinCell)
		libraries[header] = lib
	}
	for _, e := range entries {
		lib[e.Name] = e
	}
}

// Known reports whether header names a recognized library.
func Known(header string) bool {
	_, ok := libraries[header]
	return ok
}

// Install binds every callable of the named library into mem's global
// namespace (spec.md §6: "the include name is mapped to a namespaced
// set of host callables"). Returns an error for an unrecognized header,
// since the library set is fixed; pkg/eval's preamble raises that error
// as a fault, which reaches the driver as Run's returned error.
func Install(mem *cmem.Memory, header string) error {
	lib, ok := libraries[header]
	if !ok {
		return fmt.Errorf("builtin: unrecognized library %q", header)
	}
	for name, e := range lib {
		mem.DeclareBuiltin(name, e)
	}
	return nil
}
