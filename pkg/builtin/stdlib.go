package builtin

import (
	"github.com/raymyers/cwalk/pkg/cmem"
	"github.com/raymyers/cwalk/pkg/ctype"
	"github.com/raymyers/cwalk/pkg/cvalue"
)

func init() {
	register("stdlib.h",
		entry("malloc", "char *", true, mallocImpl),
		entry("free", "void", true, freeImpl),
	)
}

// mallocImpl allocates n fresh scalar cells and returns the address of
// the first (spec.md §6: "malloc allocates n fresh scalar cells and
// returns the address of the first"). Cells are char-typed; callers
// needing a different element type rely on Cast to reinterpret the
// pointer, same as real C's void* return.
func mallocImpl(args []cvalue.Value, mem *cmem.Memory) cvalue.Value {
	n := 0
	if len(args) > 0 {
		n = int(args[0].AsInt64())
	}
	addr := mem.Malloc(n, ctype.Char())
	return cvalue.Value{Type: ctype.Pointer(ctype.Char()), Int: int64(addr)}
}

// freeImpl is a no-op: the store never recycles addresses (spec.md §6:
// "free is a no-op at minimum").
func freeImpl(args []cvalue.Value, mem *cmem.Memory) cvalue.Value {
	if len(args) > 0 {
		mem.Free(cmem.Address(args[0].AsInt64()))
	}
	return cvalue.Value{}
}
