// string.h is not named in spec.md's minimum library set, but
// SPEC_FULL.md's Supplemented Features #3 adds it: strcpy/strcat give
// the memory-aware builtin category (TakesMemory) a second family
// besides stdio/stdlib to exercise, since both shims write through a
// destination pointer argument the same way scanf does.
package builtin

import (
	"github.com/raymyers/cwalk/pkg/cmem"
	"github.com/raymyers/cwalk/pkg/ctype"
	"github.com/raymyers/cwalk/pkg/cvalue"
)

func init() {
	register("string.h",
		entry("strcpy", "char *", true, strcpyImpl),
		entry("strcat", "char *", true, strcatImpl),
	)
}

func strcpyImpl(args []cvalue.Value, mem *cmem.Memory) cvalue.Value {
	dest := cmem.Address(args[0].AsInt64())
	src := mem.ReadCString(cmem.Address(args[1].AsInt64()))
	mem.WriteCString(dest, src)
	return cvalue.Value{Type: ctype.Pointer(ctype.Char()), Int: int64(dest)}
}

func strcatImpl(args []cvalue.Value, mem *cmem.Memory) cvalue.Value {
	dest := cmem.Address(args[0].AsInt64())
	existing := mem.ReadCString(dest)
	src := mem.ReadCString(cmem.Address(args[1].AsInt64()))
	mem.WriteCString(dest+cmem.Address(len(existing)), src)
	return cvalue.Value{Type: ctype.Pointer(ctype.Char()), Int: int64(dest)}
}
