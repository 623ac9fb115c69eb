package builtin

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/raymyers/cwalk/pkg/cmem"
	"github.com/raymyers/cwalk/pkg/cvalue"
)

// stdin is shared across every scanf call in a run, since the real
// stdin is a single consumable stream and a fresh bufio.Reader per call
// would drop already-buffered input.
var stdin = bufio.NewReader(os.Stdin)

func init() {
	register("stdio.h",
		entry("printf", "int", true, printfImpl),
		entry("scanf", "int", true, scanfImpl),
	)
}

// printfImpl implements the subset of printf's format language spec.md
// exercises: %d (and %i), %f, %c, %s, %%, literal text passed through
// verbatim. The memory handle resolves the format string and any %s
// argument's pointer payload to their arena contents (SPEC_FULL.md
// Supplemented Features #5).
func printfImpl(args []cvalue.Value, mem *cmem.Memory) cvalue.Value {
	if len(args) == 0 {
		return cvalue.Int32(0)
	}
	format := mem.ReadCString(cmem.Address(args[0].AsInt64()))
	rest := args[1:]
	argIdx := 0
	nextArg := func() cvalue.Value {
		if argIdx >= len(rest) {
			return cvalue.Int32(0)
		}
		v := rest[argIdx]
		argIdx++
		return v
	}

	var out strings.Builder
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' || i == len(format)-1 {
			out.WriteByte(c)
			continue
		}
		i++
		switch format[i] {
		case 'd', 'i':
			fmt.Fprintf(&out, "%d", nextArg().AsInt64())
		case 'f':
			fmt.Fprintf(&out, "%f", nextArg().AsFloat64())
		case 'c':
			out.WriteByte(byte(nextArg().AsInt64()))
		case 's':
			out.WriteString(mem.ReadCString(cmem.Address(nextArg().AsInt64())))
		case '%':
			out.WriteByte('%')
		default:
			out.WriteByte('%')
			out.WriteByte(format[i])
		}
	}
	fmt.Print(out.String())
	return cvalue.Int32(int64(out.Len()))
}

// scanfImpl implements the subset of scanf spec.md requires: %d, %f,
// %c, %s verbs, each consuming one whitespace-delimited token from
// stdin and writing it through the corresponding pointer argument
// (spec.md §9 Open Question Decisions: "the exact protocol between
// scanf and the pointer arguments is implicit in the builtin's code,
// not the evaluator" — specified here).
func scanfImpl(args []cvalue.Value, mem *cmem.Memory) cvalue.Value {
	if len(args) == 0 {
		return cvalue.Int32(0)
	}
	format := mem.ReadCString(cmem.Address(args[0].AsInt64()))
	ptrs := args[1:]
	ptrIdx := 0
	converted := 0

	for i := 0; i < len(format); i++ {
		if format[i] != '%' || i == len(format)-1 {
			continue
		}
		i++
		if ptrIdx >= len(ptrs) {
			break
		}
		addr := cmem.Address(ptrs[ptrIdx].AsInt64())
		ptrIdx++

		tok, err := readToken()
		if err != nil {
			break
		}
		switch format[i] {
		case 'd', 'i':
			n, err := strconv.ParseInt(tok, 10, 64)
			if err != nil {
				continue
			}
			mem.SetAtAddress(addr, cvalue.Int32(n))
			converted++
		case 'f':
			f, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				continue
			}
			mem.SetAtAddress(addr, cvalue.Dbl(f))
			converted++
		case 'c':
			if len(tok) > 0 {
				mem.SetAtAddress(addr, cvalue.CharVal(int64(tok[0])))
				converted++
			}
		case 's':
			mem.WriteCString(addr, tok)
			converted++
		}
	}
	return cvalue.Int32(int64(converted))
}

func readToken() (string, error) {
	var b strings.Builder
	for {
		r, _, err := stdin.ReadRune()
		if err != nil {
			if b.Len() > 0 {
				return b.String(), nil
			}
			return "", err
		}
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			if b.Len() > 0 {
				return b.String(), nil
			}
			continue
		}
		b.WriteRune(r)
	}
}
