package builtin

import (
	"math"

	"github.com/raymyers/cwalk/pkg/cmem"
	"github.com/raymyers/cwalk/pkg/cvalue"
)

func init() {
	register("math.h",
		entry("sqrt", "double", false, unary(math.Sqrt)),
		entry("pow", "double", false, binary(math.Pow)),
		entry("fabs", "double", false, unary(math.Abs)),
		entry("floor", "double", false, unary(math.Floor)),
		entry("ceil", "double", false, unary(math.Ceil)),
	)
}

func unary(f func(float64) float64) cmem.HostFunc {
	return func(args []cvalue.Value, mem *cmem.Memory) cvalue.Value {
		var x float64
		if len(args) > 0 {
			x = args[0].AsFloat64()
		}
		return cvalue.Dbl(f(x))
	}
}

func binary(f func(float64, float64) float64) cmem.HostFunc {
	return func(args []cvalue.Value, mem *cmem.Memory) cvalue.Value {
		var a, b float64
		if len(args) > 0 {
			a = args[0].AsFloat64()
		}
		if len(args) > 1 {
			b = args[1].AsFloat64()
		}
		return cvalue.Dbl(f(a, b))
	}
}
