package config

import "pgregory.net/rapid"

// keys mix bare identifiers with ones that need quoting
var keyGen = rapid.OneOf(
	rapid.StringMatching(`[a-z][a-z0-9_-]{0,3}`),
	rapid.StringMatching(`[a-z "\\.]{1,5}`),
)

func scalarGen() *rapid.Generator[Value] {
	return rapid.OneOf(
		rapid.Map(rapid.StringMatching(`[a-zA-Z0-9 _."\\\t\n-]{0,8}`), func(s string) Value { return String(s) }),
		rapid.Map(rapid.Bool(), func(b bool) Value { return Bool(b) }),
		rapid.Map(rapid.Int64(), func(i int64) Value { return Int(i) }),
		rapid.Map(rapid.Float64Range(-1e6, 1e6), func(f float64) Value { return Float(f) }),
	)
}

func listGen() *rapid.Generator[Value] {
	return rapid.Map(rapid.SliceOfN(scalarGen(), 0, 4), func(vs []Value) Value { return List(vs) })
}

// tableGen draws tables nested at most depth levels below the root.
func tableGen(depth int) *rapid.Generator[Table] {
	return rapid.Custom(func(t *rapid.T) Table {
		n := rapid.IntRange(0, 4).Draw(t, "size")
		out := Table{}
		for i := 0; i < n; i++ {
			k := keyGen.Draw(t, "key")
			if depth > 0 && rapid.Bool().Draw(t, "nested") {
				out[k] = tableGen(depth-1).Draw(t, "table")
				continue
			}
			out[k] = rapid.OneOf(scalarGen(), listGen()).Draw(t, "value")
		}
		return out
	})
}
