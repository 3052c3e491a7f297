package expression

import (
	"fmt"
	"testing"

	"github.com/reglet-dev/verity/internal/domain/quantity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func q(t *testing.T, magnitude float64, symbol string) quantity.Quantity {
	t.Helper()
	out, err := quantity.DefaultRegistry().Parse(magnitude, symbol, 1)
	require.NoError(t, err)
	return out
}

func Test_Evaluate_Literals(t *testing.T) {
	tests := []struct {
		name      string
		source    string
		wantValue string
		wantError string
	}{
		{"plain quantity", "12mm", "12 mm", ""},
		{"bare number", "12", "12", ""},
		{"count arithmetic", "12 + 1", "13", ""},
		{"precedence", "5+2*3", "11", ""},
		{"parentheses", "(5+2)*3", "21", ""},
		{"exponent", "4m2", "4 m^2", ""},
		{"negation", "-(2m - 3m)", "1 m", ""},
		{"uncertain counts", "12+/-1", "12", "1"},
		{"uncertain short form", "12+-1", "12", "1"},
		{"uncertain keeps units", "12mm +/- 1cm", "12 mm", "1 cm"},
		{"uncertain glued", "200cm+/-10mm", "200 cm", "10 mm"},
		{"dimensionless error adopts unit", "1m +/- 0.1", "1 m", "0.1 m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(tt.source, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.wantValue, got.Value.String())
			if tt.wantError == "" {
				assert.True(t, got.IsExact())
			} else {
				assert.Equal(t, tt.wantError, got.Error.String())
			}
		})
	}
}

func Test_Evaluate_MixedUnits(t *testing.T) {
	got, err := Evaluate("12mm + 1cm", nil)
	require.NoError(t, err)
	assert.True(t, got.Value.Equal(q(t, 2.2, "cm")))

	got, err = Evaluate("400cm+/-20cm - 2m", nil)
	require.NoError(t, err)
	assert.True(t, got.Value.Equal(q(t, 2, "m")))
	assert.True(t, got.Error.Equal(q(t, 20, "cm")))
}

func Test_Evaluate_References(t *testing.T) {
	props := map[string]string{
		"chassis.width":    "1000mm",
		"front frame.mass": "20kg",
		".count":           "3",
	}
	resolve := func(object, property string) (quantity.Measurement, error) {
		src, ok := props[object+"."+property]
		if !ok {
			return quantity.Measurement{}, &UnresolvedReferenceError{Name: property}
		}
		return Evaluate(src, nil)
	}

	tests := []struct {
		source string
		want   quantity.Quantity
	}{
		{"chassis width + 100mm", q(t, 1.1, "m")},
		{"chassis.width * 2", q(t, 2, "m")},
		{"front frame mass * count", q(t, 60, "kg")},
		{"front frame.mass / 4", q(t, 5, "kg")},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			got, err := Evaluate(tt.source, resolve)
			require.NoError(t, err)
			assert.True(t, got.Value.Equal(tt.want), "got %s, want %s", got, tt.want)
		})
	}
}

func Test_Evaluate_Errors(t *testing.T) {
	t.Run("division by zero", func(t *testing.T) {
		_, err := Evaluate("1m / 0", nil)
		var target *quantity.DivisionByZeroError
		assert.ErrorAs(t, err, &target)
	})

	t.Run("unit mismatch", func(t *testing.T) {
		_, err := Evaluate("1m + 1s", nil)
		var target *quantity.UnitMismatchError
		assert.ErrorAs(t, err, &target)
	})

	t.Run("uncertainty unit mismatch", func(t *testing.T) {
		_, err := Evaluate("1m +/- 1s", nil)
		var target *quantity.UnitMismatchError
		assert.ErrorAs(t, err, &target)
	})

	t.Run("undefined unit", func(t *testing.T) {
		_, err := Evaluate("3furlong", nil)
		var target *quantity.UndefinedUnitError
		require.ErrorAs(t, err, &target)
		assert.Equal(t, "furlong", target.Symbol)
	})

	t.Run("exponent overflow", func(t *testing.T) {
		tests := []string{"1m100 * 1m100", "1L50", "1 / 1m100 / 1m100"}
		for _, src := range tests {
			_, err := Evaluate(src, nil)
			var target *quantity.DimensionOverflowError
			assert.ErrorAs(t, err, &target, src)
		}
	})

	t.Run("reference without resolver", func(t *testing.T) {
		_, err := Evaluate("chassis.width + 1m", nil)
		var target *UnresolvedReferenceError
		require.ErrorAs(t, err, &target)
		assert.Equal(t, "chassis.width", target.Name)
	})

	t.Run("resolver error propagates", func(t *testing.T) {
		boom := fmt.Errorf("boom")
		_, err := Evaluate("mass", func(string, string) (quantity.Measurement, error) {
			return quantity.Measurement{}, boom
		})
		assert.ErrorIs(t, err, boom)
	})
}

func Test_Parse_SyntaxErrors(t *testing.T) {
	tests := []struct {
		source  string
		wantPos int
	}{
		{"", 0},
		{"   ", 0},
		{"2 +", 3},
		{"(1m + 2m", 8},
		{"2m $", 3},
		{"a.", 2},
		{"1.2.3", 0},
		{"4m2x", 3},
		{"2 3", 2},
		{"12mm +/- x", 9},
		{"* 2", 0},
		{"1m128", 2},
		{"1m99999999999999999999", 2},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			_, err := Parse(tt.source)
			var syntaxErr *SyntaxError
			require.ErrorAs(t, err, &syntaxErr)
			assert.Equal(t, tt.wantPos, syntaxErr.Pos)
			assert.Contains(t, syntaxErr.Error(), "syntax error at offset")
		})
	}
}

func Test_Parse_Tree(t *testing.T) {
	t.Run("references in source order", func(t *testing.T) {
		n := MustParse("a.mass + front frame mass * b")
		refs := n.References()
		require.Len(t, refs, 3)
		assert.Equal(t, "a", refs[0].Object)
		assert.Equal(t, "mass", refs[0].Property)
		assert.Equal(t, "front frame", refs[1].Object)
		assert.Equal(t, "mass", refs[1].Property)
		assert.Equal(t, "", refs[2].Object)
		assert.Equal(t, "b", refs[2].Property)
		assert.Equal(t, 9, refs[1].Pos())
	})

	t.Run("string form", func(t *testing.T) {
		assert.Equal(t, "(1m + 2m) * 3", MustParse("(1m+2m)*3").String())
		assert.Equal(t, "1m + (2m * 3)", MustParse("1m + 2m*3").String())
		assert.Equal(t, "-a.b", MustParse("- a.b").String())
		assert.Equal(t, "12mm +/- 1cm", MustParse("12mm+-1cm").String())
	})

	t.Run("literal detection", func(t *testing.T) {
		assert.True(t, IsLiteral(MustParse("12mm +/- 1cm")))
		assert.True(t, IsLiteral(MustParse("-5kg")))
		assert.True(t, IsLiteral(MustParse("2000mm")))
		assert.False(t, IsLiteral(MustParse("1m + 1m")))
		assert.False(t, IsLiteral(MustParse("chassis width")))
	})

	t.Run("must parse panics", func(t *testing.T) {
		assert.Panics(t, func() { MustParse("(") })
	})
}
