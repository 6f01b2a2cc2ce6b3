package script_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openprobity/crosswalk/pkg/script"
)

func TestParse_Rename(t *testing.T) {
	d, err := script.Parse("RENAME > 'occupation' < 'JOB TITLE'")
	require.NoError(t, err)

	assert.Equal(t, script.KindRename, d.Kind)
	assert.Equal(t, []string{"occupation"}, d.Dest)
	assert.Equal(t, []string{"JOB TITLE"}, d.SourceFields)
}

func TestParse_New(t *testing.T) {
	t.Run("string literal", func(t *testing.T) {
		d, err := script.Parse("NEW > 'country' < 'GBR'")
		require.NoError(t, err)
		assert.Equal(t, script.KindNew, d.Kind)
		assert.Equal(t, "GBR", d.Value)
	})

	t.Run("numeric literal", func(t *testing.T) {
		d, err := script.Parse("NEW > 'ratio' < [0.5]")
		require.NoError(t, err)
		assert.Equal(t, 0.5, d.Value)
	})
}

func TestParse_Select(t *testing.T) {
	d, err := script.Parse("SELECT > 'amount' < ['first', 'second', 'third']")
	require.NoError(t, err)

	assert.Equal(t, script.KindSelect, d.Kind)
	assert.Equal(t, []string{"first", "second", "third"}, d.SourceFields)
}

func TestParse_SelectNewest(t *testing.T) {
	d, err := script.Parse("SELECT_NEWEST > 'value' < ['v1' + 'd1', 'v2' + 'd2']")
	require.NoError(t, err)

	assert.Equal(t, script.KindSelectNewest, d.Kind)
	require.Len(t, d.Pairs, 2)
	assert.Equal(t, script.Pair{Value: "v1", Date: "d1"}, d.Pairs[0])
	assert.Equal(t, script.Pair{Value: "v2", Date: "d2"}, d.Pairs[1])
}

func TestParse_Categorise(t *testing.T) {
	t.Run("implicit modifier", func(t *testing.T) {
		d, err := script.Parse("CATEGORISE > 'sector'::'retail' < 'USE'::['shop', 'store']")
		require.NoError(t, err)

		assert.Equal(t, script.KindCategorise, d.Kind)
		assert.Equal(t, script.ModNone, d.Modifier)
		assert.Equal(t, "sector", d.DestField())
		assert.Equal(t, "retail", d.DestTerm)
		assert.Equal(t, []string{"USE"}, d.SourceFields)
		assert.Equal(t, []string{"shop", "store"}, d.Terms)
	})

	t.Run("accumulate modifier", func(t *testing.T) {
		d, err := script.Parse("CATEGORISE + > 'tags'::'retail' < 'USE'::['shop']")
		require.NoError(t, err)
		assert.Equal(t, script.ModAccumulate, d.Modifier)
	})

	t.Run("assign modifier", func(t *testing.T) {
		d, err := script.Parse("CATEGORISE - > 'sector'::'retail' < 'USE'::['shop']")
		require.NoError(t, err)
		assert.Equal(t, script.ModAssign, d.Modifier)
	})

	t.Run("modifier rejected elsewhere", func(t *testing.T) {
		_, err := script.Parse("RENAME + > 'a' < 'b'")
		var arity *script.ArityError
		require.ErrorAs(t, err, &arity)
	})
}

func TestParse_Collate(t *testing.T) {
	d, err := script.Parse("COLLATE > 'readings' < ['a', ~, 'b']")
	require.NoError(t, err)

	assert.Equal(t, []string{"a", script.Spacer, "b"}, d.SourceFields)
}

func TestParse_PivotLonger(t *testing.T) {
	d, err := script.Parse("PIVOT_LONGER > ['year', 'value'] < ['1990', '1995', '2000']")
	require.NoError(t, err)

	assert.Equal(t, []string{"year", "value"}, d.Dest)
	assert.Equal(t, []string{"1990", "1995", "2000"}, d.SourceFields)
}

func TestParse_RowActions(t *testing.T) {
	t.Run("delete rows", func(t *testing.T) {
		d, err := script.Parse("DELETE_ROWS < [0, 1, 7]")
		require.NoError(t, err)
		assert.Equal(t, []int{0, 1, 7}, d.Rows)
	})

	t.Run("pivot categories", func(t *testing.T) {
		d, err := script.Parse("PIVOT_CATEGORIES > 'region' < [0, 10]")
		require.NoError(t, err)
		assert.Equal(t, []int{0, 10}, d.Rows)
	})

	t.Run("negative index rejected", func(t *testing.T) {
		_, err := script.Parse("DELETE_ROWS < [-1]")
		var arity *script.ArityError
		require.ErrorAs(t, err, &arity)
	})

	t.Run("bare keywords", func(t *testing.T) {
		for _, line := range []string{"DEBLANK", "DEDUPE"} {
			d, err := script.Parse(line)
			require.NoError(t, err)
			assert.Empty(t, d.Dest)
			assert.Empty(t, d.SourceFields)
		}
	})
}

func TestParse_UniteSeparate(t *testing.T) {
	t.Run("unite", func(t *testing.T) {
		d, err := script.Parse("UNITE > 'address' < ', '::['street', 'city', 'postcode']")
		require.NoError(t, err)
		assert.Equal(t, ", ", d.Separator)
		assert.Equal(t, []string{"street", "city", "postcode"}, d.SourceFields)
	})

	t.Run("separate", func(t *testing.T) {
		d, err := script.Parse("SEPARATE > ['given', 'family'] < ' '::['full_name']")
		require.NoError(t, err)
		assert.Equal(t, " ", d.Separator)
		assert.Equal(t, []string{"given", "family"}, d.Dest)
		assert.Equal(t, []string{"full_name"}, d.SourceFields)
	})
}

func TestParse_Calculate(t *testing.T) {
	d, err := script.Parse("CALCULATE > 'net' < [+ 'gross', - 'tax']")
	require.NoError(t, err)

	require.Len(t, d.Calc, 2)
	assert.Equal(t, script.SignedField{Field: "gross", Sign: 1}, d.Calc[0])
	assert.Equal(t, script.SignedField{Field: "tax", Sign: -1}, d.Calc[1])
}

func TestParse_QuoteHandling(t *testing.T) {
	t.Run("double quotes", func(t *testing.T) {
		d, err := script.Parse(`RENAME > "dest" < "it's a field"`)
		require.NoError(t, err)
		assert.Equal(t, []string{"it's a field"}, d.SourceFields)
	})

	t.Run("delimiters inside quotes ignored", func(t *testing.T) {
		d, err := script.Parse("RENAME > 'a > b' < 'c < d'")
		require.NoError(t, err)
		assert.Equal(t, "a > b", d.DestField())
		assert.Equal(t, []string{"c < d"}, d.SourceFields)
	})
}

func TestParse_SyntaxErrors(t *testing.T) {
	cases := map[string]string{
		"empty":              "",
		"unterminated quote": "RENAME > 'a < 'b'",
		"reversed clauses":   "RENAME < 'a' > 'b'",
		"duplicate dest":     "RENAME > 'a' > 'b' < 'c'",
		"unquoted name":      "RENAME > dest < 'src'",
	}
	for name, line := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := script.Parse(line)
			var syntax *script.SyntaxError
			require.ErrorAs(t, err, &syntax, "line %q", line)
		})
	}
}

func TestParse_HeadErrors(t *testing.T) {
	t.Run("bad modifier token", func(t *testing.T) {
		_, err := script.Parse("CATEGORISE * > 'sector'::'retail' < 'USE'::['shop']")
		var syntax *script.SyntaxError
		require.ErrorAs(t, err, &syntax)
		assert.Contains(t, syntax.Detail, `unexpected token "*"`)
	})

	t.Run("surplus tokens after modifier", func(t *testing.T) {
		_, err := script.Parse("CATEGORISE + + > 'sector'::'retail' < 'USE'::['shop']")
		var syntax *script.SyntaxError
		require.ErrorAs(t, err, &syntax)
		assert.Contains(t, syntax.Detail, "unexpected tokens after action modifier")
	})
}

func TestParse_UnknownAction(t *testing.T) {
	_, err := script.Parse("FROBNICATE > 'a' < 'b'")
	var unknown *script.UnknownActionError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "FROBNICATE", unknown.Action)
}

func TestParse_ArityErrors(t *testing.T) {
	cases := []string{
		"RENAME > 'a' < ['b', 'c']",        // too many sources
		"RENAME > ['a', 'b'] < 'c'",        // too many destinations
		"SELECT_NEWEST > 'v' < ['a', 'b']", // unpaired operands
		"CALCULATE > 'n' < ['a', 'b']",     // unsigned operands
		"CATEGORISE > 'sector' < 'USE'::['shop']", // missing dest term
		"UNITE > 'a' < ['b', 'c']",                // missing separator
		"DEDUPE < [1]",                            // operands on bare action
	}
	for _, line := range cases {
		t.Run(line, func(t *testing.T) {
			_, err := script.Parse(line)
			var arity *script.ArityError
			require.ErrorAs(t, err, &arity, "line %q", line)
		})
	}
}

func TestParseAll(t *testing.T) {
	lines := []string{
		"# tidy up",
		"",
		"DEBLANK",
		"RENAME > 'occupation' < 'JOB TITLE'",
	}
	ds, err := script.ParseAll(lines)
	require.NoError(t, err)
	require.Len(t, ds, 2)
	assert.Equal(t, script.KindDeblank, ds[0].Kind)
	assert.Equal(t, script.KindRename, ds[1].Kind)

	_, err = script.ParseAll([]string{"DEBLANK", "NOPE"})
	require.Error(t, err)
	assert.ErrorContains(t, err, "line 2")
}

func TestDescriptor_StringRoundTrip(t *testing.T) {
	lines := []string{
		"RENAME > 'occupation' < 'JOB TITLE'",
		"CATEGORISE + > 'tags'::'retail' < 'USE'::['shop', 'store']",
		"CALCULATE > 'net' < [+ 'gross', - 'tax']",
	}
	for _, line := range lines {
		d, err := script.Parse(line)
		require.NoError(t, err)

		again, err := script.Parse(d.String())
		require.NoError(t, err)
		assert.Equal(t, d.Kind, again.Kind)
		assert.Equal(t, d.Dest, again.Dest)
		assert.Equal(t, d.SourceFields, again.SourceFields)
	}
}

func TestParseKind(t *testing.T) {
	k, err := script.ParseKind("rename")
	require.NoError(t, err)
	assert.Equal(t, script.KindRename, k)

	_, err = script.ParseKind("EXPLODE")
	var unknown *script.UnknownActionError
	require.True(t, errors.As(err, &unknown))
}
