package schema_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openprobity/crosswalk/pkg/schema"
)

func field(ft schema.FieldType) *schema.Field {
	return &schema.Field{Name: "f", Type: ft}
}

func TestCoerce_NilPassesThrough(t *testing.T) {
	for _, ft := range []schema.FieldType{
		schema.TypeString, schema.TypeNumber, schema.TypeInteger,
		schema.TypeBoolean, schema.TypeDate, schema.TypeArray,
	} {
		v, changed, err := schema.Coerce(nil, field(ft))
		require.NoError(t, err)
		assert.Nil(t, v)
		assert.False(t, changed)
	}
}

func TestCoerce_Number(t *testing.T) {
	v, changed, err := schema.Coerce("3.14", field(schema.TypeNumber))
	require.NoError(t, err)
	assert.Equal(t, 3.14, v)
	assert.True(t, changed)

	v, changed, err = schema.Coerce(2.5, field(schema.TypeNumber))
	require.NoError(t, err)
	assert.Equal(t, 2.5, v)
	assert.False(t, changed)

	_, _, err = schema.Coerce("not a number", field(schema.TypeNumber))
	var cerr *schema.CoercionError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "f", cerr.Field)
}

func TestCoerce_Integer(t *testing.T) {
	cases := []struct {
		in   any
		want int64
	}{
		{"42", 42},
		{"123.0", 123}, // spreadsheet export artifact
		{float64(7), 7},
		{int(9), 9},
	}
	for _, tc := range cases {
		v, _, err := schema.Coerce(tc.in, field(schema.TypeInteger))
		require.NoError(t, err, "input %v", tc.in)
		assert.Equal(t, tc.want, v)
	}

	_, _, err := schema.Coerce(1.5, field(schema.TypeInteger))
	assert.Error(t, err, "fractional value must not truncate")
	_, _, err = schema.Coerce("1.5", field(schema.TypeInteger))
	assert.Error(t, err)
}

func TestCoerce_Boolean(t *testing.T) {
	truthy := []any{"true", "Yes", "y", "1", true}
	for _, in := range truthy {
		v, _, err := schema.Coerce(in, field(schema.TypeBoolean))
		require.NoError(t, err, "input %v", in)
		assert.Equal(t, true, v)
	}

	falsy := []any{"false", "No", "n", "0", false}
	for _, in := range falsy {
		v, _, err := schema.Coerce(in, field(schema.TypeBoolean))
		require.NoError(t, err, "input %v", in)
		assert.Equal(t, false, v)
	}

	_, _, err := schema.Coerce("maybe", field(schema.TypeBoolean))
	assert.Error(t, err)
}

func TestCoerce_Dates(t *testing.T) {
	v, _, err := schema.Coerce("2023-07-14", field(schema.TypeDate))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 7, 14, 0, 0, 0, 0, time.UTC), v)

	v, _, err = schema.Coerce("2023-07-14T09:30:00Z", field(schema.TypeDateTime))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 7, 14, 9, 30, 0, 0, time.UTC), v)

	_, _, err = schema.Coerce("14/07/2023", field(schema.TypeDate))
	assert.Error(t, err, "ambiguous layout is rejected")
}

func TestCoerce_Year(t *testing.T) {
	v, _, err := schema.Coerce("1997", field(schema.TypeYear))
	require.NoError(t, err)
	assert.Equal(t, int64(1997), v)

	v, _, err = schema.Coerce("1997-06-01", field(schema.TypeYear))
	require.NoError(t, err)
	assert.Equal(t, int64(1997), v, "full dates collapse to their year")

	_, _, err = schema.Coerce("10000", field(schema.TypeYear))
	assert.Error(t, err)
}

func TestCoerce_Array(t *testing.T) {
	v, changed, err := schema.Coerce("solo", field(schema.TypeArray))
	require.NoError(t, err)
	assert.Equal(t, []any{"solo"}, v, "scalar collapses to single-element array")
	assert.True(t, changed)

	f := &schema.Field{Name: "f", Type: schema.TypeArray, Items: schema.TypeInteger}
	v, _, err = schema.Coerce([]any{"1", "2"}, f)
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1), int64(2)}, v)

	_, _, err = schema.Coerce([]any{"1", "x"}, f)
	assert.Error(t, err)
}

func TestCanonicalText(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"text", "text"},
		{true, "true"},
		{int64(42), "42"},
		{42.0, "42"}, // whole floats render as integers
		{3.14, "3.14"},
		{time.Date(2023, 7, 14, 0, 0, 0, 0, time.UTC), "2023-07-14"},
		{time.Date(2023, 7, 14, 9, 30, 0, 0, time.UTC), "2023-07-14T09:30:00Z"},
		{[]any{"a", int64(1)}, "[a;1]"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, schema.CanonicalText(tc.in), "input %#v", tc.in)
	}
}

func TestValidateValue(t *testing.T) {
	t.Run("bounds", func(t *testing.T) {
		min, max := 0.0, 100.0
		f := &schema.Field{Name: "pct", Type: schema.TypeNumber,
			Constraints: schema.Constraints{Minimum: &min, Maximum: &max}}

		assert.NoError(t, schema.ValidateValue(50.0, f, 0))
		assert.Error(t, schema.ValidateValue(-1.0, f, 0))
		assert.Error(t, schema.ValidateValue(101.0, f, 0))
		assert.NoError(t, schema.ValidateValue(nil, f, 0), "null passes value checks")
	})

	t.Run("string enum", func(t *testing.T) {
		f := &schema.Field{Name: "sector", Type: schema.TypeString,
			Constraints: schema.Constraints{Enum: []string{"retail", "office"}}}

		assert.NoError(t, schema.ValidateValue("retail", f, 0))
		assert.Error(t, schema.ValidateValue("casino", f, 0))
	})

	t.Run("array enum", func(t *testing.T) {
		f := &schema.Field{Name: "tags", Type: schema.TypeArray,
			Constraints: schema.Constraints{Enum: []string{"retail", "office"}}}

		assert.NoError(t, schema.ValidateValue([]any{"retail"}, f, 0))
		assert.Error(t, schema.ValidateValue([]any{"retail", "casino"}, f, 0))
	})
}

func TestValidateColumn(t *testing.T) {
	t.Run("required", func(t *testing.T) {
		f := &schema.Field{Name: "id", Type: schema.TypeString,
			Constraints: schema.Constraints{Required: true}}

		assert.NoError(t, schema.ValidateColumn([]any{"a", "b"}, f))

		err := schema.ValidateColumn([]any{"a", nil}, f)
		var verr *schema.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, 1, verr.Row)
	})

	t.Run("unique", func(t *testing.T) {
		f := &schema.Field{Name: "id", Type: schema.TypeString,
			Constraints: schema.Constraints{Unique: true}}

		assert.NoError(t, schema.ValidateColumn([]any{"a", "b", nil, nil}, f))
		assert.Error(t, schema.ValidateColumn([]any{"a", "a"}, f))
	})
}

func TestSchema_Check(t *testing.T) {
	s := schema.New("dest",
		schema.Field{Name: "a", Type: schema.TypeString},
		schema.Field{Name: "b", Type: schema.TypeArray, Items: schema.TypeString},
	)
	require.NoError(t, s.Check())

	t.Run("duplicate field", func(t *testing.T) {
		dup := schema.New("x",
			schema.Field{Name: "a", Type: schema.TypeString},
			schema.Field{Name: "a", Type: schema.TypeNumber},
		)
		assert.Error(t, dup.Check())
	})

	t.Run("unknown type", func(t *testing.T) {
		bad := schema.New("x", schema.Field{Name: "a", Type: "decimal"})
		assert.Error(t, bad.Check())
	})

	t.Run("items on non-array", func(t *testing.T) {
		bad := schema.New("x", schema.Field{Name: "a", Type: schema.TypeString, Items: schema.TypeString})
		assert.Error(t, bad.Check())
	})

	t.Run("inverted bounds", func(t *testing.T) {
		lo, hi := 10.0, 1.0
		bad := schema.New("x", schema.Field{Name: "a", Type: schema.TypeNumber,
			Constraints: schema.Constraints{Minimum: &lo, Maximum: &hi}})
		assert.Error(t, bad.Check())
	})
}
