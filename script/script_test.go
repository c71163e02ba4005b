package script

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magpierre/fabview/datatable"
	"github.com/magpierre/fabview/dataview"
)

func TestCompileExpression(t *testing.T) {
	p, err := Compile("num(value) >= num(filter)")
	require.NoError(t, err)

	tests := []struct {
		value, filter any
		want          bool
	}{
		{1500.0, "1000", true},
		{999, 1000, false},
		{int64(1000), 1000.0, true},
		{nil, 0, true},
		{"abc", 1, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, p.Match(tt.value, tt.filter), "%v >= %v", tt.value, tt.filter)
	}
	assert.Equal(t, "num(value) >= num(filter)", p.Source())
}

func TestCompileBody(t *testing.T) {
	p, err := Compile(`
	s := strings.ToLower(str(value))
	for _, want := range strings.Split(str(filter), ",") {
		if strings.TrimSpace(want) == s {
			return true
		}
	}
	return false`)
	require.NoError(t, err)

	assert.True(t, p.Match("Steel", "glass, steel"))
	assert.False(t, p.Match("Copper", "glass, steel"))
}

func TestCompileErrors(t *testing.T) {
	for _, body := range []string{"", "   ", "value >=", "undefined(value)"} {
		_, err := Compile(body)
		assert.ErrorIs(t, err, datatable.ErrScriptCompile, "body %q", body)
	}
	assert.Panics(t, func() { MustCompile("(") })
}

func TestPanickingPredicateDoesNotMatch(t *testing.T) {
	p := MustCompile("value.(string) == str(filter)")
	assert.True(t, p.Match("a", "a"))
	assert.False(t, p.Match(42, "42"))
}

type order struct {
	Ref    string
	Amount float64
}

func TestFilterFuncWithTable(t *testing.T) {
	records := []order{{"A", 200}, {"B", 1200}, {"C", 800}, {"D", 5000}}
	tbl, err := dataview.New(records, []dataview.Column[order]{
		{ID: "ref", Accessor: func(o order) any { return o.Ref }},
		{
			ID:         "amount",
			Accessor:   func(o order) any { return o.Amount },
			FilterType: datatable.FilterCustom,
			FilterFn:   FilterFunc[order](MustCompile("num(value) >= num(filter)")),
		},
	})
	require.NoError(t, err)

	require.NoError(t, tbl.SetColumnFilter("amount", "1000"))
	refs := []string{}
	for _, r := range tbl.Rows() {
		refs = append(refs, r.Original.Ref)
	}
	assert.Equal(t, []string{"B", "D"}, refs)
}

func TestCache(t *testing.T) {
	c := NewCache()
	p1, err := c.Compile("num(value) > 1")
	require.NoError(t, err)
	p2, err := c.Compile("num(value) > 1")
	require.NoError(t, err)
	assert.Same(t, p1, p2)

	_, err = c.Compile("value >=")
	assert.ErrorIs(t, err, datatable.ErrScriptCompile)
	assert.ErrorIs(t, c.Validate("value >="), datatable.ErrScriptCompile)
	assert.NoError(t, c.Validate(`strings.HasPrefix(str(value), "B")`))
}

func TestExpressionFilterWithTable(t *testing.T) {
	records := []order{{"A", 200}, {"B", 1200}, {"C", 800}, {"D", 5000}}
	tbl, err := dataview.New(records, []dataview.Column[order]{
		{ID: "ref", Accessor: func(o order) any { return o.Ref }},
		{
			ID:         "amount",
			Accessor:   func(o order) any { return o.Amount },
			FilterType: datatable.FilterCustom,
			FilterFn:   ExpressionFilter[order](NewCache()),
		},
	})
	require.NoError(t, err)

	require.NoError(t, tbl.SetColumnFilter("amount", "num(value) > 1000"))
	assert.Equal(t, 2, tbl.RowCount())

	require.NoError(t, tbl.SetColumnFilter("amount", "num(value) < 1000"))
	assert.Equal(t, 2, tbl.RowCount())
	assert.Equal(t, "A", tbl.Rows()[0].Original.Ref)

	require.NoError(t, tbl.SetColumnFilter("amount", "num(value) <"))
	assert.Equal(t, 0, tbl.RowCount(), "a broken expression matches nothing")

	require.NoError(t, tbl.SetColumnFilter("amount", ""))
	assert.Equal(t, 4, tbl.RowCount())
}
