package questrade

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"iqtrade/pkg/model"
)

func TestRefs(t *testing.T) {
	pos := model.Position{Symbol: "AAPL", SymbolID: 8049}

	tests := []struct {
		name  string
		input any
		want  []Ref
	}{
		{"name", "AAPL", []Ref{ByName("AAPL")}},
		{"id", 8049, []Ref{ByID(8049)}},
		{"int64 id", int64(8049), []Ref{ByID(8049)}},
		{"uint id", uint32(8049), []Ref{ByID(8049)}},
		{"ref", ByID(1), []Ref{ByID(1)}},
		{"entity", pos, []Ref{ByID(8049)}},
		{"entity pointer", &pos, []Ref{ByID(8049)}},
		{"entities", []model.Position{pos, {SymbolID: 2}}, []Ref{ByID(8049), ByID(2)}},
		{"mixed", []any{"MSFT", 1, "AAPL", 2}, []Ref{ByName("MSFT"), ByID(1), ByName("AAPL"), ByID(2)}},
		{"array", [2]int{5, 3}, []Ref{ByID(5), ByID(3)}},
		{"set sorted", map[string]struct{}{"MSFT": {}, "AAPL": {}}, []Ref{ByName("AAPL"), ByName("MSFT")}},
		{"bool set skips false", map[int]bool{3: true, 1: true, 2: false}, []Ref{ByID(1), ByID(3)}},
		{"any set", map[any]struct{}{"AAPL": {}, 7: {}}, []Ref{ByID(7), ByName("AAPL")}},
		{"empty list", []string{}, []Ref{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Refs(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRefsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		input any
	}{
		{"float", 3.14},
		{"float in list", []any{"AAPL", 1.5}},
		{"nil", nil},
		{"empty name", ""},
		{"zero ref", Ref{}},
		{"nested list", []any{[]int{1}}},
		{"map with values", map[string]int{"AAPL": 1}},
		{"struct", struct{ ID int }{1}},
		{"nil entity", []*model.Position{nil}},
		{"nil entity scalar", (*model.Ticker)(nil)},
		{"entity without id", model.Position{Symbol: "AAPL"}},
		{"zero id", 0},
		{"negative id", -1},
		{"negative int64 id", []any{int64(-7)}},
		{"uint overflow", uint64(1) << 63},
		{"zero ref id", ByID(0)},
		{"negative ref id", []Ref{ByID(-5)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Refs(tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrTypeInvalid)
			var te *TypeInvalidError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, "tickers", te.Arg)
		})
	}
}

func TestByEntityNil(t *testing.T) {
	r := ByEntity((*model.Ticker)(nil))
	assert.False(t, r.valid())
	assert.Equal(t, "<invalid>", r.String())
}

func TestPartition(t *testing.T) {
	refs := []Ref{ByName("MSFT"), ByID(3), ByName("AAPL"), ByID(1)}
	ids, names := partition(refs)
	assert.Equal(t, []int{3, 1}, ids)
	assert.Equal(t, []string{"MSFT", "AAPL"}, names)

	ids, names = partition(nil)
	assert.Empty(t, ids)
	assert.Empty(t, names)
}

func TestParseRef(t *testing.T) {
	assert.Equal(t, ByID(8049), ParseRef("8049"))
	assert.Equal(t, ByName("AAPL"), ParseRef("AAPL"))
	assert.Equal(t, ByName("0"), ParseRef("0"))

	id, ok := ParseRef("42").ID()
	assert.True(t, ok)
	assert.Equal(t, 42, id)
	_, ok = ParseRef("42").Name()
	assert.False(t, ok)
	assert.Equal(t, "42", ParseRef("42").String())
}
