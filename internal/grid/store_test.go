package grid

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statementkit/colgrid/internal/model"
)

func testColumns() []model.Column {
	return []model.Column{
		{Label: "date", Type: model.TypeDate, XMin: 0, XMax: 100, HeaderY: 50},
		{Label: "amount", Type: model.TypeAmount, XMin: 100, XMax: 250, HeaderY: 50},
	}
}

func TestMapping(t *testing.T) {
	tests := []struct {
		name    string
		columns []model.Column
		want    map[string]model.ColumnType
	}{
		{
			name:    "all mapped",
			columns: testColumns(),
			want: map[string]model.ColumnType{
				"0": model.TypeDate,
				"1": model.TypeAmount,
			},
		},
		{
			name: "skip columns omitted",
			columns: []model.Column{
				{Label: "a", Type: model.TypeDate, XMin: 0, XMax: 50},
				{Label: "b", Type: model.TypeSkip, XMin: 50, XMax: 100},
				{Label: "c", Type: model.TypeBalance, XMin: 100, XMax: 150},
			},
			want: map[string]model.ColumnType{
				"0": model.TypeDate,
				"2": model.TypeBalance,
			},
		},
		{
			name: "all skipped",
			columns: []model.Column{
				{Label: "a", Type: model.TypeSkip, XMin: 0, XMax: 50},
			},
			want: map[string]model.ColumnType{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewColumnStore(tt.columns)
			assert.Equal(t, tt.want, s.Mapping())
		})
	}
}

func TestMappingReindexesAfterRemove(t *testing.T) {
	s := NewColumnStore([]model.Column{
		{Label: "a", Type: model.TypeDate, XMin: 0, XMax: 50},
		{Label: "b", Type: model.TypeAmount, XMin: 50, XMax: 100},
		{Label: "c", Type: model.TypeBalance, XMin: 100, XMax: 150},
	})

	s.Remove(0)

	// Indices shift; the mapping must be rederived, never patched.
	assert.Equal(t, map[string]model.ColumnType{
		"0": model.TypeAmount,
		"1": model.TypeBalance,
	}, s.Mapping())
}

func TestSplit(t *testing.T) {
	s := NewColumnStore(testColumns())

	s.Split(1)

	cols := s.Columns()
	require.Len(t, cols, 3)
	assert.Equal(t, model.Column{Label: "date", Type: model.TypeDate, XMin: 0, XMax: 100, HeaderY: 50}, cols[0])
	assert.Equal(t, model.Column{Label: "amount", Type: model.TypeAmount, XMin: 100, XMax: 175, HeaderY: 50}, cols[1])
	assert.Equal(t, model.Column{Label: "amount (2)", Type: model.TypeSkip, XMin: 175, XMax: 250, HeaderY: 50}, cols[2])
}

func TestSplitPartitionsAtMidpoint(t *testing.T) {
	s := NewColumnStore([]model.Column{
		{Label: "a", Type: model.TypeDate, XMin: 13.5, XMax: 88.25},
	})

	s.Split(0)

	cols := s.Columns()
	require.Len(t, cols, 2)
	// No gap, no overlap, midpoint exact.
	assert.InDelta(t, 13.5, cols[0].XMin, 1e-9)
	assert.InDelta(t, (13.5+88.25)/2, cols[0].XMax, 1e-9)
	assert.Equal(t, cols[0].XMax, cols[1].XMin)
	assert.InDelta(t, 88.25, cols[1].XMax, 1e-9)
}

func TestSplitOutOfRangeIsNoOp(t *testing.T) {
	s := NewColumnStore(testColumns())
	rev := s.Revision()

	s.Split(-1)
	s.Split(2)

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, rev, s.Revision())
}

func TestRemove(t *testing.T) {
	threeColumns := func() []model.Column {
		return []model.Column{
			{Label: "a", Type: model.TypeDate, XMin: 0, XMax: 100},
			{Label: "b", Type: model.TypeAmount, XMin: 100, XMax: 200},
			{Label: "c", Type: model.TypeBalance, XMin: 200, XMax: 300},
		}
	}

	t.Run("left neighbor absorbs freed width", func(t *testing.T) {
		s := NewColumnStore(threeColumns())
		s.Remove(1)

		cols := s.Columns()
		require.Len(t, cols, 2)
		assert.Equal(t, 0.0, cols[0].XMin)
		assert.Equal(t, 200.0, cols[0].XMax)
		assert.Equal(t, 200.0, cols[1].XMin)
	})

	t.Run("first column falls to right neighbor", func(t *testing.T) {
		s := NewColumnStore(threeColumns())
		s.Remove(0)

		cols := s.Columns()
		require.Len(t, cols, 2)
		assert.Equal(t, "b", cols[0].Label)
		assert.Equal(t, 0.0, cols[0].XMin)
	})

	t.Run("last column prefers left neighbor", func(t *testing.T) {
		s := NewColumnStore(threeColumns())
		s.Remove(2)

		cols := s.Columns()
		require.Len(t, cols, 2)
		assert.Equal(t, 300.0, cols[1].XMax)
	})

	t.Run("refuses below one column", func(t *testing.T) {
		s := NewColumnStore([]model.Column{
			{Label: "only", Type: model.TypeDate, XMin: 0, XMax: 100},
		})
		s.Remove(0)
		assert.Equal(t, 1, s.Len())
	})

	t.Run("leaves no gap between former neighbors", func(t *testing.T) {
		s := NewColumnStore(threeColumns())
		s.Remove(1)

		cols := s.Columns()
		assert.Equal(t, cols[0].XMax, cols[1].XMin)
	})
}

func TestAdd(t *testing.T) {
	t.Run("steals from a wide last column", func(t *testing.T) {
		s := NewColumnStore(testColumns())
		before := s.TotalWidth()

		s.Add()

		cols := s.Columns()
		require.Len(t, cols, 3)
		// The last column was 150 wide, above the 60-unit threshold, so
		// the new column takes its right 40% and total width is preserved.
		assert.InDelta(t, 190.0, cols[1].XMax, 1e-9)
		assert.InDelta(t, 190.0, cols[2].XMin, 1e-9)
		assert.InDelta(t, 250.0, cols[2].XMax, 1e-9)
		assert.Equal(t, model.TypeSkip, cols[2].Type)
		assert.InDelta(t, before, s.TotalWidth(), 1e-9)
	})

	t.Run("widens the table past a narrow last column", func(t *testing.T) {
		s := NewColumnStore([]model.Column{
			{Label: "a", Type: model.TypeDate, XMin: 0, XMax: 55},
		})
		before := s.TotalWidth()

		s.Add()

		cols := s.Columns()
		require.Len(t, cols, 2)
		assert.Equal(t, 55.0, cols[1].XMin)
		assert.Equal(t, 135.0, cols[1].XMax)
		assert.Equal(t, 55.0, cols[0].XMax)
		assert.Greater(t, s.TotalWidth(), before)
	})

	t.Run("never decreases total width", func(t *testing.T) {
		for _, width := range []float64{20, 59.9, 60, 60.1, 400} {
			s := NewColumnStore([]model.Column{
				{Label: "a", Type: model.TypeDate, XMin: 0, XMax: width},
			})
			before := s.TotalWidth()
			s.Add()
			assert.GreaterOrEqual(t, s.TotalWidth()+1e-9, before, "last width %v", width)
		}
	})
}

func TestRename(t *testing.T) {
	tests := []struct {
		name  string
		label string
		want  string
	}{
		{"plain", "Kwota", "Kwota"},
		{"trimmed", "  Saldo  ", "Saldo"},
		{"empty keeps previous", "", "date"},
		{"whitespace keeps previous", "   ", "date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewColumnStore(testColumns())
			s.Rename(0, tt.label)
			col, ok := s.Column(0)
			require.True(t, ok)
			assert.Equal(t, tt.want, col.Label)
		})
	}
}

func TestRetype(t *testing.T) {
	s := NewColumnStore(testColumns())

	s.Retype(0, model.TypeValueDate)
	col, _ := s.Column(0)
	assert.Equal(t, model.TypeValueDate, col.Type)

	// Unknown types and out-of-range indices are ignored.
	s.Retype(0, model.ColumnType("bogus"))
	col, _ = s.Column(0)
	assert.Equal(t, model.TypeValueDate, col.Type)
	s.Retype(5, model.TypeDate)
}

func TestSetBoundary(t *testing.T) {
	threeColumns := []model.Column{
		{Label: "a", Type: model.TypeDate, XMin: 0, XMax: 100},
		{Label: "b", Type: model.TypeAmount, XMin: 100, XMax: 200},
		{Label: "c", Type: model.TypeBalance, XMin: 200, XMax: 300},
	}

	t.Run("moves both sides symmetrically", func(t *testing.T) {
		s := NewColumnStore(threeColumns)
		applied, ok := s.SetBoundary(0, 130)
		require.True(t, ok)
		assert.Equal(t, 130.0, applied)

		cols := s.Columns()
		assert.Equal(t, 130.0, cols[0].XMax)
		assert.Equal(t, 130.0, cols[1].XMin)
	})

	t.Run("clamps at the left minimum width", func(t *testing.T) {
		s := NewColumnStore(threeColumns)
		applied, ok := s.SetBoundary(0, -50)
		require.True(t, ok)
		assert.Equal(t, MinColumnWidth, applied)
	})

	t.Run("cannot cross the next boundary", func(t *testing.T) {
		// Dragging boundary 0 toward column 2's left edge minus 5 must
		// stop a minimum-width sliver short of it.
		s := NewColumnStore(threeColumns)
		applied, ok := s.SetBoundary(0, 195)
		require.True(t, ok)
		assert.Equal(t, 200.0-MinColumnWidth, applied)

		cols := s.Columns()
		assert.GreaterOrEqual(t, cols[0].XMax, cols[0].XMin+MinColumnWidth)
		assert.LessOrEqual(t, cols[0].XMax, cols[2].XMin-MinColumnWidth)
	})

	t.Run("rightmost boundary is unbounded to the right", func(t *testing.T) {
		s := NewColumnStore(threeColumns)
		applied, ok := s.SetBoundary(1, 1e6)
		require.True(t, ok)
		assert.Equal(t, 1e6, applied)
		assert.False(t, math.IsInf(applied, 1))
	})

	t.Run("invalid boundary index", func(t *testing.T) {
		s := NewColumnStore(threeColumns)
		_, ok := s.SetBoundary(2, 250)
		assert.False(t, ok)
		_, ok = s.SetBoundary(-1, 250)
		assert.False(t, ok)
	})
}

func TestBoundsRoundTrip(t *testing.T) {
	s := NewColumnStore([]model.Column{
		{Label: "a", Type: model.TypeDate, XMin: 12.25, XMax: 101.5},
		{Label: "b", Type: model.TypeSkip, XMin: 101.5, XMax: 260.75},
	})

	bounds := s.Bounds(true)
	reseeded := make([]model.Column, len(bounds))
	for i, b := range bounds {
		reseeded[i] = model.Column{Label: b.Label, Type: b.Type, XMin: b.XMin, XMax: b.XMax}
	}
	s2 := NewColumnStore(reseeded)

	require.Equal(t, s.Len(), s2.Len())
	for i := range s.Columns() {
		a, _ := s.Column(i)
		b, _ := s2.Column(i)
		assert.InDelta(t, a.XMin, b.XMin, 1e-9)
		assert.InDelta(t, a.XMax, b.XMax, 1e-9)
		assert.Equal(t, a.Label, b.Label)
		assert.Equal(t, a.Type, b.Type)
	}
}

func TestBoundsOmitTypesForParsePreview(t *testing.T) {
	s := NewColumnStore(testColumns())

	for _, b := range s.Bounds(false) {
		assert.Empty(t, b.Label)
		assert.Empty(t, b.Type)
	}
}

func TestColumnsReturnsCopy(t *testing.T) {
	s := NewColumnStore(testColumns())
	cols := s.Columns()
	cols[0].XMax = 999

	col, _ := s.Column(0)
	assert.Equal(t, 100.0, col.XMax)
}
