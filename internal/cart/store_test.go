package cart

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/R3E-Network/lab_order/internal/domain"
	"github.com/R3E-Network/lab_order/pkg/logger"
)

func newStore(t *testing.T) (*Store, *MemorySlot) {
	t.Helper()
	slot := NewMemorySlot()
	s := New(slot, logger.NewDiscard("cart-test"))
	s.Load()
	return s, slot
}

func persisted(t *testing.T, slot Slot) []domain.CartLine {
	t.Helper()
	data, ok, err := slot.Get(domain.CartKey)
	require.NoError(t, err)
	require.True(t, ok, "cart was never persisted")
	var lines []domain.CartLine
	require.NoError(t, json.Unmarshal(data, &lines))
	return lines
}

func TestAdd_SameProductIncrements(t *testing.T) {
	s, slot := newStore(t)

	count, err := s.Add("p1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = s.Add("p1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	lines := s.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, domain.CartLine{ProductID: "p1", Quantity: 2, Checked: true}, lines[0])
	assert.Equal(t, lines, persisted(t, slot))
}

func TestAdd_NewLinesAreCheckedAndOrdered(t *testing.T) {
	s, _ := newStore(t)

	_, err := s.Add("p1")
	require.NoError(t, err)
	_, err = s.Add("p2")
	require.NoError(t, err)

	lines := s.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, "p1", lines[0].ProductID)
	assert.Equal(t, "p2", lines[1].ProductID)
	assert.True(t, lines[1].Checked)
}

func TestRemove(t *testing.T) {
	s, slot := newStore(t)
	_, _ = s.Add("p1")
	_, _ = s.Add("p2")

	require.NoError(t, s.Remove("p1"))
	require.NoError(t, s.Remove("missing"))

	lines := s.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "p2", lines[0].ProductID)
	assert.Equal(t, lines, persisted(t, slot))
}

func TestSetQuantity(t *testing.T) {
	s, slot := newStore(t)
	_, _ = s.Add("p1")

	require.NoError(t, s.SetQuantity("p1", 5))
	line, ok := s.Line("p1")
	require.True(t, ok)
	assert.Equal(t, 5, line.Quantity)
	assert.Equal(t, 5, persisted(t, slot)[0].Quantity)
}

func TestSetQuantity_BelowOneRemoves(t *testing.T) {
	for _, q := range []int{0, -3} {
		s, slot := newStore(t)
		_, _ = s.Add("p1")
		_, _ = s.Add("p2")

		require.NoError(t, s.SetQuantity("p1", q))

		_, ok := s.Line("p1")
		assert.False(t, ok, "quantity %d", q)
		assert.Len(t, persisted(t, slot), 1)
	}
}

func TestSetQuantity_UnknownProductIsNoop(t *testing.T) {
	s, _ := newStore(t)
	_, _ = s.Add("p1")

	require.NoError(t, s.SetQuantity("p9", 4))
	assert.Len(t, s.Lines(), 1)
}

func TestSetQuantityText(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		removed bool
	}{
		{"3", 3, false},
		{" 7 ", 7, false},
		{"010", 10, false},
		{"0", 0, true},
		{"abc", 0, true},
		{"", 0, true},
		{"2.5", 0, true},
		{"1_000", 0, true},
		{"0x10", 0, true},
		{"+010", 10, false},
		{"-1", 0, true},
		{"+", 0, true},
	}
	for _, tt := range tests {
		s, _ := newStore(t)
		_, _ = s.Add("p1")

		require.NoError(t, s.SetQuantityText("p1", tt.raw))

		line, ok := s.Line("p1")
		if tt.removed {
			assert.False(t, ok, "raw %q", tt.raw)
			continue
		}
		require.True(t, ok, "raw %q", tt.raw)
		assert.Equal(t, tt.want, line.Quantity, "raw %q", tt.raw)
	}
}

func TestToggleChecked(t *testing.T) {
	s, slot := newStore(t)
	_, _ = s.Add("p1")

	require.NoError(t, s.ToggleChecked("p1"))
	line, _ := s.Line("p1")
	assert.False(t, line.Checked)
	assert.False(t, persisted(t, slot)[0].Checked)

	require.NoError(t, s.ToggleChecked("p1"))
	line, _ = s.Line("p1")
	assert.True(t, line.Checked)
}

func TestTotalCountAndCheckedSummary(t *testing.T) {
	s, _ := newStore(t)
	_, _ = s.Add("p1")
	_, _ = s.Add("p1")
	_, _ = s.Add("p2")
	_, _ = s.Add("p3")
	require.NoError(t, s.SetQuantity("p3", 4))
	require.NoError(t, s.ToggleChecked("p2"))

	assert.Equal(t, 7, s.TotalCount())

	sum := s.CheckedSummary()
	assert.Equal(t, domain.CartSummary{Lines: 2, Quantity: 6}, sum)
	assert.True(t, sum.Visible())

	require.NoError(t, s.ToggleChecked("p1"))
	require.NoError(t, s.ToggleChecked("p3"))
	assert.False(t, s.CheckedSummary().Visible())
	assert.Equal(t, 7, s.TotalCount())
}

func TestRemoveLines_OnlyGivenProducts(t *testing.T) {
	s, slot := newStore(t)
	_, _ = s.Add("p1")
	_, _ = s.Add("p2")
	_, _ = s.Add("p3")
	require.NoError(t, s.ToggleChecked("p2"))

	require.NoError(t, s.RemoveLines([]string{"p1", "p3"}))

	lines := s.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, domain.CartLine{ProductID: "p2", Quantity: 1, Checked: false}, lines[0])
	assert.Equal(t, lines, persisted(t, slot))
}

func TestCheckedLines(t *testing.T) {
	s, _ := newStore(t)
	_, _ = s.Add("p1")
	_, _ = s.Add("p2")
	require.NoError(t, s.ToggleChecked("p1"))

	checked := s.CheckedLines()
	require.Len(t, checked, 1)
	assert.Equal(t, "p2", checked[0].ProductID)
	assert.Empty(t, New(NewMemorySlot(), nil).CheckedLines())
}

func TestLoad_Restores(t *testing.T) {
	slot := NewMemorySlot()
	require.NoError(t, slot.Put(domain.CartKey, []byte(`[{"productId":"p1","quantity":2,"checked":true},{"productId":"p2","quantity":1,"checked":false}]`)))

	s := New(slot, logger.NewDiscard("cart-test"))
	s.Load()

	assert.Equal(t, []domain.CartLine{
		{ProductID: "p1", Quantity: 2, Checked: true},
		{ProductID: "p2", Quantity: 1, Checked: false},
	}, s.Lines())
}

func TestLoad_MalformedYieldsEmpty(t *testing.T) {
	for _, raw := range []string{"{not json", `{"productId":"p1"}`, `"text"`, "null", ""} {
		slot := NewMemorySlot()
		require.NoError(t, slot.Put(domain.CartKey, []byte(raw)))

		s := New(slot, logger.NewDiscard("cart-test"))
		s.Load()

		assert.NotNil(t, s.Lines(), "raw %q", raw)
		assert.Empty(t, s.Lines(), "raw %q", raw)
		assert.Zero(t, s.TotalCount())
	}
}

func TestLoad_NormalizesDuplicatesAndInvalidLines(t *testing.T) {
	slot := NewMemorySlot()
	require.NoError(t, slot.Put(domain.CartKey, []byte(`[
		{"productId":"p1","quantity":2,"checked":true},
		{"productId":"","quantity":1,"checked":true},
		{"productId":"p2","quantity":0,"checked":true},
		{"productId":"p1","quantity":3,"checked":false}
	]`)))

	s := New(slot, logger.NewDiscard("cart-test"))
	s.Load()

	assert.Equal(t, []domain.CartLine{{ProductID: "p1", Quantity: 5, Checked: true}}, s.Lines())
}

type brokenSlot struct{}

func (brokenSlot) Get(string) ([]byte, bool, error) { return nil, false, errors.New("disk gone") }
func (brokenSlot) Put(string, []byte) error         { return errors.New("disk gone") }
func (brokenSlot) Close() error                     { return nil }

func TestBrokenSlot(t *testing.T) {
	s := New(brokenSlot{}, logger.NewDiscard("cart-test"))
	s.Load()
	assert.Empty(t, s.Lines())

	count, err := s.Add("p1")
	require.Error(t, err)
	assert.Equal(t, 1, count)
	assert.Len(t, s.Lines(), 1)
}

func TestBoltSlot_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cart.db")

	slot, err := OpenBoltSlot(path)
	require.NoError(t, err)
	s := New(slot, logger.NewDiscard("cart-test"))
	s.Load()
	_, err = s.Add("p1")
	require.NoError(t, err)
	_, err = s.Add("p1")
	require.NoError(t, err)
	require.NoError(t, slot.Close())

	slot, err = OpenBoltSlot(path)
	require.NoError(t, err)
	defer slot.Close()

	restored := New(slot, logger.NewDiscard("cart-test"))
	restored.Load()
	assert.Equal(t, []domain.CartLine{{ProductID: "p1", Quantity: 2, Checked: true}}, restored.Lines())
}

func TestFileSlot(t *testing.T) {
	dir := t.TempDir()
	slot, err := NewFileSlot(dir)
	require.NoError(t, err)

	_, ok, err := slot.Get(domain.CartKey)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, slot.Put(domain.CartKey, []byte(`[]`)))
	data, ok, err := slot.Get(domain.CartKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", string(data))
	assert.FileExists(t, filepath.Join(dir, domain.CartKey+".json"))
}
