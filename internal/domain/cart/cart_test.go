package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddSumsQuantities(t *testing.T) {
	c := New()
	require.NoError(t, c.Add(5, 2))
	require.NoError(t, c.Add(5, 3))

	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 5, c.Items[5].Quantity)
	assert.Equal(t, int64(5), c.Items[5].ProductID)
}

func TestAddRejectsInvalidInput(t *testing.T) {
	c := New()
	assert.Error(t, c.Add(0, 1))
	assert.Error(t, c.Add(-1, 1))
	assert.Error(t, c.Add(5, 0))
	assert.Error(t, c.Add(5, -2))
	assert.Equal(t, 0, c.Len())
}

func TestUpdateSetsQuantity(t *testing.T) {
	c := New()
	require.NoError(t, c.Add(5, 2))
	require.NoError(t, c.Update(5, 7))
	assert.Equal(t, 7, c.Items[5].Quantity)
}

func TestUpdateZeroRemovesPosition(t *testing.T) {
	c := New()
	require.NoError(t, c.Add(5, 2))
	require.NoError(t, c.Update(5, 0))
	assert.Equal(t, 0, c.Len())

	require.NoError(t, c.Add(7, 1))
	require.NoError(t, c.Update(7, -3))
	assert.Equal(t, 0, c.Len())
}

func TestRemoveAbsentIsNoop(t *testing.T) {
	c := New()
	require.NoError(t, c.Add(5, 2))
	c.Remove(99)
	assert.Equal(t, 1, c.Len())
	c.Remove(5)
	assert.Equal(t, 0, c.Len())
}

func TestMergeSumsOverlapAndUnionsRest(t *testing.T) {
	user := New()
	require.NoError(t, user.Add(5, 2))

	guest := New()
	require.NoError(t, guest.Add(5, 3))
	require.NoError(t, guest.Add(7, 1))

	user.Merge(guest)

	assert.Equal(t, 2, user.Len())
	assert.Equal(t, 5, user.Items[5].Quantity)
	assert.Equal(t, 1, user.Items[7].Quantity)

	// the merged-in cart stays untouched
	assert.Equal(t, 3, guest.Items[5].Quantity)
}

func TestMergeNilIsNoop(t *testing.T) {
	c := New()
	require.NoError(t, c.Add(5, 2))
	c.Merge(nil)
	assert.Equal(t, 1, c.Len())
}

func TestClearAndTotals(t *testing.T) {
	c := New()
	require.NoError(t, c.Add(5, 2))
	require.NoError(t, c.Add(7, 4))
	assert.Equal(t, 6, c.TotalQuantity())

	sorted := c.Sorted()
	require.Len(t, sorted, 2)
	assert.Equal(t, int64(5), sorted[0].ProductID)
	assert.Equal(t, int64(7), sorted[1].ProductID)

	c.Clear()
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 0, c.TotalQuantity())
}
