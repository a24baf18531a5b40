package quote

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewComputesTotals(t *testing.T) {
	lines := []Line{
		{ProductID: 5, Name: "Автомат ВА47-29", Quantity: 3, UnitPrice: decimal.RequireFromString("125.50")},
		{ProductID: 7, Name: "Розетка", Quantity: 2, UnitPrice: decimal.RequireFromString("89.90")},
	}

	q, err := New(uuid.New(), 1, lines)
	require.NoError(t, err)

	assert.Equal(t, StatusDraft, q.Status)
	assert.True(t, q.Lines[0].LineTotal.Equal(decimal.RequireFromString("376.50")))
	assert.True(t, q.Lines[1].LineTotal.Equal(decimal.RequireFromString("179.80")))
	assert.True(t, q.Total.Equal(decimal.RequireFromString("556.30")))
	assert.True(t, q.Lines[0].PriceFrozen)
	assert.NotEmpty(t, q.Number)
}

func TestNewValidation(t *testing.T) {
	userID := uuid.New()

	_, err := New(uuid.Nil, 1, []Line{{ProductID: 5, Quantity: 1}})
	assert.Error(t, err)

	_, err = New(userID, 1, nil)
	assert.Error(t, err)

	_, err = New(userID, 1, []Line{{ProductID: 0, Quantity: 1}})
	assert.Error(t, err)

	_, err = New(userID, 1, []Line{{ProductID: 5, Quantity: 0}})
	assert.Error(t, err)
}

func TestStatusTransitions(t *testing.T) {
	q, err := New(uuid.New(), 1, []Line{{ProductID: 5, Quantity: 1, UnitPrice: decimal.NewFromInt(10)}})
	require.NoError(t, err)

	require.NoError(t, q.Submit())
	assert.Equal(t, StatusSubmitted, q.Status)

	// submitted quotes cannot be submitted again
	assert.Error(t, q.Submit())

	require.NoError(t, q.Cancel())
	assert.Equal(t, StatusCancelled, q.Status)
	assert.Error(t, q.Cancel())
}
