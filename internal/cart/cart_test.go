package cart

import (
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type priceTable map[string]string

func (p priceTable) Price(id string) (decimal.Decimal, error) {
	v, ok := p[id]
	if !ok {
		return decimal.Zero, errors.New("unknown product " + id)
	}
	return decimal.RequireFromString(v), nil
}

func TestAddLineMergesQuantities(t *testing.T) {
	c := New()
	require.NoError(t, c.AddLine("p", 2))
	require.NoError(t, c.AddLine("p", 3))

	assert.Equal(t, []Line{{ProductID: "p", Quantity: 5}}, c.Lines())
}

func TestAddLineKeepsInsertionOrder(t *testing.T) {
	c := New()
	require.NoError(t, c.AddLine("b", 1))
	require.NoError(t, c.AddLine("a", 1))
	require.NoError(t, c.AddLine("b", 1))

	lines := c.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, "b", lines[0].ProductID)
	assert.Equal(t, "a", lines[1].ProductID)
	assert.Equal(t, 3, c.ItemCount())
}

func TestAddLineRejectsNonPositive(t *testing.T) {
	c := New()
	assert.ErrorIs(t, c.AddLine("p", 0), ErrInvalidQuantity)
	assert.ErrorIs(t, c.AddLine("p", -2), ErrInvalidQuantity)
	assert.Equal(t, 0, c.Len())
}

func TestAddLineRejectsOverflow(t *testing.T) {
	c := New()
	require.NoError(t, c.AddLine("p", math.MaxInt))
	assert.ErrorIs(t, c.AddLine("p", 1), ErrInvalidQuantity)
	assert.Equal(t, []Line{{ProductID: "p", Quantity: math.MaxInt}}, c.Lines())
}

func TestCheckoutClearsOnlyOnSuccess(t *testing.T) {
	c := New()
	require.NoError(t, c.AddLine("p", 2))

	err := c.Checkout(func(lines []Line) error {
		assert.Equal(t, []Line{{ProductID: "p", Quantity: 2}}, lines)
		return errors.New("out of stock")
	})
	assert.Error(t, err)
	assert.Equal(t, 1, c.Len())

	require.NoError(t, c.Checkout(func([]Line) error { return nil }))
	assert.Equal(t, 0, c.Len())
}

func TestCheckoutHoldsCart(t *testing.T) {
	c := New()
	require.NoError(t, c.AddLine("p", 1))

	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- c.Checkout(func([]Line) error {
			close(entered)
			<-release
			return nil
		})
	}()
	<-entered

	added := make(chan error, 1)
	go func() { added <- c.AddLine("q", 1) }()
	close(release)
	require.NoError(t, <-done)
	require.NoError(t, <-added)

	// the add waited for checkout, so it lands in the emptied cart
	assert.Equal(t, []Line{{ProductID: "q", Quantity: 1}}, c.Lines())
}

func TestRemoveLine(t *testing.T) {
	c := New()
	require.NoError(t, c.AddLine("a", 1))
	require.NoError(t, c.AddLine("b", 1))

	c.RemoveLine("missing")
	assert.Equal(t, 2, c.Len())

	c.RemoveLine("a")
	assert.Equal(t, []Line{{ProductID: "b", Quantity: 1}}, c.Lines())
}

func TestSetQuantity(t *testing.T) {
	c := New()
	require.NoError(t, c.AddLine("a", 1))

	require.NoError(t, c.SetQuantity("a", 7))
	assert.Equal(t, 7, c.Lines()[0].Quantity)

	assert.ErrorIs(t, c.SetQuantity("a", 0), ErrInvalidQuantity)
	assert.ErrorIs(t, c.SetQuantity("zzz", 1), ErrLineNotFound)
	assert.Equal(t, 7, c.Lines()[0].Quantity)
}

func TestClear(t *testing.T) {
	c := New()
	require.NoError(t, c.AddLine("a", 1))
	c.Clear()
	assert.Empty(t, c.Lines())
}

func TestSubtotalUsesCurrentPrices(t *testing.T) {
	c := New()
	require.NoError(t, c.AddLine("A", 2))
	require.NoError(t, c.AddLine("B", 1))

	prices := priceTable{"A": "100", "B": "50"}
	sub, err := c.Subtotal(prices)
	require.NoError(t, err)
	assert.True(t, sub.Equal(decimal.NewFromInt(250)), sub.String())

	prices["A"] = "10.50"
	sub, err = c.Subtotal(prices)
	require.NoError(t, err)
	assert.Equal(t, "71", sub.String())

	delete(prices, "B")
	_, err = c.Subtotal(prices)
	assert.Error(t, err)
}

func TestRegistryIsPerUser(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.For("u1").AddLine("a", 1))

	assert.Equal(t, 1, r.For("u1").Len())
	assert.Equal(t, 0, r.For("u2").Len())

	r.Drop("u1")
	assert.Equal(t, 0, r.For("u1").Len())
}
