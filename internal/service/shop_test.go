package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/fitzone/internal/model"
	"github.com/iliyamo/fitzone/internal/plan"
	"github.com/iliyamo/fitzone/internal/queue"
)

func TestCartAddIncrementsQuantity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "shop@fitzone.com")

	c, err := f.shop.Cart(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, c.Items)

	_, err = f.shop.AddItem(ctx, u.ID, AddItemInput{ProductID: "p1", Name: "Protein", Price: 1000})
	require.NoError(t, err)
	c, err = f.shop.AddItem(ctx, u.ID, AddItemInput{ProductID: "p1", Name: "Protein", Price: 1000})
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 2, c.Items[0].Quantity)

	_, err = f.shop.AddItem(ctx, u.ID, AddItemInput{Name: "No id"})
	assert.ErrorIs(t, err, ErrMissingFields)
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "empty@fitzone.com")
	_, err := f.shop.Checkout(context.Background(), u.ID, "")
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCheckoutTotalsAndEmptiesCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "buyer@fitzone.com")
	_, err := f.shop.AddItem(ctx, u.ID, AddItemInput{ProductID: "p1", Name: "Gloves", Price: 1500})
	require.NoError(t, err)
	_, err = f.shop.AddItem(ctx, u.ID, AddItemInput{ProductID: "p1", Name: "Gloves", Price: 1500})
	require.NoError(t, err)
	_, err = f.shop.AddItem(ctx, u.ID, AddItemInput{ProductID: "p2", Name: "Bottle", Price: 999})
	require.NoError(t, err)

	o, err := f.shop.Checkout(ctx, u.ID, plan.PayMercadoPago)
	require.NoError(t, err)
	// (3000 + 999) * 1.05 = 4198.95
	assert.Equal(t, int64(4199), o.Total)
	assert.Equal(t, model.OrderCompleted, o.Status)
	assert.Len(t, o.Reference, 8)
	assert.Contains(t, f.rec.queues(), queue.QueueOrderPlaced)

	c, err := f.shop.Cart(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, c.Items)

	_, err = f.shop.Checkout(ctx, u.ID, plan.PayCash)
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCompleteCheckoutAddsShipping(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "ship@fitzone.com")
	_, err := f.shop.AddItem(ctx, u.ID, AddItemInput{ProductID: "p1", Name: "Mat", Price: 10000})
	require.NoError(t, err)

	in := CompleteInput{
		Customer: model.CustomerInfo{FirstName: "Ana", LastName: "Paz", Email: "ana@mail.com"},
		Shipping: model.ShippingInfo{Method: ShipHome, Cost: 2500, Address: "Calle 1"},
	}
	in.Payment.Method = plan.PayMercadoPago
	o, err := f.shop.Complete(ctx, u.ID, in)
	require.NoError(t, err)
	assert.Equal(t, int64(10500), o.Subtotal)
	assert.Equal(t, int64(2500), o.ShippingCost)
	assert.Equal(t, int64(13000), o.Total)
	require.NotNil(t, o.Shipping)
	assert.Equal(t, "Calle 1", o.Shipping.Address)

	f.rec.mu.Lock()
	last := f.rec.mails[len(f.rec.mails)-1]
	f.rec.mu.Unlock()
	assert.Equal(t, "ana@mail.com", last.To)

	in.Shipping.Method = "drone"
	_, err = f.shop.Complete(ctx, u.ID, in)
	_, isBusiness := Message(err)
	assert.True(t, isBusiness)
}

func TestOrderHistoryNewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "hist@fitzone.com")
	var refs []string
	for i := 0; i < 3; i++ {
		_, err := f.shop.AddItem(ctx, u.ID, AddItemInput{ProductID: "p", Name: "Bar", Price: 100})
		require.NoError(t, err)
		o, err := f.shop.Checkout(ctx, u.ID, "")
		require.NoError(t, err)
		refs = append(refs, o.Reference)
	}
	list, err := f.shop.History(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, refs[2], list[0].Reference)
}
