package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fitzone/internal/middleware"
	"github.com/iliyamo/fitzone/internal/service"
)

// ShopHandler serves the store cart, checkout and order history.
type ShopHandler struct {
	Shop *service.ShopService
}

func NewShopHandler(s *service.ShopService) *ShopHandler {
	return &ShopHandler{Shop: s}
}

func (h *ShopHandler) Cart(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()

	cart, err := h.Shop.Cart(ctx, middleware.UserID(c))
	if err != nil {
		return fail(c, err, "could not load the cart")
	}
	return ok(c, echo.Map{"cart": cart})
}

func (h *ShopHandler) AddItem(c echo.Context) error {
	var req service.AddItemInput
	if err := c.Bind(&req); err != nil {
		return failMsg(c, invalidBody)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	cart, err := h.Shop.AddItem(ctx, middleware.UserID(c), req)
	if err != nil {
		return fail(c, err, "could not add the product")
	}
	return ok(c, echo.Map{"message": "product added to cart", "cart": cart})
}

type checkoutReq struct {
	PaymentMethod string `json:"paymentMethod"`
}

// Checkout turns the cart into a completed order.
func (h *ShopHandler) Checkout(c echo.Context) error {
	var req checkoutReq
	if err := c.Bind(&req); err != nil {
		return failMsg(c, invalidBody)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	o, err := h.Shop.Checkout(ctx, middleware.UserID(c), req.PaymentMethod)
	if err != nil {
		return fail(c, err, "could not process the purchase")
	}
	return ok(c, echo.Map{"message": "purchase completed", "order": o})
}

// Complete is the checkout page submit with customer and shipping data.
func (h *ShopHandler) Complete(c echo.Context) error {
	var req service.CompleteInput
	if err := c.Bind(&req); err != nil {
		return failMsg(c, invalidBody)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	o, err := h.Shop.Complete(ctx, middleware.UserID(c), req)
	if err != nil {
		return fail(c, err, "could not process the purchase")
	}
	return ok(c, echo.Map{"message": "order placed", "orderId": o.Reference, "order": o})
}

func (h *ShopHandler) Orders(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()

	list, err := h.Shop.Orders(ctx, middleware.UserID(c))
	if err != nil {
		return fail(c, err, "could not load orders")
	}
	return ok(c, echo.Map{"orders": list})
}

// History returns the latest orders only.
func (h *ShopHandler) History(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()

	list, err := h.Shop.History(ctx, middleware.UserID(c))
	if err != nil {
		return fail(c, err, "could not load orders")
	}
	return ok(c, echo.Map{"orders": list})
}
