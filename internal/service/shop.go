package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/fitzone/internal/mailer"
	"github.com/iliyamo/fitzone/internal/model"
	"github.com/iliyamo/fitzone/internal/plan"
	"github.com/iliyamo/fitzone/internal/queue"
	"github.com/iliyamo/fitzone/internal/repository"
)

// HistoryLimit is how many orders the purchase history shows.
const HistoryLimit = 20

// Shipping methods accepted by the enhanced checkout.
const (
	ShipHome   = "domicilio"
	ShipBranch = "sucursal"
	ShipPickup = "fitzone"
)

// ShopService manages carts and turns them into orders.
type ShopService struct {
	carts  CartStore
	orders OrderStore
	users  UserStore
	fx     sideEffects
	now    Clock
}

func NewShopService(d Deps) *ShopService {
	return &ShopService{carts: d.Stores.Carts, orders: d.Stores.Orders, users: d.Stores.Users, fx: d.effects(), now: clockOr(d.Clock)}
}

// Cart returns the caller's cart, creating an empty one on first use.
func (s *ShopService) Cart(ctx context.Context, userID uint64) (model.Cart, error) {
	c, err := s.carts.Get(ctx, userID)
	if err != nil {
		return model.Cart{}, fmt.Errorf("get cart: %w", err)
	}
	return c, nil
}

// AddItemInput is the cart/add payload.
type AddItemInput struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
}

// AddItem adds one unit of a product, bumping the quantity when the product
// is already in the cart.
func (s *ShopService) AddItem(ctx context.Context, userID uint64, in AddItemInput) (model.Cart, error) {
	in.ProductID = strings.TrimSpace(in.ProductID)
	if in.ProductID == "" {
		return model.Cart{}, ErrMissingFields
	}
	if in.Price < 0 {
		return model.Cart{}, invalidf("invalid price")
	}
	c, err := s.carts.AddItem(ctx, userID, model.CartItem{ProductID: in.ProductID, Name: strings.TrimSpace(in.Name), Price: in.Price, Quantity: 1})
	if err != nil {
		return model.Cart{}, fmt.Errorf("add item: %w", err)
	}
	return c, nil
}

// newReference returns a short order reference such as 3F9A1C0B.
func newReference() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func (s *ShopService) place(ctx context.Context, userID uint64, method string, build func(o *model.Order)) (model.Order, error) {
	if method == "" {
		method = plan.PayCash
	}
	if !plan.ValidPayment(method) {
		return model.Order{}, invalid(plan.ErrInvalidPayment)
	}
	o, err := s.orders.PlaceFromCart(ctx, userID, func(cart model.Cart) (model.Order, error) {
		o := model.Order{
			Reference:     newReference(),
			Items:         cart.Items,
			Subtotal:      plan.WithSurcharge(cart.Subtotal(), method),
			PaymentMethod: method,
			Status:        model.OrderCompleted,
			CreatedAt:     s.now(),
		}
		if build != nil {
			build(&o)
		}
		o.Total = o.Subtotal + o.ShippingCost
		return o, nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrEmptyCart) {
			return model.Order{}, ErrEmptyCart
		}
		return model.Order{}, fmt.Errorf("place order: %w", err)
	}
	s.fx.publish(queue.QueueOrderPlaced, queue.OrderPlaced{
		OrderID:       o.ID,
		Reference:     o.Reference,
		UserID:        o.UserID,
		Items:         len(o.Items),
		Total:         o.Total,
		PaymentMethod: o.PaymentMethod,
	})
	s.receipt(ctx, o)
	return o, nil
}

func (s *ShopService) receipt(ctx context.Context, o model.Order) {
	to, name := "", ""
	if o.Customer != nil {
		to, name = o.Customer.Email, strings.TrimSpace(o.Customer.FirstName+" "+o.Customer.LastName)
	}
	if to == "" {
		u, err := s.users.GetByID(ctx, o.UserID)
		if err != nil {
			return
		}
		to, name = u.Email, u.FullName
	}
	s.fx.email(mailer.OrderReceipt(to, name, o.Reference, o.Total))
}

// Checkout turns the cart into a completed order. Gateway payments carry
// the surcharge.
func (s *ShopService) Checkout(ctx context.Context, userID uint64, paymentMethod string) (model.Order, error) {
	return s.place(ctx, userID, strings.TrimSpace(paymentMethod), nil)
}

// CompleteInput is the enhanced checkout payload.
type CompleteInput struct {
	Customer model.CustomerInfo `json:"customer"`
	Shipping model.ShippingInfo `json:"shipping"`
	Payment  struct {
		Method string `json:"method"`
	} `json:"payment"`
}

// Complete is Checkout with customer and shipping details. The shipping
// cost is added after the surcharge.
func (s *ShopService) Complete(ctx context.Context, userID uint64, in CompleteInput) (model.Order, error) {
	switch in.Shipping.Method {
	case ShipHome, ShipBranch, ShipPickup:
	case "":
		in.Shipping.Method = ShipPickup
	default:
		return model.Order{}, invalidf("invalid shipping method %q", in.Shipping.Method)
	}
	if in.Shipping.Cost < 0 {
		return model.Order{}, invalidf("invalid shipping cost")
	}
	customer, shipping := in.Customer, in.Shipping
	return s.place(ctx, userID, strings.TrimSpace(in.Payment.Method), func(o *model.Order) {
		o.ShippingCost = shipping.Cost
		o.Customer = &customer
		o.Shipping = &shipping
	})
}

// Orders lists every order of the caller, newest first.
func (s *ShopService) Orders(ctx context.Context, userID uint64) ([]model.Order, error) {
	list, err := s.orders.ListByUser(ctx, userID, 0)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return list, nil
}

// History lists the caller's latest orders.
func (s *ShopService) History(ctx context.Context, userID uint64) ([]model.Order, error) {
	list, err := s.orders.ListByUser(ctx, userID, HistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return list, nil
}
