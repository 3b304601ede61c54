package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/fitzone/internal/model"
)

// OrderRepo persists orders. Orders are immutable once written.
type OrderRepo struct{ DB *sql.DB }

func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{DB: db} }

// PriceFunc turns the locked cart contents into the order to store.
type PriceFunc func(cart model.Cart) (model.Order, error)

const orderColumns = "id,reference,user_id,items,subtotal,shipping_cost,total,payment_method,customer,shipping,status,created_at"

func scanOrder(row rowScanner) (model.Order, error) {
	var (
		o                         model.Order
		items, customer, shipping []byte
	)
	err := row.Scan(&o.ID, &o.Reference, &o.UserID, &items, &o.Subtotal, &o.ShippingCost, &o.Total,
		&o.PaymentMethod, &customer, &shipping, &o.Status, &o.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return o, ErrNotFound
	}
	if err != nil {
		return o, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return o, fmt.Errorf("decode items of order %d: %w", o.ID, err)
	}
	if len(customer) > 0 {
		o.Customer = &model.CustomerInfo{}
		if err := json.Unmarshal(customer, o.Customer); err != nil {
			return o, fmt.Errorf("decode customer of order %d: %w", o.ID, err)
		}
	}
	if len(shipping) > 0 {
		o.Shipping = &model.ShippingInfo{}
		if err := json.Unmarshal(shipping, o.Shipping); err != nil {
			return o, fmt.Errorf("decode shipping of order %d: %w", o.ID, err)
		}
	}
	return o, nil
}

func nullableJSON(v any, present bool) (any, error) {
	if !present {
		return nil, nil
	}
	return json.Marshal(v)
}

// PlaceFromCart locks the user's cart, lets price build the order from its
// items, stores the order and empties the cart, all in one transaction. An
// empty or missing cart yields ErrEmptyCart.
func (r *OrderRepo) PlaceFromCart(ctx context.Context, userID uint64, price PriceFunc) (model.Order, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.Order{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	cart := model.Cart{UserID: userID}
	err = tx.QueryRowContext(ctx, "SELECT id, updated_at FROM carts WHERE user_id=? FOR UPDATE", userID).Scan(&cart.ID, &cart.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Order{}, ErrEmptyCart
	}
	if err != nil {
		return model.Order{}, err
	}
	if cart.Items, err = loadItems(ctx, tx, cart.ID, true); err != nil {
		return model.Order{}, err
	}
	if len(cart.Items) == 0 {
		return model.Order{}, ErrEmptyCart
	}

	o, err := price(cart)
	if err != nil {
		return model.Order{}, err
	}
	o.UserID = userID
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	items, err := json.Marshal(o.Items)
	if err != nil {
		return model.Order{}, err
	}
	customer, err := nullableJSON(o.Customer, o.Customer != nil)
	if err != nil {
		return model.Order{}, err
	}
	shipping, err := nullableJSON(o.Shipping, o.Shipping != nil)
	if err != nil {
		return model.Order{}, err
	}
	res, err := tx.ExecContext(ctx, `
        INSERT INTO orders (reference, user_id, items, subtotal, shipping_cost, total, payment_method, customer, shipping, status, created_at)
        VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		o.Reference, o.UserID, items, o.Subtotal, o.ShippingCost, o.Total, o.PaymentMethod, customer, shipping, o.Status, o.CreatedAt)
	if err != nil {
		return model.Order{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Order{}, err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM cart_items WHERE cart_id=?", cart.ID); err != nil {
		return model.Order{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Order{}, err
	}
	committed = true
	o.ID = uint64(id)
	return o, nil
}

func (r *OrderRepo) list(ctx context.Context, where string, args ...any) ([]model.Order, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT "+orderColumns+" FROM orders "+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// ListByUser returns the user's orders, newest first. limit <= 0 means all.
func (r *OrderRepo) ListByUser(ctx context.Context, userID uint64, limit int) ([]model.Order, error) {
	if limit > 0 {
		return r.list(ctx, "WHERE user_id=? ORDER BY created_at DESC, id DESC LIMIT ?", userID, limit)
	}
	return r.list(ctx, "WHERE user_id=? ORDER BY created_at DESC, id DESC", userID)
}

// ListAll returns every order, newest first.
func (r *OrderRepo) ListAll(ctx context.Context) ([]model.Order, error) {
	return r.list(ctx, "ORDER BY created_at DESC, id DESC")
}

// GetByID fetches one order.
func (r *OrderRepo) GetByID(ctx context.Context, id uint64) (model.Order, error) {
	return scanOrder(r.DB.QueryRowContext(ctx, "SELECT "+orderColumns+" FROM orders WHERE id=?", id))
}

// SummarySince counts orders created since t and sums the totals of the
// completed ones.
func (r *OrderRepo) SummarySince(ctx context.Context, since time.Time) (count int, revenue int64, err error) {
	err = r.DB.QueryRowContext(ctx, `
        SELECT COUNT(*), COALESCE(SUM(CASE WHEN status='completed' THEN total ELSE 0 END),0)
        FROM orders WHERE created_at >= ?`, since).Scan(&count, &revenue)
	return count, revenue, err
}

// SummaryForUser counts the user's orders and sums the completed totals.
func (r *OrderRepo) SummaryForUser(ctx context.Context, userID uint64) (count int, spent int64, err error) {
	err = r.DB.QueryRowContext(ctx, `
        SELECT COUNT(*), COALESCE(SUM(CASE WHEN status='completed' THEN total ELSE 0 END),0)
        FROM orders WHERE user_id = ?`, userID).Scan(&count, &spent)
	return count, spent, err
}
