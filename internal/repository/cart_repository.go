package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/fitzone/internal/model"
)

// CartRepo persists the one-cart-per-user shopping cart.
type CartRepo struct{ DB *sql.DB }

func NewCartRepo(db *sql.DB) *CartRepo { return &CartRepo{DB: db} }

type queryer interface {
	execer
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func ensureCart(ctx context.Context, q queryer, userID uint64) (model.Cart, error) {
	if _, err := q.ExecContext(ctx, "INSERT IGNORE INTO carts (user_id) VALUES (?)", userID); err != nil {
		return model.Cart{}, err
	}
	c := model.Cart{UserID: userID}
	if err := q.QueryRowContext(ctx, "SELECT id, updated_at FROM carts WHERE user_id=?", userID).Scan(&c.ID, &c.UpdatedAt); err != nil {
		return model.Cart{}, err
	}
	return c, nil
}

func loadItems(ctx context.Context, q queryer, cartID uint64, lock bool) ([]model.CartItem, error) {
	query := "SELECT product_id, name, price, quantity FROM cart_items WHERE cart_id=? ORDER BY id"
	if lock {
		query += " FOR UPDATE"
	}
	rows, err := q.QueryContext(ctx, query, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []model.CartItem{}
	for rows.Next() {
		var it model.CartItem
		if err := rows.Scan(&it.ProductID, &it.Name, &it.Price, &it.Quantity); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// Get returns the user's cart, creating an empty one on first access.
func (r *CartRepo) Get(ctx context.Context, userID uint64) (model.Cart, error) {
	c, err := ensureCart(ctx, r.DB, userID)
	if err != nil {
		return c, err
	}
	c.Items, err = loadItems(ctx, r.DB, c.ID, false)
	return c, err
}

// AddItem adds one unit of a product. An existing line has its quantity
// incremented in the same statement, so concurrent adds never lose units.
func (r *CartRepo) AddItem(ctx context.Context, userID uint64, item model.CartItem) (model.Cart, error) {
	c, err := ensureCart(ctx, r.DB, userID)
	if err != nil {
		return c, err
	}
	if _, err := r.DB.ExecContext(ctx, `
        INSERT INTO cart_items (cart_id, product_id, name, price, quantity)
        VALUES (?,?,?,?,1)
        ON DUPLICATE KEY UPDATE quantity = quantity + 1`,
		c.ID, item.ProductID, item.Name, item.Price); err != nil {
		return c, err
	}
	now := time.Now().UTC()
	if _, err := r.DB.ExecContext(ctx, "UPDATE carts SET updated_at=? WHERE id=?", now, c.ID); err != nil {
		return c, err
	}
	c.UpdatedAt = now
	c.Items, err = loadItems(ctx, r.DB, c.ID, false)
	return c, err
}
