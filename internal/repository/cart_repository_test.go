package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/fitzone/internal/model"
)

func TestAddItemUpsertsLine(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(q("INSERT IGNORE INTO carts (user_id) VALUES (?)")).WithArgs(3).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(q("SELECT id, updated_at FROM carts WHERE user_id=?")).WithArgs(3).
		WillReturnRows(sqlmock.NewRows(cartCols).AddRow(8, cartTime))
	mock.ExpectExec(q("ON DUPLICATE KEY UPDATE quantity = quantity + 1")).
		WithArgs(8, "gloves", "Guantes", int64(5000)).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(q("UPDATE carts SET updated_at=? WHERE id=?")).WithArgs(sqlmock.AnyArg(), 8).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(q("FROM cart_items WHERE cart_id=? ORDER BY id")).WithArgs(8).
		WillReturnRows(sqlmock.NewRows(itemCols).AddRow("gloves", "Guantes", 5000, 2))

	c, err := NewCartRepo(db).AddItem(context.Background(), 3, model.CartItem{ProductID: "gloves", Name: "Guantes", Price: 5000})
	require.NoError(t, err)
	assert.Equal(t, uint64(8), c.ID)
	assert.Equal(t, []model.CartItem{{ProductID: "gloves", Name: "Guantes", Price: 5000, Quantity: 2}}, c.Items)
	assert.WithinDuration(t, time.Now(), c.UpdatedAt, time.Minute)
}

func TestGetCartWithoutItemsIsEmptySlice(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(q("INSERT IGNORE INTO carts")).WillReturnResult(sqlmock.NewResult(8, 1))
	mock.ExpectQuery(q("SELECT id, updated_at FROM carts WHERE user_id=?")).
		WillReturnRows(sqlmock.NewRows(cartCols).AddRow(8, cartTime))
	mock.ExpectQuery(q("FROM cart_items WHERE cart_id=?")).WillReturnRows(sqlmock.NewRows(itemCols))

	c, err := NewCartRepo(db).Get(context.Background(), 3)
	require.NoError(t, err)
	assert.NotNil(t, c.Items)
	assert.Empty(t, c.Items)
}
