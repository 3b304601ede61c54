package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/fitzone/internal/model"
)

var classCols = []string{"id", "name", "description", "schedule", "slots", "instructor", "duration", "capacity", "color", "active", "created_at"}

func TestGetClassDecodesSlots(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(q("FROM classes WHERE id=?")).WithArgs(7).
		WillReturnRows(sqlmock.NewRows(classCols).AddRow(7, "Spinning", "", "Lun y Mie",
			[]byte(`[{"day":"lunes","time":"08:00 - 09:00","period":"mañana"}]`),
			"Caro", "60 min", 12, "#ff0000", true, cartTime))

	c, err := NewClassRepo(db).GetByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, []model.Slot{{Day: "lunes", Time: "08:00 - 09:00", Period: "mañana"}}, c.Slots)
	assert.Equal(t, 12, c.Capacity)
	assert.True(t, c.Active)
}

func TestGetClassBadSlots(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(q("FROM classes WHERE id=?")).
		WillReturnRows(sqlmock.NewRows(classCols).AddRow(7, "Spinning", "", "", []byte(`{`), "", "", 12, "", true, cartTime))

	_, err := NewClassRepo(db).GetByID(context.Background(), 7)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "class 7")
}

func TestGetClassMissing(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(q("FROM classes WHERE id=?")).WillReturnRows(sqlmock.NewRows(classCols))

	_, err := NewClassRepo(db).GetByID(context.Background(), 7)
	assert.ErrorIs(t, err, ErrNotFound)
}
