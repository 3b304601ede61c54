package queue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/gommon/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatLine(t *testing.T) {
	env, err := NewEnvelope(QueueReservationConfirmed, ReservationConfirmed{
		ReservationID: 3, UserID: 5, ClassName: "Yoga", Date: "2030-01-02", Time: "09:00 - 10:00",
	})
	require.NoError(t, err)
	line, err := FormatLine(env)
	require.NoError(t, err)
	assert.Contains(t, line, "Reservation confirmed | reservation_id=3 | user_id=5 | class=\"Yoga\"")
	assert.True(t, strings.HasSuffix(line, "\n"))

	_, err = FormatLine(Envelope{Type: "nope"})
	assert.Error(t, err)
}

func TestHandleAppendsToActivityLog(t *testing.T) {
	dir := t.TempDir()
	c := NewActivityConsumer("", dir, log.New("test"))

	env, err := NewEnvelope(QueueOrderPlaced, OrderPlaced{OrderID: 1, Reference: "AB12CD34", UserID: 2, Items: 3, Total: 9000, PaymentMethod: "tarjeta"})
	require.NoError(t, err)
	body, err := json.Marshal(env)
	require.NoError(t, err)

	require.NoError(t, c.Handle(body))
	require.NoError(t, c.Handle(body))
	assert.Error(t, c.Handle([]byte("{broken")))

	raw, err := os.ReadFile(filepath.Join(dir, "activity.log"))
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(raw), "Order placed | order_id=1 | ref=AB12CD34"))
}
