package plan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceForSurcharge(t *testing.T) {
	cat := DefaultCatalog()
	day, err := cat.Lookup(DiaClase)
	require.NoError(t, err)

	assert.Equal(t, int64(5000), day.PriceFor(PayCash))
	assert.Equal(t, int64(5250), day.PriceFor(PayMercadoPago))

	weekly, _ := cat.Lookup(Semanal)
	assert.Equal(t, int64(12075), weekly.PriceFor(PayMercadoPago))

	assert.Equal(t, int64(105), WithSurcharge(100, PayMercadoPago))
	assert.Equal(t, int64(11), WithSurcharge(10, PayMercadoPago)) // 10.5 rounds up
	assert.Equal(t, int64(10), WithSurcharge(10, PayCard))
}

func TestLookupUnknown(t *testing.T) {
	_, err := DefaultCatalog().Lookup("gold")
	assert.ErrorIs(t, err, ErrUnknownPlan)
}

func TestEndDate(t *testing.T) {
	start := time.Date(2025, 1, 31, 9, 0, 0, 0, time.UTC)

	assert.Equal(t, start.Add(24*time.Hour), EndDate(DiaClase, start))
	assert.Equal(t, start.AddDate(0, 0, 7), EndDate(Semanal, start))
	// Jan 31 + 1 month normalises past February.
	assert.Equal(t, time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC), EndDate(MesLibre, start))
	assert.Equal(t, time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC), EndDate(Jubilados, start))
}

func TestValidateSenior(t *testing.T) {
	assert.NoError(t, ValidateSenior("femenino", 60))
	assert.ErrorIs(t, ValidateSenior("femenino", 59), ErrSeniorAge)
	assert.NoError(t, ValidateSenior("Masculino", 65))
	assert.ErrorIs(t, ValidateSenior("masculino", 64), ErrSeniorAge)
	assert.ErrorIs(t, ValidateSenior("", 80), ErrSeniorGender)
}

func TestValidateTrainingDays(t *testing.T) {
	days, err := ValidateTrainingDays([]string{"Lunes", " miercoles", "viernes"})
	require.NoError(t, err)
	assert.Equal(t, []string{"lunes", "miercoles", "viernes"}, days)

	_, err = ValidateTrainingDays([]string{"lunes", "martes"})
	assert.ErrorIs(t, err, ErrTrainingDays)

	_, err = ValidateTrainingDays([]string{"lunes", "lunes", "martes"})
	assert.ErrorIs(t, err, ErrTrainingDays)

	_, err = ValidateTrainingDays([]string{"lunes", "martes", "funday"})
	assert.ErrorIs(t, err, ErrInvalidTrainingDay)
}

func TestGenerateCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		code, err := GenerateCode()
		require.NoError(t, err)
		assert.True(t, ValidCodeFormat(code), code)
		seen[code] = true
	}
	assert.Greater(t, len(seen), 45)
	assert.False(t, ValidCodeFormat("FZ-2P-abc123"))
	assert.False(t, ValidCodeFormat("XX-2P-ABC123"))
}

func TestDaysRemaining(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 1, DaysRemaining(now.Add(time.Hour), now))
	assert.Equal(t, 2, DaysRemaining(now.Add(25*time.Hour), now))
	assert.Equal(t, 0, DaysRemaining(now.Add(-48*time.Hour), now))
	assert.Equal(t, -2, RawDaysRemaining(now.Add(-48*time.Hour), now))

	st := StatusAt(now.Add(3*24*time.Hour), now)
	assert.Equal(t, Status{DaysRemaining: 3, IsExpiringSoon: true}, st)

	st = StatusAt(now.Add(-time.Minute), now)
	assert.True(t, st.IsExpired)
	assert.False(t, st.IsExpiringSoon)
	assert.Equal(t, 0, st.DaysRemaining)

	st = StatusAt(now.AddDate(0, 1, 0), now)
	assert.False(t, st.IsExpiringSoon)
	assert.False(t, st.IsExpired)
}

func TestParseCatalogOverrides(t *testing.T) {
	cat, err := ParseCatalog([]byte("plans:\n  - type: mes-libre\n    price: 35000\n  - type: semanal\n    label: Semana\n"))
	require.NoError(t, err)
	assert.Equal(t, int64(35000), cat[MesLibre].Price)
	assert.Equal(t, "Semana", cat[Semanal].Label)
	assert.Equal(t, int64(11500), cat[Semanal].Price)

	_, err = ParseCatalog([]byte("plans:\n  - type: platinum\n    price: 1\n"))
	assert.ErrorIs(t, err, ErrUnknownPlan)
}
