// Package plan holds the membership catalog and the pure rules around it:
// pricing with the gateway surcharge, coverage windows, senior and
// three-day eligibility, shared activation codes and remaining-day math.
package plan

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math"
	"math/big"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Plan type identifiers.
const (
	MesLibre    = "mes-libre"
	DosPersonas = "dos-personas"
	TresVeces   = "tres-veces"
	Semanal     = "semanal"
	DiaClase    = "dia-clase"
	Jubilados   = "jubilados"
)

// Payment methods. MercadoPago is the third-party gateway that carries a
// surcharge.
const (
	PayCash        = "efectivo"
	PayTransfer    = "transferencia"
	PayCard        = "tarjeta"
	PayMercadoPago = "mercadopago"
)

// SurchargePercent is added to every price paid through the gateway.
const SurchargePercent = 5

// ExpiringWindow is how far ahead a membership counts as expiring soon.
const ExpiringWindow = 7 * 24 * time.Hour

const (
	codePrefix   = "FZ-2P-"
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 6
)

var (
	ErrUnknownPlan        = errors.New("invalid plan type")
	ErrInvalidPayment     = errors.New("invalid payment method")
	ErrSeniorAge          = errors.New("age does not meet the senior plan requirement")
	ErrSeniorGender       = errors.New("gender is required for the senior plan")
	ErrTrainingDays       = errors.New("exactly 3 different training days are required")
	ErrInvalidTrainingDay = errors.New("invalid training day")
)

// Plan is one catalog entry.
type Plan struct {
	Type  string `yaml:"type" json:"type"`
	Label string `yaml:"label" json:"label"`
	Price int64  `yaml:"price" json:"price"`
}

// Catalog maps plan types to plans.
type Catalog map[string]Plan

// DefaultCatalog returns the built-in price list.
func DefaultCatalog() Catalog {
	return Catalog{
		MesLibre:    {Type: MesLibre, Label: "Mes Libre", Price: 32000},
		DosPersonas: {Type: DosPersonas, Label: "Membresía para 2 Personas", Price: 28000},
		TresVeces:   {Type: TresVeces, Label: "3 Veces por Semana", Price: 24000},
		Semanal:     {Type: Semanal, Label: "Pase Semanal", Price: 11500},
		DiaClase:    {Type: DiaClase, Label: "Día de Clase", Price: 5000},
		Jubilados:   {Type: Jubilados, Label: "Plan Jubilados", Price: 20000},
	}
}

// LoadCatalogFile overlays price and label overrides read from a YAML file on
// top of the default catalog. The file holds a `plans` list; entries with an
// unknown type are rejected so a typo cannot silently create a plan.
func LoadCatalogFile(path string) (Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan catalog: %w", err)
	}
	return ParseCatalog(raw)
}

// ParseCatalog applies YAML overrides to the default catalog.
func ParseCatalog(raw []byte) (Catalog, error) {
	cat := DefaultCatalog()
	var doc struct {
		Plans []Plan `yaml:"plans"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse plan catalog: %w", err)
	}
	for _, p := range doc.Plans {
		cur, ok := cat[p.Type]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownPlan, p.Type)
		}
		if p.Price < 0 {
			return nil, fmt.Errorf("plan %s: negative price", p.Type)
		}
		if p.Price > 0 {
			cur.Price = p.Price
		}
		if p.Label != "" {
			cur.Label = p.Label
		}
		cat[p.Type] = cur
	}
	return cat, nil
}

// Lookup returns the plan for a type.
func (c Catalog) Lookup(planType string) (Plan, error) {
	p, ok := c[planType]
	if !ok {
		return Plan{}, ErrUnknownPlan
	}
	return p, nil
}

// ValidPayment reports whether method is one of the accepted payment methods.
func ValidPayment(method string) bool {
	switch method {
	case PayCash, PayTransfer, PayCard, PayMercadoPago:
		return true
	}
	return false
}

// WithSurcharge applies the gateway surcharge to an amount when the payment
// method is the gateway, rounding half up to whole units.
func WithSurcharge(amount int64, method string) int64 {
	if method != PayMercadoPago {
		return amount
	}
	return (amount*(100+SurchargePercent) + 50) / 100
}

// PriceFor returns the amount charged for a plan with a payment method.
func (p Plan) PriceFor(method string) int64 { return WithSurcharge(p.Price, method) }

// EndDate returns when a plan bought at start stops covering its holder.
// Month arithmetic follows time.AddDate normalisation, so Jan 31 + 1 month
// lands on Mar 2 or Mar 3.
func EndDate(planType string, start time.Time) time.Time {
	switch planType {
	case DiaClase:
		return start.AddDate(0, 0, 1)
	case Semanal:
		return start.AddDate(0, 0, 7)
	default:
		return start.AddDate(0, 1, 0)
	}
}

// Gender values accepted by the senior plan.
const (
	GenderFemale = "femenino"
	GenderMale   = "masculino"
)

// ValidateSenior checks the senior plan age rule: 60 for women, 65 for men.
func ValidateSenior(gender string, age int) error {
	switch strings.ToLower(strings.TrimSpace(gender)) {
	case GenderFemale:
		if age < 60 {
			return ErrSeniorAge
		}
	case GenderMale:
		if age < 65 {
			return ErrSeniorAge
		}
	default:
		return ErrSeniorGender
	}
	return nil
}

// Weekdays are the lowercase, unaccented day names used for training days,
// indexed by time.Weekday.
var Weekdays = [7]string{"domingo", "lunes", "martes", "miercoles", "jueves", "viernes", "sabado"}

// WeekdayName returns the training-day name of t's weekday.
func WeekdayName(t time.Time) string { return Weekdays[t.Weekday()] }

func isWeekday(s string) bool {
	for _, d := range Weekdays {
		if d == s {
			return true
		}
	}
	return false
}

// ValidateTrainingDays normalises and checks the three-day plan selection:
// exactly three distinct valid weekday names.
func ValidateTrainingDays(days []string) ([]string, error) {
	out := make([]string, 0, len(days))
	seen := make(map[string]bool, len(days))
	for _, d := range days {
		d = strings.ToLower(strings.TrimSpace(d))
		if !isWeekday(d) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidTrainingDay, d)
		}
		if seen[d] {
			return nil, ErrTrainingDays
		}
		seen[d] = true
		out = append(out, d)
	}
	if len(out) != 3 {
		return nil, ErrTrainingDays
	}
	return out, nil
}

// GenerateCode returns a fresh shared-plan activation code such as
// FZ-2P-7KQ2ZD.
func GenerateCode() (string, error) {
	var b strings.Builder
	b.WriteString(codePrefix)
	limit := big.NewInt(int64(len(codeAlphabet)))
	for i := 0; i < codeLength; i++ {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		b.WriteByte(codeAlphabet[n.Int64()])
	}
	return b.String(), nil
}

// ValidCodeFormat reports whether code has the shape produced by GenerateCode.
func ValidCodeFormat(code string) bool {
	if len(code) != len(codePrefix)+codeLength || !strings.HasPrefix(code, codePrefix) {
		return false
	}
	for _, r := range code[len(codePrefix):] {
		if !strings.ContainsRune(codeAlphabet, r) {
			return false
		}
	}
	return true
}

// RawDaysRemaining is ceil((end-now)/24h) without clamping; zero or less
// means the membership is over.
func RawDaysRemaining(end, now time.Time) int {
	return int(math.Ceil(float64(end.Sub(now)) / float64(24*time.Hour)))
}

// DaysRemaining clamps RawDaysRemaining at zero.
func DaysRemaining(end, now time.Time) int {
	if d := RawDaysRemaining(end, now); d > 0 {
		return d
	}
	return 0
}

// Status summarises a membership's remaining time the way the member
// dashboard shows it.
type Status struct {
	DaysRemaining  int  `json:"daysRemaining"`
	IsExpiringSoon bool `json:"isExpiringSoon"`
	IsExpired      bool `json:"isExpired"`
}

// StatusAt computes the dashboard summary for an end date.
func StatusAt(end, now time.Time) Status {
	raw := RawDaysRemaining(end, now)
	return Status{
		DaysRemaining:  DaysRemaining(end, now),
		IsExpiringSoon: raw > 0 && raw <= 7,
		IsExpired:      raw <= 0,
	}
}
