package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/fitzone/internal/handler"
	"github.com/iliyamo/fitzone/internal/middleware"
	"github.com/iliyamo/fitzone/internal/plan"
	"github.com/iliyamo/fitzone/internal/repository/memory"
	"github.com/iliyamo/fitzone/internal/router"
	"github.com/iliyamo/fitzone/internal/service"
	"github.com/iliyamo/fitzone/internal/session"
)

const (
	adminEmail    = "admin@fitzone.com"
	adminPassword = "admin-secret"
)

func newApp(t *testing.T) *echo.Echo {
	t.Helper()
	mem := memory.New()
	deps := service.Deps{
		Stores: service.Stores{
			Users:         mem.Users,
			Classes:       mem.Classes,
			Reservations:  mem.Reservations,
			Carts:         mem.Carts,
			Orders:        mem.Orders,
			Memberships:   mem.Memberships,
			Notifications: mem.Notifications,
		},
		Logger: log.New("test"),
		Inline: true,
	}
	require.NoError(t, service.Seed(context.Background(), deps, service.SeedAdmin{Email: adminEmail, Password: adminPassword}, bcrypt.MinCost))

	notifications := service.NewNotificationService(deps)
	reports := service.NewReportService(deps)
	sessions := session.NewManager(session.NewMemoryStore(), "test-secret", 0, "", false)

	e := echo.New()
	g := router.Guards{Auth: middleware.SessionAuth(sessions)}
	router.RegisterRoutes(e, handler.NewHealthHandler(nil))
	router.RegisterAuth(e, handler.NewAuthHandler(service.NewAuthService(deps, bcrypt.MinCost), sessions), g)
	router.RegisterClasses(e, handler.NewReservationHandler(service.NewReservationService(deps, notifications)), g)
	router.RegisterShop(e, handler.NewShopHandler(service.NewShopService(deps)), g)
	router.RegisterMembership(e,
		handler.NewMembershipHandler(service.NewMembershipService(deps, plan.DefaultCatalog(), notifications, bcrypt.MinCost)),
		handler.NewUserHandler(notifications, reports), g)
	router.RegisterAdmin(e, handler.NewAdminHandler(service.NewAdminService(deps), reports, nil), g)
	return e
}

type response struct {
	Code    int
	Body    map[string]any
	Cookies []*http.Cookie
}

func call(t *testing.T, e *echo.Echo, method, path, body string, cookies ...*http.Cookie) response {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	out := response{Code: rec.Code, Cookies: rec.Result().Cookies()}
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out.Body))
	}
	return out
}

func login(t *testing.T, e *echo.Echo, email, password string) *http.Cookie {
	t.Helper()
	r := call(t, e, http.MethodPost, "/api/login", `{"email":"`+email+`","password":"`+password+`"}`)
	require.Equal(t, http.StatusOK, r.Code)
	require.Equal(t, true, r.Body["success"], r.Body["message"])
	require.NotEmpty(t, r.Cookies)
	return r.Cookies[0]
}

func registerMember(t *testing.T, e *echo.Echo, email string) *http.Cookie {
	t.Helper()
	r := call(t, e, http.MethodPost, "/api/register", `{"fullName":"Ana Test","email":"`+email+`","phone":"123","password":"pw12345"}`)
	require.Equal(t, true, r.Body["success"], r.Body["message"])
	return login(t, e, email, "pw12345")
}

func TestHealth(t *testing.T) {
	e := newApp(t)
	r := call(t, e, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, r.Code)
	assert.Equal(t, "ok", r.Body["status"])
}

func TestRegisterLoginSession(t *testing.T) {
	e := newApp(t)

	r := call(t, e, http.MethodGet, "/api/user", "")
	assert.Equal(t, http.StatusUnauthorized, r.Code)
	assert.Equal(t, false, r.Body["success"])

	r = call(t, e, http.MethodPost, "/api/register", `{"fullName":"Ana","email":"Ana@Mail.com","phone":"1","password":"pw12345"}`)
	assert.Equal(t, true, r.Body["success"])

	r = call(t, e, http.MethodPost, "/api/register", `{"fullName":"Ana","email":"ana@mail.com","phone":"1","password":"x"}`)
	assert.Equal(t, http.StatusOK, r.Code)
	assert.Equal(t, false, r.Body["success"])
	assert.Contains(t, r.Body["message"], "already exists")

	r = call(t, e, http.MethodPost, "/api/login", `{"email":"ana@mail.com","password":"pw12345"}`)
	require.Equal(t, true, r.Body["success"])
	assert.Equal(t, "/dashboard", r.Body["redirectUrl"])
	assert.NotZero(t, r.Body["userId"])
	require.NotEmpty(t, r.Cookies)
	cookie := r.Cookies[0]

	r = call(t, e, http.MethodGet, "/api/user", "", cookie)
	require.Equal(t, http.StatusOK, r.Code)
	user := r.Body["user"].(map[string]any)
	assert.Equal(t, "ana@mail.com", user["email"])
	assert.Equal(t, "user", user["role"])

	r = call(t, e, http.MethodPost, "/api/logout", "", cookie)
	assert.Equal(t, true, r.Body["success"])
	r = call(t, e, http.MethodGet, "/api/user", "", cookie)
	assert.Equal(t, http.StatusUnauthorized, r.Code)
}

func TestLoginFailureMessageIsUniform(t *testing.T) {
	e := newApp(t)
	registerMember(t, e, "m@fitzone.com")

	unknown := call(t, e, http.MethodPost, "/api/login", `{"email":"nobody@fitzone.com","password":"pw12345"}`)
	wrong := call(t, e, http.MethodPost, "/api/login", `{"email":"m@fitzone.com","password":"nope"}`)

	assert.Equal(t, http.StatusOK, unknown.Code)
	assert.Equal(t, http.StatusOK, wrong.Code)
	assert.Equal(t, false, wrong.Body["success"])
	assert.Equal(t, unknown.Body["message"], wrong.Body["message"])
	assert.Empty(t, wrong.Cookies)
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	e := newApp(t)

	r := call(t, e, http.MethodGet, "/api/admin/dashboard-stats", "")
	assert.Equal(t, http.StatusUnauthorized, r.Code)

	member := registerMember(t, e, "m@fitzone.com")
	r = call(t, e, http.MethodGet, "/api/admin/dashboard-stats", "", member)
	assert.Equal(t, http.StatusForbidden, r.Code)

	admin := login(t, e, adminEmail, adminPassword)
	r = call(t, e, http.MethodGet, "/api/admin/dashboard-stats", "", admin)
	require.Equal(t, http.StatusOK, r.Code)
	stats := r.Body["stats"].(map[string]any)
	assert.EqualValues(t, 1, stats["totalUsers"])

	r = call(t, e, http.MethodGet, "/api/admin/users", "", admin)
	users := r.Body["users"].([]any)
	require.Len(t, users, 1)
	assert.NotContains(t, users[0].(map[string]any), "passwordHash")
}

func TestAdminCannotDeleteSelf(t *testing.T) {
	e := newApp(t)
	admin := login(t, e, adminEmail, adminPassword)

	r := call(t, e, http.MethodPost, "/api/login", `{"email":"`+adminEmail+`","password":"`+adminPassword+`"}`)
	id := int(r.Body["userId"].(float64))
	assert.Equal(t, "/admin", r.Body["redirectUrl"])

	r = call(t, e, http.MethodDelete, "/api/admin/users/"+strconv.Itoa(id), "", admin)
	assert.Equal(t, http.StatusOK, r.Code)
	assert.Equal(t, false, r.Body["success"])
	assert.Equal(t, service.ErrSelfDelete.Msg, r.Body["message"])
}

func TestClassesArePublic(t *testing.T) {
	e := newApp(t)
	r := call(t, e, http.MethodGet, "/api/classes", "")
	require.Equal(t, true, r.Body["success"])
	assert.Len(t, r.Body["classes"], len(service.DefaultClasses()))

	r = call(t, e, http.MethodPost, "/api/classes/check-availability", `{"classId":999,"date":"2030-03-04","time":"08:00"}`)
	assert.Equal(t, false, r.Body["success"])
	assert.Equal(t, service.ErrClassNotFound.Msg, r.Body["message"])
}

func TestBookingNeedsMembership(t *testing.T) {
	e := newApp(t)
	member := registerMember(t, e, "m@fitzone.com")

	classes := call(t, e, http.MethodGet, "/api/classes", "").Body["classes"].([]any)
	id := int(classes[0].(map[string]any)["id"].(float64))

	r := call(t, e, http.MethodPost, "/api/reserve-class/improved", `{"classId":`+strconv.Itoa(id)+`,"date":"2099-01-05","time":"08:00"}`, member)
	assert.Equal(t, http.StatusOK, r.Code)
	assert.Equal(t, false, r.Body["success"])
	assert.Equal(t, service.ErrMembershipRequired.Msg, r.Body["message"])

	r = call(t, e, http.MethodPost, "/api/reserve-class", `{"classId":1}`)
	assert.Equal(t, http.StatusUnauthorized, r.Code)
}

func TestMembershipPurchaseAndStatus(t *testing.T) {
	e := newApp(t)

	r := call(t, e, http.MethodPost, "/api/register-with-membership",
		`{"membershipPlan":"mes-libre","paymentMethod":"efectivo","fullName":"Mia","email":"mia@fitzone.com","phone":"1","password":"pw12345"}`)
	require.Equal(t, true, r.Body["success"], r.Body["message"])
	userID := int(r.Body["userId"].(float64))

	r = call(t, e, http.MethodPost, "/api/check-membership-status", `{"userId":`+strconv.Itoa(userID)+`}`)
	assert.Equal(t, true, r.Body["success"])
	assert.Equal(t, service.StatusActive, r.Body["membershipStatus"])

	r = call(t, e, http.MethodPost, "/api/check-membership-status", `{"userId":424242}`)
	assert.Equal(t, false, r.Body["success"])
	assert.Equal(t, service.StatusNone, r.Body["membershipStatus"])

	cookie := login(t, e, "mia@fitzone.com", "pw12345")
	r = call(t, e, http.MethodGet, "/api/user/membership", "", cookie)
	require.Equal(t, true, r.Body["success"], r.Body["message"])
	m := r.Body["membership"].(map[string]any)
	assert.Equal(t, false, m["isExpired"])

	r = call(t, e, http.MethodPost, "/api/verify-membership-code", `{"code":"nope"}`)
	assert.Equal(t, false, r.Body["success"])
	assert.Equal(t, service.ErrInvalidCode.Msg, r.Body["message"])
}

func TestEmptyCartCheckout(t *testing.T) {
	e := newApp(t)
	member := registerMember(t, e, "m@fitzone.com")

	r := call(t, e, http.MethodPost, "/api/cart/checkout", `{"paymentMethod":"efectivo"}`, member)
	assert.Equal(t, false, r.Body["success"])
	assert.Equal(t, service.ErrEmptyCart.Msg, r.Body["message"])

	r = call(t, e, http.MethodPost, "/api/cart/add", `{"productId":"p1","name":"Shaker","price":1000}`, member)
	require.Equal(t, true, r.Body["success"], r.Body["message"])
	r = call(t, e, http.MethodPost, "/api/cart/add", `{"productId":"p1","name":"Shaker","price":1000}`, member)
	require.Equal(t, true, r.Body["success"])

	r = call(t, e, http.MethodPost, "/api/cart/checkout", `{"paymentMethod":"mercadopago"}`, member)
	require.Equal(t, true, r.Body["success"], r.Body["message"])
	order := r.Body["order"].(map[string]any)
	assert.EqualValues(t, 2100, order["total"])

	r = call(t, e, http.MethodGet, "/api/cart", "", member)
	cart := r.Body["cart"].(map[string]any)
	assert.Empty(t, cart["items"])

	r = call(t, e, http.MethodGet, "/api/orders/history", "", member)
	assert.Len(t, r.Body["orders"], 1)
}

func TestNotificationsRequireSession(t *testing.T) {
	e := newApp(t)
	r := call(t, e, http.MethodGet, "/api/user/notifications", "")
	assert.Equal(t, http.StatusUnauthorized, r.Code)

	member := registerMember(t, e, "m@fitzone.com")
	r = call(t, e, http.MethodGet, "/api/user/notifications", "", member)
	require.Equal(t, true, r.Body["success"])
	assert.EqualValues(t, 0, r.Body["unreadCount"])

	r = call(t, e, http.MethodPut, "/api/user/notifications/77/read", "", member)
	assert.Equal(t, false, r.Body["success"])
	assert.Equal(t, service.ErrNotificationMissing.Msg, r.Body["message"])
}
