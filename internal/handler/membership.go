package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fitzone/internal/middleware"
	"github.com/iliyamo/fitzone/internal/service"
)

// MembershipHandler serves membership purchase, shared-code activation and
// the member's membership card.
type MembershipHandler struct {
	Memberships *service.MembershipService
}

func NewMembershipHandler(m *service.MembershipService) *MembershipHandler {
	return &MembershipHandler{Memberships: m}
}

// RegisterWithMembership creates the account together with the paid
// membership. The two-person plan also returns the second holder's code.
func (h *MembershipHandler) RegisterWithMembership(c echo.Context) error {
	var req service.PurchaseInput
	if err := c.Bind(&req); err != nil {
		return failMsg(c, invalidBody)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	res, err := h.Memberships.Purchase(ctx, req)
	if err != nil {
		return fail(c, err, "could not complete the registration")
	}
	out := echo.Map{
		"message":    "registration completed",
		"userId":     res.User.ID,
		"membership": res.Membership,
	}
	if res.MembershipCode != "" {
		out["membershipCode"] = res.MembershipCode
		out["message"] = "registration completed, share the code with the second person"
	}
	return ok(c, out)
}

type codeReq struct {
	Code     string `json:"code"`
	Password string `json:"password"`
}

func (h *MembershipHandler) VerifyCode(c echo.Context) error {
	var req codeReq
	if err := c.Bind(&req); err != nil {
		return failMsg(c, invalidBody)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	info, err := h.Memberships.VerifyCode(ctx, req.Code)
	if err != nil {
		return fail(c, err, "could not verify the code")
	}
	return ok(c, echo.Map{"ownerName": info.OwnerName, "plan": info.Plan, "pendingData": info.PendingData})
}

// ActivateWithCode creates the second holder's account from the pending
// data and consumes the code.
func (h *MembershipHandler) ActivateWithCode(c echo.Context) error {
	var req codeReq
	if err := c.Bind(&req); err != nil {
		return failMsg(c, invalidBody)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	u, m, err := h.Memberships.ActivateWithCode(ctx, req.Code, req.Password)
	if err != nil {
		return fail(c, err, "could not activate the membership")
	}
	return ok(c, echo.Map{"message": "membership activated", "userId": u.ID, "membership": m})
}

type statusReq struct {
	UserID uint64 `json:"userId"`
}

// CheckStatus is called by the client right after login.
func (h *MembershipHandler) CheckStatus(c echo.Context) error {
	var req statusReq
	if err := c.Bind(&req); err != nil {
		return failMsg(c, invalidBody)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	st, err := h.Memberships.CheckStatus(ctx, req.UserID)
	if err != nil {
		return fail(c, err, "could not check the membership")
	}
	out := echo.Map{"success": true, "membershipStatus": st.Status}
	switch st.Status {
	case service.StatusNone:
		out["success"] = false
		out["message"] = st.Message
	case service.StatusExpired:
		out["success"] = false
		out["message"] = st.Message
		out["daysExpired"] = st.DaysExpired
	case service.StatusExpiringSoon:
		out["warning"] = true
		out["message"] = st.Message
		out["daysRemaining"] = st.DaysRemaining
	default:
		out["daysRemaining"] = st.DaysRemaining
	}
	return c.JSON(http.StatusOK, out)
}

// Current returns the caller's active membership card.
func (h *MembershipHandler) Current(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()

	v, err := h.Memberships.Current(ctx, middleware.UserID(c))
	if err != nil {
		return fail(c, err, "could not load the membership")
	}
	return ok(c, echo.Map{"membership": v})
}
