// internal/adapters/in/http/handlers/checkout_handler.go
package handlers

import (
	"net/http"
	"strings"
	"sync"

	"milkmaster/internal/application/usecase"
	checkoutdom "milkmaster/internal/domain/checkout"
)

// CheckoutHandler serves /checkout/sessions endpoints. Sessions are
// ephemeral server-side state keyed by id: created on start, dropped
// on successful submission or explicit delete. They never survive a
// process restart, matching a wizard that does not survive a reload.
type CheckoutHandler struct {
	uc *usecase.CheckoutUsecase

	mu       sync.RWMutex
	sessions map[string]*checkoutdom.Session
}

func NewCheckoutHandler(uc *usecase.CheckoutUsecase) http.Handler {
	return &CheckoutHandler{
		uc:       uc,
		sessions: map[string]*checkoutdom.Session{},
	}
}

func (h *CheckoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	path := strings.TrimSuffix(r.URL.Path, "/")

	if r.Method == http.MethodPost && path == "/checkout/sessions" {
		h.start(w, r)
		return
	}

	rest := strings.TrimPrefix(path, "/checkout/sessions/")
	if rest == path {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found"})
		return
	}
	id, action, _ := strings.Cut(rest, "/")

	sess := h.lookup(id)
	if sess == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "checkout session not found"})
		return
	}

	switch {
	case r.Method == http.MethodGet && action == "":
		writeJSON(w, http.StatusOK, sessionView(sess))
	case r.Method == http.MethodDelete && action == "":
		h.drop(id)
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	case r.Method == http.MethodPut && action == "delivery":
		h.putDelivery(w, r, sess)
	case r.Method == http.MethodPut && action == "card":
		h.putCard(w, r, sess)
	case r.Method == http.MethodPost && action == "next":
		h.next(w, r, sess)
	case r.Method == http.MethodPost && action == "back":
		h.back(w, sess)
	case r.Method == http.MethodPost && action == "payment-method":
		h.paymentMethod(w, r, sess)
	case r.Method == http.MethodPost && action == "verify-card":
		h.verifyCard(w, r, sess)
	case r.Method == http.MethodPost && action == "verify-otp":
		h.verifyOTP(w, r, sess)
	case r.Method == http.MethodPost && action == "submit":
		h.submit(w, r, id, sess)
	case r.Method == http.MethodPost && action == "retry-validation":
		h.retryValidation(w, r, sess)
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found"})
	}
}

// POST /checkout/sessions
func (h *CheckoutHandler) start(w http.ResponseWriter, r *http.Request) {
	sess, err := h.uc.Start(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}

	h.mu.Lock()
	h.sessions[sess.ID] = sess
	h.mu.Unlock()

	writeJSON(w, http.StatusCreated, sessionView(sess))
}

// PUT /checkout/sessions/{id}/delivery
func (h *CheckoutHandler) putDelivery(w http.ResponseWriter, r *http.Request, sess *checkoutdom.Session) {
	var form checkoutdom.DeliveryForm
	if !decodeBody(w, r, &form) {
		return
	}
	sess.Delivery = form
	writeJSON(w, http.StatusOK, sessionView(sess))
}

// PUT /checkout/sessions/{id}/card
func (h *CheckoutHandler) putCard(w http.ResponseWriter, r *http.Request, sess *checkoutdom.Session) {
	var form checkoutdom.CardForm
	if !decodeBody(w, r, &form) {
		return
	}
	sess.Card = form
	writeJSON(w, http.StatusOK, sessionView(sess))
}

// POST /checkout/sessions/{id}/next
func (h *CheckoutHandler) next(w http.ResponseWriter, r *http.Request, sess *checkoutdom.Session) {
	if err := h.uc.Next(r.Context(), sess); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionView(sess))
}

// POST /checkout/sessions/{id}/back
func (h *CheckoutHandler) back(w http.ResponseWriter, sess *checkoutdom.Session) {
	if err := h.uc.Back(sess); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionView(sess))
}

// POST /checkout/sessions/{id}/payment-method
func (h *CheckoutHandler) paymentMethod(w http.ResponseWriter, r *http.Request, sess *checkoutdom.Session) {
	var body struct {
		Method string `json:"method"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if err := h.uc.SelectPaymentMethod(sess, checkoutdom.PaymentMethod(body.Method)); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionView(sess))
}

// POST /checkout/sessions/{id}/verify-card
func (h *CheckoutHandler) verifyCard(w http.ResponseWriter, r *http.Request, sess *checkoutdom.Session) {
	msg, err := h.uc.VerifyCard(r.Context(), sess)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":      msg,
		"verification": verificationView(sess.Verification),
	})
}

// POST /checkout/sessions/{id}/verify-otp
func (h *CheckoutHandler) verifyOTP(w http.ResponseWriter, r *http.Request, sess *checkoutdom.Session) {
	var body struct {
		OTP string `json:"otp"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	msg, err := h.uc.VerifyOTP(r.Context(), sess, body.OTP)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":      msg,
		"verification": verificationView(sess.Verification),
	})
}

// POST /checkout/sessions/{id}/submit
func (h *CheckoutHandler) submit(w http.ResponseWriter, r *http.Request, id string, sess *checkoutdom.Session) {
	conf, err := h.uc.Submit(r.Context(), sess)
	if err != nil {
		writeSubmitErr(w, sess, err)
		return
	}

	h.drop(id)
	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"order":   conf,
	})
}

// POST /checkout/sessions/{id}/retry-validation
func (h *CheckoutHandler) retryValidation(w http.ResponseWriter, r *http.Request, sess *checkoutdom.Session) {
	if err := h.uc.RetryValidation(r.Context(), sess); err != nil {
		writeSubmitErr(w, sess, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"retryCount": sess.RetryCount,
	})
}

func (h *CheckoutHandler) lookup(id string) *checkoutdom.Session {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.sessions[id]
}

func (h *CheckoutHandler) drop(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sessions, id)
}

// sessionView is the wire shape of a session. Card CVV and the issued
// OTP stay server-side.
func sessionView(sess *checkoutdom.Session) map[string]any {
	return map[string]any{
		"id":            sess.ID,
		"step":          sess.Step.String(),
		"delivery":      sess.Delivery,
		"paymentMethod": string(sess.PaymentMethod),
		"cardComplete":  sess.Card.Complete(),
		"verification":  verificationView(sess.Verification),
		"fetchStatus":   sess.FetchStatus,
		"retryCount":    sess.RetryCount,
		"stockRefresh":  sess.StockRefreshSuggested,
	}
}

func verificationView(v checkoutdom.Verification) map[string]any {
	return map[string]any{
		"phase":    string(v.Phase()),
		"mailSent": v.MailSent(),
		"verified": v.Verified(),
		"reason":   v.FailureReason(),
	}
}

// writeSubmitErr sends the usual error shape plus the stock-refresh
// advisory so the storefront can offer a reload.
func writeSubmitErr(w http.ResponseWriter, sess *checkoutdom.Session, err error) {
	if sess.StockRefreshSuggested {
		w.Header().Set("X-Stock-Refresh-Suggested", "true")
	}
	writeErr(w, err)
}
