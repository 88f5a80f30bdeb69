package api

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/fjod/go_cart/storefront/internal/paymentui"
	"github.com/fjod/go_cart/storefront/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type PaymentResolver interface {
	Resolve(sessionID uuid.UUID, res checkout.PaymentResult) error
}

// CheckoutHandler starts checkout sessions in the background and lets the
// mobile shell poll them and post the payment sheet outcome.
type CheckoutHandler struct {
	orch     *checkout.Orchestrator
	payments PaymentResolver
	timeout  time.Duration
	log      *zap.Logger

	// sessions outlive the request that started them; they stop with base
	base context.Context
	wg   sync.WaitGroup
}

func NewCheckoutHandler(base context.Context, orch *checkout.Orchestrator, payments PaymentResolver, timeout time.Duration, log *zap.Logger) *CheckoutHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &CheckoutHandler{
		orch:     orch,
		payments: payments,
		timeout:  timeout,
		log:      log,
		base:     base,
	}
}

type CheckoutRequestDTO struct {
	Email  string `json:"email"`
	Mobile string `json:"mobile"`
}

type PaymentResultRequestDTO struct {
	Outcome checkout.Outcome `json:"outcome"`
	Message string           `json:"message"`
}

type RecoverRequestDTO struct {
	PaymentIntentID string `json:"payment_intent_id"`
	Email           string `json:"email"`
	Mobile          string `json:"mobile"`
}

type SessionResponse struct {
	checkout.Session
	NoticeText  string `json:"notice_text,omitempty"`
	CanCheckout bool   `json:"can_checkout"`
}

type RecoverResponse struct {
	Submitted bool   `json:"submitted"`
	Error     string `json:"error,omitempty"`
}

// POST /api/v1/checkout
func (h *CheckoutHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	sess := h.orch.Begin(req.Email, req.Mobile)
	if err := h.orch.Precheck(sess.ID); err != nil {
		handleError(w, err)
		return
	}

	ctx := logger.WithRequestID(h.base, logger.RequestID(r.Context()))
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		final, err := h.orch.Checkout(ctx, sess.ID)
		if err != nil {
			logger.Error(ctx, h.log, "checkout session ended with an error", err,
				zap.String("session_id", sess.ID.String()),
				zap.String("status", final.Status.String()))
		}
	}()

	respondJSON(w, http.StatusAccepted, sessionResponse(sess))
}

// GET /api/v1/checkout/{id}
func (h *CheckoutHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	sess, err := h.orch.Session(id)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sessionResponse(sess))
}

// PATCH /api/v1/checkout/{id}
func (h *CheckoutHandler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	var req CheckoutRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	sess, err := h.orch.UpdateContact(id, req.Email, req.Mobile)
	if errors.Is(err, checkout.ErrIllegalTransition) {
		respondError(w, http.StatusConflict, "session_not_idle", "checkout session already started")
		return
	}
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sessionResponse(sess))
}

// POST /api/v1/checkout/{id}/payment-result
func (h *CheckoutHandler) PaymentResult(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	var req PaymentResultRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	err := h.payments.Resolve(id, checkout.PaymentResult{Outcome: req.Outcome, Message: req.Message})
	switch {
	case errors.Is(err, paymentui.ErrInvalidOutcome):
		respondError(w, http.StatusBadRequest, "invalid_outcome", "outcome must be succeeded, canceled or failed")
		return
	case errors.Is(err, paymentui.ErrNotPending), errors.Is(err, paymentui.ErrAlreadyResolved):
		respondError(w, http.StatusConflict, "not_presenting", err.Error())
		return
	case err != nil:
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

// POST /api/v1/checkout/recover
func (h *CheckoutHandler) Recover(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req RecoverRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	err := h.orch.Reconcile(ctx, checkout.Handoff{
		PaymentIntentID: req.PaymentIntentID,
		Email:           req.Email,
		Mobile:          req.Mobile,
	})
	switch {
	case err == nil:
		respondJSON(w, http.StatusOK, RecoverResponse{Submitted: true})
	case errors.Is(err, checkout.ErrNoBackup):
		respondJSON(w, http.StatusOK, RecoverResponse{Submitted: false})
	default:
		handleError(w, err)
	}
}

// Wait blocks until every background session has returned.
func (h *CheckoutHandler) Wait() {
	h.wg.Wait()
}

func sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_session_id", "session id must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

func sessionResponse(s checkout.Session) SessionResponse {
	return SessionResponse{
		Session:     s,
		NoticeText:  s.Notice.String(),
		CanCheckout: s.CanCheckout(),
	}
}
