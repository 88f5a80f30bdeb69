package checkout

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/fjod/go_cart/storefront/internal/backup"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Config struct {
	MerchantDisplayName string
	RequestTimeout      time.Duration
	SessionTTL          time.Duration
}

type Deps struct {
	Cart     CartStore
	Backup   BackupStore
	Payments PaymentIntentCreator
	Sheet    PaymentSheet
	Orders   OrderSubmitter
}

// Orchestrator drives checkout sessions from contact validation to order
// reconciliation. Each session runs on the caller's goroutine; the registry
// lets other goroutines poll it.
type Orchestrator struct {
	deps Deps
	cfg  Config
	log  *zap.Logger

	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
}

func NewOrchestrator(deps Deps, cfg Config, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 5 * time.Second
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 15 * time.Minute
	}
	return &Orchestrator{
		deps:     deps,
		cfg:      cfg,
		log:      log,
		sessions: make(map[uuid.UUID]*Session),
	}
}

// Begin registers a new idle session.
func (o *Orchestrator) Begin(email, phone string) Session {
	s := NewSession(email, phone)

	o.mu.Lock()
	defer o.mu.Unlock()
	o.evictLocked(time.Now())
	o.sessions[s.ID] = s
	return *s
}

func (o *Orchestrator) Session(id uuid.UUID) (Session, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.evictLocked(time.Now())
	s, ok := o.sessions[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	return *s, nil
}

// UpdateContact edits the contact fields of an idle session.
func (o *Orchestrator) UpdateContact(id uuid.UUID, email, phone string) (Session, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	s, ok := o.sessions[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	if s.Status != StatusIdle {
		return *s, ErrIllegalTransition
	}
	s.SetEmail(email)
	s.SetPhone(phone)
	s.UpdatedAt = time.Now()
	return *s, nil
}

// Run begins a session and checks it out.
func (o *Orchestrator) Run(ctx context.Context, email, phone string) (Session, error) {
	s := o.Begin(email, phone)
	return o.Checkout(ctx, s.ID)
}

// Precheck reports whether Checkout would refuse the session right away. It
// changes nothing; Checkout repeats every check.
func (o *Orchestrator) Precheck(id uuid.UUID) error {
	o.mu.Lock()
	s, ok := o.sessions[id]
	if !ok {
		o.mu.Unlock()
		return ErrSessionNotFound
	}
	status, canCheckout := s.Status, s.CanCheckout()
	active := false
	for otherID, other := range o.sessions {
		if otherID != id && other.Status.IsActive() {
			active = true
		}
	}
	o.mu.Unlock()

	switch {
	case status != StatusIdle:
		return ErrIllegalTransition
	case active:
		return ErrCheckoutActive
	case !canCheckout:
		return ErrInvalidContact
	case o.deps.Cart.Snapshot().IsEmpty():
		return ErrEmptyCart
	}
	return nil
}

// Checkout drives an idle session to a terminal state. It blocks while the
// payment UI is presented. A refused checkout (invalid contact, empty cart,
// another session active) returns a validation error and leaves the session
// idle; otherwise the returned error is the cause of a failed session.
func (o *Orchestrator) Checkout(ctx context.Context, id uuid.UUID) (Session, error) {
	if err := o.startValidating(id); err != nil {
		return o.snapshot(id), err
	}

	sess := o.snapshot(id)
	if !sess.CanCheckout() {
		o.refuse(id, ErrInvalidContact, Notice{Title: "Validation", Message: invalidContactMessage})
		return o.snapshot(id), ErrInvalidContact
	}

	release := o.deps.Cart.Freeze()
	defer release()

	cart := o.deps.Cart.Snapshot()
	if cart.IsEmpty() {
		o.refuse(id, ErrEmptyCart, Notice{Title: "Validation", Message: "Your cart is empty."})
		return o.snapshot(id), ErrEmptyCart
	}

	o.writeBackup(ctx, id, cart)

	if err := o.advance(id, StatusAwaitingPaymentIntent, nil); err != nil {
		return o.snapshot(id), err
	}

	secret, err := o.createPaymentIntent(ctx, sess, cart)
	if err != nil {
		return o.snapshot(id), err
	}

	if err := o.deps.Sheet.Init(ctx, SheetConfig{
		SessionID:           id,
		ClientSecret:        secret,
		MerchantDisplayName: o.cfg.MerchantDisplayName,
	}); err != nil {
		cause := domain.Payment("checkout.init_sheet", err.Error())
		o.fail(id, cause, Notice{Title: "Payment Error", Message: err.Error()})
		return o.snapshot(id), cause
	}

	if err := o.advance(id, StatusPresentingPaymentUI, func(s *Session) {
		s.ClientSecret = secret
	}); err != nil {
		return o.snapshot(id), err
	}

	result := o.deps.Sheet.Present(ctx, id)

	// cleanup and reconciliation must finish even if the caller gave up
	cleanupCtx := context.WithoutCancel(ctx)

	if result.Outcome != OutcomeSucceeded && (result.Outcome == OutcomeInterrupted || ctx.Err() != nil) {
		o.fail(id, ErrInterrupted, Notice{Title: "Payment Interrupted", Message: interruptedMessage})
		return o.snapshot(id), ErrInterrupted
	}
	if result.Outcome != OutcomeSucceeded {
		o.cancel(cleanupCtx, id, result)
		return o.snapshot(id), nil
	}

	intentID := domain.PaymentIntentID(secret)
	if err := o.advance(id, StatusCompleted, func(s *Session) {
		s.PaymentIntentID = intentID
		s.Notice = Notice{Title: "Success", Message: "Payment completed!"}
	}); err != nil {
		return o.snapshot(id), err
	}

	if err := o.Reconcile(cleanupCtx, Handoff{
		PaymentIntentID: intentID,
		Email:           sess.Email,
		Mobile:          sess.Phone,
	}); err != nil {
		o.log.Warn("order reconciliation did not submit an order",
			zap.String("session_id", id.String()),
			zap.String("payment_intent_id", intentID),
			zap.Error(err))
	}
	return o.snapshot(id), nil
}

func (o *Orchestrator) createPaymentIntent(ctx context.Context, sess Session, cart domain.Cart) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, o.cfg.RequestTimeout)
	defer cancel()

	resp, err := o.deps.Payments.CreatePaymentIntent(reqCtx, domain.PaymentIntentRequest{
		Items:  cart.Entries,
		Email:  sess.Email,
		Mobile: sess.Phone,
	})
	if err != nil {
		if domain.KindOf(err) == "" {
			err = domain.Network("checkout.payment_intent", err)
		}
		o.fail(sess.ID, err, Notice{Title: "Checkout Error", Message: "Failed to initialize payment."})
		return "", err
	}

	secret := resp.Secret()
	if secret == "" {
		o.fail(sess.ID, ErrMissingSecret, Notice{Title: "Error", Message: "Stripe did not return a payment secret."})
		return "", ErrMissingSecret
	}
	return secret, nil
}

func (o *Orchestrator) writeBackup(ctx context.Context, id uuid.UUID, cart domain.Cart) {
	data, err := json.Marshal(cart.Entries)
	if err == nil {
		err = o.deps.Backup.Set(ctx, backup.CartKey, data)
	}
	if err != nil {
		o.log.Error("failed to back up cart",
			zap.String("session_id", id.String()),
			zap.Error(domain.Persistence("checkout.backup", err)))
	}
}

// cancel ends a session whose payment did not go through. The backup and the
// cart are dropped; no order is submitted.
func (o *Orchestrator) cancel(ctx context.Context, id uuid.UUID, result PaymentResult) {
	msg := result.Message
	if msg == "" {
		msg = "The payment was canceled."
	}
	if err := o.advance(id, StatusCanceled, func(s *Session) {
		s.Notice = Notice{Title: "Payment Failed", Message: msg}
	}); err != nil {
		return
	}

	if err := o.deps.Backup.Remove(ctx, backup.CartKey); err != nil {
		o.log.Error("failed to remove cart backup",
			zap.String("session_id", id.String()),
			zap.Error(domain.Persistence("checkout.cancel", err)))
	}
	o.deps.Cart.Clear()
}

// fail moves the session to FAILED. The freeze is released by the caller and
// the cart and backup are left as they are.
func (o *Orchestrator) fail(id uuid.UUID, cause error, notice Notice) {
	o.log.Warn("checkout failed",
		zap.String("session_id", id.String()),
		zap.String("kind", string(domain.KindOf(cause))),
		zap.Error(cause))
	_ = o.advance(id, StatusFailed, func(s *Session) {
		s.Notice = notice
	})
}

// refuse returns a validating session to IDLE with a notice.
func (o *Orchestrator) refuse(id uuid.UUID, cause error, notice Notice) {
	o.log.Info("checkout refused",
		zap.String("session_id", id.String()),
		zap.Error(cause))
	_ = o.advance(id, StatusIdle, func(s *Session) {
		s.Notice = notice
	})
}

func (o *Orchestrator) startValidating(id uuid.UUID) error {
	o.mu.Lock()
	s, ok := o.sessions[id]
	if !ok {
		o.mu.Unlock()
		return ErrSessionNotFound
	}
	for otherID, other := range o.sessions {
		if otherID != id && other.Status.IsActive() {
			o.mu.Unlock()
			return ErrCheckoutActive
		}
	}
	from := s.Status
	err := s.transition(StatusValidating)
	if err == nil {
		s.Notice = Notice{}
	}
	o.mu.Unlock()

	o.logTransition(id, from, StatusValidating, err)
	return err
}

func (o *Orchestrator) advance(id uuid.UUID, to Status, mutate func(*Session)) error {
	o.mu.Lock()
	s, ok := o.sessions[id]
	if !ok {
		o.mu.Unlock()
		return ErrSessionNotFound
	}
	from := s.Status
	err := s.transition(to)
	if err == nil && mutate != nil {
		mutate(s)
	}
	o.mu.Unlock()

	o.logTransition(id, from, to, err)
	return err
}

func (o *Orchestrator) logTransition(id uuid.UUID, from, to Status, err error) {
	fields := []zap.Field{
		zap.String("session_id", id.String()),
		zap.String("from", from.String()),
		zap.String("to", to.String()),
	}
	if err != nil {
		o.log.Error("illegal checkout transition", fields...)
		return
	}
	o.log.Info("checkout transition", fields...)
}

func (o *Orchestrator) snapshot(id uuid.UUID) Session {
	o.mu.Lock()
	defer o.mu.Unlock()
	if s, ok := o.sessions[id]; ok {
		return *s
	}
	return Session{ID: id}
}

func (o *Orchestrator) evictLocked(now time.Time) {
	for id, s := range o.sessions {
		if s.Status.IsActive() {
			continue
		}
		if now.Sub(s.UpdatedAt) > o.cfg.SessionTTL {
			delete(o.sessions, id)
		}
	}
}
