package paymentui

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrNotPending      = errors.New("no payment sheet pending for this session")
	ErrAlreadyResolved = errors.New("payment sheet already resolved")
	ErrInvalidOutcome  = errors.New("invalid payment outcome")
)

type sheet struct {
	cfg      checkout.SheetConfig
	result   chan checkout.PaymentResult
	resolved bool
}

// Bridge presents the payment sheet on a remote mobile shell. Init publishes
// the client secret, the shell shows the provider UI and posts the outcome
// back through Resolve, which unblocks Present.
type Bridge struct {
	mu     sync.Mutex
	sheets map[uuid.UUID]*sheet
	log    *zap.Logger
}

func NewBridge(log *zap.Logger) *Bridge {
	if log == nil {
		log = zap.NewNop()
	}
	return &Bridge{
		sheets: make(map[uuid.UUID]*sheet),
		log:    log,
	}
}

func (b *Bridge) Init(_ context.Context, cfg checkout.SheetConfig) error {
	if cfg.ClientSecret == "" {
		return errors.New("client secret is required")
	}
	if cfg.SessionID == uuid.Nil {
		return errors.New("session id is required")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.sheets[cfg.SessionID] = &sheet{
		cfg:    cfg,
		result: make(chan checkout.PaymentResult, 1),
	}
	return nil
}

// Present waits for the shell's outcome. The sheet is discarded once Present
// returns.
func (b *Bridge) Present(ctx context.Context, sessionID uuid.UUID) checkout.PaymentResult {
	b.mu.Lock()
	s, ok := b.sheets[sessionID]
	b.mu.Unlock()
	if !ok {
		return checkout.PaymentResult{Outcome: checkout.OutcomeFailed, Message: ErrNotPending.Error()}
	}
	defer b.discard(sessionID)

	select {
	case res := <-s.result:
		return res
	case <-ctx.Done():
		b.log.Warn("payment sheet interrupted",
			zap.String("session_id", sessionID.String()),
			zap.Error(ctx.Err()))
		return checkout.PaymentResult{Outcome: checkout.OutcomeInterrupted, Message: ctx.Err().Error()}
	}
}

// Resolve delivers the shell's outcome to the waiting Present call.
func (b *Bridge) Resolve(sessionID uuid.UUID, res checkout.PaymentResult) error {
	switch res.Outcome {
	case checkout.OutcomeSucceeded, checkout.OutcomeCanceled, checkout.OutcomeFailed:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidOutcome, res.Outcome)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.sheets[sessionID]
	if !ok {
		return ErrNotPending
	}
	if s.resolved {
		return ErrAlreadyResolved
	}
	s.resolved = true
	s.result <- res

	b.log.Info("payment sheet resolved",
		zap.String("session_id", sessionID.String()),
		zap.String("outcome", string(res.Outcome)))
	return nil
}

// Pending returns the sheet configuration the shell needs to show the sheet.
func (b *Bridge) Pending(sessionID uuid.UUID) (checkout.SheetConfig, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.sheets[sessionID]
	if !ok || s.resolved {
		return checkout.SheetConfig{}, false
	}
	return s.cfg, true
}

func (b *Bridge) discard(sessionID uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.sheets, sessionID)
}
