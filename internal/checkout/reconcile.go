package checkout

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/fjod/go_cart/storefront/internal/backup"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"go.uber.org/zap"
)

// Handoff is what a successful payment passes to reconciliation.
type Handoff struct {
	PaymentIntentID string `json:"payment_intent_id"`
	Email           string `json:"email"`
	Mobile          string `json:"mobile"`
}

func (h Handoff) complete() bool {
	return h.PaymentIntentID != "" && h.Email != "" && h.Mobile != ""
}

// Reconcile turns the cart backup into an order after a successful payment.
// It is also safe to call after a restart with a handoff the host kept.
//
// With a readable backup the backup is removed and the cart cleared whether
// or not the submission succeeds; a submission error is returned for logging
// only. ErrNoBackup means there was nothing to submit.
func (o *Orchestrator) Reconcile(ctx context.Context, h Handoff) error {
	log := o.log.With(zap.String("payment_intent_id", h.PaymentIntentID))

	if !h.complete() {
		log.Warn("reconciliation skipped: incomplete handoff")
		return domain.Validation("checkout.reconcile", "payment intent id, email and mobile are required")
	}

	data, err := o.deps.Backup.Get(ctx, backup.CartKey)
	if errors.Is(err, backup.ErrNotFound) || (err == nil && len(data) == 0) {
		log.Info("reconciliation skipped: no cart backup")
		return ErrNoBackup
	}
	if err != nil {
		err = domain.Persistence("checkout.reconcile", err)
		log.Error("failed to read cart backup", zap.Error(err))
		return err
	}

	var entries []domain.CartEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		err = domain.Persistence("checkout.reconcile", err)
		log.Error("cart backup is unreadable, dropping it", zap.Error(err))
		o.removeBackup(ctx, log)
		return err
	}
	if len(entries) == 0 {
		log.Info("reconciliation skipped: cart backup is empty")
		return ErrNoBackup
	}

	order := domain.Order{
		Items:           make([]domain.OrderLine, 0, len(entries)),
		Email:           h.Email,
		Mobile:          h.Mobile,
		PaymentIntentID: h.PaymentIntentID,
	}
	for _, e := range entries {
		order.Items = append(order.Items, domain.NewOrderLine(e))
	}

	submitErr := o.submit(ctx, order)
	if submitErr != nil {
		log.Error("failed to submit order", zap.Error(submitErr))
	} else {
		log.Info("order submitted",
			zap.Int("lines", len(order.Items)),
			zap.String("total", order.Total().StringFixed(2)))
	}

	o.removeBackup(ctx, log)
	o.deps.Cart.Clear()
	return submitErr
}

func (o *Orchestrator) submit(ctx context.Context, order domain.Order) error {
	reqCtx, cancel := context.WithTimeout(ctx, o.cfg.RequestTimeout)
	defer cancel()
	return o.deps.Orders.SubmitOrder(reqCtx, order)
}

func (o *Orchestrator) removeBackup(ctx context.Context, log *zap.Logger) {
	if err := o.deps.Backup.Remove(ctx, backup.CartKey); err != nil {
		log.Error("failed to remove cart backup", zap.Error(domain.Persistence("checkout.reconcile", err)))
	}
}
