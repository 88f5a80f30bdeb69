package checkout

import (
	"errors"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

const (
	invalidContactMessage = "Please enter a valid email and an 11-digit phone number."
	interruptedMessage    = "The payment was not confirmed before the app stopped. Your cart was kept and will be checked on the next start."
)

var (
	ErrIllegalTransition = errors.New("illegal transition of checkout status")
	ErrSessionNotFound   = domain.NotFound("checkout", "checkout session not found")
	ErrEmptyCart         = domain.Validation("checkout", "cart is empty, nothing to checkout")
	ErrInvalidContact    = domain.Validation("checkout", invalidContactMessage)
	ErrCheckoutActive    = domain.Validation("checkout", "another checkout is already in progress")
	ErrMissingSecret     = domain.Payment("checkout", "provider did not return a payment secret")
	ErrInterrupted       = domain.Payment("checkout", "payment presentation was interrupted")
	// ErrNoBackup means reconciliation found nothing to submit.
	ErrNoBackup = errors.New("no cart backup to reconcile")
)
