package checkout

type Status string

const (
	StatusIdle                  Status = "IDLE"
	StatusValidating            Status = "VALIDATING"
	StatusAwaitingPaymentIntent Status = "AWAITING_PAYMENT_INTENT"
	StatusPresentingPaymentUI   Status = "PRESENTING_PAYMENT_UI"
	StatusCompleted             Status = "COMPLETED"
	StatusCanceled              Status = "CANCELED"
	StatusFailed                Status = "FAILED"
)

var transitions = map[Status][]Status{
	StatusIdle:                  {StatusValidating},
	StatusValidating:            {StatusIdle, StatusAwaitingPaymentIntent, StatusFailed},
	StatusAwaitingPaymentIntent: {StatusPresentingPaymentUI, StatusFailed},
	StatusPresentingPaymentUI:   {StatusCompleted, StatusCanceled, StatusFailed},
}

func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCanceled || s == StatusFailed
}

// IsActive reports whether a session in this status holds the cart.
func (s Status) IsActive() bool {
	return s == StatusValidating || s == StatusAwaitingPaymentIntent || s == StatusPresentingPaymentUI
}

// String representation (for logging)
func (s Status) String() string {
	return string(s)
}

func CanTransitionTo(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
