package checkout

import (
	"time"

	"github.com/google/uuid"
)

// Notice is the alert the host shows the user.
type Notice struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

func (n Notice) String() string {
	if n.Title == "" {
		return n.Message
	}
	return n.Title + ": " + n.Message
}

func (n Notice) IsZero() bool {
	return n.Title == "" && n.Message == ""
}

// Session is one checkout attempt. Values returned by the orchestrator are
// copies; mutate a session through the orchestrator only.
type Session struct {
	ID              uuid.UUID `json:"id"`
	Email           string    `json:"email"`
	Phone           string    `json:"mobile"`
	EmailValid      bool      `json:"email_valid"`
	PhoneValid      bool      `json:"mobile_valid"`
	Status          Status    `json:"status"`
	ClientSecret    string    `json:"client_secret,omitempty"`
	PaymentIntentID string    `json:"payment_intent_id,omitempty"`
	Notice          Notice    `json:"notice"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func NewSession(email, phone string) *Session {
	now := time.Now()
	s := &Session{
		ID:        uuid.New(),
		Status:    StatusIdle,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.SetEmail(email)
	s.SetPhone(phone)
	return s
}

func (s *Session) SetEmail(email string) {
	s.Email = email
	s.EmailValid = ValidateEmail(email)
}

func (s *Session) SetPhone(phone string) {
	s.Phone = phone
	s.PhoneValid = ValidatePhone(phone)
}

// CanCheckout drives enabling the checkout action.
func (s *Session) CanCheckout() bool {
	return s.EmailValid && s.PhoneValid
}

func (s *Session) transition(to Status) error {
	if !CanTransitionTo(s.Status, to) {
		return ErrIllegalTransition
	}
	s.Status = to
	s.UpdatedAt = time.Now()
	return nil
}
