package domain

import "strings"

// PaymentIntentRequest is sent to the backend to open a payment sheet for the
// current cart.
type PaymentIntentRequest struct {
	Items  []CartEntry `json:"items"`
	Email  string      `json:"email"`
	Mobile string      `json:"mobile"`
}

// PaymentSheetResponse is what the backend answers. Deployments disagree on
// the field carrying the client secret, so all known aliases are accepted.
type PaymentSheetResponse struct {
	PaymentIntent             string `json:"paymentIntent,omitempty"`
	ClientSecret              string `json:"clientSecret,omitempty"`
	PaymentIntentClientSecret string `json:"paymentIntentClientSecret,omitempty"`
	EphemeralKey              string `json:"ephemeralKey,omitempty"`
	Customer                  string `json:"customer,omitempty"`
}

// Secret returns the first non-empty client secret alias.
func (r PaymentSheetResponse) Secret() string {
	for _, s := range []string{r.PaymentIntent, r.ClientSecret, r.PaymentIntentClientSecret} {
		if s != "" {
			return s
		}
	}
	return ""
}

// PaymentIntentID derives the intent id from a client secret of the form
// "<id>_secret_<token>".
func PaymentIntentID(clientSecret string) string {
	id, _, _ := strings.Cut(clientSecret, "_secret")
	return id
}
