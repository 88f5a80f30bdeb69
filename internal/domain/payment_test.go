package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentSheetResponse_Secret(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"paymentIntent wins", `{"paymentIntent":"pi_1_secret_a","clientSecret":"pi_2_secret_b"}`, "pi_1_secret_a"},
		{"clientSecret", `{"clientSecret":"pi_2_secret_b"}`, "pi_2_secret_b"},
		{"paymentIntentClientSecret", `{"paymentIntentClientSecret":"pi_3_secret_c"}`, "pi_3_secret_c"},
		{"empty alias skipped", `{"paymentIntent":"","clientSecret":"pi_4_secret_d"}`, "pi_4_secret_d"},
		{"none", `{"customer":"cus_1"}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp PaymentSheetResponse
			require.NoError(t, json.Unmarshal([]byte(tt.body), &resp))
			assert.Equal(t, tt.want, resp.Secret())
		})
	}
}

func TestPaymentIntentID(t *testing.T) {
	assert.Equal(t, "pi_123", PaymentIntentID("pi_123_secret_abc"))
	assert.Equal(t, "pi_123", PaymentIntentID("pi_123_secret"))
	assert.Equal(t, "pi_456", PaymentIntentID("pi_456"))
	assert.Equal(t, "", PaymentIntentID(""))
}
