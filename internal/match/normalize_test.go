package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeIdent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"OrderID", "orderid"},
		{"order_id", "orderid"},
		{"order-id", "orderid"},
		{"orderId", "orderid"},
		{"ORDER ID", "orderid"},
		{"Price_Cents", "pricecents"},
		{"", ""},
		{"A", "a"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeIdent(tt.input))
		})
	}
}

func TestTokens(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  []string
	}{
		{"OrderID", []string{"order", "id"}},
		{"customerName", []string{"customer", "name"}},
		{"XMLParser", []string{"xml", "parser"}},
		{"getHTTP_Result", []string{"get", "http", "result"}},
		{"total-cents", []string{"total", "cents"}},
		{"__x__", []string{"x"}},
		{"ID", []string{"id"}},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokens(tt.input))
		})
	}
}

func TestNormalizeForScore(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "order", normalizeForScore("OrderID"))
	assert.Equal(t, "customer", normalizeForScore("customer_ids"))
	assert.Equal(t, "created", normalizeForScore("CreatedAt"))
	assert.Equal(t, "id", normalizeForScore("ID"))
	assert.Equal(t, "format", normalizeForScore("Format"))
}
