package pricer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/demidenkov/sibyl/internal/domain"
)

func TestRatesPricerGetPrice(t *testing.T) {
	pair := domain.Pair{From: "BTC", To: "EUR"}

	tests := []struct {
		name        string
		status      int
		body        string
		expectErr   bool
		expectPrice string
	}{
		{
			name:        "valid payload",
			status:      http.StatusOK,
			body:        `{"btc_eur":{"buy":"64100.10","sell":"64050.55"},"eth_eur":{"buy":"3100","sell":"3090"}}`,
			expectPrice: "64050.55",
		},
		{
			name:      "pair missing from payload",
			status:    http.StatusOK,
			body:      `{"eth_eur":{"buy":"3100","sell":"3090"}}`,
			expectErr: true,
		},
		{
			name:      "malformed JSON",
			status:    http.StatusOK,
			body:      `{"btc_eur":`,
			expectErr: true,
		},
		{
			name:      "non-numeric rate",
			status:    http.StatusOK,
			body:      `{"btc_eur":{"sell":"n/a"}}`,
			expectErr: true,
		},
		{
			name:      "zero rate rejected",
			status:    http.StatusOK,
			body:      `{"btc_eur":{"sell":"0"}}`,
			expectErr: true,
		},
		{
			name:      "upstream error status",
			status:    http.StatusBadGateway,
			body:      `oops`,
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			p := NewRatesPricer(srv.URL, "")
			point, err := p.GetPrice(context.Background(), pair)

			if tt.expectErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrQuoteUnavailable)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expectPrice, point.Price.String())
			assert.False(t, point.Time.IsZero())
		})
	}
}

func TestRatesPricerSendsBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"btc_eur":{"sell":"50000"}}`))
	}))
	defer srv.Close()

	p := NewRatesPricer(srv.URL, "secret")
	_, err := p.GetPrice(context.Background(), domain.Pair{From: "BTC", To: "EUR"})

	require.NoError(t, err)
	assert.Equal(t, "Bearer secret", gotAuth)
}

func TestRatesPricerUnreachableHost(t *testing.T) {
	p := NewRatesPricer("http://127.0.0.1:1", "")
	_, err := p.GetPrice(context.Background(), domain.Pair{From: "BTC", To: "EUR"})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrQuoteUnavailable)
}
