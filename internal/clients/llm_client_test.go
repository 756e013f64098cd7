package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAICompatibleClientChat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req["model"])

		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"action\":\"Hold\",\"reasoning\":\"flat\"}"}}]}`))
	}))
	defer srv.Close()

	client := NewOpenAICompatibleClient(srv.URL, "test-key", "test-model")
	reply, err := client.Chat(context.Background(), "system", "user")

	require.NoError(t, err)
	assert.JSONEq(t, `{"action":"Hold","reasoning":"flat"}`, reply)
}

func TestOpenAICompatibleClientFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "api-level error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"error":{"message":"quota exceeded","type":"rate_limit","code":"429"}}`))
			},
		},
		{
			name: "no choices",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"choices":[]}`))
			},
		},
		{
			name: "garbage body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`not json`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			client := NewOpenAICompatibleClient(srv.URL, "test-key", "test-model")
			_, err := client.Chat(context.Background(), "system", "user")

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInferenceUnavailable)
		})
	}
}

func TestOpenAICompatibleClientRequiresKey(t *testing.T) {
	client := NewOpenAICompatibleClient("http://localhost", "", "model")
	_, err := client.Chat(context.Background(), "system", "user")
	assert.Error(t, err)
}
