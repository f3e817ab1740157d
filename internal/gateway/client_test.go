package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetrieveSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/checkout/sessions/sess_1", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode(CheckoutSession{
			ID:            "sess_1",
			Status:        SessionStatusComplete,
			PaymentStatus: PaymentStatePaid,
			AmountMinor:   49900,
			Metadata:      SessionMetadata{Email: "jane@example.com", Plan: "premium"},
		})
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "test-key")
	session, err := client.RetrieveSession(context.Background(), "sess_1")
	require.NoError(t, err)

	assert.Equal(t, "sess_1", session.ID)
	assert.Equal(t, SessionStatusComplete, session.Status)
	assert.Equal(t, PaymentStatePaid, session.PaymentStatus)
	assert.Equal(t, int64(49900), session.AmountMinor)
	assert.Equal(t, "jane@example.com", session.Metadata.Email)
}

func TestRetrieveSession_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "test-key")
	_, err := client.RetrieveSession(context.Background(), "sess_missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRetrieveSession_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "test-key")
	_, err := client.RetrieveSession(context.Background(), "sess_1")
	assert.ErrorIs(t, err, ErrGateway)
}

func TestCreateSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)

		var params CreateSessionParams
		require.NoError(t, json.NewDecoder(r.Body).Decode(&params))
		assert.Equal(t, int64(49900), params.AmountMinor)
		assert.Equal(t, "jane@example.com", params.Metadata.Email)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(CheckoutSession{
			ID:          "sess_new",
			Status:      SessionStatusOpen,
			RedirectURL: "https://gateway.test/pay/sess_new",
			Metadata:    params.Metadata,
		})
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "test-key")
	session, err := client.CreateSession(context.Background(), &CreateSessionParams{
		AmountMinor: 49900,
		SuccessURL:  "https://app.test/success",
		CancelURL:   "https://app.test/cancel",
		Metadata:    SessionMetadata{Email: "jane@example.com"},
	})
	require.NoError(t, err)
	assert.Equal(t, "sess_new", session.ID)
	assert.Equal(t, "https://gateway.test/pay/sess_new", session.RedirectURL)
}
