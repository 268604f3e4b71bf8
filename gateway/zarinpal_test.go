package gateway

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(srv *httptest.Server) *Client {
	return NewClient("test-merchant", srv.URL+"/request", srv.URL+"/verify", srv.URL+"/startpay/")
}

func TestCreatePayment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/request", r.URL.Path)

		var req PaymentRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-merchant", req.MerchantID)
		assert.Equal(t, uint(100000), req.Amount)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"code": 100, "authority": "A000001", "message": "ok"},
		})
	}))
	defer srv.Close()

	authority, payURL, err := newTestClient(srv).CreatePayment(100000, "wallet deposit", "http://app/callback")
	require.NoError(t, err)
	assert.Equal(t, "A000001", authority)
	assert.Equal(t, srv.URL+"/startpay/A000001", payURL)
}

func TestCreatePaymentRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"code": -9, "message": "invalid amount"},
		})
	}))
	defer srv.Close()

	_, _, err := newTestClient(srv).CreatePayment(100, "x", "http://app/callback")
	assert.Error(t, err)
}

func TestCreatePaymentZeroAmount(t *testing.T) {
	_, _, err := NewClient("m", "http://unused", "http://unused", "http://unused/").CreatePayment(0, "x", "cb")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestVerifyPayment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/verify", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"code": 100, "ref_id": 123456789, "card_pan": "502229******1234"},
		})
	}))
	defer srv.Close()

	result, err := newTestClient(srv).VerifyPayment("A000001", 100000)
	require.NoError(t, err)
	assert.Equal(t, "123456789", result.RefID)
	assert.Equal(t, "502229******1234", result.CardPan)
	assert.False(t, result.AlreadyVerified)
}

func TestVerifyPaymentAlreadyVerified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"code": 101, "ref_id": 123456789},
		})
	}))
	defer srv.Close()

	result, err := newTestClient(srv).VerifyPayment("A000001", 100000)
	require.NoError(t, err)
	assert.True(t, result.AlreadyVerified)
}

func TestVerifyPaymentRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"code": -51, "message": "session mismatch"},
		})
	}))
	defer srv.Close()

	_, err := newTestClient(srv).VerifyPayment("A000001", 100000)
	assert.ErrorIs(t, err, ErrPaymentNotVerified)
}

func TestVerifyPaymentUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	_, err := newTestClient(srv).VerifyPayment("A000001", 100000)
	assert.ErrorIs(t, err, ErrGatewayUnreachable)
}