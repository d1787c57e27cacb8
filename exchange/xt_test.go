package exchange

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestXTClient_GetTickers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v4/public/ticker/price", r.URL.Path)
		assert.Equal(t, "aipg_usdt", r.URL.Query().Get("symbol"))
		// Public endpoint, no signature expected.
		assert.Empty(t, r.Header.Get("validate-signature"))
		_, _ = w.Write([]byte(`{"rc":0,"mc":"SUCCESS","result":[{"s":"aipg_usdt","t":1700000000000,"p":"0.123"}]}`))
	}))
	defer srv.Close()

	c := NewXTClient(srv.URL, "key", "secret")
	tickers, err := c.GetTickers(context.Background(), "AIPG_USDT")
	require.NoError(t, err)
	require.Len(t, tickers, 1)
	assert.Equal(t, "aipg_usdt", tickers[0].Symbol)
	assert.Equal(t, "0.123", tickers[0].Price)
}

func TestXTClient_PlaceOrderSignsRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v4/order", r.URL.Path)
		assert.Equal(t, "key", r.Header.Get("validate-appkey"))
		assert.Equal(t, "HmacSHA256", r.Header.Get("validate-algorithms"))
		assert.NotEmpty(t, r.Header.Get("validate-timestamp"))
		assert.NotEmpty(t, r.Header.Get("validate-signature"))

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "aipg_usdt", req["symbol"])
		assert.Equal(t, "BUY", req["side"])
		assert.Equal(t, "LIMIT", req["type"])
		assert.Equal(t, "9.95", req["price"])
		assert.Equal(t, "2.01", req["quantity"])

		_, _ = w.Write([]byte(`{"rc":0,"mc":"SUCCESS","result":{"orderId":"42"}}`))
	}))
	defer srv.Close()

	c := NewXTClient(srv.URL, "key", "secret")
	order, err := c.PlaceOrder(context.Background(), "AIPG_USDT", Buy,
		decimal.NewFromFloat(9.95), decimal.NewFromFloat(2.01))
	require.NoError(t, err)
	assert.Equal(t, "42", order.ID)
	assert.Equal(t, Buy, order.Side)
}

func TestXTClient_ErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"rc":1,"mc":"AUTH_103","result":null}`))
	}))
	defer srv.Close()

	c := NewXTClient(srv.URL, "key", "secret")
	_, err := c.GetOpenOrders(context.Background(), "aipg_usdt")
	assert.ErrorContains(t, err, "AUTH_103")
}

func TestXTClient_GetOpenOrders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v4/open-order", r.URL.Path)
		_, _ = w.Write([]byte(`{"rc":0,"mc":"SUCCESS","result":[
			{"orderId":7,"symbol":"aipg_usdt","side":"BUY","price":"0.12","state":"NEW"},
			{"orderId":8,"symbol":"aipg_usdt","side":"SELL","price":"0.13","state":"PARTIALLY_FILLED"}
		]}`))
	}))
	defer srv.Close()

	c := NewXTClient(srv.URL, "key", "secret")
	orders, err := c.GetOpenOrders(context.Background(), "aipg_usdt")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "7", orders[0].ID)
	assert.Equal(t, Buy, orders[0].Side)
	assert.Equal(t, "8", orders[1].ID)
	assert.Equal(t, Sell, orders[1].Side)
}
