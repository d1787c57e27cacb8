package exchange

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	DefaultXTHost = "https://sapi.xt.com"

	xtRecvWindow = "5000"
	xtAlgorithm  = "HmacSHA256"
)

// XTClient talks to the XT spot v4 REST API. Requests to private endpoints
// are signed with HMAC-SHA256 over the validate-* headers plus
// method/path/query/body, per the v4 auth scheme.
type XTClient struct {
	host      string
	accessKey string
	secretKey string
	http      *http.Client
}

func NewXTClient(host, accessKey, secretKey string) *XTClient {
	if host == "" {
		host = DefaultXTHost
	}
	return &XTClient{
		host:      strings.TrimRight(host, "/"),
		accessKey: accessKey,
		secretKey: secretKey,
		http:      &http.Client{Timeout: 10 * time.Second},
	}
}

type xtEnvelope struct {
	Rc     int             `json:"rc"`
	Mc     string          `json:"mc"`
	Result json.RawMessage `json:"result"`
}

func (c *XTClient) do(ctx context.Context, method, path, query string, body interface{}, signed bool, out interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return err
		}
	}
	url := c.host + path
	if query != "" {
		url += "?" + query
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if signed {
		c.sign(req, method, path, query, payload)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("xt: %s %s: status %d: %s", method, path, resp.StatusCode, raw)
	}
	var env xtEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("xt: %s %s: decode: %w", method, path, err)
	}
	if env.Rc != 0 {
		return fmt.Errorf("xt: %s %s: rc=%d mc=%s", method, path, env.Rc, env.Mc)
	}
	if out != nil && len(env.Result) > 0 {
		if err := json.Unmarshal(env.Result, out); err != nil {
			return fmt.Errorf("xt: %s %s: decode result: %w", method, path, err)
		}
	}
	return nil
}

func (c *XTClient) sign(req *http.Request, method, path, query string, body []byte) {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 10)
	x := "validate-algorithms=" + xtAlgorithm +
		"&validate-appkey=" + c.accessKey +
		"&validate-recvwindow=" + xtRecvWindow +
		"&validate-timestamp=" + ts
	y := "#" + method + "#" + path
	if query != "" {
		y += "#" + query
	}
	if len(body) > 0 {
		y += "#" + string(body)
	}
	mac := hmac.New(sha256.New, []byte(c.secretKey))
	mac.Write([]byte(x + y))
	req.Header.Set("validate-algorithms", xtAlgorithm)
	req.Header.Set("validate-appkey", c.accessKey)
	req.Header.Set("validate-recvwindow", xtRecvWindow)
	req.Header.Set("validate-timestamp", ts)
	req.Header.Set("validate-signature", hex.EncodeToString(mac.Sum(nil)))
}

func (c *XTClient) GetTickers(ctx context.Context, symbol string) ([]Ticker, error) {
	query := ""
	if symbol != "" {
		query = "symbol=" + strings.ToLower(symbol)
	}
	var tickers []Ticker
	if err := c.do(ctx, http.MethodGet, "/v4/public/ticker/price", query, nil, false, &tickers); err != nil {
		return nil, err
	}
	return tickers, nil
}

type xtOpenOrder struct {
	OrderID json.Number `json:"orderId"`
	Symbol  string      `json:"symbol"`
	Side    string      `json:"side"`
	Price   string      `json:"price"`
	State   string      `json:"state"`
}

func (c *XTClient) GetOpenOrders(ctx context.Context, symbol string) ([]OpenOrder, error) {
	var raw []xtOpenOrder
	query := "symbol=" + strings.ToLower(symbol) + "&bizType=SPOT"
	if err := c.do(ctx, http.MethodGet, "/v4/open-order", query, nil, true, &raw); err != nil {
		return nil, err
	}
	orders := make([]OpenOrder, 0, len(raw))
	for _, o := range raw {
		side, err := ParseSide(o.Side)
		if err != nil {
			continue
		}
		price, err := decimal.NewFromString(o.Price)
		if err != nil {
			price = decimal.Zero
		}
		orders = append(orders, OpenOrder{
			ID:     o.OrderID.String(),
			Symbol: o.Symbol,
			Side:   side,
			Price:  price,
			Status: o.State,
		})
	}
	return orders, nil
}

func (c *XTClient) CancelOrder(ctx context.Context, orderID string) error {
	return c.do(ctx, http.MethodDelete, "/v4/order/"+orderID, "", nil, true, nil)
}

type xtOrderRequest struct {
	Symbol      string `json:"symbol"`
	Side        string `json:"side"`
	Type        string `json:"type"`
	TimeInForce string `json:"timeInForce"`
	BizType     string `json:"bizType"`
	Price       string `json:"price"`
	Quantity    string `json:"quantity"`
}

type xtOrderResponse struct {
	OrderID json.Number `json:"orderId"`
}

// PlaceOrder submits a LIMIT order. Price and quantity are transmitted as the
// caller rounded them; no further adjustment happens here.
func (c *XTClient) PlaceOrder(ctx context.Context, symbol string, side Side, price, quantity decimal.Decimal) (Order, error) {
	req := xtOrderRequest{
		Symbol:      strings.ToLower(symbol),
		Side:        string(side),
		Type:        "LIMIT",
		TimeInForce: "GTC",
		BizType:     "SPOT",
		Price:       price.String(),
		Quantity:    quantity.String(),
	}
	var resp xtOrderResponse
	if err := c.do(ctx, http.MethodPost, "/v4/order", "", req, true, &resp); err != nil {
		return Order{}, fmt.Errorf("%w: %v", ErrOrderRejected, err)
	}
	return Order{
		ID:       resp.OrderID.String(),
		Symbol:   symbol,
		Side:     side,
		Price:    price,
		Quantity: quantity,
		Status:   "NEW",
	}, nil
}

type xtBalance struct {
	Currency        string `json:"currency"`
	AvailableAmount string `json:"availableAmount"`
	FrozenAmount    string `json:"frozenAmount"`
}

func (c *XTClient) GetBalance(ctx context.Context, currency string) (Balance, error) {
	var raw xtBalance
	if err := c.do(ctx, http.MethodGet, "/v4/balance", "currency="+strings.ToLower(currency), nil, true, &raw); err != nil {
		return Balance{}, err
	}
	available, err := decimal.NewFromString(raw.AvailableAmount)
	if err != nil {
		return Balance{}, fmt.Errorf("xt: balance %s: bad availableAmount %q", currency, raw.AvailableAmount)
	}
	frozen, _ := decimal.NewFromString(raw.FrozenAmount)
	return Balance{Currency: raw.Currency, Available: available, Frozen: frozen}, nil
}
