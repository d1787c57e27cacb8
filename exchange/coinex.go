package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const DefaultCoinexHost = "https://api.coinex.com/v1"

// Coinex reads last-traded prices from the CoinEx public ticker endpoint.
type Coinex struct {
	host string
	http *http.Client
}

func NewCoinex(host string) *Coinex {
	if host == "" {
		host = DefaultCoinexHost
	}
	return &Coinex{
		host: strings.TrimRight(host, "/"),
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Coinex) Name() string { return "coinex" }

type coinexTickerResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		Ticker struct {
			Last string `json:"last"`
		} `json:"ticker"`
	} `json:"data"`
}

func (c *Coinex) LastPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	market := coinexMarket(symbol)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.host+"/market/ticker?market="+market, nil)
	if err != nil {
		return decimal.Zero, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return decimal.Zero, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("coinex: ticker %s: status %d", market, resp.StatusCode)
	}
	var body coinexTickerResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return decimal.Zero, fmt.Errorf("coinex: ticker %s: decode: %w", market, err)
	}
	if body.Code != 0 {
		return decimal.Zero, fmt.Errorf("coinex: ticker %s: code=%d message=%s", market, body.Code, body.Message)
	}
	price, err := decimal.NewFromString(body.Data.Ticker.Last)
	if err != nil {
		return decimal.Zero, fmt.Errorf("coinex: ticker %s: bad last %q", market, body.Data.Ticker.Last)
	}
	return price, nil
}

// coinexMarket maps "aipg_usdt" to the venue's "AIPGUSDT" form.
func coinexMarket(symbol string) string {
	return strings.ToUpper(strings.Replace(symbol, "_", "", 1))
}
