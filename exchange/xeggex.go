package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

const DefaultXeggexHost = "https://api.xeggex.com/api/v2"

// Xeggex reads last-traded prices from the Xeggex public API. The venue keys
// its market endpoints by an internal id, so the id is resolved once from the
// markets list and cached on the instance; Reset drops the cache.
type Xeggex struct {
	host string
	http *http.Client

	mu        sync.Mutex
	marketIDs map[string]string
}

func NewXeggex(host string) *Xeggex {
	if host == "" {
		host = DefaultXeggexHost
	}
	return &Xeggex{
		host:      strings.TrimRight(host, "/"),
		http:      &http.Client{Timeout: 10 * time.Second},
		marketIDs: make(map[string]string),
	}
}

func (x *Xeggex) Name() string { return "xeggex" }

type xeggexMarket struct {
	ID        string      `json:"id"`
	Symbol    string      `json:"symbol"`
	LastPrice json.Number `json:"lastPrice"`
	BestBid   json.Number `json:"bestBid"`
	BestAsk   json.Number `json:"bestAsk"`
}

// marketID resolves the venue's id for a symbol like "aipg_usdt", fetching
// the markets list only when the id is not cached yet.
func (x *Xeggex) marketID(ctx context.Context, symbol string) (string, error) {
	venueSymbol := xeggexSymbol(symbol)
	x.mu.Lock()
	id, ok := x.marketIDs[venueSymbol]
	x.mu.Unlock()
	if ok {
		return id, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, x.host+"/markets", nil)
	if err != nil {
		return "", err
	}
	resp, err := x.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("xeggex: markets: status %d", resp.StatusCode)
	}
	var markets []xeggexMarket
	if err := json.NewDecoder(resp.Body).Decode(&markets); err != nil {
		return "", fmt.Errorf("xeggex: markets: decode: %w", err)
	}
	for _, m := range markets {
		if m.Symbol == venueSymbol {
			x.mu.Lock()
			x.marketIDs[venueSymbol] = m.ID
			x.mu.Unlock()
			return m.ID, nil
		}
	}
	return "", fmt.Errorf("xeggex: market %s not listed", venueSymbol)
}

// Reset drops the cached market ids. Only an explicit reset invalidates the
// cache; a failed lookup never pollutes it.
func (x *Xeggex) Reset() {
	x.mu.Lock()
	x.marketIDs = make(map[string]string)
	x.mu.Unlock()
}

func (x *Xeggex) LastPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	id, err := x.marketID(ctx, symbol)
	if err != nil {
		return decimal.Zero, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, x.host+"/market/getbyid/"+id, nil)
	if err != nil {
		return decimal.Zero, err
	}
	resp, err := x.http.Do(req)
	if err != nil {
		return decimal.Zero, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("xeggex: market %s: status %d", id, resp.StatusCode)
	}
	var market xeggexMarket
	if err := json.NewDecoder(resp.Body).Decode(&market); err != nil {
		return decimal.Zero, fmt.Errorf("xeggex: market %s: decode: %w", id, err)
	}
	if market.LastPrice == "" {
		return decimal.Zero, fmt.Errorf("xeggex: market %s: no lastPrice", id)
	}
	price, err := decimal.NewFromString(market.LastPrice.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("xeggex: market %s: bad lastPrice %q", id, market.LastPrice)
	}
	return price, nil
}

// xeggexSymbol maps "aipg_usdt" to the venue's "AIPG/USDT" form.
func xeggexSymbol(symbol string) string {
	return strings.ToUpper(strings.Replace(symbol, "_", "/", 1))
}
