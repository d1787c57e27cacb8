package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/aipglabs/gridbot/conf"
	"github.com/aipglabs/gridbot/grid"
	"github.com/aipglabs/gridbot/store"
)

// gridRequest mirrors the create-grid body; omitted fields fall back to the
// configured strategy defaults.
type gridRequest struct {
	Symbol      string  `json:"symbol"`
	Positions   int     `json:"positions"`
	TotalAmount float64 `json:"total_amount"`
	MinDistance float64 `json:"min_distance"`
	MaxDistance float64 `json:"max_distance"`
}

func (r *gridRequest) applyDefaults(def conf.StrategyConf) {
	if r.Symbol == "" {
		r.Symbol = def.Symbol
	}
	if r.Positions == 0 {
		r.Positions = def.Positions
	}
	if r.TotalAmount == 0 {
		r.TotalAmount = def.TotalAmount
	}
	if r.MinDistance == 0 {
		r.MinDistance = def.MinDistance
	}
	if r.MaxDistance == 0 {
		r.MaxDistance = def.MaxDistance
	}
}

func (r *gridRequest) params() grid.Params {
	s := conf.StrategyConf{
		Positions:   r.Positions,
		TotalAmount: r.TotalAmount,
		MinDistance: r.MinDistance,
		MaxDistance: r.MaxDistance,
	}
	return s.GridParams()
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "Grid Trading Bot API is running",
	})
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	currency := mux.Vars(r)["currency"]
	balance, err := s.ex.GetBalance(r.Context(), currency)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"currency":  balance.Currency,
		"available": balance.Available.String(),
		"frozen":    balance.Frozen.String(),
	})
}

func (s *Server) handleMarketPrice(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]
	price, err := s.oracle.PrimaryPrice(r.Context(), symbol)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"symbol": symbol, "price": price.String()})
}

func (s *Server) handleOpenOrders(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]
	orders, err := s.ex.GetOpenOrders(r.Context(), symbol)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	type openOrder struct {
		ID     string `json:"order_id"`
		Symbol string `json:"symbol"`
		Side   string `json:"side"`
		Price  string `json:"price"`
		Status string `json:"status"`
	}
	out := make([]openOrder, 0, len(orders))
	for _, o := range orders {
		out = append(out, openOrder{
			ID: o.ID, Symbol: o.Symbol, Side: string(o.Side),
			Price: o.Price.String(), Status: o.Status,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateGrid(w http.ResponseWriter, r *http.Request) {
	// An empty or absent body is fine; everything comes from defaults then.
	var req gridRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	req.applyDefaults(s.strategy)
	params := req.params()
	if err := params.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	orders, err := s.ctrl.Rebuild(r.Context(), req.Symbol, params)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	s.mu.Lock()
	if s.stopLoop != nil {
		s.stopLoop()
	}
	loopCtx, cancel := context.WithCancel(context.Background())
	s.activeGrid = &req
	s.stopLoop = cancel
	s.mu.Unlock()
	go s.ctrl.Run(loopCtx, req.Symbol, params, s.strategy.Interval())

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Grid created successfully",
		"orders":  len(orders),
	})
}

func (s *Server) handleStopGrid(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	active := s.activeGrid
	stop := s.stopLoop
	s.activeGrid = nil
	s.stopLoop = nil
	s.mu.Unlock()

	if active == nil {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "error", "message": "No active grid found",
		})
		return
	}
	stop()
	s.cancelSymbol(r.Context(), active.Symbol)
	if s.store != nil {
		if err := s.store.Deactivate(r.Context()); err != nil {
			s.log.Warnw("failed to deactivate stored grid", "error", err)
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "success", "message": "Grid stopped successfully",
	})
}

func (s *Server) handleGridStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	active := s.activeGrid
	s.mu.Unlock()

	resp := map[string]interface{}{"status": "stopped", "params": nil}
	if active != nil {
		resp["status"] = "running"
		resp["params"] = active
		resp["last_update"] = time.Now().Format(time.RFC3339)
	}
	if s.store != nil {
		if state, err := s.store.ActiveState(r.Context()); err == nil {
			resp["stored_state"] = state
		} else if !errors.Is(err, store.ErrNoActiveGrid) {
			s.log.Warnw("failed to read stored grid state", "error", err)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCancelGrid(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]
	if err := s.cancelSymbol(r.Context(), symbol); err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// cancelSymbol sweeps the symbol's resting orders, best-effort.
func (s *Server) cancelSymbol(ctx context.Context, symbol string) error {
	_, err := s.exec.CancelAll(ctx, symbol)
	return err
}
