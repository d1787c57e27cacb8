// Package api exposes the bot over HTTP: read-only market and account
// endpoints, grid lifecycle control, and Prometheus metrics.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/aipglabs/gridbot/conf"
	"github.com/aipglabs/gridbot/controller"
	"github.com/aipglabs/gridbot/exchange"
	"github.com/aipglabs/gridbot/executor"
	"github.com/aipglabs/gridbot/oracle"
	"github.com/aipglabs/gridbot/store"
)

type Server struct {
	ctrl     *controller.Controller
	oracle   *oracle.Oracle
	ex       exchange.PrimaryClient
	exec     *executor.Executor
	store    *store.Store // optional
	strategy conf.StrategyConf
	router   *mux.Router
	log      *zap.SugaredLogger

	mu         sync.Mutex
	activeGrid *gridRequest
	stopLoop   context.CancelFunc
}

func NewServer(ctrl *controller.Controller, o *oracle.Oracle, ex exchange.PrimaryClient, exec *executor.Executor, st *store.Store, strategy conf.StrategyConf, log *zap.SugaredLogger) *Server {
	s := &Server{
		ctrl:     ctrl,
		oracle:   o,
		ex:       ex,
		exec:     exec,
		store:    st,
		strategy: strategy,
		router:   mux.NewRouter(),
		log:      log,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/", s.handleRoot).Methods("GET")
	s.router.HandleFunc("/api/balance/{currency}", s.handleBalance).Methods("GET")
	s.router.HandleFunc("/api/market-price/{symbol}", s.handleMarketPrice).Methods("GET")
	s.router.HandleFunc("/api/orders/{symbol}", s.handleOpenOrders).Methods("GET")
	s.router.HandleFunc("/api/grid/create", s.handleCreateGrid).Methods("POST")
	s.router.HandleFunc("/api/grid/stop", s.handleStopGrid).Methods("POST")
	s.router.HandleFunc("/api/grid/status", s.handleGridStatus).Methods("GET")
	s.router.HandleFunc("/api/grid/{symbol}", s.handleCancelGrid).Methods("DELETE")
	s.router.Handle("/metrics", promhttp.Handler()).Methods("GET")
}

func (s *Server) Handler() http.Handler {
	return cors.AllowAll().Handler(s.router)
}

func (s *Server) ListenAndServe(addr string) error {
	s.log.Infow("api listening", "addr", addr)
	return http.ListenAndServe(addr, s.Handler())
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"detail": err.Error()})
}
