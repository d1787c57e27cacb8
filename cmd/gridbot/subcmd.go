package main

import (
	"fmt"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/aipglabs/gridbot/api"
	"github.com/aipglabs/gridbot/cmd/utils"
	"github.com/aipglabs/gridbot/conf"
	"github.com/aipglabs/gridbot/controller"
	"github.com/aipglabs/gridbot/exchange"
	"github.com/aipglabs/gridbot/executor"
	"github.com/aipglabs/gridbot/oracle"
	"github.com/aipglabs/gridbot/store"
	"github.com/aipglabs/gridbot/util"
)

var (
	serveCommand = &cli.Command{
		Action: serve,
		Name:   "serve",
		Usage:  "Run the bot API server",
	}
	rebuildCommand = &cli.Command{
		Action: rebuild,
		Name:   "rebuild",
		Usage:  "Run a single grid rebuild cycle and exit",
		Flags:  []cli.Flag{utils.SymbolFlag},
	}
	cancelCommand = &cli.Command{
		Action: cancelOrders,
		Name:   "cancel",
		Usage:  "Cancel all resting orders for the symbol and exit",
		Flags:  []cli.Flag{utils.SymbolFlag},
	}
)

// stack bundles the wired components behind each subcommand.
type stack struct {
	cfg    conf.Config
	log    *zap.SugaredLogger
	client *exchange.XTClient
	oracle *oracle.Oracle
	exec   *executor.Executor
	ctrl   *controller.Controller
	store  *store.Store
}

func newStack(ctx *cli.Context) (*stack, error) {
	var cfg conf.Config
	if err := conf.ParseJsonConfig(ctx.String(utils.ConfigFlag.Name), &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := util.NewLogger()
	if err != nil {
		return nil, err
	}
	log := logger.Sugar()

	client := exchange.NewXTClient(cfg.Exchange.Host, cfg.Exchange.Key, cfg.Exchange.Secret)
	sources := []exchange.PriceSource{
		exchange.NewXeggex(""),
		exchange.NewCoinex(""),
	}
	o := oracle.New(client, sources, log)
	exec := executor.New(client, log)

	var st *store.Store
	if cfg.Mongo.URI != "" {
		st, err = store.Connect(ctx.Context, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
	} else {
		log.Warn("no mongo uri configured, grid state will not be persisted")
	}

	ctrl := controller.New(o, exec, st, cfg.Strategy.ThresholdDecimal(), log)
	return &stack{cfg: cfg, log: log, client: client, oracle: o, exec: exec, ctrl: ctrl, store: st}, nil
}

func (s *stack) close(ctx *cli.Context) {
	if s.store != nil {
		_ = s.store.Close(ctx.Context)
	}
	_ = s.log.Sync()
}

func (s *stack) symbol(ctx *cli.Context) string {
	if sym := ctx.String(utils.SymbolFlag.Name); sym != "" {
		return sym
	}
	return s.cfg.Strategy.SymbolNormalized()
}

func serve(ctx *cli.Context) error {
	s, err := newStack(ctx)
	if err != nil {
		return err
	}
	defer s.close(ctx)
	srv := api.NewServer(s.ctrl, s.oracle, s.client, s.exec, s.store, s.cfg.Strategy, s.log)
	return srv.ListenAndServe(s.cfg.Server.Addr)
}

func rebuild(ctx *cli.Context) error {
	s, err := newStack(ctx)
	if err != nil {
		return err
	}
	defer s.close(ctx)
	symbol := s.symbol(ctx)
	orders, err := s.ctrl.Rebuild(ctx.Context, symbol, s.cfg.Strategy.GridParams())
	if err != nil {
		return err
	}
	s.log.Infow("rebuild finished", "symbol", symbol, "orders", len(orders))
	return nil
}

func cancelOrders(ctx *cli.Context) error {
	s, err := newStack(ctx)
	if err != nil {
		return err
	}
	defer s.close(ctx)
	symbol := s.symbol(ctx)
	_, err = s.exec.CancelAll(ctx.Context, symbol)
	return err
}
