// Command auction is a client for a deployed auction contract. It serves a web
// page with the auction state and actions, or runs a single action from the
// command line.
//
// Usage:
//
//	auction [flags] serve
//	auction [flags] status | withdraw | end | pause | resume
//	auction [flags] bid <amount>
//	auction [flags] reset <new-minimum-bid>
//	auction setup [path]
//
// Signing with a local key requires the AUCTION_PRIVATE_KEY environment variable.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/vadiminshakov/auctiondapp/config"
	"github.com/vadiminshakov/auctiondapp/internal/auction"
	"github.com/vadiminshakov/auctiondapp/internal/display"
	"github.com/vadiminshakov/auctiondapp/internal/setup"
	"github.com/vadiminshakov/auctiondapp/internal/wallet"
	"github.com/vadiminshakov/auctiondapp/internal/web"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Get()
	if err != nil {
		logger.Fatal("failed to get configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("auction command failed", zap.String("command", cfg.Command), zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	if cfg.Command == "setup" {
		path := setup.DefaultPath
		if len(cfg.Args) > 0 {
			path = cfg.Args[0]
		}
		return setup.RunTUI(path)
	}

	provider, err := newProvider(ctx, cfg, logger)
	if err != nil {
		// the client reports ProviderUnavailable on connect
		logger.Warn("wallet provider not available", zap.String("rpc", cfg.RPCURL), zap.Error(err))
	}

	switch cfg.Command {
	case "", "serve":
		return serve(ctx, cfg, provider, logger)
	default:
		client := auction.NewClient(provider, cfg.Contract, display.NewTerminal(os.Stdout), logger,
			auction.WithUnitSymbol(cfg.UnitSymbol))
		return runCommand(ctx, client, cfg.Command, cfg.Args)
	}
}

func serve(ctx context.Context, cfg config.Config, provider auction.Provider, logger *zap.Logger) error {
	board := display.NewBoard(64)
	client := auction.NewClient(provider, cfg.Contract, board, logger, auction.WithUnitSymbol(cfg.UnitSymbol))
	server := web.NewServer(cfg.ListenAddr, client, board, logger)

	if len(cfg.TLSDomains) > 0 {
		return server.StartWithAutoTLS(ctx, cfg.TLSDomains, cfg.CertCacheDir)
	}
	return server.Start(ctx)
}

type commandClient interface {
	Connect(ctx context.Context) error
	PlaceBid(ctx context.Context, amount string) (common.Hash, error)
	Withdraw(ctx context.Context) (common.Hash, error)
	EndAuction(ctx context.Context) (common.Hash, error)
	PauseAuction(ctx context.Context) (common.Hash, error)
	ResumeAuction(ctx context.Context) (common.Hash, error)
	ResetAuction(ctx context.Context, newMinimum string) (common.Hash, error)
}

// runCommand connects, which renders the current state, then runs one action.
func runCommand(ctx context.Context, client commandClient, command string, args []string) error {
	action, needsArg, ok := lookupCommand(client, command)
	if !ok {
		return errors.Errorf("unknown command %q", command)
	}
	if needsArg && len(args) != 1 {
		return errors.Errorf("%s takes exactly one amount argument", command)
	}

	if err := client.Connect(ctx); err != nil {
		return err
	}
	if action == nil {
		return nil
	}

	arg := ""
	if needsArg {
		arg = args[0]
	}
	hash, err := action(ctx, arg)
	if err != nil {
		return err
	}
	fmt.Printf("%s submitted: %s\n", command, hash.Hex())
	return nil
}

type commandFunc func(ctx context.Context, arg string) (common.Hash, error)

func lookupCommand(client commandClient, command string) (commandFunc, bool, bool) {
	noArg := func(fn func(context.Context) (common.Hash, error)) commandFunc {
		return func(ctx context.Context, _ string) (common.Hash, error) { return fn(ctx) }
	}
	switch command {
	case "status":
		return nil, false, true
	case "bid":
		return client.PlaceBid, true, true
	case "reset":
		return client.ResetAuction, true, true
	case "withdraw":
		return noArg(client.Withdraw), false, true
	case "end":
		return noArg(client.EndAuction), false, true
	case "pause":
		return noArg(client.PauseAuction), false, true
	case "resume":
		return noArg(client.ResumeAuction), false, true
	default:
		return nil, false, false
	}
}

func newProvider(ctx context.Context, cfg config.Config, logger *zap.Logger) (auction.Provider, error) {
	switch cfg.Wallet {
	case config.WalletKey:
		var approver wallet.Approver = wallet.AutoApprover{}
		if cfg.Approve == config.ApprovePrompt {
			approver = wallet.PromptApprover{UnitSymbol: cfg.UnitSymbol}
		}
		p, err := wallet.DialKeyProvider(ctx, cfg.RPCURL, cfg.PrivateKey,
			wallet.WithChainID(cfg.ChainID),
			wallet.WithApprover(approver),
			wallet.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		p, err := wallet.DialNodeProvider(ctx, cfg.RPCURL, logger)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
}
