// sendwallet converts send amounts between crypto assets and fiat using
// live ticker prices.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/sendwallet/api"
	"github.com/seenimoa/sendwallet/internal/config"
	"github.com/seenimoa/sendwallet/internal/logging"
	"github.com/seenimoa/sendwallet/internal/tickers"
	"github.com/seenimoa/sendwallet/internal/wallet"
	"github.com/seenimoa/sendwallet/pkg/models"
	"github.com/seenimoa/sendwallet/pkg/utils"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config and logger
var (
	cfg    *config.Config
	logger *zap.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "sendwallet",
	Short: "sendwallet: crypto/fiat conversion for sending funds",
	Long: `sendwallet prices the amount on a wallet's send screen.
It pulls asset tickers from files, feeds and price pages, converts between
the asset and the configured fiat currency, and serves send screens over
HTTP and WebSocket.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if level, _ := cmd.Flags().GetString("log-level"); level != "" {
			cfg.Logging.Level = level
		}
		logger, err = logging.New(cfg.Logging)
		if err != nil {
			return fmt.Errorf("failed to set up logging: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(quoteCmd)
	rootCmd.AddCommand(tickersCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("sendwallet %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Quote Command ---

var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Convert a send amount once",
	Long: `Convert an amount between an asset and fiat, the way the send screen does.

Examples:
  sendwallet quote --amount 1.5
  sendwallet quote --amount 250 --fiat-side
  sendwallet quote --token 0xdAC17F958D2ee523a2206206994597C13D831ec7 --symbol USDT --decimals 6 --amount 100
  sendwallet quote --tickers ./tickers.json --fiat EUR --amount 2`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		amount, _ := cmd.Flags().GetString("amount")
		fiatSide, _ := cmd.Flags().GetBool("fiat-side")

		walletCfg := cfg.Wallet
		if fiat, _ := cmd.Flags().GetString("fiat"); fiat != "" {
			walletCfg.Currency = fiat
		}

		store, err := loadTickersOnce(ctx, cmd)
		if err != nil {
			return err
		}
		session, err := wallet.NewSession(wallet.Account{}, walletCfg, store, logger)
		if err != nil {
			return err
		}

		transfer, err := transferFromFlags(cmd, session)
		if err != nil {
			return err
		}

		vm := session.NewSendViewModel(transfer)
		if vm.FiatViewHidden() {
			return fmt.Errorf("no price for %s (%s)", vm.Symbol(), vm.TickerKey())
		}
		if fiatSide {
			vm.SwapPair()
		}
		display, err := vm.Refresh(amount)
		if err != nil {
			return err
		}

		pair := vm.Converter().Pair()
		fmt.Printf("%s\n", vm.Title())
		fmt.Printf("  Enter:   %s %s\n", amountOrZero(amount), pair.Left)
		fmt.Printf("  Rate:    %s\n", display)
		fmt.Printf("  Send:    %s %s\n", vm.SendAmount(), vm.Symbol())
		return nil
	},
}

func init() {
	quoteCmd.Flags().String("amount", "", "amount as typed on the send screen")
	quoteCmd.Flags().String("fiat", "", "fiat currency override (ISO 4217)")
	quoteCmd.Flags().Bool("fiat-side", false, "enter the amount in fiat instead of the asset")
	quoteCmd.Flags().String("token", "", "token contract address (default: native coin)")
	quoteCmd.Flags().String("symbol", "", "token symbol")
	quoteCmd.Flags().Int("decimals", 18, "token decimals")
	quoteCmd.Flags().StringSlice("tickers", nil, "JSON ticker files to use instead of the configured sources")
}

func amountOrZero(s string) string {
	if strings.TrimSpace(s) == "" {
		return "0"
	}
	return s
}

// transferFromFlags builds a token transfer from --token/--symbol/--decimals,
// or the native coin when --token is unset.
func transferFromFlags(cmd *cobra.Command, session *wallet.Session) (models.TransferType, error) {
	address, _ := cmd.Flags().GetString("token")
	if address == "" {
		return session.NativeTransfer(), nil
	}
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("--token %q is not a hex address", address)
	}
	symbol, _ := cmd.Flags().GetString("symbol")
	if symbol == "" {
		return nil, errors.New("--symbol is required with --token")
	}
	decimals, _ := cmd.Flags().GetInt("decimals")
	return models.NewToken(common.HexToAddress(address), strings.ToUpper(symbol), decimals), nil
}

// loadTickersOnce runs every ticker source once into a fresh memory store.
func loadTickersOnce(ctx context.Context, cmd *cobra.Command) (*tickers.Store, error) {
	var sources []tickers.Source
	if files, _ := cmd.Flags().GetStringSlice("tickers"); len(files) > 0 {
		for _, f := range files {
			sources = append(sources, tickers.NewFileSource(f))
		}
	} else {
		sources = tickers.SourcesFromConfig(cfg.Tickers)
	}

	store := tickers.NewStore(cfg.Tickers.TTLDuration())
	if len(sources) == 0 {
		return store, nil
	}
	if _, err := tickers.NewRefresher(sources, []tickers.Sink{store}, logger).Refresh(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

// --- Tickers Command ---

var tickersCmd = &cobra.Command{
	Use:   "tickers",
	Short: "Fetch all configured ticker sources once and print the result",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		sources := tickers.SourcesFromConfig(cfg.Tickers)
		if len(sources) == 0 {
			return errors.New("no ticker sources configured (tickers.files, tickers.feeds, tickers.pages)")
		}
		res, err := tickers.NewRefresher(sources, nil, logger).Refresh(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("%-8s %-44s %16s %9s  %s\n", "SYMBOL", "ADDRESS", "PRICE", "24H", "SOURCE")
		for _, t := range res.Tickers {
			fmt.Printf("%-8s %-44s %16s %9s  %s\n", t.Symbol, t.Address, t.Price, utils.FormatPct(t.PercentChange), t.Source)
		}
		fmt.Printf("\n%d tickers in %s", len(res.Tickers), res.Took.Round(time.Millisecond))
		if len(res.Failed) > 0 {
			fmt.Printf(", %d sources failed", len(res.Failed))
		}
		fmt.Println()
		return nil
	},
}

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server and the ticker refresher",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		backend, err := tickers.OpenBackend(ctx, cfg.Tickers, logger)
		if err != nil {
			return err
		}
		defer backend.Close()

		account := wallet.Account{Name: "default"}
		if addr, _ := cmd.Flags().GetString("account"); addr != "" {
			if !common.IsHexAddress(addr) {
				return fmt.Errorf("--account %q is not a hex address", addr)
			}
			account.Address = common.HexToAddress(addr)
		}
		session, err := wallet.NewSession(account, cfg.Wallet, backend.Lookup(), logger)
		if err != nil {
			return err
		}

		api.Version = version
		srv := api.NewServer(cfg, session, logger)

		g, gctx := errgroup.WithContext(ctx)
		if sources := tickers.SourcesFromConfig(cfg.Tickers); len(sources) > 0 {
			refresher := tickers.NewRefresher(sources, backend.Sinks(), logger)
			g.Go(func() error {
				if err := refresher.Run(gctx, cfg.Tickers.Interval()); !errors.Is(err, context.Canceled) {
					return err
				}
				return nil
			})
		} else {
			logger.Warn("no ticker sources configured; prices come only from the shared store")
		}
		g.Go(func() error {
			return srv.ListenAndServe(gctx, cfg.API.Addr())
		})
		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().String("account", "", "sending account address")
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and credential status",
	RunE: func(cmd *cobra.Command, args []string) error {
		server, _ := models.ServerByID(cfg.Wallet.Server)

		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  sendwallet status")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:       %s (%s)\n", version, commit)
		fmt.Println()

		fmt.Println("  Wallet:")
		fmt.Printf("    Network:       %s (%s, %d decimals)\n", server.Name, server.Symbol, server.Decimals)
		fmt.Printf("    Currency:      %s\n", cfg.Wallet.Currency)
		fmt.Printf("    Locale:        %s\n", cfg.Wallet.Locale)
		fmt.Println()

		fmt.Println("  Tickers:")
		fmt.Printf("    Sources:       %d files, %d feeds, %d pages\n",
			len(cfg.Tickers.Files), len(cfg.Tickers.Feeds), len(cfg.Tickers.Pages))
		redis := "off"
		if cfg.Tickers.Redis.URL != "" {
			redis = cfg.Tickers.Redis.KeyPrefix + "* on " + redactURL(cfg.Tickers.Redis.URL)
		}
		fmt.Printf("    Redis:         %s\n", redis)
		fmt.Printf("    TTL / refresh: %s / %s\n", cfg.Tickers.TTLDuration(), cfg.Tickers.Interval())
		fmt.Printf("    API Server:    %s\n", cfg.API.Addr())
		fmt.Println()

		fmt.Println("  Credentials:")
		for _, k := range config.CheckCredentials(cfg) {
			status := "not set"
			if k.IsSet {
				status = fmt.Sprintf("set (%s: %s)", k.Source, k.Masked)
			}
			fmt.Printf("    %-25s %s\n", k.Name+":", status)
		}

		fmt.Println("═══════════════════════════════════════")
		return nil
	},
}

// redactURL drops any userinfo from a connection URL.
func redactURL(raw string) string {
	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok {
		return raw
	}
	if at := strings.LastIndex(rest, "@"); at >= 0 {
		rest = "***@" + rest[at+1:]
	}
	return scheme + "://" + rest
}
