package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"shopfront/cmd/shopfront/ui"
	"shopfront/internal/catalog"
	"shopfront/internal/config"
	"shopfront/internal/notify"
	"shopfront/internal/session"
	"shopfront/internal/stubserver"
)

var (
	// Global flags
	verbose    bool
	apiURL     string
	configPath string

	logger *zap.Logger
	cfgMgr *config.Manager
)

// rootCmd launches the interactive storefront when run without arguments.
var rootCmd = &cobra.Command{
	Use:   "shopfront",
	Short: "Shopfront - terminal client for a product catalog service",
	Long: `Shopfront is an interactive terminal client for a product catalog API.

It offers account registration, a contact form, and full product management:
browse, search, sort, create, edit, and delete, with all input validated
locally before anything is sent to the backend.

Run without arguments to start the interactive interface.`,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractive()
	},
}

// initLogger builds the process logger. The interactive UI owns the
// terminal, so its logs go to the configured file instead of stderr.
func initLogger(cmd *cobra.Command) error {
	zcfg := zap.NewProductionConfig()
	if verbose {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	interactive := cmd.Name() == rootCmd.Name()
	if interactive {
		mgr, err := loadConfig()
		if err != nil {
			return err
		}
		logFile := mgr.Get().Logging.File
		if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		zcfg.OutputPaths = []string{logFile}
		zcfg.ErrorOutputPaths = []string{logFile}
	}

	var err error
	logger, err = zcfg.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// loadConfig reads the configuration once per process; every later caller
// gets the same Manager, so hot reload and the logger see one snapshot.
func loadConfig() (*config.Manager, error) {
	if cfgMgr != nil {
		return cfgMgr, nil
	}
	mgr, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	cfgMgr = mgr
	return mgr, nil
}

// resolveBaseURL applies the --api-url flag, which wins over the config file
// for the whole run.
func resolveBaseURL(cfg *config.Config) string {
	if apiURL != "" {
		return apiURL
	}
	return cfg.API.BaseURL
}

func newClient(cfg *config.Config, creds catalog.CredentialSource) *catalog.Client {
	opts := []catalog.Option{
		catalog.WithTimeout(cfg.API.Timeout),
		catalog.WithLogger(logger.Named("catalog")),
	}
	if creds != nil {
		opts = append(opts, catalog.WithCredentials(creds))
	}
	return catalog.NewClient(resolveBaseURL(cfg), opts...)
}

func runInteractive() error {
	mgr, err := loadConfig()
	if err != nil {
		return err
	}
	cfg := mgr.Get()

	sess, err := session.Open(filepath.Join(cfg.Storage.Dir, "session.db"))
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}
	defer sess.Close()

	client := newClient(cfg, sess)

	// Hot reload: a changed base URL takes effect on the next request. The
	// --api-url flag keeps precedence across reloads.
	mgr.Subscribe(func(updated *config.Config) {
		if apiURL != "" {
			return
		}
		client.SetBaseURL(updated.API.BaseURL)
		logger.Info("api base url updated", zap.String("base_url", updated.API.BaseURL))
	})
	mgr.Watch()

	return ui.Run(ui.Deps{
		Config:  cfg,
		Logger:  logger,
		Client:  client,
		Session: sess,
		Sink:    &ui.DialogSink{},
	})
}

// stubCmd serves the bundled stand-in for the catalog backend.
var stubCmd = &cobra.Command{
	Use:   "stub",
	Short: "Run a local stand-in for the catalog backend API",
	Long: `Serves an in-memory implementation of the catalog API, useful for
trying the client without a real backend. State is lost on exit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		seed, _ := cmd.Flags().GetString("seed")

		srv := stubserver.New(logger.Named("stub"))
		if seed != "" {
			if err := srv.Seed(seed); err != nil {
				return fmt.Errorf("failed to seed products: %w", err)
			}
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return srv.Run(ctx, addr)
	},
}

// productsCmd groups the headless catalog operations for scripting.
var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "Work with the product catalog from the command line",
}

var productsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all products as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(ctx context.Context, client *catalog.Client) error {
			products, err := client.List(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd, products)
		})
	},
}

var productsGetCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Fetch one product by ID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(ctx context.Context, client *catalog.Client) error {
			product, err := client.Get(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, product)
		})
	},
}

var productsDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete one product by ID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(ctx context.Context, client *catalog.Client) error {
			if err := client.Delete(ctx, args[0]); err != nil {
				return err
			}
			notify.NewLogSink(logger).Success("Deleted!", "Product has been deleted successfully.")
			return nil
		})
	},
}

func withClient(fn func(context.Context, *catalog.Client) error) error {
	mgr, err := loadConfig()
	if err != nil {
		return err
	}
	cfg := mgr.Get()

	sess, err := session.Open(filepath.Join(cfg.Storage.Dir, "session.db"))
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}
	defer sess.Close()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.API.Timeout+5*time.Second)
	defer cancel()
	return fn(ctx, newClient(cfg, sess))
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	// Assigned here rather than in the literal to avoid an initialization
	// cycle: initLogger refers back to rootCmd.
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return initLogger(cmd)
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "override the catalog API base URL")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to the configuration file")

	stubCmd.Flags().String("addr", ":8080", "listen address")
	stubCmd.Flags().String("seed", "", "YAML file of products to preload")

	productsCmd.AddCommand(productsListCmd, productsGetCmd, productsDeleteCmd)
	rootCmd.AddCommand(stubCmd, productsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
