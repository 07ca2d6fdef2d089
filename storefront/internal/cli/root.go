// Package cli is the storefront command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"ecommerce-storefront/pkg/config"
	"ecommerce-storefront/pkg/redisdb"
	"ecommerce-storefront/storefront/internal/app"
	"ecommerce-storefront/storefront/internal/assistant"
	"ecommerce-storefront/storefront/internal/gateway"
	"ecommerce-storefront/storefront/internal/notify"
	"ecommerce-storefront/storefront/internal/storage"

	"github.com/spf13/cobra"
)

type options struct {
	apiURL       string
	stateDir     string
	redisAddr    string
	namespace    string
	assistantURL string
	timeout      time.Duration
	verbose      bool
}

// runtime is built once per invocation, before the subcommand runs.
type runtime struct {
	state   *app.State
	out     io.Writer
	cleanup func()
}

func defaultStateDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "storefront")
	}
	return ".storefront"
}

func (o *options) store() (storage.Store, func(), error) {
	if o.redisAddr == "" {
		s, err := storage.NewFileStore(o.stateDir)
		return s, func() {}, err
	}
	client, err := redisdb.Connect(redisdb.Config{
		Addr:     o.redisAddr,
		Password: config.GetEnv("STOREFRONT_REDIS_PASSWORD", ""),
		DB:       config.GetInt("STOREFRONT_REDIS_DB", 0),
	})
	if err != nil {
		return nil, nil, err
	}
	return storage.NewRedisStore(client, o.namespace), func() { redisdb.Close(client) }, nil
}

func (o *options) build(cmd *cobra.Command) (*runtime, error) {
	store, cleanup, err := o.store()
	if err != nil {
		return nil, fmt.Errorf("open local state: %w", err)
	}
	notifier := notify.NewLogNotifier(cmd.ErrOrStderr())
	state := app.New(gateway.NewClient(o.apiURL, o.timeout), store, notifier)
	if o.assistantURL != "" {
		state.WithAssistant(assistant.NewClient(o.assistantURL, config.GetEnv("STOREFRONT_ASSISTANT_KEY", ""), o.timeout))
	}
	if err := state.Start(cmd.Context()); err != nil {
		cleanup()
		return nil, err
	}
	return &runtime{state: state, out: cmd.OutOrStdout(), cleanup: cleanup}, nil
}

// NewRootCommand returns the storefront command tree. Flags default to the
// STOREFRONT_* environment variables.
func NewRootCommand() *cobra.Command {
	config.LoadEnv()

	opts := &options{}
	rt := &runtime{}

	root := &cobra.Command{
		Use:           "storefront",
		Short:         "Browse products, manage your cart and place orders",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.verbose {
				log.SetOutput(cmd.ErrOrStderr())
			}
			built, err := opts.build(cmd)
			if err != nil {
				return err
			}
			*rt = *built
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if rt.cleanup != nil {
				rt.cleanup()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.apiURL, "api", config.GetEnv("STOREFRONT_API_URL", "http://localhost:8080/api/v1"), "API gateway base URL")
	flags.StringVar(&opts.stateDir, "state-dir", config.GetEnv("STOREFRONT_STATE_DIR", defaultStateDir()), "directory for the cart and session mirrors")
	flags.StringVar(&opts.redisAddr, "redis", config.GetEnv("STOREFRONT_REDIS_ADDR", ""), "keep the mirrors in Redis at this address instead of files")
	flags.StringVar(&opts.namespace, "profile", config.GetEnv("STOREFRONT_PROFILE", "storefront"), "Redis key namespace for the mirrors")
	flags.StringVar(&opts.assistantURL, "assistant-url", config.GetEnv("STOREFRONT_ASSISTANT_URL", ""), "generateContent endpoint of the shopping assistant")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "print diagnostic logs")
	flags.DurationVar(&opts.timeout, "timeout", config.GetDuration("STOREFRONT_TIMEOUT", 20*time.Second), "per-request timeout")

	root.AddCommand(
		productsCommand(rt),
		categoriesCommand(rt),
		cartCommand(rt),
		signUpCommand(rt),
		loginCommand(rt),
		logoutCommand(rt),
		whoAmICommand(rt),
		checkoutCommand(rt),
		ordersCommand(rt),
		adminCommand(rt),
		chatCommand(rt),
	)
	return root
}

// Execute runs the command tree with ctx. Diagnostic logging stays off
// unless --verbose is given.
func Execute(ctx context.Context) error {
	log.SetOutput(io.Discard)
	return NewRootCommand().ExecuteContext(ctx)
}
