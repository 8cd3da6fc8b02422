package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/aviravastra/storefront/internal/api"
	"github.com/aviravastra/storefront/internal/apiclient"
	"github.com/aviravastra/storefront/internal/cart"
	"github.com/aviravastra/storefront/internal/config"
	"github.com/aviravastra/storefront/internal/credentials"
	"github.com/aviravastra/storefront/internal/logger"
	"github.com/aviravastra/storefront/internal/session"
	"github.com/aviravastra/storefront/internal/version"
)

// app holds what every command needs; it is built once the flags are parsed
type app struct {
	cfg     *config.ClientConfig
	log     *slog.Logger
	store   *credentials.FileStore
	client  *apiclient.Client
	svc     *api.Service
	session *session.Manager
	cart    *cart.Cart
	shell   *session.Shell

	out     io.Writer
	errOut  io.Writer
	jsonOut bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{out: os.Stdout, errOut: os.Stderr}
	if err := a.execute(ctx, newRootCmd(a)); err != nil {
		os.Exit(1)
	}
}

// execute runs the command tree; cobra prints the user message, the logger gets the detail
func (a *app) execute(ctx context.Context, root *cobra.Command) error {
	err := root.ExecuteContext(ctx)
	if err != nil && a.log != nil {
		a.logFailure(ctx, err)
	}
	return err
}

func (a *app) logFailure(ctx context.Context, err error) {
	var ce *apiclient.ClientError
	if !errors.As(err, &ce) {
		a.log.DebugContext(ctx, "command failed", slog.String("error", err.Error()))
		return
	}

	switch ce.Kind {
	case apiclient.KindHTTP, apiclient.KindSessionInvalidated:
		a.log.DebugContext(ctx, "command failed", slog.String("error", ce.LogMessage()))
	default:
		a.log.ErrorContext(ctx, "command failed", slog.String("error", ce.LogMessage()))
	}
}

func newRootCmd(a *app) *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:   "storefront",
		Short: "Avira Vastra storefront client",
		Long:  `Browse the catalog, manage the cart and orders, and run the back office from the command line.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(envFile)
		},
		SilenceUsage: true,
	}
	root.Version = version.Get().String()
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "optional file of environment variables")
	root.PersistentFlags().BoolVar(&a.jsonOut, "json", false, "print raw JSON")

	root.AddCommand(
		newProductsCmd(a),
		newTaxonomyCmd(a, "categories"),
		newTaxonomyCmd(a, "occasions"),
		newTaxonomyCmd(a, "collections"),
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newCartCmd(a),
		newCheckoutCmd(a),
		newOrdersCmd(a),
		newAdminCmd(a),
	)
	return root
}

func (a *app) init(envFile string) error {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", envFile, err)
	}

	cfg, err := config.NewClientConfig()
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = logger.NewLogger(a.errOut, logger.ParseLogLevel(cfg.LogLevel), cfg.Environment)

	a.store = credentials.NewFileStore(cfg.StateFile)
	a.client = apiclient.New(cfg.APIBaseURL, credentials.NewProvider(a.store),
		apiclient.WithTimeout(cfg.RequestTimeout),
		apiclient.WithMaxResponseBytes(cfg.MaxResponseBytes),
		apiclient.WithLogger(a.log),
		apiclient.WithHeader("User-Agent", version.UserAgent()),
	)
	a.svc = api.New(a.client)
	a.session = session.NewManager(a.store)
	a.cart = cart.New(a.store)

	a.shell = session.NewShell(a.log, session.NavigatorFunc(a.navigate))
	a.shell.Attach(a.client)

	a.log.Debug("client configured",
		slog.String("api_base_url", cfg.APIBaseURL),
		slog.String("state_file", cfg.StateFile),
	)
	return nil
}

// navigate is where the shell lands after a forced admin logout
func (a *app) navigate(location string) {
	if location == apiclient.AdminLoginLocation {
		fmt.Fprintln(a.errOut, "Your admin session has ended. Sign in again with: storefront admin login")
		return
	}
	fmt.Fprintf(a.errOut, "Continue at %s\n", location)
}

// adminContext marks calls made from back office commands as admin scoped
func adminContext(cmd *cobra.Command, page string) context.Context {
	return apiclient.ContextWithLocation(cmd.Context(), "/admin/"+page)
}
