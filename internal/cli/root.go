// Package cli implements saltctl, a terminal client that drives the same
// session controller and route guard as the web portal. Credentials
// persist in a JSON file so sessions survive between invocations.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"salt_portal/internal/gateway"
	"salt_portal/internal/guard"
	"salt_portal/internal/logger"
	"salt_portal/internal/session"
	"salt_portal/internal/storage"
)

const envBackend = "SALT_BACKEND_BASE_URL"

type options struct {
	backend     string
	credentials string
	routes      string
	timeout     time.Duration
	verbose     bool
}

// env is what every subcommand works against.
type env struct {
	ctrl  *session.Controller
	store *storage.TokenStore
	table *guard.Table
	log   *zap.Logger
}

func defaultCredentialsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".salt_portal", "credentials.json")
	}
	return filepath.Join(dir, "salt_portal", "credentials.json")
}

// NewRootCmd builds the saltctl command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "saltctl",
		Short: "Sign in to the salt production platform from a terminal",
		Long: `saltctl signs in to the salt production platform and keeps the
session in a local credentials file.

Examples:
  saltctl login --phone +94771234567 --role LANDOWNER
  saltctl admin-login --email admin@salt.lk --password ...
  saltctl whoami
  saltctl can /landowner/dashboard
  saltctl logout`,
		SilenceUsage: true,
	}

	backend := os.Getenv(envBackend)
	if backend == "" {
		backend = "http://localhost:8080"
	}
	flags := root.PersistentFlags()
	flags.StringVar(&opts.backend, "backend", backend, "platform API base URL (env "+envBackend+")")
	flags.StringVar(&opts.credentials, "credentials", defaultCredentialsPath(), "credentials file")
	flags.StringVar(&opts.routes, "routes", "", "route table YAML (built-in table when empty)")
	flags.DurationVar(&opts.timeout, "timeout", 15*time.Second, "per-request timeout")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log to stderr")

	root.AddCommand(
		newLoginCmd(opts),
		newAdminLoginCmd(opts),
		newWhoamiCmd(opts),
		newRefreshCmd(opts),
		newLogoutCmd(opts),
		newCanCmd(opts),
		newRoutesCmd(opts),
	)
	return root
}

// ExecuteContext runs saltctl with os.Args.
func ExecuteContext(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// open restores the session from the credentials file.
func (o *options) open(ctx context.Context) (*env, error) {
	logCfg := logger.Config{Level: "error", Format: "console", Output: "stderr"}
	if o.verbose {
		logCfg.Level = "debug"
	}
	log, err := logger.New(logCfg)
	if err != nil {
		return nil, err
	}

	kv, err := storage.NewFileKV(o.credentials)
	if err != nil {
		return nil, fmt.Errorf("open credentials: %w", err)
	}
	table, err := guard.LoadTable(o.routes)
	if err != nil {
		return nil, err
	}

	store := storage.NewTokenStore(kv, "cli", log)
	client, err := gateway.NewClient(gateway.Config{
		BaseURL:   o.backend,
		Timeout:   o.timeout,
		Endpoints: gateway.DefaultEndpoints(),
	}, store, log)
	if err != nil {
		return nil, err
	}

	ctrl := session.NewController(gateway.NewAuthGateway(client, store, log), store, log)
	ctrl.Bootstrap(ctx)
	return &env{ctrl: ctrl, store: store, table: table, log: log}, nil
}
