package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrshanahan/core-notes/internal/auth"
	"github.com/mrshanahan/core-notes/internal/cache"
	"github.com/mrshanahan/core-notes/internal/config"
	"github.com/mrshanahan/core-notes/internal/web"
	"github.com/mrshanahan/core-notes/pkg/client"
)

var (
	Version            string        = "dev"
	NonceTTL           time.Duration = 5 * time.Minute
	MaxPendingLogins   int           = 100
	APIRequestTimeout  time.Duration = 10 * time.Second
	NonceSweepInterval time.Duration = time.Minute
)

func main() {
	exitCode := Run()
	os.Exit(exitCode)
}

func Run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		slog.Error("core-notes failed", "err", err)
		return 1
	}
	return 0
}

type serveFlags struct {
	configPath  string
	envFile     string
	port        int
	apiURL      string
	logLevel    string
	disableAuth bool
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "core-notes",
		Short:         "Web frontend for the todos service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCommand(), newVersionCommand())
	return root
}

func newServeCommand() *cobra.Command {
	flags := &serveFlags{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the notes page",
		Long: fmt.Sprintf(`Serve the notes page.

Settings are read from defaults, then the YAML file given by --config or
%[1]sCONFIG, then the .env file, then the environment, then flags.

ENVIRONMENT VARIABLES:
	%[1]sPORT:              Port on which the page is served (default: %[2]d)
	%[1]sAPI_URL:           Base URL of the todos service (default: %[3]s)
	%[1]sSESSION_TTL:       Idle time before a session is dropped (default: %[4]s)
	%[1]sMAX_SESSIONS:      Sessions kept at once (default: %[5]d)
	%[1]sLOG_LEVEL:         debug, info, warn or error (default: %[6]s)
	%[1]sAUTH_PROVIDER_URL: Base URL of the authorization server
	%[1]sAUTH_REDIRECT_URL: Callback URL registered with the provider
	%[1]sAUTH_CLIENT_ID:    OAuth client id (default: %[7]s)
	%[1]sDISABLE_AUTH:      Any value turns sign-in off`,
			config.EnvPrefix,
			config.DefaultPort,
			config.DefaultAPIURL,
			config.DefaultSessionTTL,
			config.DefaultMaxSessions,
			config.DefaultLogLevel,
			config.DefaultClientID),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&flags.configPath, "config", "", "path to a YAML config file")
	cmd.Flags().StringVar(&flags.envFile, "env-file", config.DefaultEnvFile, "path to a .env file; ignored if missing")
	cmd.Flags().IntVarP(&flags.port, "port", "p", config.DefaultPort, "port to listen on")
	cmd.Flags().StringVar(&flags.apiURL, "api-url", config.DefaultAPIURL, "base URL of the todos service")
	cmd.Flags().StringVar(&flags.logLevel, "log-level", config.DefaultLogLevel, "log level")
	cmd.Flags().BoolVar(&flags.disableAuth, "disable-auth", false, "turn sign-in off (testing only)")
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), Version)
		},
	}
}

func loadConfig(cmd *cobra.Command, flags *serveFlags) (*config.Config, error) {
	path := flags.configPath
	if path == "" {
		path = config.ConfigPath(nil)
	}
	cfg, err := config.Loader{}.Load(path, flags.envFile)
	if err != nil {
		return nil, err
	}

	changed := cmd.Flags().Changed
	if changed("port") {
		cfg.Port = flags.port
	}
	if changed("api-url") {
		cfg.APIURL = flags.apiURL
	}
	if changed("log-level") {
		cfg.LogLevel = flags.logLevel
	}
	if changed("disable-auth") {
		cfg.Auth.Disabled = flags.disableAuth
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func serve(ctx context.Context, cfg *config.Config) error {
	level, _ := config.ParseLogLevel(cfg.LogLevel)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	api := client.NewClient(cfg.APIURL, client.WithHTTPClient(&http.Client{Timeout: APIRequestTimeout}))
	slog.Info("using todos service", "url", cfg.APIURL)

	opts := web.Options{
		Client:      api,
		SessionTTL:  cfg.SessionTTL,
		MaxSessions: cfg.MaxSessions,
		AccessLog:   true,
	}

	if !cfg.Auth.Disabled {
		authConfig, err := auth.BuildAuthConfig(ctx, cfg.Auth.ClientID, cfg.Auth.ProviderURL, cfg.Auth.RedirectURL)
		if err != nil {
			return err
		}
		nonces := cache.NewTimedCache[struct{}](NonceTTL, MaxPendingLogins)
		nonces.StartJanitor(NonceSweepInterval)
		defer nonces.Close()

		verifier := auth.NewTokenVerifier(ctx, authConfig)
		opts.Auth = &auth.Handlers{
			Config:   authConfig,
			Verifier: verifier,
			Nonces:   nonces,
		}
		opts.Verifier = verifier
	} else {
		slog.Warn("disabling authentication framework - THIS SHOULD ONLY BE RUN FOR TESTING!")
	}

	server, err := web.New(opts)
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutting down")
		if err := server.Shutdown(); err != nil {
			slog.Error("failed to shut down HTTP server", "err", err)
		}
	}()

	slog.Info("listening for requests", "port", cfg.Port)
	if err := server.Listen(fmt.Sprintf(":%d", cfg.Port)); err != nil {
		slog.Error("failed to initialize HTTP server", "err", err)
		return err
	}
	return nil
}
