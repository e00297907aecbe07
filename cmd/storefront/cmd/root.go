// Package cmd provides the CLI commands for the storefront client.
package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-storefront-client/apiclient"
	"github.com/jrsteele09/go-storefront-client/guard"
	"github.com/jrsteele09/go-storefront-client/internal/config"
	"github.com/jrsteele09/go-storefront-client/internal/logger"
	"github.com/jrsteele09/go-storefront-client/refresh"
	"github.com/jrsteele09/go-storefront-client/services"
	"github.com/jrsteele09/go-storefront-client/sessions"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	quiet   bool
	current *app
)

// app is everything a command needs, built once per invocation.
type app struct {
	cfg      config.Config
	location *guard.Location
	client   *apiclient.Client
	svc      *services.Services
	closer   func() error
}

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "TechTrendz storefront client",
	Long: `storefront talks to the TechTrendz backend with a persisted session.

The session snapshot is kept in the backend selected by SESSION_STORAGE
(memory, file or redis). Expired access cookies are refreshed transparently;
when the session can no longer be refreshed the client is sent to /login.

Configuration is read from the environment:
  API_BASE_URL      backend base URL (required)
  SESSION_STORAGE   memory | file | redis (default file)
  STATE_DIR         directory for the file backend (default ./data)
  REDIS_ADDR        redis address for the redis backend
  LOG_LEVEL         trace | debug | info | warn | error`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		current = nil
		if cmd.Annotations["standalone"] == "true" {
			return nil
		}
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		current = a
		if !quiet {
			displayAppname(a.cfg.GetAppName())
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if current == nil || current.closer == nil {
			return nil
		}
		return current.closer()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "do not print the banner")
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}
	l := logger.Init(logger.Options{Level: cfg.GetLogLevel(), Pretty: cfg.GetLogPretty()})

	storage, closer, err := openStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}
	store := sessions.NewStore(ctx, storage, sessions.WithLogger(l))
	location := guard.NewLocation(guard.HomePath, func(from, to string) {
		log.Debug().Str("from", from).Str("to", to).Msg("Navigated")
	})

	jar, err := newPersistentJar(ctx, storage, cfg.GetAPIBaseURL())
	if err != nil {
		_ = closer()
		return nil, err
	}

	client, err := apiclient.New(cfg.GetAPIBaseURL(), store, refresh.New(cfg.GetRefreshTimeout()),
		apiclient.WithHTTPClient(&http.Client{Jar: jar, Timeout: cfg.GetRequestTimeout()}),
		apiclient.WithLogger(l),
		apiclient.WithNavigator(location),
	)
	if err != nil {
		_ = closer()
		return nil, err
	}
	svc, err := services.New(client)
	if err != nil {
		_ = closer()
		return nil, err
	}
	return &app{cfg: cfg, location: location, client: client, svc: svc, closer: closer}, nil
}

// visit moves to page and refuses to continue when the session does not
// satisfy req.
func (a *app) visit(page string, req guard.Requirement) error {
	a.location.Visit(page)
	decision := guard.Enforce(a.location, a.client.Session().State(), req)
	if decision == guard.Allow {
		return nil
	}
	return fmt.Errorf("%s requires %s access, redirected to %s", page, req, decision.Target())
}

// explain turns a redirect caused by an expired session into a message.
func (a *app) explain(err error) error {
	if err == nil {
		return nil
	}
	if redirects := a.location.Redirects(); len(redirects) > 0 {
		return fmt.Errorf("session expired, please log in again: %w", err)
	}
	return err
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
