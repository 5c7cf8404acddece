package main

import (
	"bufio"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"
	"github.com/opencustody/consolekit/api"
	"github.com/opencustody/consolekit/filters"
	filterboltrepo "github.com/opencustody/consolekit/filters/boltrepo"
	"github.com/opencustody/consolekit/httpclient"
	"github.com/opencustody/consolekit/internal/config"
	"github.com/opencustody/consolekit/internal/errors"
	"github.com/opencustody/consolekit/nav"
	"github.com/opencustody/consolekit/session"
	sessionboltrepo "github.com/opencustody/consolekit/session/boltrepo"
	"github.com/opencustody/consolekit/storage"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.etcd.io/bbolt"
)

func main() {
	_ = godotenv.Load()
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app holds the assembled client stack shared by all commands.
type app struct {
	cfg         config.Config
	log         zerolog.Logger
	db          *bbolt.DB
	store       *session.Store
	filterStore *filters.Store
	navigator   *nav.Navigator
	console     *api.API
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "console",
		Short: "Custody platform admin console",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
		Run: func(cmd *cobra.Command, args []string) {
			figure.NewFigure(a.cfg.GetAppName(), "cybermedium", true).Print()
			fmt.Println()
			cmd.Help() //nolint:errcheck
		},
	}

	root.AddCommand(newLoginCmd(a))
	root.AddCommand(newLogoutCmd(a))
	root.AddCommand(newWhoamiCmd(a))
	root.AddCommand(newClientsCmd(a))
	root.AddCommand(newTransactionsCmd(a))
	return root
}

func (a *app) setup() error {
	a.cfg = config.New()
	a.log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if a.cfg.GetEnv() != "DEV" {
		a.log = a.log.Level(zerolog.WarnLevel)
	}

	if err := os.MkdirAll(a.cfg.GetDataFolder(), 0o700); err != nil {
		return fmt.Errorf("create data folder: %w", err)
	}
	db, err := storage.Open(filepath.Join(a.cfg.GetDataFolder(), "console.db"))
	if err != nil {
		return err
	}
	a.db = db

	sessionRepo, err := sessionboltrepo.New(db, a.cfg.GetSessionStoreKey())
	if err != nil {
		return err
	}
	a.store, err = session.NewStore(sessionRepo, session.WithLogger(a.log))
	if err != nil {
		return err
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return fmt.Errorf("cookie jar: %w", err)
	}
	cookieWriter, err := session.NewCookieWriter(jar, a.cfg.GetAPIBaseURL(), a.cfg.GetCookieName())
	if err != nil {
		return err
	}
	a.store.Subscribe(cookieWriter.SessionChanged)

	scheduler := session.NewScheduler(a.store, a.cfg.GetSessionDuration(),
		session.WithSchedulerLogger(a.log),
		session.WithOnExpire(func() {
			fmt.Fprintln(os.Stderr, "session expired, please log in again")
		}),
	)
	a.store.Subscribe(scheduler.SessionChanged)

	// Hydrate after the listeners are wired so the cookie and timer pick
	// up a persisted session.
	if err := a.store.Hydrate(); err != nil {
		return err
	}

	coordinator, err := httpclient.NewRefreshCoordinator(
		httpclient.NewRefreshFunc(a.cfg.GetAPIBaseURL(), &http.Client{Timeout: 15 * time.Second}),
		a.store,
		httpclient.WithCoordinatorLogger(a.log),
	)
	if err != nil {
		return err
	}
	transport, err := httpclient.NewTransport(http.DefaultTransport, a.store, coordinator,
		httpclient.WithLocale(a.cfg.GetLocale),
		httpclient.WithTransportLogger(a.log),
	)
	if err != nil {
		return err
	}
	client, err := httpclient.New(a.cfg.GetAPIBaseURL(),
		httpclient.WithHTTPClient(&http.Client{Transport: transport, Jar: jar, Timeout: 30 * time.Second}),
		httpclient.WithClientLogger(a.log),
	)
	if err != nil {
		return err
	}

	filterRepo, err := filterboltrepo.New(db, a.cfg.GetFilterStoreKey())
	if err != nil {
		return err
	}
	a.filterStore, err = filters.NewStore(filterRepo, filters.WithLogger(a.log))
	if err != nil {
		return err
	}
	a.navigator = nav.New("/")
	a.filterStore.Watch(a.navigator)

	a.console = api.New(client, a.store)
	return nil
}

func (a *app) close() {
	if a.db != nil {
		_ = a.db.Close()
	}
}

func (a *app) requireSession(cmd *cobra.Command) error {
	if !a.store.Hydrated() {
		return errors.Wrapf(errors.ErrNotHydrated, "[app.requireSession]")
	}
	if !a.store.Snapshot().IsLoggedIn {
		return fmt.Errorf("not logged in, run %q first", cmd.Root().Name()+" login")
	}
	return nil
}

func prompt(label string) (string, error) {
	fmt.Printf("%s: ", label)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
