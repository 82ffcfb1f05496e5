package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/failvault/internal/client/client"
	"github.com/dmitrijs2005/failvault/internal/client/config"
	"github.com/dmitrijs2005/failvault/internal/client/entitlements"
	"github.com/dmitrijs2005/failvault/internal/client/services"
	"github.com/dmitrijs2005/failvault/internal/client/wallet"
	"github.com/dmitrijs2005/failvault/internal/logging"
	"github.com/dmitrijs2005/failvault/internal/models"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

const pingTimeout = 3 * time.Second

// catalogView is the subset of *services.CatalogView the commands use.
type catalogView interface {
	Refresh(ctx context.Context) error
	Items() []services.Item
	Get(id string) (services.Item, error)
	SetSearch(term string)
	SetCategory(cat models.Category)
	Filters() (string, models.Category)
	Entitlements() entitlements.Set
	SetEntitlements(set entitlements.Set)
}

// adminView is the subset of *services.AdminView the commands use.
type adminView interface {
	Active() bool
	SignedIn() bool
	SignIn(ctx context.Context) error
	Records(ctx context.Context) ([]*models.Record, error)
	RequestDelete(id string) error
	ConfirmDelete(ctx context.Context) (string, error)
	CancelDelete()
}

type pinger interface {
	Ping(ctx context.Context) error
}

type App struct {
	config    *config.Config
	logger    logging.Logger
	out       io.Writer
	reader    *bufio.Reader
	closers   []func() error
	api       pinger
	session   *wallet.Session
	catalog   catalogView
	unlock    services.UnlockWorkflow
	publisher services.Publisher
	admin     adminView

	mu   sync.RWMutex
	Mode Mode
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewTextLogger(os.Stderr, slog.LevelInfo)

	db, err := client.InitDatabase(ctx, c.DBPath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	apiClient, err := client.NewCatalogClient(c.ServerEndpointAddr)
	if err != nil {
		db.Close()
		return nil, err
	}

	app := &App{
		config:  c,
		logger:  logger,
		out:     os.Stdout,
		reader:  bufio.NewReader(os.Stdin),
		closers: []func() error{apiClient.Close, db.Close},
		api:     apiClient,
	}

	gw, err := app.detectWallet(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}

	store := entitlements.NewStore(db)
	app.session = wallet.NewSession(gw)
	app.catalog = services.NewCatalogView(apiClient, store)
	app.unlock = services.NewUnlockWorkflow(gw, store, c.OperatorAddress, c.ConfirmTimeout, logger)
	app.publisher = services.NewPublisher(apiClient, app.session, c.ContractAddress, c.ConfirmTimeout, logger)
	app.admin = services.NewAdminView(apiClient, app.session, c.AdminAddress, logger)
	return app, nil
}

// detectWallet returns a nil Gateway when no wallet is configured; the
// workflows then fail with wallet.ErrNoWallet on use.
func (a *App) detectWallet(ctx context.Context) (wallet.Gateway, error) {
	p, err := wallet.Detect(ctx, a.config.WalletRPCURL, a.config.ConfirmPollInterval, a.logger)
	if errors.Is(err, wallet.ErrNoWallet) {
		a.logger.Warn(ctx, "no wallet configured, payments and publishing are disabled")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() error { p.Close(); return nil })
	return p, nil
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn(context.Background(), "close", "error", err)
		}
	}
	a.closers = nil
}

func (a *App) mode() Mode {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.Mode
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.Mode != mode
	a.Mode = mode
	a.mu.Unlock()

	if changed {
		a.logger.Info(context.Background(), "switched mode", "mode", string(mode))
	}
}

// Run starts the watchers and blocks in the REPL until the user exits or
// ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	fmt.Fprintln(a.out, "Welcome to FailVault CLI (type 'help' for commands)")

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	if _, err := a.session.Refresh(ctx); err != nil && !errors.Is(err, wallet.ErrNoWallet) {
		a.logger.Warn(ctx, "wallet unavailable", "error", err)
	}
	go a.watchSession(ctx)

	if err := a.catalog.Refresh(ctx); err != nil {
		a.logger.Warn(ctx, "catalog not loaded", "error", err)
	}

	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pctx, cancel := context.WithTimeout(ctx, pingTimeout)
			err := a.api.Ping(pctx)
			cancel()

			if err != nil {
				a.setMode(ModeOffline)
			} else {
				a.setMode(ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}

// watchSession logs account changes reported by the wallet session.
func (a *App) watchSession(ctx context.Context) {
	ch, unsubscribe := a.session.Subscribe()
	defer unsubscribe()

	for {
		select {
		case acct, ok := <-ch:
			if !ok {
				return
			}
			if acct.Connected {
				a.logger.Info(ctx, "wallet account", "address", acct.Address.Hex())
			}
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) getStatus() string {
	s := ""
	if acct := a.session.Current(); acct.Connected {
		s = models.ShortAddress(acct.Address.Hex()) + " "
		if a.admin.Active() {
			s += "admin "
		}
	}
	if m := a.mode(); m != "" {
		s += string(m)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}
