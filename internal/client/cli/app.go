package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/selfplanner/internal/client/api"
	"github.com/dmitrijs2005/selfplanner/internal/client/config"
	"github.com/dmitrijs2005/selfplanner/internal/client/models"
	"github.com/dmitrijs2005/selfplanner/internal/client/services"
	"github.com/dmitrijs2005/selfplanner/internal/client/storage"
	"github.com/dmitrijs2005/selfplanner/internal/logging"
	"github.com/dmitrijs2005/selfplanner/internal/planner"

	_ "modernc.org/sqlite"
)

const dateLayout = "2006-01-02"

// App holds the wired client services and the REPL session state: the
// logged-in user and the working date every planner command operates on.
type App struct {
	config *config.Config
	db     *sql.DB
	store  *storage.Store
	auth   *services.AuthService
	sync   *services.SyncService
	log    logging.Logger

	reader *bufio.Reader
	user   *models.User
	date   string

	now func() time.Time
}

func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	db, err := storage.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	store := storage.NewStore(db)
	apiClient := api.New(c.ServerURL, c.RequestTimeout)

	a := &App{
		config: c,
		db:     db,
		store:  store,
		auth:   services.NewAuthService(apiClient, store),
		sync:   services.NewSyncService(apiClient, store, log, c.SyncCooldown),
		log:    log,
		reader: bufio.NewReader(os.Stdin),
		now:    time.Now,
	}
	a.date = a.now().Format(dateLayout)
	return a, nil
}

// Close releases the local database.
func (a *App) Close() error {
	return a.db.Close()
}

func (a *App) isLoggedIn() bool {
	return a.user != nil
}

// getStatus builds the prompt suffix: the logged-in email, the working
// date, and server reachability.
func (a *App) getStatus() string {
	s := a.date
	if a.user != nil {
		s = a.user.Email + " " + s
	}
	if a.sync.Ready() {
		s = s + " online"
	}
	return fmt.Sprintf("(%s)", s)
}

// plan loads the working date's plan for the session user.
func (a *App) plan(ctx context.Context) *planner.Plan {
	return planner.Load(ctx, a.store, a.user.ID, a.date)
}

// Run restores a persisted session, starts the reachability probe, and
// blocks in the REPL until the user exits.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	if user := a.auth.Restore(ctx); user != nil {
		a.user = user
		printlnFn("Welcome back,", user.Email)
	}

	go a.sync.RunHealthProbe(ctx, a.config.ProbeInterval)

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}
