package forumsync

import (
	"github.com/rs/zerolog"

	"github.com/colonyops/forumsync/internal/core/config"
	"github.com/colonyops/forumsync/internal/core/forum"
	"github.com/colonyops/forumsync/internal/data/db"
	"github.com/colonyops/forumsync/internal/data/stores"
)

// App is the central entry point for forumsync operations. Commands consume
// App instead of cherry-picking raw dependencies.
type App struct {
	Config   *config.Config
	DB       *db.DB
	Tasks    *stores.TaskStore
	Mappings *stores.MappingStore
	Controls *stores.ControlStore
}

// NewApp wires the stores on top of an open database.
func NewApp(cfg *config.Config, database *db.DB) *App {
	kvStore := stores.NewKVStore(database)
	return &App{
		Config:   cfg,
		DB:       database,
		Tasks:    stores.NewTaskStore(database),
		Mappings: stores.NewMappingStore(kvStore),
		Controls: stores.NewControlStore(kvStore),
	}
}

// Reconciler returns a reconciler for the configured forum channel.
func (a *App) Reconciler(gw forum.ThreadGateway, log zerolog.Logger) *Reconciler {
	return NewReconciler(a.Tasks, gw, a.Mappings, a.Controls, a.Config.Discord.ForumChannelID, log)
}

// Links returns the service that applies forum-side edits to tasks.
func (a *App) Links(log zerolog.Logger) *LinkService {
	return NewLinkService(a.Tasks, a.Mappings, log)
}
