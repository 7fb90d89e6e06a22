// Package app provides application initialization and dependency injection.
package app

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/measure-pricing-service/config"
	"github.com/guttosm/measure-pricing-service/internal/http"
)

// App is the wired application.
type App struct {
	Router   *gin.Engine
	Storage  *StorageComponents
	Services *ServiceComponents
}

// InitializeApp creates and wires all application dependencies.
func InitializeApp(cfg config.Config) *App {
	InitializeLogger(cfg.Log)

	storage := InitializeDatabase(cfg.Database)
	services := InitializeServices(cfg, storage)
	routerComponents := InitializeRouter(services, storage, cfg)

	return &App{
		Router:   http.NewRouter(routerComponents.Handler, routerComponents.HealthHandler, routerComponents.Config),
		Storage:  storage,
		Services: services,
	}
}

// Close stops background work and closes storage.
func (a *App) Close(ctx context.Context) error {
	a.Services.Stop()
	return a.Storage.Close(ctx)
}
