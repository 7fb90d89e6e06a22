// Package main is the entry point for the measure-pricing-service application.
//
// @title           Measure Pricing Service API
// @version         1.0.0
// @description     Measurement-based price calculation for catalog products.
//
//	Converts customer measurements into product quantities and prices them
//	against per-product tiered pricing rules.
//
// @contact.name   API Support
// @contact.email  support@example.com
//
// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT
//
// @host      localhost:8080
// @BasePath  /
//
// @tag.name        Measurements
// @tag.description Unit conversion
//
// @tag.name        Pricing
// @tag.description Measurement totals, quantities and prices
//
// @tag.name        Catalog
// @tag.description Products, calculator settings and pricing rules
//
// @tag.name        Quotes
// @tag.description Stored price quotes
//
// @tag.name        Unit Defaults
// @tag.description Store-wide default units
//
// @tag.name        Health
// @tag.description Health check endpoints
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	_ "github.com/guttosm/measure-pricing-service/docs" // swagger docs

	"github.com/guttosm/measure-pricing-service/config"
	"github.com/guttosm/measure-pricing-service/internal/app"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Server error")
	}
}

func run() error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	application := app.InitializeApp(cfg)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := application.Close(ctx); err != nil {
			log.Error().Err(err).Msg("Failed to close storage")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return app.NewServer(application.Router, cfg.Server).Run(ctx)
}
