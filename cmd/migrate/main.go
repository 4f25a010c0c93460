// migrate aplica el esquema embebido y, opcionalmente, la conciliación única del stock heredado.
//
// Uso:
//
//	go run ./cmd/migrate            aplica migraciones pendientes
//	go run ./cmd/migrate -down      revierte todas las migraciones
//	go run ./cmd/migrate -reconcile aplica migraciones y crea lotes sintéticos para el stock sin lotes
package main

import (
	"context"
	"flag"
	"os"

	"github.com/jhoicas/labstock-api/internal/application/inventory"
	"github.com/jhoicas/labstock-api/internal/infrastructure/postgres"
	"github.com/jhoicas/labstock-api/pkg/config"
	"github.com/jhoicas/labstock-api/pkg/logger"
)

func main() {
	down := flag.Bool("down", false, "revertir todas las migraciones")
	reconcile := flag.Bool("reconcile", false, "crear lotes sintéticos para el stock heredado sin lotes")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	mg, err := postgres.NewMigrator(cfg.DB.ConnectionString(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("crear migrador")
	}
	if *down {
		err = mg.Down()
	} else {
		err = mg.Up()
	}
	_ = mg.Close()
	if err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}
	if *down || !*reconcile {
		return
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	stocks := postgres.NewStockRepository(pool)
	uc := inventory.NewReconcileUseCase(postgres.NewTxRunner(pool, cfg.DB.LockTimeout), stocks, log)
	companies, err := stocks.ListCompanyIDs(ctx)
	if err != nil {
		log.Error().Err(err).Msg("listar empresas")
		os.Exit(1)
	}
	failed := 0
	for _, companyID := range companies {
		report, err := uc.MigrateLegacyStock(ctx, companyID)
		if err != nil {
			failed++
			log.Error().Err(err).Str("company_id", companyID).Msg("conciliación de stock heredado")
			continue
		}
		log.Info().
			Str("company_id", companyID).
			Int("lotes_sinteticos", len(report.SyntheticLots)).
			Int("agregados_recalculados", len(report.Refreshed)).
			Msg("stock heredado conciliado")
	}
	if failed > 0 {
		os.Exit(1)
	}
}
