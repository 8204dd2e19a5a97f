package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Spok95/stock-intake/internal/config"
	"github.com/Spok95/stock-intake/internal/domain/catalog"
	"github.com/Spok95/stock-intake/internal/domain/inventory"
	"github.com/Spok95/stock-intake/internal/infra/db"
	"github.com/Spok95/stock-intake/internal/infra/objstore"
	"github.com/Spok95/stock-intake/internal/infra/sheets"
	"github.com/Spok95/stock-intake/internal/report"
	"github.com/jackc/pgx/v5/pgxpool"
)

// deps то, что нужно любой команде, работающей с журналом.
type deps struct {
	cfg     config.Config
	log     *slog.Logger
	pool    *pgxpool.Pool
	catalog *catalog.Catalog
	sink    inventory.Sink
	loc     *time.Location
}

func (d *deps) Close() {
	if d.pool != nil {
		d.pool.Close()
	}
}

func buildDeps(ctx context.Context, cfg config.Config, log *slog.Logger) (*deps, error) {
	d := &deps{cfg: cfg, log: log}

	loc, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil {
		return nil, fmt.Errorf("app.timezone: %w", err)
	}
	d.loc = loc

	if cfg.NeedsPostgres() {
		pool, err := db.Connect(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, fmt.Errorf("db connect: %w", err)
		}
		d.pool = pool
		log.Info("db connected")
	}

	if d.catalog, err = loadCatalog(ctx, cfg, d.pool); err != nil {
		d.Close()
		return nil, err
	}
	log.Info("catalog loaded", "source", cfg.Catalog.Source,
		"stores", len(d.catalog.Stores), "vendors", len(d.catalog.Vendors()), "items", len(d.catalog.Items))

	if d.sink, err = openSink(ctx, cfg, d.pool); err != nil {
		d.Close()
		return nil, err
	}
	log.Info("sink ready", "driver", cfg.Sink.Driver)
	return d, nil
}

func loadCatalog(ctx context.Context, cfg config.Config, pool *pgxpool.Pool) (*catalog.Catalog, error) {
	switch cfg.Catalog.Source {
	case config.CatalogWorkbook:
		return catalog.LoadWorkbook(cfg.Catalog.Workbook)
	case config.CatalogCSV:
		return catalog.LoadCSV(cfg.Catalog.StoresCSV, cfg.Catalog.ItemsCSV)
	case config.CatalogPostgres:
		return catalog.NewRepo(pool).Load(ctx)
	}
	return nil, fmt.Errorf("unknown catalog.source %q", cfg.Catalog.Source)
}

func openSink(ctx context.Context, cfg config.Config, pool *pgxpool.Pool) (inventory.Sink, error) {
	switch cfg.Sink.Driver {
	case config.SinkMemory:
		return inventory.NewMemorySink(), nil
	case config.SinkPostgres:
		return inventory.NewRepo(pool), nil
	case config.SinkSheets:
		svc, err := sheets.NewService(ctx, cfg.Sheets.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", inventory.ErrSinkUnavailable, err)
		}
		return sheets.NewRecordSink(svc, cfg.Sheets.SpreadsheetID, cfg.Sheets.Worksheet), nil
	}
	return nil, fmt.Errorf("unknown sink.driver %q", cfg.Sink.Driver)
}

// newArchiver nil, если архив выключен.
func newArchiver(ctx context.Context, cfg config.Config, log *slog.Logger) (*report.Archiver, error) {
	ac := cfg.Reports.Archive
	if !ac.Enabled {
		return nil, nil
	}
	client, err := objstore.NewClient(objstore.Config{
		Endpoint:  ac.Endpoint,
		AccessKey: ac.AccessKey,
		SecretKey: ac.SecretKey,
		UseSSL:    ac.UseSSL,
	})
	if err != nil {
		return nil, err
	}
	a := report.NewArchiver(client, ac.Bucket, log.With("component", "archive"))
	if err := a.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("archive bucket %s: %w", ac.Bucket, err)
	}
	return a, nil
}

var errNoPostgres = errors.New("postgres.dsn is not configured")
