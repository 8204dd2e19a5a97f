package main

import (
	"fmt"

	"github.com/Spok95/stock-intake/internal/config"
	"github.com/Spok95/stock-intake/internal/domain/catalog"
	"github.com/Spok95/stock-intake/internal/infra/db"
	"github.com/Spok95/stock-intake/internal/infra/logger"
	"github.com/spf13/cobra"
)

func newCatalogCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect or import the store/item catalog",
	}

	check := &cobra.Command{
		Use:   "check",
		Short: "Load the configured catalog and print a summary",
		RunE: func(c *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			cat, err := loadCatalogStandalone(c, cfg)
			if err != nil {
				return err
			}
			out := c.OutOrStdout()
			fmt.Fprintf(out, "stores: %d\n", len(cat.Stores))
			for _, v := range cat.Vendors() {
				fmt.Fprintf(out, "vendor %s: %d items\n", v, len(cat.ItemsByVendor(v)))
			}
			fmt.Fprintf(out, "items: %d\n", len(cat.Items))
			return nil
		},
	}

	var workbook, storesCSV, itemsCSV string
	imp := &cobra.Command{
		Use:   "import",
		Short: "Replace the postgres catalog with a workbook or a pair of CSV files",
		RunE: func(c *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.Postgres.DSN == "" {
				return errNoPostgres
			}

			var cat *catalog.Catalog
			switch {
			case workbook != "":
				cat, err = catalog.LoadWorkbook(workbook)
			case storesCSV != "" && itemsCSV != "":
				cat, err = catalog.LoadCSV(storesCSV, itemsCSV)
			default:
				return fmt.Errorf("either --workbook or both --stores-csv and --items-csv are required")
			}
			if err != nil {
				return err
			}

			pool, err := db.Connect(c.Context(), cfg.Postgres.DSN)
			if err != nil {
				return err
			}
			defer pool.Close()
			if err := catalog.NewRepo(pool).Replace(c.Context(), cat); err != nil {
				return fmt.Errorf("replace catalog: %w", err)
			}
			logger.New(cfg.App.Env).Info("catalog imported", "stores", len(cat.Stores), "items", len(cat.Items))
			return nil
		},
	}
	imp.Flags().StringVar(&workbook, "workbook", "", "xlsx with sheets stores and items")
	imp.Flags().StringVar(&storesCSV, "stores-csv", "", "stores CSV")
	imp.Flags().StringVar(&itemsCSV, "items-csv", "", "items CSV")

	cmd.AddCommand(check, imp)
	return cmd
}

func loadCatalogStandalone(c *cobra.Command, cfg config.Config) (*catalog.Catalog, error) {
	if cfg.Catalog.Source != config.CatalogPostgres {
		return loadCatalog(c.Context(), cfg, nil)
	}
	pool, err := db.Connect(c.Context(), cfg.Postgres.DSN)
	if err != nil {
		return nil, err
	}
	defer pool.Close()
	return loadCatalog(c.Context(), cfg, pool)
}
