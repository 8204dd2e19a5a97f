package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Spok95/stock-intake/internal/config"
	"github.com/Spok95/stock-intake/internal/domain/inventory"
	"github.com/Spok95/stock-intake/internal/infra/logger"
	"github.com/Spok95/stock-intake/internal/infra/metrics"
	"github.com/Spok95/stock-intake/internal/intake"
	"github.com/Spok95/stock-intake/internal/report"
	"github.com/spf13/cobra"
)

type reportFlags struct {
	store  string
	date   string
	from   string
	to     string
	format string
	out    string
}

func newReportCmd(configPath *string) *cobra.Command {
	var f reportFlags

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print or export reports from the inventory journal",
	}
	cmd.PersistentFlags().StringVar(&f.store, "store", "", "store id")
	cmd.PersistentFlags().StringVar(&f.format, "format", intake.FormatText, "text | xlsx")
	cmd.PersistentFlags().StringVarP(&f.out, "out", "o", "", "xlsx output path (default: generated file name)")
	_ = cmd.MarkPersistentFlagRequired("store")

	orders := &cobra.Command{
		Use:   "orders",
		Short: "Purchase orders of a store for one day",
		RunE: func(c *cobra.Command, _ []string) error {
			return runReport(c.Context(), *configPath, report.KindOrders, f, c.OutOrStdout())
		},
	}
	orders.Flags().StringVar(&f.date, "date", "", "YYYY-MM-DD (default: today in app.timezone)")

	period := &cobra.Command{
		Use:   "period",
		Short: "Usage/purchase summary of a store over [from, to]",
		RunE: func(c *cobra.Command, _ []string) error {
			return runReport(c.Context(), *configPath, report.KindPeriod, f, c.OutOrStdout())
		},
	}
	period.Flags().StringVar(&f.from, "from", "", "YYYY-MM-DD, inclusive")
	period.Flags().StringVar(&f.to, "to", "", "YYYY-MM-DD, inclusive")
	_ = period.MarkFlagRequired("from")
	_ = period.MarkFlagRequired("to")

	cmd.AddCommand(orders, period)
	return cmd
}

func runReport(ctx context.Context, configPath, kind string, f reportFlags, stdout io.Writer) error {
	if f.format != intake.FormatText && f.format != intake.FormatXLSX {
		return fmt.Errorf("unsupported --format %q", f.format)
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logger.New(cfg.App.Env)

	d, err := buildDeps(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer d.Close()
	svc := intake.NewService(d.catalog, d.sink, log, metrics.New(), intake.WithLocation(d.loc))
	storeName := d.catalog.StoreName(f.store)

	var (
		text     string
		data     []byte
		fileDate time.Time
	)
	switch kind {
	case report.KindOrders:
		var day time.Time
		if f.date != "" {
			if day, err = inventory.ParseDay(f.date); err != nil {
				return fmt.Errorf("--date: %w", err)
			}
		}
		lines, day, err := svc.Orders(ctx, f.store, day)
		if err != nil {
			return err
		}
		fileDate = day
		if f.format == intake.FormatText {
			text = report.OrdersText(storeName, day, lines)
		} else if data, err = report.OrdersWorkbook(storeName, day, lines); err != nil {
			return err
		}

	case report.KindPeriod:
		from, err := inventory.ParseDay(f.from)
		if err != nil {
			return fmt.Errorf("--from: %w", err)
		}
		to, err := inventory.ParseDay(f.to)
		if err != nil {
			return fmt.Errorf("--to: %w", err)
		}
		rows, err := svc.Period(ctx, f.store, from, to)
		if err != nil {
			return err
		}
		fileDate = to
		if f.format == intake.FormatText {
			text = report.PeriodText(storeName, from, to, rows)
		} else if data, err = report.PeriodWorkbook(storeName, from, to, rows); err != nil {
			return err
		}
	}

	if f.format == intake.FormatText {
		_, err = io.WriteString(stdout, text)
		return err
	}

	name := report.FileName(kind, f.store, fileDate)
	out := f.out
	if out == "" {
		out = name
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return err
	}
	log.Info("report written", "kind", kind, "store", f.store, "path", out)

	archiver, err := newArchiver(ctx, cfg, log)
	if err != nil {
		return err
	}
	if archiver != nil {
		if _, err := archiver.Archive(ctx, f.store, name, data); err != nil {
			return err
		}
	}
	return nil
}
