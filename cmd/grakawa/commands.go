package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/LukasKalbertodt/grakawa"
	"github.com/LukasKalbertodt/grakawa/core"
	"github.com/LukasKalbertodt/grakawa/storage"
	"github.com/LukasKalbertodt/grakawa/tracking"
)

var errInconsistent = errors.New("store is inconsistent")

func commands() []*cli.Command {
	return []*cli.Command{
		{
			Name:      "add",
			Usage:     "Start tracking products",
			ArgsUsage: "ID...",
			Action:    addCommand,
		},
		{
			Name:      "import",
			Usage:     "Track every product found by a search",
			ArgsUsage: "QUERY",
			Action:    importCommand,
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "pages",
					Usage: "Maximum number of result pages to fetch",
					Value: 1,
				},
			},
		},
		{
			Name:      "update",
			Usage:     "Fetch the price histories of tracked products",
			ArgsUsage: "[ID...]",
			Action:    updateCommand,
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "workers",
					Usage: "Number of histories fetched concurrently (overrides the config file)",
				},
				&cli.StringFlag{
					Name:  "metrics-file",
					Usage: "Write Prometheus metrics to this file after the run",
				},
			},
		},
		{
			Name:   "list",
			Usage:  "List tracked products",
			Action: listCommand,
		},
		{
			Name:      "show",
			Usage:     "Print the price history of a product",
			ArgsUsage: "ID",
			Action:    showCommand,
		},
		{
			Name:      "record",
			Usage:     "Record a price observed by hand",
			ArgsUsage: "ID PRICE",
			Action:    recordCommand,
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:        "date",
					Usage:       "Date of the observation (YYYY-MM-DD)",
					DefaultText: "today",
				},
			},
		},
		{
			Name:   "check",
			Usage:  "Compare the index with the product records",
			Action: checkCommand,
		},
	}
}

func openDatabase(c *cli.Context, online bool) (*grakawa.Database, error) {
	cfg, err := loadedConfig(c)
	if err != nil {
		return nil, err
	}

	var opts []grakawa.DatabaseOption
	if online {
		opts = append(opts, grakawa.WithSourceConfig(cfg.AcquireConfig()))
	}
	db, err := grakawa.NewDatabase(cfg.Store, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open store %s: %w", cfg.Store, err)
	}
	return db, nil
}

func parseIDs(args []string) ([]core.ProductID, error) {
	ids := make([]core.ProductID, 0, len(args))
	for _, arg := range args {
		id, err := core.ParseProductID(arg)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func interruptible(c *cli.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(c.Context, os.Interrupt)
}

func addCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("at least one product ID is required")
	}
	ids, err := parseIDs(c.Args().Slice())
	if err != nil {
		return err
	}

	db, err := openDatabase(c, false)
	if err != nil {
		return err
	}
	defer db.Close()

	for _, id := range ids {
		p, err := db.Store().AddProduct(id)
		if err != nil {
			return fmt.Errorf("failed to add product %s: %w", id, err)
		}
		if p == nil {
			fmt.Fprintf(c.App.Writer, "product %s is already tracked\n", id)
		} else {
			fmt.Fprintf(c.App.Writer, "added product %s\n", id)
		}
	}
	return nil
}

func importCommand(c *cli.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return errors.New("a search query is required")
	}

	db, err := openDatabase(c, true)
	if err != nil {
		return err
	}
	defer db.Close()

	importer, err := db.NewImporter(c.App.ErrWriter)
	if err != nil {
		return err
	}

	ctx, cancel := interruptible(c)
	defer cancel()
	summary, err := importer.Run(ctx, query, c.Int("pages"))
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	fmt.Fprintf(c.App.Writer, "found %d products on %d pages, %d newly tracked\n",
		summary.Found, summary.Pages, summary.Added)
	return nil
}

func updateCommand(c *cli.Context) error {
	ids, err := parseIDs(c.Args().Slice())
	if err != nil {
		return err
	}
	cfg, err := loadedConfig(c)
	if err != nil {
		return err
	}

	trackingConfig := cfg.TrackingConfig()
	if c.IsSet("workers") {
		if c.Int("workers") < 1 {
			return errors.New("workers must be greater than 0")
		}
		trackingConfig.Workers = c.Int("workers")
	}
	metricsFile := cfg.MetricsFile
	if c.IsSet("metrics-file") {
		metricsFile = c.String("metrics-file")
	}

	db, err := openDatabase(c, true)
	if err != nil {
		return err
	}
	defer db.Close()

	var opts []tracking.Option
	var metrics *tracking.Metrics
	if metricsFile != "" {
		metrics = tracking.NewMetrics(nil)
		opts = append(opts, tracking.WithMetrics(metrics))
	}

	updater, err := db.NewUpdater(trackingConfig, c.App.ErrWriter, opts...)
	if err != nil {
		return err
	}

	ctx, cancel := interruptible(c)
	defer cancel()
	_, runErr := updater.Run(ctx, ids...)

	if metrics != nil {
		if err := metrics.WriteTextfile(metricsFile); err != nil {
			return errors.Join(runErr, fmt.Errorf("failed to write metrics to %s: %w", metricsFile, err))
		}
	}
	if runErr != nil {
		return fmt.Errorf("update failed: %w", runErr)
	}
	return nil
}

func listCommand(c *cli.Context) error {
	db, err := openDatabase(c, false)
	if err != nil {
		return err
	}
	defer db.Close()

	for id := range db.Store().ProductIDs() {
		fmt.Fprintln(c.App.Writer, id)
	}
	return nil
}

func showCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("exactly one product ID is required")
	}
	id, err := core.ParseProductID(c.Args().First())
	if err != nil {
		return err
	}

	db, err := openDatabase(c, false)
	if err != nil {
		return err
	}
	defer db.Close()

	prices, err := db.History(id)
	if err != nil {
		return fmt.Errorf("failed to read product %s: %w", id, err)
	}
	if prices == nil {
		return fmt.Errorf("product %s is not tracked", id)
	}
	if len(prices) == 0 {
		fmt.Fprintf(c.App.Writer, "no prices recorded for product %s\n", id)
		return nil
	}
	for _, d := range prices.Dates() {
		fmt.Fprintf(c.App.Writer, "%s\t%s\n", d, prices[d])
	}
	return nil
}

func recordCommand(c *cli.Context) error {
	if c.NArg() != 2 {
		return errors.New("a product ID and a price are required")
	}
	id, err := core.ParseProductID(c.Args().Get(0))
	if err != nil {
		return err
	}
	price, err := core.ParseMoney(c.Args().Get(1))
	if err != nil {
		return err
	}
	date := core.Today()
	if c.IsSet("date") {
		if date, err = core.ParseDate(c.String("date")); err != nil {
			return err
		}
	}

	db, err := openDatabase(c, false)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.RecordPrice(id, date, price); err != nil {
		return fmt.Errorf("failed to record price: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "recorded %s for product %s on %s\n", price, id, date)
	return nil
}

func checkCommand(c *cli.Context) error {
	db, err := openDatabase(c, false)
	if err != nil {
		return err
	}
	defer db.Close()

	report, err := db.Store().Check()
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	w := c.App.Writer
	for _, p := range report.Products {
		switch p.Status {
		case storage.PriceFileCorrupt:
			fmt.Fprintf(w, "product %s: corrupt price file: %v\n", p.ID, p.Err)
		case storage.PriceFileMissing:
			fmt.Fprintf(w, "product %s: no price file yet\n", p.ID)
		default:
			fmt.Fprintf(w, "product %s: %d prices, fingerprint %s\n", p.ID, p.Entries, p.Fingerprint)
		}
	}
	for _, id := range report.MissingRecords {
		fmt.Fprintf(w, "product %s: indexed but has no record\n", id)
	}
	for _, id := range report.Unindexed {
		fmt.Fprintf(w, "product %s: record exists but is not indexed\n", id)
	}

	if !report.Consistent() {
		return errInconsistent
	}
	fmt.Fprintf(w, "%d products, consistent\n", len(report.Products))
	return nil
}
