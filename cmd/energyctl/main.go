// energyctl runs the gateway's inferences offline and manages dataset tables.
//
// Usage:
//
//	energyctl validate
//	energyctl sample --kind vm --count 5
//	energyctl predict
//	energyctl vm --count 3
//	energyctl db migrate
//	energyctl db seed
//	energyctl db status
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/OldStager01/energy-intelligence/internal/dataset"
	"github.com/OldStager01/energy-intelligence/internal/logger"
	"github.com/OldStager01/energy-intelligence/internal/orchestrator"
	"github.com/OldStager01/energy-intelligence/internal/sampler"
	"github.com/OldStager01/energy-intelligence/internal/state"
	"github.com/OldStager01/energy-intelligence/pkg/config"
	"github.com/OldStager01/energy-intelligence/pkg/database"
)

var version = "dev"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "energyctl",
		Usage:   "Energy Intelligence operator tool",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file",
				EnvVars: []string{"ENERGY_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "log-level",
				Value: "warn",
				Usage: "Log level (debug, info, warn, error)",
			},
		},
		Before: func(c *cli.Context) error {
			logger.Setup(c.String("log-level"), "development")
			logger.SetOutput(c.App.ErrWriter)
			return nil
		},
		Commands: []*cli.Command{
			validateCommand(),
			sampleCommand(),
			predictCommand(),
			vmCommand(),
			dbCommand(),
		},
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadState(c *cli.Context) (*config.Config, *state.State, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, nil, err
	}
	if c.IsSet("seed") {
		cfg.Sampler.Seed = c.Int64("seed")
	}
	st, err := orchestrator.LoadState(c.Context, cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, st, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	return enc.Encode(v)
}

func seedFlag() cli.Flag {
	return &cli.Int64Flag{
		Name:  "seed",
		Usage: "Override sampler.seed",
	}
}

func countFlag() cli.Flag {
	return &cli.IntFlag{
		Name:    "count",
		Aliases: []string{"n"},
		Value:   1,
		Usage:   "Number of samples",
	}
}

// =============================================================================
// VALIDATE COMMAND
// =============================================================================

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "Load every model and dataset and report what was loaded",
		Action: func(c *cli.Context) error {
			_, st, err := loadState(c)
			if err != nil {
				return err
			}
			return printJSON(c.App.Writer, st.Summary())
		},
	}
}

// =============================================================================
// SAMPLE COMMAND
// =============================================================================

func sampleCommand() *cli.Command {
	return &cli.Command{
		Name:  "sample",
		Usage: "Draw synthetic telemetry without running any model",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "kind",
				Aliases: []string{"k"},
				Value:   "power",
				Usage:   "What to sample (power, vm)",
			},
			countFlag(),
			seedFlag(),
		},
		Action: func(c *cli.Context) error {
			cfg, st, err := loadState(c)
			if err != nil {
				return err
			}

			s := sampler.New(st.Series, sampler.NewRand(cfg.Sampler.Seed), sampler.Config{
				NoiseFraction: cfg.Sampler.NoiseFraction,
				CoreCounts:    cfg.Sampler.CoreCounts,
			})

			kind := c.String("kind")
			for i := 0; i < c.Int("count"); i++ {
				var v interface{}
				switch kind {
				case "power":
					v = map[string]float64{"dc_power_w": float64(s.SamplePower())}
				case "vm":
					v = s.SampleVM()
				default:
					return fmt.Errorf("unknown kind %q (want power or vm)", kind)
				}
				if err := printJSON(c.App.Writer, v); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// =============================================================================
// PREDICT / VM COMMANDS
// =============================================================================

func predictCommand() *cli.Command {
	return &cli.Command{
		Name:  "predict",
		Usage: "Forecast the next interval from the recorded series",
		Action: func(c *cli.Context) error {
			cfg, st, err := loadState(c)
			if err != nil {
				return err
			}
			resp, err := orchestrator.NewGateway(cfg, st, nil).PredictPower(c.Context)
			if err != nil {
				return err
			}
			return printJSON(c.App.Writer, resp)
		},
	}
}

func vmCommand() *cli.Command {
	return &cli.Command{
		Name:  "vm",
		Usage: "Run VM inference on simulated snapshots",
		Flags: []cli.Flag{countFlag(), seedFlag()},
		Action: func(c *cli.Context) error {
			cfg, st, err := loadState(c)
			if err != nil {
				return err
			}
			gw := orchestrator.NewGateway(cfg, st, nil)
			for i := 0; i < c.Int("count"); i++ {
				resp, err := gw.VMInference(c.Context)
				if err != nil {
					return err
				}
				if err := printJSON(c.App.Writer, resp); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// =============================================================================
// DB COMMANDS
// =============================================================================

func dbCommand() *cli.Command {
	return &cli.Command{
		Name:  "db",
		Usage: "Manage dataset tables for the postgres and clickhouse sources",
		Subcommands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "Create the dataset tables",
				Action: func(c *cli.Context) error {
					_, db, err := openDatabase(c)
					if err != nil {
						return err
					}
					defer db.Close()
					if err := database.NewMigrator(db).Run(c.Context); err != nil {
						return fmt.Errorf("migration failed: %w", err)
					}
					fmt.Fprintln(c.App.Writer, "migrations applied")
					return nil
				},
			},
			{
				Name:  "status",
				Usage: "Report the server version and which dataset tables exist",
				Action: func(c *cli.Context) error {
					cfg, db, err := openDatabase(c)
					if err != nil {
						return err
					}
					defer db.Close()
					return status(c.Context, c.App.Writer, db, db.Driver, datasetTables(cfg))
				},
			},
			{
				Name:  "seed",
				Usage: "Copy the CSV snapshots into the dataset tables",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "from",
						Usage: "Directory holding the CSV files (defaults to datasets.dir)",
					},
				},
				Action: func(c *cli.Context) error {
					cfg, db, err := openDatabase(c)
					if err != nil {
						return err
					}
					defer db.Close()

					dir := cfg.Datasets.Dir
					if c.IsSet("from") {
						dir = c.String("from")
					}
					return seed(c.Context, c.App.Writer, db, dataset.NewFileSource(dir), datasetTables(cfg))
				},
			},
		},
	}
}

func openDatabase(c *cli.Context) (*config.Config, *database.DB, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, nil, err
	}
	db, err := orchestrator.OpenDatabase(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

func datasetTables(cfg *config.Config) []string {
	return []string{cfg.Datasets.Timeseries, cfg.Datasets.VMFeatures, cfg.Datasets.VMLevel}
}

type tableChecker interface {
	TableExists(ctx context.Context, table string) (bool, error)
}

type rowInserter interface {
	tableChecker
	InsertRows(ctx context.Context, table string, columns []string, rows [][]string) (int, error)
}

type prober interface {
	tableChecker
	HealthCheck(ctx context.Context) error
	GetVersion(ctx context.Context) (string, error)
}

type dbStatus struct {
	Driver  string          `json:"driver"`
	Version string          `json:"version"`
	Tables  map[string]bool `json:"tables"`
}

func status(ctx context.Context, w io.Writer, db prober, driver string, tables []string) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("%s is unreachable: %w", driver, err)
	}
	version, err := db.GetVersion(ctx)
	if err != nil {
		return err
	}

	st := dbStatus{Driver: driver, Version: version, Tables: make(map[string]bool, len(tables))}
	for _, table := range tables {
		ok, err := db.TableExists(ctx, table)
		if err != nil {
			return err
		}
		st.Tables[table] = ok
	}
	return printJSON(w, st)
}

// seed copies each CSV snapshot into the table of the same name. Tables must
// already exist.
func seed(ctx context.Context, w io.Writer, db rowInserter, src *dataset.FileSource, tables []string) error {
	for _, table := range tables {
		ok, err := db.TableExists(ctx, table)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("table %s does not exist, run energyctl db migrate first", table)
		}

		t, err := src.Table(ctx, table+".csv")
		if err != nil {
			return err
		}
		n, err := db.InsertRows(ctx, table, t.Columns, t.Rows)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s: %d rows\n", table, n)
	}
	return nil
}
