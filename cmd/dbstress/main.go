// dbstress is a stress-test harness for concurrent writes against an
// embedded (or client/server) relational storage engine.
//
//	dbstress insert -w 8 -n 10000
//	dbstress select
//	dbstress delete
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"dbstress/internal/config"
	"dbstress/internal/database"
	"dbstress/internal/report"
	"dbstress/internal/runner"
	"dbstress/internal/workloads/users"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("dbstress", flag.ContinueOnError)

	var (
		workers    int
		inserts    int64
		configPath string
		driverName string
		dsn        string
		jsonOut    bool
	)
	fs.IntVar(&workers, "w", 0, "number of insertion workers (default 4)")
	fs.IntVar(&workers, "workers", 0, "number of insertion workers (default 4)")
	fs.Int64Var(&inserts, "n", 0, "total records to insert (default 10000)")
	fs.Int64Var(&inserts, "inserts", 0, "total records to insert (default 10000)")
	fs.StringVar(&configPath, "config", "config.yaml", "path to configuration file")
	fs.StringVar(&driverName, "db", "", "database driver: sqlite, postgres, or mysql (default sqlite)")
	fs.StringVar(&dsn, "dsn", "", "database DSN: file path for sqlite, URL otherwise")
	fs.BoolVar(&jsonOut, "json", false, "print the run summary as JSON")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "dbstress - concurrent write stress harness\n\n")
		fmt.Fprintf(fs.Output(), "Usage: dbstress <command> [options]\n\n")
		fmt.Fprintf(fs.Output(), "Commands:\n")
		fmt.Fprintf(fs.Output(), "  insert   run the concurrent insertion workload\n")
		fmt.Fprintf(fs.Output(), "  select   print all stored records (single-threaded)\n")
		fmt.Fprintf(fs.Output(), "  delete   remove all stored records (single-threaded)\n\n")
		fmt.Fprintf(fs.Output(), "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(fs.Output(), "\nThe worker count applies only to the insertion workload.\n")
	}

	if len(args) == 0 {
		fs.Usage()
		return 2
	}

	command := args[0]
	if command == "-h" || command == "-help" || command == "--help" {
		fs.SetOutput(os.Stdout)
		fs.Usage()
		return 0
	}
	if err := fs.Parse(args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	switch command {
	case "insert", "select", "delete":
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", command)
		fs.Usage()
		return 2
	}

	logger := log.New(os.Stderr, "", log.LstdFlags)

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Printf("load config: %v", err)
		return 1
	}

	// Flags override the config file.
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["w"] || set["workers"] {
		cfg.Workload.Workers = workers
	}
	if set["n"] || set["inserts"] {
		cfg.Workload.Inserts = inserts
	}
	if driverName != "" {
		cfg.Database.Driver = driverName
	}
	if dsn != "" {
		cfg.Database.DSN = dsn
	}

	if err := cfg.Validate(); err != nil {
		logger.Printf("invalid configuration: %v", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	drv, err := database.New(cfg.Database.Driver, database.Options{
		BusyTimeout: cfg.Database.BusyTimeout.Std(),
	})
	if err != nil {
		logger.Printf("%v", err)
		return 1
	}

	if err := drv.Open(ctx, cfg.Database.DSN); err != nil {
		perr := &database.ProvisionError{Driver: database.Dialect(cfg.Database.Driver), Err: err}
		fmt.Fprintln(os.Stderr, perr)
		return 1
	}
	defer drv.Close()

	if err := users.Bootstrap(ctx, drv, logger); err != nil {
		logger.Printf("%v", err)
		return 1
	}

	switch command {
	case "insert":
		return runInsert(ctx, drv, cfg, jsonOut, logger)
	case "select":
		return runSelect(ctx, drv, logger)
	default: // delete, validated above
		return runDelete(ctx, drv, logger)
	}
}

func runInsert(ctx context.Context, drv database.Driver, cfg *config.Config, jsonOut bool, logger *log.Logger) int {
	summary, err := runner.Run(ctx, drv, users.Spec(drv.Dialect()), runner.Config{
		Workers: cfg.Workload.Workers,
		Inserts: cfg.Workload.Inserts,
		Policy: runner.Policy{
			MaxAttempts: cfg.Retry.MaxAttempts,
			BaseDelay:   cfg.Retry.BaseDelay.Std(),
			MaxDelay:    cfg.Retry.MaxDelay.Std(),
		},
	}, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if jsonOut {
		if err := report.RenderJSON(os.Stdout, summary); err != nil {
			logger.Printf("render summary: %v", err)
			return 1
		}
	} else {
		report.Render(os.Stdout, summary)
	}

	if summary.Fatal() {
		for _, fe := range summary.FatalErrors {
			fmt.Fprintf(os.Stderr, "worker %d: %s\n", fe.Worker, fe.Err)
		}
		return 1
	}
	return 0
}

func runSelect(ctx context.Context, drv database.Driver, logger *log.Logger) int {
	list, err := users.SelectAll(ctx, drv)
	if err != nil {
		logger.Printf("select users: %v", err)
		return 1
	}
	report.RenderUsers(os.Stdout, list)
	return 0
}

func runDelete(ctx context.Context, drv database.Driver, logger *log.Logger) int {
	n, err := users.DeleteAll(ctx, drv)
	if err != nil {
		logger.Printf("delete users: %v", err)
		return 1
	}
	fmt.Printf("Deleted %d rows\n", n)
	return 0
}
