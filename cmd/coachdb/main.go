// Command coachdb prepares and inspects the coaching application's database.
//
//	coachdb [--config file] [--log-level level] <migrate|ping|status> [--json]
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	flag "github.com/spf13/pflag"
	"go.opentelemetry.io/otel/attribute"

	"github.com/lifecoach/std/v1/database"
	"github.com/lifecoach/std/v1/logger"
	"github.com/lifecoach/std/v1/schema"
	"github.com/lifecoach/std/v1/storage"
	"github.com/lifecoach/std/v1/tracer"
)

const (
	ExitOK     = 0
	ExitError  = 1
	ExitConfig = 2
	ExitUsage  = 64
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type globalFlags struct {
	configPath string
	logLevel   string
	timeout    time.Duration
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("coachdb", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.SetInterspersed(false)

	var g globalFlags
	fs.StringVarP(&g.configPath, "config", "c", "", "YAML configuration file")
	fs.StringVar(&g.logLevel, "log-level", logger.Warning, "debug, info, warning or error")
	fs.DurationVar(&g.timeout, "timeout", 30*time.Second, "deadline for the whole command")
	fs.Usage = func() {
		fmt.Fprintf(stderr, `Usage: coachdb [options] <command> [command options]

Commands:
  migrate   Create missing tables and apply pending column migrations
  ping      Check that the configured engine is reachable
  status    Show which migrations are applied or pending

Options:
%s
Environment:
  COACH_ENGINE, DATABASE_URL, SQLITE_PATH and the other COACH_* variables
  override the configuration file. TRACEPARENT, TRACESTATE and BAGGAGE
  continue a caller's trace; TRACER_* variables configure span export.
`, fs.FlagUsages())
	}

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return ExitOK
		}
		return ExitUsage
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return ExitUsage
	}

	var cmd func(*app, context.Context, []string) int
	switch fs.Arg(0) {
	case "migrate":
		cmd = (*app).migrate
	case "ping":
		cmd = (*app).ping
	case "status":
		cmd = (*app).status
	default:
		fmt.Fprintf(stderr, "Error: unknown command %q\n\n", fs.Arg(0))
		fs.Usage()
		return ExitUsage
	}

	cfg, err := storage.LoadConfig(g.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitConfig
	}
	tcfg := tracer.Config{ServiceName: "coachdb"}
	if err := envconfig.Process("", &tcfg); err != nil {
		fmt.Fprintf(stderr, "Error: tracer config: %v\n", err)
		return ExitConfig
	}

	log := logger.NewLoggerClient(logger.Config{Level: g.logLevel, ServiceName: "coachdb"})
	defer func() { _ = log.Zap.Sync() }()

	tr, err := tracer.NewClient(tcfg, log)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitConfig
	}
	defer func() {
		sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer scancel()
		if err := tr.Shutdown(sctx); err != nil {
			log.Warn("failed to flush spans", err)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	ctx = tr.ContextFromEnv(ctx, os.Getenv)
	ctx, span := tr.StartSpan(ctx, "coachdb."+fs.Arg(0), map[string]interface{}{
		"engine": string(cfg.EngineName()),
	})
	a := &app{log: log, tracer: tr, stdout: stdout, stderr: stderr}

	db, err := storage.New(cfg, storage.Options{Logger: log, Observer: tr})
	if err != nil {
		code := a.fail(ctx, "failed to open database", err, map[string]interface{}{"engine": cfg.EngineName()})
		tr.EndSpan(span, nil)
		return code
	}
	a.db = db
	defer func() {
		if err := db.GracefulShutdown(); err != nil {
			log.Warn("failed to close database", err)
		}
	}()

	code := cmd(a, ctx, fs.Args()[1:])
	span.SetAttributes(attribute.Int("exit_code", code))
	tr.EndSpan(span, nil)
	return code
}

// app carries what every command needs. Output goes to stdout; failures go
// to stderr, the log and the command span.
type app struct {
	db     database.DB
	log    *logger.Logger
	tracer *tracer.Tracer
	stdout io.Writer
	stderr io.Writer
}

func (a *app) fail(ctx context.Context, msg string, err error, fields ...map[string]interface{}) int {
	a.log.Error(msg, err, fields...)
	a.tracer.RecordError(ctx, err)
	fmt.Fprintf(a.stderr, "Error: %s: %v\n", msg, err)
	return ExitError
}

func (a *app) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

func (a *app) migrate(ctx context.Context, args []string) int {
	fs := a.flags("migrate")
	asJSON := fs.Bool("json", false, "print the report as JSON")
	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}

	report, err := storage.Prepare(ctx, a.db, a.log)
	if err != nil {
		return a.fail(ctx, "migration failed", err)
	}
	a.log.Info("migration finished", nil, map[string]interface{}{
		"engine":  report.Engine,
		"applied": report.Applied(),
	})
	return printReport(a.stdout, report, *asJSON)
}

func (a *app) ping(ctx context.Context, args []string) int {
	if err := a.flags("ping").Parse(args); err != nil {
		return ExitUsage
	}

	start := time.Now()
	if err := a.db.Ping(ctx); err != nil {
		return a.fail(ctx, string(a.db.Engine())+" unreachable", err, map[string]interface{}{"engine": a.db.Engine()})
	}
	fmt.Fprintf(a.stdout, "%s: ok (%s)\n", a.db.Engine(), time.Since(start).Round(time.Microsecond))
	return ExitOK
}

func (a *app) status(ctx context.Context, args []string) int {
	fs := a.flags("status")
	asJSON := fs.Bool("json", false, "print the report as JSON")
	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}

	report, err := schema.NewMigrator(a.db, schema.WithLogger(a.log)).Plan(ctx)
	if err != nil {
		return a.fail(ctx, "status unavailable", err)
	}
	return printReport(a.stdout, report, *asJSON)
}

type stepJSON struct {
	Name   string `json:"name"`
	Table  string `json:"table"`
	Column string `json:"column"`
	Status string `json:"status"`
}

type reportJSON struct {
	Engine  string     `json:"engine"`
	Steps   []stepJSON `json:"steps"`
	Pending int        `json:"pending"`
}

func printReport(w io.Writer, report schema.Report, asJSON bool) int {
	if asJSON {
		out := reportJSON{Engine: string(report.Engine), Pending: len(report.Pending())}
		for _, s := range report.Steps {
			out.Steps = append(out.Steps, stepJSON{Name: s.Name, Table: s.Table, Column: s.Column, Status: string(s.Status)})
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return ExitError
		}
		return ExitOK
	}

	fmt.Fprintf(w, "engine: %s\n", report.Engine)
	for _, s := range report.Steps {
		fmt.Fprintf(w, "  %-22s %-8s %s.%s\n", s.Name, s.Status, s.Table, s.Column)
	}
	fmt.Fprintf(w, "%d pending\n", len(report.Pending()))
	return ExitOK
}
