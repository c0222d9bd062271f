package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/dlrabinowitz/ls4scheduler/internal/auth"
	"github.com/dlrabinowitz/ls4scheduler/internal/field"
	"github.com/dlrabinowitz/ls4scheduler/internal/journal"
	"github.com/dlrabinowitz/ls4scheduler/internal/monitor"
	"github.com/dlrabinowitz/ls4scheduler/internal/night"
	"github.com/dlrabinowitz/ls4scheduler/internal/obsloop"
	"github.com/dlrabinowitz/ls4scheduler/internal/oracle"
	"github.com/dlrabinowitz/ls4scheduler/internal/sequence"
	"github.com/dlrabinowitz/ls4scheduler/internal/signals"
	"github.com/dlrabinowitz/ls4scheduler/internal/site"
	"github.com/dlrabinowitz/ls4scheduler/internal/store"
	"github.com/dlrabinowitz/ls4scheduler/internal/weather"
	"github.com/dlrabinowitz/ls4scheduler/pkg/config"
)

// exit codes, per spec.md §6.
const (
	exitNormal   = 0
	exitFatal    = 255 // -1 as an unsigned os.Exit code
	exitSignaled = 1
)

func main() {
	os.Exit(run())
}

func run() int {
	log.Println("===========================================")
	log.Println("  LS4 Survey Telescope Scheduler")
	log.Println("===========================================")

	if len(os.Args) < 6 || len(os.Args) > 7 {
		fmt.Fprintln(os.Stderr, "usage: scheduler <sequence_file> <yyyy> <mo> <d> <verbose_level> [<weather_file>]")
		return exitFatal
	}

	sequencePath := os.Args[1]
	year, errYear := strconv.Atoi(os.Args[2])
	month, errMonth := strconv.Atoi(os.Args[3])
	day, errDay := strconv.Atoi(os.Args[4])
	verbose, errVerbose := strconv.Atoi(os.Args[5])
	if errYear != nil || errMonth != nil || errDay != nil || errVerbose != nil {
		log.Printf("fatal: could not parse date/verbose arguments")
		return exitFatal
	}

	siteName := os.Getenv("SITE_NAME")
	if siteName == "" {
		siteName = site.DefaultSiteName
	}
	obsSite, err := site.Load(siteName)
	if err != nil {
		log.Printf("fatal: %v", err)
		return exitFatal
	}
	log.Printf("Site: %s (%s)", obsSite.Name, siteName)

	cfg, err := config.Load("configs/config.json")
	if err != nil {
		log.Printf("fatal: loading config: %v", err)
		return exitFatal
	}

	nc := night.InitNight(oracle.Date{Year: year, Month: month, Day: day}, obsSite, false)
	log.Printf("Night window: JD %.5f - %.5f", nc.JDStart, nc.JDEnd)

	fields, err := loadFields(sequencePath, nc, obsSite)
	if err != nil {
		log.Printf("fatal: %v", err)
		return exitFatal
	}
	log.Printf("Loaded %d fields", len(fields))

	ctx := obsloop.NewContext(fields, nc, obsSite, sequencePath, journal.FileName,
		cfg.Camera.Host, cfg.Telescope.Host, verbose)

	if len(os.Args) == 7 {
		windows, err := weather.ParseFile(os.Args[6])
		if err != nil {
			log.Printf("fatal: parsing weather file: %v", err)
			return exitFatal
		}
		log.Printf("simulated-run weather file loaded: %d windows", len(windows))
		ctx.WeatherWindows = windows
	}

	stop := signals.Install(ctx.Signals)
	defer stop()

	if srv, dbConn := startMonitor(cfg, ctx); srv != nil {
		defer dbConn.Close()
		go func() {
			log.Printf("monitor API listening on %s:%s", cfg.Server.Host, cfg.Server.Port)
			if err := http.ListenAndServe(cfg.Server.Host+":"+cfg.Server.Port, srv.Router()); err != nil {
				log.Printf("monitor API stopped: %v", err)
			}
		}()
		go mirrorToStore(context.Background(), ctx, dbConn, nc.Date)
	}

	log.Println("Starting observation loop. Send SIGUSR1 to pause, SIGUSR2 to resume, SIGTERM to stop.")
	if err := ctx.Run(context.Background()); err != nil && err != obsloop.ErrSunrise {
		log.Printf("observation loop ended with error: %v", err)
		return exitFatal
	} else if err == obsloop.ErrSunrise {
		log.Println("night ended at sunrise")
	}

	if ctx.Signals.Terminating() {
		return exitSignaled
	}
	return exitNormal
}

// loadFields resumes from the recovery journal if present, otherwise parses
// the sequence file fresh and seeds each field's nightly feasibility window,
// per spec.md §4.7.
func loadFields(sequencePath string, nc night.Context, obsSite oracle.Site) ([]*field.Field, error) {
	fields, _, err := journal.Read(journal.FileName)
	if err == nil {
		log.Printf("resumed from recovery journal %s", journal.FileName)
		return fields, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading journal: %w", err)
	}

	log.Printf("no recovery journal found, parsing %s", sequencePath)
	parsed, _, _, errs, err := sequence.ParseFile(sequencePath, 0, "")
	if err != nil {
		return nil, fmt.Errorf("parsing sequence file: %w", err)
	}
	for _, e := range errs {
		log.Printf("sequence parse error: %v", e)
	}
	for i, f := range parsed {
		f.Index = i
	}
	obsloop.InitFields(parsed, nc, obsSite, nc.JDStart)
	return parsed, nil
}

// startMonitor connects to the Postgres mirror and builds the monitor API
// server around the running loop, so an operator can watch and control this
// run over HTTP/websocket. A connection failure is logged and treated as
// "monitor API disabled for this run" rather than fatal: the observation
// loop itself has no dependency on Postgres being reachable.
func startMonitor(cfg *config.Config, loopCtx *obsloop.SchedulerContext) (*monitor.Server, *store.DB) {
	dbConn, err := store.Connect(cfg.Database)
	if err != nil {
		log.Printf("monitor API disabled: %v", err)
		return nil, nil
	}
	if err := dbConn.InitSchema(context.Background()); err != nil {
		log.Printf("monitor API disabled: schema init: %v", err)
		dbConn.Close()
		return nil, nil
	}

	authSvc := auth.NewService(auth.Config{
		JWTSecret: getEnvOrDefault("JWT_SECRET", "dev-secret-change-in-production"),
	})
	userRepo := store.NewUserRepository(dbConn.DB)
	fieldDB := store.NewFieldRepository(dbConn)
	visitDB := store.NewVisitRepository(dbConn)

	return monitor.NewServer(authSvc, userRepo, fieldDB, visitDB, loopCtx), dbConn
}

// mirrorToStore periodically upserts the in-memory field roster (and any
// newly recorded visits) into Postgres, on the loop's own idle cadence, so
// the monitor API and cmd/scheduler-tui see state without holding a
// reference into this process.
func mirrorToStore(ctx context.Context, loopCtx *obsloop.SchedulerContext, db *store.DB, date oracle.Date) {
	fieldDB := store.NewFieldRepository(db)
	visitDB := store.NewVisitRepository(db)
	nightDate := time.Date(date.Year, time.Month(date.Month), date.Day, 0, 0, 0, 0, time.UTC)

	synced := make([]int, len(loopCtx.Fields))
	ticker := time.NewTicker(obsloop.CoarseTick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		for _, f := range loopCtx.Fields {
			if err := fieldDB.UpsertField(ctx, nightDate, f); err != nil {
				log.Printf("monitor mirror: upsert field %d: %v", f.Index, err)
				continue
			}
			for _, v := range f.Visits[synced[f.Index]:] {
				if err := visitDB.RecordVisit(ctx, nightDate, f.Index, v); err != nil {
					log.Printf("monitor mirror: record visit for field %d: %v", f.Index, err)
					continue
				}
				synced[f.Index]++
			}
		}
	}
}

// getEnvOrDefault returns the named environment variable, or def if unset.
func getEnvOrDefault(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}
