// Command shift-backfill reprocesses past shifts without starting the HTTP
// server.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"backoffice-backend/internal/bootstrap"
	"backoffice-backend/internal/config"
	"backoffice-backend/internal/database"
	"backoffice-backend/internal/pipeline"
	"backoffice-backend/internal/shift"

	"github.com/sirupsen/logrus"
)

func main() {
	days := flag.Int("days", 31, "number of completed shifts to reprocess, oldest first")
	date := flag.String("date", "", "process a single shift date (YYYY-MM-DD) instead of -days")
	flag.Parse()
	if *date == "" && *days < 1 {
		fmt.Fprintf(os.Stderr, "-days must be at least 1, got %d\n", *days)
		os.Exit(2)
	}

	cfg := config.Load()
	config.SetLogLevel(cfg.LogLevel)
	log := config.GetLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = pipeline.WithTrigger(ctx, pipeline.TriggerBackfill)

	database.Init(cfg)
	deps, err := bootstrap.Build(ctx, cfg, database.DB)
	if err != nil {
		log.Fatalf("could not build shift pipeline: %v", err)
	}
	defer deps.Close()

	var results []*pipeline.ProcessingResult
	if *date != "" {
		d, perr := shift.ParseShiftDate(*date, deps.Location)
		if perr != nil {
			log.Fatalf("invalid -date %q: %v", *date, perr)
		}
		var res *pipeline.ProcessingResult
		res, err = deps.Processor.ProcessShift(ctx, d)
		if res != nil {
			results = append(results, res)
		}
	} else {
		results, err = deps.Processor.Backfill(ctx, *days)
	}

	for _, r := range results {
		log.WithFields(logrus.Fields{
			"shiftDate": r.ShiftDate,
			"status":    r.RunStatus(),
			"receipts":  r.ReceiptsProcessed,
			"errors":    len(r.Errors),
		}).Info("shift processed")
	}
	if err != nil {
		config.LogError(log, "shift-backfill", "main", "backfill", nil, err)
		deps.Close()
		os.Exit(1)
	}
}
