package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"chunkfall.ai/internal/logging"
	"chunkfall.ai/internal/persistence/indexdb"
	persistlog "chunkfall.ai/internal/persistence/log"
	"chunkfall.ai/internal/sim/catalogs"
	"chunkfall.ai/internal/sim/generator"
	"chunkfall.ai/internal/sim/tuning"
)

func main() {
	var (
		addr       = flag.String("addr", "127.0.0.1:8080", "http listen address")
		configDir  = flag.String("configs", "./configs", "config directory")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite event index")
	)
	flag.Parse()

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, tuneErr := tuning.Load(tp)
	if tuneErr != nil && !os.IsNotExist(tuneErr) {
		log.Fatal("load tuning", "path", tp, "err", tuneErr)
	}

	level := logging.InfoLevel
	if tune.Generator.Debug {
		level = logging.DebugLevel
	}
	logger := logging.New(level)
	if tuneErr != nil {
		logger.Warn("tuning not found, using defaults", "path", tp)
	}

	cats, err := catalogs.LoadOrDefault(*configDir)
	if err != nil {
		logger.Fatal("load catalogs", "err", err)
	}

	if err := os.MkdirAll(*dataDir, 0o755); err != nil {
		logger.Fatal("create data dir", "err", err)
	}

	a := newApp(tune, cats, logger)

	events := persistlog.NewEventLogger(*dataDir)
	defer events.Close()
	sinks := generator.MultiSink{events}

	if !*disableDB {
		idx, err := indexdb.OpenSQLite(filepath.Join(*dataDir, "index", "generators.sqlite"))
		if err != nil {
			logger.Fatal("open index", "err", err)
		}
		defer idx.Close()
		if err := idx.UpsertConfig(cats, a.tune); err != nil {
			logger.Warn("index config", "err", err)
		}
		a.idx = idx
		sinks = append(sinks, idx)
	} else {
		logger.Info("event index disabled (-disable_db)")
	}
	a.gens.SetEventSink(sinks)

	ctx, cancel := signalContext()
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := a.eng.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("engine stopped", "err", err)
		}
	}()

	srv := &http.Server{
		Addr:              *addr,
		Handler:           a.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Info("listening", "addr", *addr, "world", a.tune.World.ID, "tick_rate_hz", a.tune.TickRateHz)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("ListenAndServe", "err", err)
		cancel()
	}
	<-done
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}
