package main

import (
	"context"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/helmpoint/maneuverboard/core"
	"github.com/helmpoint/maneuverboard/internal/logging"
	"github.com/helmpoint/maneuverboard/internal/observability"
	"github.com/helmpoint/maneuverboard/internal/server"
	"github.com/helmpoint/maneuverboard/kb"
	"github.com/helmpoint/maneuverboard/timectrl"
	"github.com/helmpoint/maneuverboard/units"
)

// Config collects everything the server needs to start. Flags populate it in
// main; tests build it directly.
type Config struct {
	ListenAddress  string
	MetricsAddress string
	BoardPath      string
	UnitSystem     string
	TickInterval   time.Duration
	Accelerated    bool
}

func main() {
	addr := flag.String("addr", ":8080", "TCP address the board WebSocket server listens on")
	metricsAddr := flag.String("metrics-addr", ":9090", "HTTP address for Prometheus /metrics")
	boardPath := flag.String("board", "", "Path to a YAML board document to load at startup")
	unitSystem := flag.String("units", "nautical", "Display unit system: metric, nautical, or imperial")
	tick := flag.Duration("tick", time.Second, "Board clock tick interval")
	accelerated := flag.Bool("accelerated", false, "Run board time accelerated (vs real-time)")
	flag.Parse()

	cfg := Config{
		ListenAddress:  *addr,
		MetricsAddress: *metricsAddr,
		BoardPath:      *boardPath,
		UnitSystem:     *unitSystem,
		TickInterval:   *tick,
		Accelerated:    *accelerated,
	}

	log := logging.NewFromEnv()

	lis, err := net.Listen("tcp", cfg.ListenAddress)
	if err != nil {
		log.Error(context.Background(), "failed to listen", logging.String("addr", cfg.ListenAddress), logging.Error(err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, log, lis); err != nil {
		log.Error(context.Background(), "server exited", logging.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg Config, log logging.Logger, lis net.Listener) error {
	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		return err
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdownTracing, log)

	collector, err := observability.NewBoardCollector(nil)
	if err != nil {
		return err
	}
	metricsSrv := serveMetrics(cfg.MetricsAddress, collector, log)

	system, err := units.SystemFromString(cfg.UnitSystem)
	if err != nil {
		return err
	}

	board := kb.NewBoard(kb.WithMetricsRecorder(collector))
	if cfg.BoardPath != "" {
		f, err := os.Open(cfg.BoardPath)
		if err != nil {
			return err
		}
		doc, err := core.LoadBoardDocument(board, f)
		f.Close()
		if err != nil {
			return err
		}
		system = doc.System
		log.Info(ctx, "loaded board document",
			logging.String("path", cfg.BoardPath),
			logging.Int("units", len(doc.UnitIDs)),
			logging.Int("waypoints", len(doc.WaypointIDs)),
		)
	}

	mode := timectrl.RealTime
	if cfg.Accelerated {
		mode = timectrl.Accelerated
	}
	start := time.Now().UTC()
	tc := timectrl.NewTimeController(start, cfg.TickInterval, mode)

	loop := newMotionLoop(board, tc, start)
	srv := server.NewServer(server.Config{
		Board:   board,
		Clock:   tc,
		System:  system,
		Logger:  log,
		Metrics: collector,
	})

	tc.AddListener(func(boardTime time.Time) {
		loop.Tick(boardTime)
		srv.BroadcastState()
	})
	clockDone := tc.Start(0)

	httpSrv := &http.Server{Handler: srv.Handler()}
	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting board server",
			logging.String("addr", lis.Addr().String()),
			logging.String("units", system.String()),
		)
		if serveErr := httpSrv.Serve(lis); serveErr != nil && serveErr != http.ErrServerClosed {
			errCh <- serveErr
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		tc.Stop()
		<-clockDone
		return err
	}

	log.Info(context.Background(), "shutting down board server")
	tc.Stop()
	<-clockDone

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(shutdownCtx)
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
	return <-errCh
}

func serveMetrics(addr string, collector *observability.BoardCollector, log logging.Logger) *http.Server {
	if addr == "" || collector == nil {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn(context.Background(), "metrics server exited", logging.Error(err))
		}
	}()

	log.Info(context.Background(), "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}
