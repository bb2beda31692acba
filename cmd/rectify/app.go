package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/shaiso/Rectify/internal/cli"
	"github.com/shaiso/Rectify/internal/config"
	"github.com/shaiso/Rectify/internal/correction"
	"github.com/shaiso/Rectify/internal/executor"
	"github.com/shaiso/Rectify/internal/mq"
	"github.com/shaiso/Rectify/internal/repo"
	"github.com/shaiso/Rectify/internal/sink"
	"github.com/shaiso/Rectify/internal/telemetry"
)

// taskStore — хранилище заданий исправления: запись для executor и чтение для CLI.
type taskStore interface {
	executor.TaskRepository[correction.Input, correction.Transform]
	cli.RunReader
}

// app держит ресурсы процесса и закрывает их в обратном порядке.
type app struct {
	env    *cli.Env
	logger *slog.Logger

	closers   []func() error
	cancel    context.CancelFunc
	group     *errgroup.Group
	closeOnce sync.Once
	closeErr  error
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	a := &app{logger: logger}

	store, err := a.openStore(ctx, cfg.Store)
	if err != nil {
		a.Close()
		return nil, err
	}

	var metrics *telemetry.Metrics
	if cfg.Metrics.Addr != "" {
		metrics = telemetry.NewMetrics(prometheus.DefaultRegisterer)
	}

	exec := executor.New(executor.Config[correction.Input, correction.Transform]{
		Repo:    store,
		Logger:  logger,
		Metrics: metrics,
	})

	ucCfg := correction.Config{
		Executor: exec,
		Logger:   logger,
	}

	var events cli.EventSource
	if cfg.MQ.Enabled {
		conn, err := mq.Dial(cfg.MQ.URL, logger)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, conn.Close)

		if err := mq.SetupTopology(ctx, conn); err != nil {
			a.Close()
			return nil, fmt.Errorf("setup topology: %w", err)
		}
		logger.Debug("rabbitmq topology ready", "topology", mq.TopologyInfo())

		publisher := mq.NewPublisher(conn, logger)
		ucCfg.Sinks = append(ucCfg.Sinks, sink.NewPublishSink[correction.Input, correction.Transform](publisher))
		events = &amqpEvents{conn: conn, logger: logger}
	}

	a.env = &cli.Env{
		Correction:    correction.NewOrderStatusCorrection(ucCfg),
		CorrectionCSV: correction.NewOrderStatusCorrectionCSV(ucCfg, cfg.Output.Dir),
		Runs:          store,
		Events:        events,
		Cron:          cfg.Schedule.Cron,
		Timezone:      cfg.Schedule.Timezone,
		Logger:        logger,
	}

	if cfg.Metrics.Addr != "" {
		a.serveMetrics(ctx, cfg.Metrics.Addr)
	}

	logger.Info("rectify started", "store", cfg.Store.Kind, "mq", cfg.MQ.Enabled, "metrics_addr", cfg.Metrics.Addr)
	return a, nil
}

// openStore выбирает хранилище task groups по конфигурации.
func (a *app) openStore(ctx context.Context, cfg config.StoreConfig) (taskStore, error) {
	switch cfg.Kind {
	case config.StorePostgres:
		pool, err := repo.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() error { pool.Close(); return nil })

		store := repo.NewTaskRepo[correction.Input, correction.Transform](pool)
		if err := store.Migrate(ctx); err != nil {
			return nil, err
		}
		a.logger.Info("database connected")
		return store, nil

	case config.StoreSQLite:
		db, err := repo.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		a.logger.Info("sqlite store opened", "path", cfg.SQLitePath)
		return repo.NewSQLiteTaskRepo[correction.Input, correction.Transform](db), nil

	case config.StoreMemory:
		return repo.NewMemoryTaskRepo[correction.Input, correction.Transform](), nil

	default:
		return nil, fmt.Errorf("unknown store kind %q", cfg.Kind)
	}
}

// serveMetrics поднимает /healthz и /metrics до закрытия app.
func (a *app) serveMetrics(ctx context.Context, addr string) {
	ctx, a.cancel = context.WithCancel(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	a.group = g
}

// Close останавливает metrics server и закрывает ресурсы. Повторный вызов безопасен.
func (a *app) Close() error {
	a.closeOnce.Do(func() {
		var errs []error

		if a.cancel != nil {
			a.cancel()
			if err := a.group.Wait(); err != nil {
				errs = append(errs, err)
			}
		}

		for i := len(a.closers) - 1; i >= 0; i-- {
			if err := a.closers[i](); err != nil {
				errs = append(errs, err)
			}
		}

		a.closeErr = errors.Join(errs...)
		if a.closeErr != nil {
			a.logger.Error("shutdown failed", "error", a.closeErr)
		} else {
			a.logger.Info("rectify stopped")
		}
	})
	return a.closeErr
}

// amqpEvents реализует cli.EventSource поверх mq.Consumer.
type amqpEvents struct {
	conn   *mq.Connection
	logger *slog.Logger
}

func (e *amqpEvents) Consume(ctx context.Context, queue mq.Queue, handler mq.Handler) error {
	consumer := mq.NewConsumer(e.conn, mq.ConsumerConfig{
		Queue:   queue,
		Handler: handler,
		Logger:  e.logger,
	})
	return consumer.Run(ctx)
}
