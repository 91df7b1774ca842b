package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cutekitek/rankode-jplag/internal/config"
	"github.com/cutekitek/rankode-jplag/internal/files"
	"github.com/cutekitek/rankode-jplag/internal/jobs"
	"github.com/cutekitek/rankode-jplag/internal/rabbitmq"
	"github.com/cutekitek/rankode-jplag/internal/repository/results"
	"github.com/cutekitek/rankode-jplag/internal/similarity"
	"github.com/cutekitek/rankode-jplag/internal/viewer"
	"github.com/cutekitek/rankode-jplag/pkg/shell"
	"github.com/gin-gonic/gin"
)

func panicErr(err error) {
	if err != nil {
		panic(err)
	}
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		slog.SetLogLoggerLevel(slog.LevelDebug)
	case "info":
		slog.SetLogLoggerLevel(slog.LevelInfo)
	case "warn":
		slog.SetLogLoggerLevel(slog.LevelWarn)
	case "error":
		slog.SetLogLoggerLevel(slog.LevelError)
	default:
		slog.SetLogLoggerLevel(slog.LevelWarn)
	}
}

func main() {
	configPath := flag.String("config", "config.yml", "path to the config file")
	flag.Parse()

	cfg, err := config.NewConfig(*configPath)
	panicErr(err)
	setLogLevel(cfg.LogLevel)
	runCfg := cfg.RunConfig()

	fileStorage, err := files.NewFileStorage(files.Config{
		Url:          cfg.MinIOHost,
		Login:        cfg.MinIOLogin,
		Password:     cfg.MinIOPassword,
		Bucket:       cfg.MinIOBucket,
		ReportBucket: cfg.MinIOReportBucket,
	})
	panicErr(err)

	engine := similarity.NewEngine(runCfg,
		similarity.NewInvoker(shell.LocalExecutor{}, slog.Default()),
		fileStorage,
	)

	var (
		sink  jobs.ResultSink
		store *results.Store
	)
	if cfg.PostgresString != "" {
		store, err = results.NewPostgres(cfg.PostgresString, 0)
		panicErr(err)
		defer store.Close()
		panicErr(store.EnsureSchema(context.Background()))
		sink = store
	} else {
		slog.Warn("POSTGRES_DBSTRING is empty, results will only be sent to the queue")
	}

	processor := jobs.NewProcessor(engine, sink, slog.Default())
	listener, err := rabbitmq.NewRabbitMQHandler(rabbitmq.RabbitMqHandlerConfig{
		Login:        cfg.RabbitMQUser,
		Password:     cfg.RabbitMQPassword,
		Host:         cfg.RabbitMQHost,
		Port:         cfg.RabbitMQPort,
		WorkersCount: cfg.WorkersCount,
	}, processor, fileStorage)
	panicErr(err)

	var server *http.Server
	if store != nil {
		gin.SetMode(gin.ReleaseMode)
		router := gin.New()
		router.Use(gin.Recovery())
		viewer.NewHandler(store, runCfg.ViewerBase()).Register(router)
		server = &http.Server{Addr: cfg.HTTPAddr, Handler: router}
		go func() {
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("http server stopped", "error", err)
			}
		}()
	}

	slog.Info("app started", "report_root", runCfg.ReportRoot, "workers", cfg.WorkersCount)
	panicErr(listener.Start())

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	listener.Close()
	if server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("http server shutdown failed", "error", err)
		}
	}
}
