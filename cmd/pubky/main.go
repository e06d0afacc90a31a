package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"

	"github.com/pubky-garden/pubky-playground/internal/config"
	"github.com/pubky-garden/pubky-playground/internal/infra/database"
	"github.com/pubky-garden/pubky-playground/internal/infra/repository"
	"github.com/pubky-garden/pubky-playground/internal/present/rest"
	"github.com/pubky-garden/pubky-playground/internal/present/rest/middleware"
	"github.com/pubky-garden/pubky-playground/internal/service"
	"github.com/pubky-garden/pubky-playground/internal/usecase"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the config file")
	flag.Parse()

	conf, err := config.Load(*configPath)
	if err != nil {
		slog.Error(
			"Failed to load config",
			slog.String("path", *configPath),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	db, err := database.NewPostgres(conf.Server.PostgresDsn)
	if err != nil {
		panic("failed to connect database")
	}

	err = database.MigratePostgres(db)
	if err != nil {
		panic("failed to migrate database")
	}

	rdb := database.NewRedis(conf.Server.RedisAddr, conf.Server.RedisPassword, conf.Server.RedisDB)
	mc := database.NewMemcached(conf.Server.MemcachedAddr)

	signalService := service.NewSignalService(rdb)
	recordRepo := repository.NewRecordRepository(db, mc)
	recordUsecase := usecase.NewRecordUsecase(recordRepo, signalService, conf.NodeInfo.Namespace)

	e := echo.New()
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())

	if conf.Server.EnableTrace {
		shutdown, err := setupTraceProvider(conf.Server.TraceEndpoint)
		if err != nil {
			slog.Error(
				"Failed to setup trace provider",
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
		defer shutdown()

		e.Use(otelecho.Middleware("pubky-playground"))
	}

	e.Use(middleware.NewRequesterMiddleware().IdentifyRequester)

	handler := rest.NewHandler(conf.NodeInfo, recordUsecase, signalService)
	handler.RegisterRoutes(e)

	e.Logger.Fatal(e.Start(conf.Server.Listen))
}

func setupTraceProvider(endpoint string) (func(), error) {
	ctx := context.Background()

	exporter, err := otlptracehttp.New(
		ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(
		ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String("pubky-playground"),
		),
	)
	if err != nil {
		res = resource.Default()
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	shutdown := func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			slog.Error(
				"Failed to shutdown trace provider",
				slog.String("error", err.Error()),
			)
		}
	}
	return shutdown, nil
}
