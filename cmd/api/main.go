package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/dryanez/autodirectocrm/internal/application/consignment"
	appdte "github.com/dryanez/autodirectocrm/internal/application/dte"
	"github.com/dryanez/autodirectocrm/internal/domain/entity"
	infrapdf "github.com/dryanez/autodirectocrm/internal/infrastructure/pdf"
	"github.com/dryanez/autodirectocrm/internal/infrastructure/postgres"
	"github.com/dryanez/autodirectocrm/internal/infrastructure/simpleapi"
	httpRouter "github.com/dryanez/autodirectocrm/internal/interfaces/http"
	"github.com/dryanez/autodirectocrm/pkg/config"
	"github.com/dryanez/autodirectocrm/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("sii_env", cfg.Signing.Environment).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	carRepo := postgres.NewCarRepository(pool)
	folioRepo := postgres.NewFolioRepository(pool)
	docRepo := postgres.NewDocumentRepository(pool)
	subRepo := postgres.NewSubmissionRepository(pool)

	// Cliente del servicio de firma: lee certificado y CAF, y hace el precheck
	// local del .pfx para detectar contraseñas malas antes del primer envío.
	clientCfg, err := simpleapi.LoadConfig(cfg.Signing)
	if err != nil {
		log.Fatal().Err(err).Msg("configuración del servicio de firma")
	}
	submitter := simpleapi.NewClient(clientCfg, log)

	issuer := entity.Issuer{
		RUT:         cfg.Emisor.RUT,
		RazonSocial: cfg.Emisor.RazonSocial,
		Giro:        cfg.Emisor.Giro,
		Direccion:   cfg.Emisor.Direccion,
		Comuna:      cfg.Emisor.Comuna,
		Ciudad:      cfg.Emisor.Ciudad,
	}

	tracker := consignment.NewStatusTracker(carRepo, log)
	carUC := consignment.NewCarUseCase(carRepo, docRepo, folioRepo, cfg.Signing.Environment)
	buildUC := appdte.NewBuildUseCase(carRepo, folioRepo, docRepo, tracker,
		issuer, cfg.Signing.Environment, log)
	submitUC := appdte.NewSubmitUseCase(carRepo, folioRepo, docRepo, subRepo,
		submitter, tracker, cfg.Signing.Environment, log)
	settlementUC := appdte.NewSettlementUseCase(carRepo, docRepo, infrapdf.NewSettlementGenerator())

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30, // el envío al servicio de firma puede tardar
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		CarUC:        carUC,
		BuildUC:      buildUC,
		SubmitUC:     submitUC,
		SettlementUC: settlementUC,
		FolioRepo:    folioRepo,
		Environment:  cfg.Signing.Environment,
		APIKey:       cfg.HTTP.APIKey,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
