// dtectl opera el pipeline DTE desde la línea de comandos, contra la misma
// base de datos y el mismo servicio de firma que el API.
//
// Uso:
//
//	dtectl caf --file caf_43.xml                 registra el rango de folios del CAF
//	dtectl build --car <id> --tipo 43            genera y valida el borrador
//	dtectl build --car <id> --tipo 43 --dry-run  valida sin consumir folio ni persistir
//	dtectl submit --car <id> --tipo 43           firma el borrador contra el servicio
//	dtectl status --tipo 43                      estado del pool de folios
//
// Códigos de salida: 0 éxito, 1 error de uso, 2 error de ejecución.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/dryanez/autodirectocrm/internal/application/consignment"
	appdte "github.com/dryanez/autodirectocrm/internal/application/dte"
	"github.com/dryanez/autodirectocrm/internal/application/dto"
	"github.com/dryanez/autodirectocrm/internal/domain/entity"
	"github.com/dryanez/autodirectocrm/internal/infrastructure/postgres"
	"github.com/dryanez/autodirectocrm/internal/infrastructure/simpleapi"
	"github.com/dryanez/autodirectocrm/pkg/config"
	"github.com/dryanez/autodirectocrm/pkg/logger"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fatal("cargar configuración: %v", err)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: "warn"})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		fatal("conexión a PostgreSQL: %v", err)
	}
	defer pool.Close()

	env := cfg.Signing.Environment
	carRepo := postgres.NewCarRepository(pool)
	folioRepo := postgres.NewFolioRepository(pool)
	docRepo := postgres.NewDocumentRepository(pool)
	subRepo := postgres.NewSubmissionRepository(pool)
	tracker := consignment.NewStatusTracker(carRepo, log)
	issuer := entity.Issuer{
		RUT:         cfg.Emisor.RUT,
		RazonSocial: cfg.Emisor.RazonSocial,
		Giro:        cfg.Emisor.Giro,
		Direccion:   cfg.Emisor.Direccion,
		Comuna:      cfg.Emisor.Comuna,
		Ciudad:      cfg.Emisor.Ciudad,
	}

	switch os.Args[1] {
	case "caf":
		fs := flag.NewFlagSet("caf", flag.ExitOnError)
		file := fs.String("file", "", "ruta del XML del CAF")
		fs.Parse(os.Args[2:])
		if *file == "" {
			fatalUsage("caf requiere --file")
		}
		raw, err := os.ReadFile(*file)
		if err != nil {
			fatal("leer CAF: %v", err)
		}
		p, err := simpleapi.ParseCAF(raw)
		if err != nil {
			fatal("parsear CAF: %v", err)
		}
		p.ID = uuid.New().String()
		p.Environment = env
		if err := folioRepo.CreatePool(ctx, p); err != nil {
			fatal("registrar pool: %v", err)
		}
		fmt.Printf("CAF registrado: tipo %d, folios %d-%d (%s)\n",
			p.DocType, p.RangeStart, p.RangeEnd, env)

	case "build":
		fs := flag.NewFlagSet("build", flag.ExitOnError)
		carID := fs.String("car", "", "ID del auto")
		tipo := fs.Int("tipo", 43, "tipo de DTE (43 o 52)")
		indTraslado := fs.Int("ind-traslado", 0, "motivo de traslado para la guía (1-7)")
		dryRun := fs.Bool("dry-run", false, "validar sin consumir folio ni persistir")
		fs.Parse(os.Args[2:])
		if *carID == "" {
			fatalUsage("build requiere --car")
		}
		buildUC := appdte.NewBuildUseCase(carRepo, folioRepo, docRepo, tracker, issuer, env, log)
		out, err := buildUC.Build(ctx, dto.BuildDTERequest{
			CarID: *carID, TipoDTE: *tipo, IndTraslado: *indTraslado, DryRun: *dryRun,
		})
		if err != nil {
			fatal("build: %v", err)
		}
		if *dryRun {
			fmt.Printf("Dry-run válido: tipo %d, folio provisorio %d (no consumido)\n", out.TipoDTE, out.Folio)
		} else {
			fmt.Printf("Borrador generado: tipo %d, folio %d\n", out.TipoDTE, out.Folio)
		}
		for _, w := range out.Warnings {
			fmt.Printf("  advertencia: %s\n", w)
		}
		printJSON(out.Document)

	case "submit":
		fs := flag.NewFlagSet("submit", flag.ExitOnError)
		carID := fs.String("car", "", "ID del auto")
		tipo := fs.Int("tipo", 43, "tipo de DTE (43 o 52)")
		fs.Parse(os.Args[2:])
		if *carID == "" {
			fatalUsage("submit requiere --car")
		}
		clientCfg, err := simpleapi.LoadConfig(cfg.Signing)
		if err != nil {
			fatal("configuración del servicio de firma: %v", err)
		}
		submitter := simpleapi.NewClient(clientCfg, log)
		submitUC := appdte.NewSubmitUseCase(carRepo, folioRepo, docRepo, subRepo,
			submitter, tracker, env, log)
		out, err := submitUC.Submit(ctx, dto.SubmitDTERequest{CarID: *carID, TipoDTE: *tipo})
		if err != nil {
			fatal("submit: %v", err)
		}
		fmt.Printf("DTE firmado: folio %d, track %s\n", out.Folio, out.TrackID)

	case "status":
		fs := flag.NewFlagSet("status", flag.ExitOnError)
		tipo := fs.Int("tipo", 43, "tipo de DTE (43 o 52)")
		fs.Parse(os.Args[2:])
		p, err := folioRepo.GetPool(ctx, entity.DocumentType(*tipo), env)
		if err != nil {
			fatal("consultar pool: %v", err)
		}
		if p == nil {
			fatal("no hay CAF cargado para tipo %d en %s", *tipo, env)
		}
		fmt.Printf("Pool tipo %d (%s): rango %d-%d, próximo %d, quedan %d\n",
			p.DocType, p.Environment, p.RangeStart, p.RangeEnd, p.NextAvailable, p.Remaining())

	default:
		usage()
		os.Exit(1)
	}
}

func printJSON(v any) {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return
	}
	fmt.Println(string(raw))
}

func usage() {
	fmt.Fprintln(os.Stderr, "uso: dtectl <caf|build|submit|status> [flags]")
}

func fatalUsage(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	usage()
	os.Exit(1)
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(2)
}
