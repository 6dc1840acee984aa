// Package http expone el pipeline DTE y el inventario de consignación como API
// REST sobre Fiber.
package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dryanez/autodirectocrm/internal/application/consignment"
	appdte "github.com/dryanez/autodirectocrm/internal/application/dte"
	"github.com/dryanez/autodirectocrm/internal/domain/repository"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CarUC        *consignment.CarUseCase
	BuildUC      *appdte.BuildUseCase
	SubmitUC     *appdte.SubmitUseCase
	SettlementUC *appdte.SettlementUseCase
	FolioRepo    repository.FolioRepository
	Environment  string
	APIKey       string
}

// Router registra las rutas de la API. Las lecturas son públicas; todo lo que
// muta estado (inventario, folios, pipeline DTE) exige la API key estática.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	carHandler := NewCarHandler(deps.CarUC)
	dteHandler := NewDTEHandler(deps.BuildUC, deps.SubmitUC, deps.SettlementUC)
	folioHandler := NewFolioHandler(deps.FolioRepo, deps.Environment)

	// Lecturas (público)
	cars := api.Group("/cars")
	cars.Get("/", carHandler.List)
	cars.Get("/:id", carHandler.GetByID)
	cars.Get("/:id/settlement", dteHandler.Settlement)
	api.Get("/folios/:tipo", folioHandler.GetPool)

	// Mutaciones (protegido con X-Api-Key)
	protected := api.Group("/", APIKeyMiddleware(deps.APIKey))
	protected.Post("/cars", carHandler.Create)
	protected.Put("/cars/:id/pricing", carHandler.UpdatePricing)
	protected.Post("/dte/build", dteHandler.Build)
	protected.Post("/dte/submit", dteHandler.Submit)
	protected.Post("/folios/caf", folioHandler.UploadCAF)
}
