package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/facturio/facturio-api/internal/application/analytics"
	"github.com/facturio/facturio-api/internal/application/auth"
	"github.com/facturio/facturio-api/internal/application/billing"
	"github.com/facturio/facturio-api/internal/application/prestation"
	"github.com/facturio/facturio-api/internal/application/usecase"
)

// RouterDeps dépendances du router.
type RouterDeps struct {
	AuthUC       *auth.AuthUseCase
	ClientUC     *usecase.ClientUseCase
	PrestationUC *prestation.UseCase
	FactureUC    *billing.FactureUseCase
	SettingsUC   *usecase.SettingsUseCase
	DashboardUC  *analytics.DashboardUseCase
	JWTSecret    string
}

// Router enregistre les routes de l'API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (public)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Routes protégées (Bearer Token requis)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Clients
	clients := protected.Group("/clients")
	clientHandler := NewClientHandler(deps.ClientUC)
	clients.Post("/", clientHandler.Create)
	clients.Get("/", clientHandler.List)
	clients.Get("/:id", clientHandler.GetByID)
	clients.Put("/:id", clientHandler.Update)
	clients.Delete("/:id", clientHandler.Delete)

	// Prestations
	prestations := protected.Group("/prestations")
	prestationHandler := NewPrestationHandler(deps.PrestationUC)
	prestations.Post("/", prestationHandler.Create)
	prestations.Get("/", prestationHandler.List)
	prestations.Get("/:id", prestationHandler.GetByID)
	prestations.Put("/:id", prestationHandler.Update)
	prestations.Delete("/:id", prestationHandler.Delete)

	// Factures
	factures := protected.Group("/factures")
	factureHandler := NewFactureHandler(deps.FactureUC)
	factures.Post("/", factureHandler.Create)
	factures.Post("/preview", factureHandler.Preview)
	factures.Get("/", factureHandler.List)
	factures.Get("/last-number", factureHandler.LastNumber)
	factures.Get("/:id", factureHandler.GetByID)
	factures.Delete("/:id", factureHandler.Delete)
	factures.Get("/:id/pdf", factureHandler.PDF)
	factures.Get("/:id/prestations", factureHandler.Prestations)
	factures.Post("/:id/paiement", factureHandler.Paiement)
	factures.Post("/:id/rectify", factureHandler.Rectify)
	factures.Post("/:id/avoir", factureHandler.Avoir)
	factures.Get("/:id/avoir/pdf", factureHandler.AvoirPDF)
	factures.Post("/:id/annulation", factureHandler.Annulation)
	factures.Post("/:id/envoi", factureHandler.Envoi)
	factures.Post("/:id/duplicate", factureHandler.Duplicate)
	factures.Get("/:id/chaine", factureHandler.Chaine)

	// Tableau de bord
	dashboard := protected.Group("/dashboard")
	dashboardHandler := NewDashboardHandler(deps.DashboardUC)
	dashboard.Get("/totals", dashboardHandler.Totals)
	dashboard.Get("/monthly", dashboardHandler.Monthly)
	dashboard.Get("/annual", dashboardHandler.Annual)
	dashboard.Get("/top-clients", dashboardHandler.TopClients)

	// Paramètres
	settingsHandler := NewSettingsHandler(deps.SettingsUC)
	protected.Get("/business-info", settingsHandler.GetBusinessInfo)
	protected.Put("/business-info", settingsHandler.UpdateBusinessInfo)
	protected.Get("/invoice-settings", settingsHandler.GetInvoiceSettings)
	protected.Put("/invoice-settings", settingsHandler.UpdateInvoiceSettings)
}
