package router

import (
	"github.com/foodtrace/backend/internal/interfaces/http/handler"
)

// Handlers bundles every handler the API mounts
type Handlers struct {
	System         *handler.SystemHandler
	Product        *handler.ProductHandler
	Lot            *handler.LotHandler
	TrackingEvent  *handler.TrackingEventHandler
	Lineage        *handler.LineageHandler
	Reconciliation *handler.ReconciliationHandler
}

// BuildRoutes assembles the API route tree. Lot-scoped reads (events, stock,
// lineage, reconciliation) hang off the lot resource so the TLC code stays in
// the path.
func BuildRoutes(h Handlers) []RouteRegistrar {
	system := NewDomainGroup("system", "/system")
	system.GET("/info", h.System.GetSystemInfo)
	system.GET("/ping", h.System.Ping)

	products := NewDomainGroup("products", "/products")
	products.POST("", h.Product.CreateProduct)
	products.GET("", h.Product.ListProducts)
	products.GET("/:id", h.Product.GetProduct)
	products.PUT("/:id/shelf-life", h.Product.UpdateShelfLife)
	products.DELETE("/:id", h.Product.DeactivateProduct)

	lots := NewDomainGroup("lots", "/lots")
	lots.POST("", h.Lot.CreateLot)
	lots.GET("", h.Lot.ListLots)
	lots.GET("/:tlcCode", h.Lot.GetLot)
	lots.POST("/:tlcCode/recall", h.Lot.RecallLot)
	lots.POST("/:tlcCode/archive", h.Lot.ArchiveLot)
	lots.GET("/:tlcCode/stock", h.Lot.GetStock)
	lots.GET("/:tlcCode/events", h.TrackingEvent.ListEventsForLot)
	lots.GET("/:tlcCode/lineage/parents", h.Lineage.GetParents)
	lots.GET("/:tlcCode/lineage/children", h.Lineage.GetChildren)
	lots.GET("/:tlcCode/lineage/ancestry", h.Lineage.GetAncestry)
	lots.GET("/:tlcCode/lineage/descendants", h.Lineage.GetDescendants)
	lots.POST("/:tlcCode/reconcile", h.Reconciliation.ReconcileLot)

	events := NewDomainGroup("events", "/events")
	events.POST("", h.TrackingEvent.SubmitEvent)
	events.GET("/:id", h.TrackingEvent.GetEvent)

	anomalies := NewDomainGroup("anomalies", "/anomalies")
	anomalies.GET("", h.Reconciliation.ListAnomalies)
	anomalies.POST("/:id/resolve", h.Reconciliation.ResolveAnomaly)

	reconciliation := NewDomainGroup("reconciliation", "/reconciliation")
	reconciliation.POST("/sweep", h.Reconciliation.SweepCompany)

	return []RouteRegistrar{system, products, lots, events, anomalies, reconciliation}
}
