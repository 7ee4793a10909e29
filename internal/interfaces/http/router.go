package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/ricemill-ledger/pkg/jwt"
)

// RouterDeps are the handlers and auth settings the router needs.
type RouterDeps struct {
	Inventory *InventoryHandler
	Warehouse *WarehouseHandler
	Threshing *ThreshingHandler
	Sale      *SaleHandler
	Dashboard *DashboardHandler
	JWTSecret string
	JWTIssuer string
}

// Router registers the /api routes. Every route needs a Bearer token; reads are
// open to any role and writes need operator or admin.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))
	write := RequireRole(jwt.RoleAdmin, jwt.RoleOperator)
	admin := RequireRole(jwt.RoleAdmin)

	inv := api.Group("/inventory")
	ih := deps.Inventory
	inv.Post("/inbound", write, ih.Inbound)
	inv.Post("/outbound", write, ih.Outbound)
	inv.Post("/transfer", write, ih.Transfer)
	inv.Post("/adjustment", write, ih.Adjustment)
	inv.Post("/process", write, ih.Process)
	inv.Get("/balances", ih.ListBalances)
	inv.Get("/balances/batch/:id", ih.BatchBalances)
	inv.Get("/balances/:id", ih.GetBalance)
	inv.Get("/summary", ih.Summary)
	inv.Get("/low-stock", ih.LowStock)
	inv.Get("/movements/recent", ih.RecentMovements)
	inv.Get("/movements", ih.ListMovements)
	inv.Get("/processing/:id", ih.GetProcessingRecord)

	batches := api.Group("/batches")
	batches.Get("/:type", ih.ListBatches)
	batches.Get("/:type/:code", ih.GetBatch)

	warehouses := api.Group("/warehouses")
	wh := deps.Warehouse
	warehouses.Post("/", admin, wh.Create)
	warehouses.Get("/", wh.List)
	warehouses.Get("/:id", wh.GetByID)
	warehouses.Put("/:id", admin, wh.Update)
	warehouses.Delete("/:id", admin, wh.Deactivate)

	threshing := api.Group("/threshing")
	th := deps.Threshing
	threshing.Post("/", write, th.Create)
	threshing.Get("/", th.List)
	threshing.Get("/summary", th.Summary)
	threshing.Get("/batch/:number", th.GetByBatchNumber)
	threshing.Get("/:id", th.GetByID)
	threshing.Patch("/:id/status", write, th.UpdateStatus)
	threshing.Delete("/:id", write, th.Delete)

	sales := api.Group("/sales")
	sh := deps.Sale
	sales.Post("/", write, sh.Create)
	sales.Get("/:id", sh.GetByID)

	api.Get("/dashboard", deps.Dashboard.Get)
}
