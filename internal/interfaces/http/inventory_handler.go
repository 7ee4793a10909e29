package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ricemill-ledger/internal/application/analytics"
	"github.com/jhoicas/ricemill-ledger/internal/application/dto"
	"github.com/jhoicas/ricemill-ledger/internal/application/inventory"
	"github.com/jhoicas/ricemill-ledger/internal/domain"
)

// InventoryHandler serves ledger mutations and the stock read paths.
type InventoryHandler struct {
	movements *inventory.MovementUseCase
	reports   *analytics.ReportUseCase
	threshold decimal.Decimal
}

// NewInventoryHandler builds the handler. threshold is the default low-stock limit.
func NewInventoryHandler(movements *inventory.MovementUseCase, reports *analytics.ReportUseCase, threshold decimal.Decimal) *InventoryHandler {
	return &InventoryHandler{movements: movements, reports: reports, threshold: threshold}
}

// Inbound godoc
// @Summary      Receive stock into a warehouse
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.InboundRequest  true  "product_type, warehouse_id, batch_code, quantity"
// @Success      201   {object}  dto.MovementResultResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/inbound [post]
func (h *InventoryHandler) Inbound(c *fiber.Ctx) error {
	var in dto.InboundRequest
	if err := bindBody(c, &in); err != nil {
		return err
	}
	out, err := h.movements.Inbound(c.UserContext(), actor(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Outbound godoc
// @Summary      Remove stock from a warehouse
// @Description  admin_override allows a negative balance and requires the admin role.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.OutboundRequest  true  "product_type, warehouse_id, batch_id, quantity"
// @Success      201   {object}  dto.MovementResultResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/outbound [post]
func (h *InventoryHandler) Outbound(c *fiber.Ctx) error {
	var in dto.OutboundRequest
	if err := bindBody(c, &in); err != nil {
		return err
	}
	if err := requireOverrideRight(c, in.AdminOverride); err != nil {
		return err
	}
	out, err := h.movements.Outbound(c.UserContext(), actor(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Transfer godoc
// @Summary      Move stock between warehouses
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferRequest  true  "from_warehouse_id, to_warehouse_id, batch_id, quantity"
// @Success      201   {object}  dto.TransferResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/inventory/transfer [post]
func (h *InventoryHandler) Transfer(c *fiber.Ctx) error {
	var in dto.TransferRequest
	if err := bindBody(c, &in); err != nil {
		return err
	}
	out, err := h.movements.Transfer(c.UserContext(), actor(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Adjustment godoc
// @Summary      Correct a balance by a signed quantity
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustmentRequest  true  "quantity is signed; reason is required"
// @Success      201   {object}  dto.MovementResultResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/inventory/adjustment [post]
func (h *InventoryHandler) Adjustment(c *fiber.Ctx) error {
	var in dto.AdjustmentRequest
	if err := bindBody(c, &in); err != nil {
		return err
	}
	if err := requireOverrideRight(c, in.AdminOverride); err != nil {
		return err
	}
	out, err := h.movements.Adjustment(c.UserContext(), actor(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Process godoc
// @Summary      Convert paddy into rice
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ProcessRequest  true  "input batch, output batch code and quantities"
// @Success      201   {object}  dto.ProcessResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/inventory/process [post]
func (h *InventoryHandler) Process(c *fiber.Ctx) error {
	var in dto.ProcessRequest
	if err := bindBody(c, &in); err != nil {
		return err
	}
	out, err := h.movements.Process(c.UserContext(), actor(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListBalances godoc
// @Summary      List balances
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  false  "Warehouse; empty lists all"
// @Param        product_type  query  string  false  "PADDY or RICE"
// @Param        limit         query  int     false  "Limit"  default(20)
// @Param        offset        query  int     false  "Offset" default(0)
// @Success      200  {object}  dto.BalanceListResponse
// @Router       /api/inventory/balances [get]
func (h *InventoryHandler) ListBalances(c *fiber.Ctx) error {
	page, err := pageQuery(c)
	if err != nil {
		return err
	}
	out, err := h.reports.Balances(c.UserContext(), c.Query("warehouse_id"), c.Query("product_type"), page)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// GetBalance godoc
// @Summary      Get a balance
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "Balance ID"
// @Success      200  {object}  dto.BalanceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/balances/{id} [get]
func (h *InventoryHandler) GetBalance(c *fiber.Ctx) error {
	out, err := h.reports.Balance(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Summary godoc
// @Summary      Total stock per product type
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.StockSummaryResponse
// @Router       /api/inventory/summary [get]
func (h *InventoryHandler) Summary(c *fiber.Ctx) error {
	out, err := h.reports.Summary(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// LowStock godoc
// @Summary      Balances below a threshold
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        threshold  query  number  false  "KG; defaults to the configured threshold"
// @Success      200  {array}   dto.BalanceResponse
// @Router       /api/inventory/low-stock [get]
func (h *InventoryHandler) LowStock(c *fiber.Ctx) error {
	threshold := h.threshold
	if raw := c.Query("threshold"); raw != "" {
		v, err := decimal.NewFromString(raw)
		if err != nil {
			return domain.InvalidInput("threshold must be a number")
		}
		threshold = v
	}
	out, err := h.reports.LowStock(c.UserContext(), threshold)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// ListMovements godoc
// @Summary      Search the movement ledger
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_type   query  string  false  "PADDY or RICE"
// @Param        movement_type  query  string  false  "INBOUND, OUTBOUND, TRANSFER, ADJUSTMENT or PROCESSING"
// @Param        warehouse_id   query  string  false  "Matches source or destination"
// @Param        batch_id       query  string  false  "Batch"
// @Param        reference_no   query  string  false  "Reference number"
// @Param        from           query  string  false  "RFC 3339 or YYYY-MM-DD"
// @Param        to             query  string  false  "RFC 3339 or YYYY-MM-DD"
// @Success      200  {object}  dto.MovementListResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	page, err := pageQuery(c)
	if err != nil {
		return err
	}
	q := dto.MovementQuery{
		PageRequest:  page,
		ProductType:  c.Query("product_type"),
		MovementType: c.Query("movement_type"),
		WarehouseID:  c.Query("warehouse_id"),
		BatchID:      c.Query("batch_id"),
		ReferenceNo:  c.Query("reference_no"),
	}
	if q.From, err = timeQuery(c, "from"); err != nil {
		return err
	}
	if q.To, err = timeQuery(c, "to"); err != nil {
		return err
	}
	out, err := h.reports.Movements(c.UserContext(), q)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// RecentMovements godoc
// @Summary      Latest movements
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        limit  query  int  false  "Limit" default(10)
// @Success      200  {array}  dto.MovementResponse
// @Router       /api/inventory/movements/recent [get]
func (h *InventoryHandler) RecentMovements(c *fiber.Ctx) error {
	out, err := h.reports.RecentMovements(c.UserContext(), c.QueryInt("limit", 0))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// GetProcessingRecord godoc
// @Summary      Get a processing record
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "Processing record ID"
// @Success      200  {object}  dto.ProcessingRecordResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/processing/{id} [get]
func (h *InventoryHandler) GetProcessingRecord(c *fiber.Ctx) error {
	out, err := h.reports.ProcessingRecord(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// GetBatch godoc
// @Summary      Get a batch by product type and code
// @Tags         batches
// @Security     Bearer
// @Produce      json
// @Param        type  path  string  true  "PADDY or RICE"
// @Param        code  path  string  true  "Batch code"
// @Success      200  {object}  dto.BatchResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/batches/{type}/{code} [get]
func (h *InventoryHandler) GetBatch(c *fiber.Ctx) error {
	out, err := h.reports.Batch(c.UserContext(), c.Params("type"), c.Params("code"))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// ListBatches godoc
// @Summary      List batches of one product type
// @Tags         batches
// @Security     Bearer
// @Produce      json
// @Param        type    path   string  true   "PADDY or RICE"
// @Param        limit   query  int     false  "Limit"  default(20)
// @Param        offset  query  int     false  "Offset" default(0)
// @Success      200  {array}  dto.BatchResponse
// @Router       /api/batches/{type} [get]
func (h *InventoryHandler) ListBatches(c *fiber.Ctx) error {
	page, err := pageQuery(c)
	if err != nil {
		return err
	}
	out, err := h.reports.Batches(c.UserContext(), c.Params("type"), page)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// BatchBalances godoc
// @Summary      Balances of one batch across warehouses
// @Tags         batches
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "Batch ID"
// @Success      200  {array}  dto.BalanceResponse
// @Router       /api/inventory/balances/batch/{id} [get]
func (h *InventoryHandler) BatchBalances(c *fiber.Ctx) error {
	out, err := h.reports.BalancesByBatch(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(out)
}
