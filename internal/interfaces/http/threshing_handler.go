package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/ricemill-ledger/internal/application/dto"
	"github.com/jhoicas/ricemill-ledger/internal/application/threshing"
	"github.com/jhoicas/ricemill-ledger/internal/domain/entity"
)

// ThreshingHandler serves threshing records.
type ThreshingHandler struct {
	uc *threshing.UseCase
}

// NewThreshingHandler builds the handler.
func NewThreshingHandler(uc *threshing.UseCase) *ThreshingHandler {
	return &ThreshingHandler{uc: uc}
}

// Create godoc
// @Summary      Record a threshing run
// @Description  A COMPLETED run converts the paddy into rice in the same transaction.
// @Tags         threshing
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateThreshingRequest  true  "Threshing run"
// @Success      201   {object}  dto.ThreshingResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/threshing [post]
func (h *ThreshingHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateThreshingRequest
	if err := bindBody(c, &in); err != nil {
		return err
	}
	out, err := h.uc.Create(c.UserContext(), actor(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Get a threshing record
// @Tags         threshing
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "Record ID"
// @Success      200  {object}  dto.ThreshingResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/threshing/{id} [get]
func (h *ThreshingHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// GetByBatchNumber godoc
// @Summary      Get a threshing record by batch number
// @Tags         threshing
// @Security     Bearer
// @Produce      json
// @Param        number  path  string  true  "Batch number, e.g. TH-20240610-0001"
// @Success      200  {object}  dto.ThreshingResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/threshing/batch/{number} [get]
func (h *ThreshingHandler) GetByBatchNumber(c *fiber.Ctx) error {
	out, err := h.uc.GetByBatchNumber(c.UserContext(), c.Params("number"))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// List godoc
// @Summary      List threshing records
// @Tags         threshing
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "PENDING, IN_PROGRESS, COMPLETED or CANCELLED"
// @Param        limit   query  int     false  "Limit"  default(20)
// @Param        offset  query  int     false  "Offset" default(0)
// @Success      200  {object}  dto.ThreshingListResponse
// @Router       /api/threshing [get]
func (h *ThreshingHandler) List(c *fiber.Ctx) error {
	page, err := pageQuery(c)
	if err != nil {
		return err
	}
	q := dto.ThreshingQuery{PageRequest: page, Status: c.Query("status")}
	if err := validateStruct(q); err != nil {
		return err
	}
	out, err := h.uc.List(c.UserContext(), q)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// UpdateStatus godoc
// @Summary      Change the status of a threshing run
// @Tags         threshing
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                             true  "Record ID"
// @Param        body  body  dto.UpdateThreshingStatusRequest  true  "New status"
// @Success      200   {object}  dto.ThreshingResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/threshing/{id}/status [patch]
func (h *ThreshingHandler) UpdateStatus(c *fiber.Ctx) error {
	var in dto.UpdateThreshingStatusRequest
	if err := bindBody(c, &in); err != nil {
		return err
	}
	out, err := h.uc.UpdateStatus(c.UserContext(), actor(c), c.Params("id"), entity.ThreshingStatus(in.Status))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Delete a threshing record
// @Description  Completed runs cannot be deleted.
// @Tags         threshing
// @Security     Bearer
// @Param        id   path  string  true  "Record ID"
// @Success      204
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/threshing/{id} [delete]
func (h *ThreshingHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Summary godoc
// @Summary      Threshing totals over a date range
// @Tags         threshing
// @Security     Bearer
// @Produce      json
// @Param        from  query  string  false  "YYYY-MM-DD; defaults to 30 days ago"
// @Param        to    query  string  false  "YYYY-MM-DD; defaults to today"
// @Success      200  {object}  dto.ThreshingSummaryResponse
// @Router       /api/threshing/summary [get]
func (h *ThreshingHandler) Summary(c *fiber.Ctx) error {
	var (
		q   dto.ThreshingSummaryQuery
		err error
	)
	if q.From, err = timeQuery(c, "from"); err != nil {
		return err
	}
	if q.To, err = timeQuery(c, "to"); err != nil {
		return err
	}
	out, err := h.uc.Summary(c.UserContext(), q)
	if err != nil {
		return err
	}
	return c.JSON(out)
}
