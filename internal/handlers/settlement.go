package handlers

import (
	"errors"
	"time"

	"earnedpay/internal/middleware"
	"earnedpay/internal/services/settlement"
	"earnedpay/internal/services/wage"
	"earnedpay/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// SettlementHandler exposes month-end settlement to employers.
type SettlementHandler struct {
	settlementSvc settlement.Service
}

func NewSettlementHandler(settlementSvc settlement.Service) *SettlementHandler {
	return &SettlementHandler{settlementSvc: settlementSvc}
}

// Process closes out the given month for the caller's company. The
// month defaults to the current one and must be YYYY-MM.
func (h *SettlementHandler) Process(c *fiber.Ctx) error {
	claims, err := middleware.Claims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	month := c.Query("month", wage.MonthOf(time.Now().UTC()))
	if _, err := time.Parse("2006-01", month); err != nil {
		return utils.BadRequest(c, "month must be in YYYY-MM format")
	}

	result, err := h.settlementSvc.Process(c.Context(), claims.SubjectID(), month)
	if err != nil {
		switch {
		case errors.Is(err, settlement.ErrNothingToSettle):
			return utils.BadRequest(c, "No active ledgers to settle for "+month)
		case errors.Is(err, settlement.ErrAlreadySettled):
			return utils.Conflict(c, "Month "+month+" is already settled")
		case errors.Is(err, settlement.ErrConflict):
			return utils.Conflict(c, "Settlement conflicted with a concurrent run, retry")
		case errors.Is(err, settlement.ErrRepairRequired):
			return utils.Conflict(c, "Period "+month+" needs manual repair before settling")
		default:
			return utils.InternalError(c, "Failed to process settlement")
		}
	}
	return utils.Success(c, result)
}

func (h *SettlementHandler) List(c *fiber.Ctx) error {
	claims, err := middleware.Claims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	limit := c.QueryInt("limit", 12)
	settlements, err := h.settlementSvc.List(c.Context(), claims.SubjectID(), limit)
	if err != nil {
		return utils.InternalError(c, "Failed to list settlements")
	}
	return utils.Success(c, fiber.Map{"settlements": settlements, "count": len(settlements)})
}
