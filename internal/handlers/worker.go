package handlers

import (
	"errors"
	"regexp"

	"earnedpay/internal/middleware"
	"earnedpay/internal/repositories"
	"earnedpay/internal/services/ledger"
	"earnedpay/internal/services/withdrawal"
	"earnedpay/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

var upiPattern = regexp.MustCompile(`^[\w.-]+@[\w.-]+$`)

// WorkerHandler serves the worker-facing surface: profile, balance,
// withdrawals and destination updates.
type WorkerHandler struct {
	workers       repositories.WorkerRepository
	ledgerSvc     ledger.Service
	withdrawalSvc withdrawal.Service
}

func NewWorkerHandler(workers repositories.WorkerRepository, ledgerSvc ledger.Service, withdrawalSvc withdrawal.Service) *WorkerHandler {
	return &WorkerHandler{
		workers:       workers,
		ledgerSvc:     ledgerSvc,
		withdrawalSvc: withdrawalSvc,
	}
}

func (h *WorkerHandler) GetProfile(c *fiber.Ctx) error {
	claims, err := middleware.Claims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	worker, err := h.workers.GetByID(c.Context(), claims.SubjectID())
	if err != nil {
		return utils.NotFound(c, "Worker profile not found")
	}
	return utils.Success(c, worker)
}

func (h *WorkerHandler) GetBalance(c *fiber.Ctx) error {
	claims, err := middleware.Claims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	balance, err := h.ledgerSvc.Balance(c.Context(), claims.SubjectID())
	if err != nil {
		if errors.Is(err, ledger.ErrWorkerNotFound) {
			return utils.NotFound(c, "Worker profile not found")
		}
		return utils.InternalError(c, "Failed to get balance")
	}
	return utils.Success(c, balance)
}

func (h *WorkerHandler) RequestWithdrawal(c *fiber.Ctx) error {
	claims, err := middleware.Claims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		Amount float64 `json:"amount"`
		UPIID  string  `json:"upi_id"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}
	if input.Amount <= 0 {
		return utils.BadRequest(c, "Amount must be greater than 0")
	}
	if !upiPattern.MatchString(input.UPIID) {
		return utils.BadRequest(c, "Invalid UPI ID")
	}

	w, err := h.withdrawalSvc.Request(c.Context(), claims.SubjectID(), decimal.NewFromFloat(input.Amount), input.UPIID)
	if err != nil {
		switch {
		case errors.Is(err, withdrawal.ErrNoActiveLedger):
			return utils.BadRequest(c, "No active wage ledger found")
		case errors.Is(err, withdrawal.ErrBelowMinimum),
			errors.Is(err, withdrawal.ErrAboveMaximum),
			errors.Is(err, withdrawal.ErrInsufficientBalance):
			return utils.BadRequest(c, err.Error())
		default:
			// Internal detail stays out of the response.
			return utils.InternalError(c, "Withdrawal processing failed")
		}
	}

	return utils.Success(c, fiber.Map{
		"id":                   w.ID,
		"amount":               w.Amount,
		"status":               w.Status,
		"requested_at":         w.RequestedAt,
		"transaction_id":       w.TransactionID,
		"estimated_completion": "Instant",
		"message":              "Successfully transferred " + w.Amount.StringFixed(2) + " to " + w.UPIID,
	})
}

func (h *WorkerHandler) GetWithdrawals(c *fiber.Ctx) error {
	claims, err := middleware.Claims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	limit := c.QueryInt("limit", 20)
	withdrawals, err := h.withdrawalSvc.History(c.Context(), claims.SubjectID(), limit)
	if err != nil {
		return utils.InternalError(c, "Failed to get withdrawal history")
	}
	return utils.Success(c, fiber.Map{"withdrawals": withdrawals})
}

func (h *WorkerHandler) GetWithdrawalStatus(c *fiber.Ctx) error {
	claims, err := middleware.Claims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	w, err := h.withdrawalSvc.CheckStatus(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, withdrawal.ErrWithdrawalNotFound) {
			return utils.NotFound(c, "Withdrawal not found")
		}
		return utils.InternalError(c, "Failed to check withdrawal status")
	}
	if w.WorkerID != claims.SubjectID() {
		return utils.Forbidden(c, "Access denied")
	}
	return utils.Success(c, w)
}

func (h *WorkerHandler) UpdateUPI(c *fiber.Ctx) error {
	claims, err := middleware.Claims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		UPIID string `json:"upi_id"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}
	if !upiPattern.MatchString(input.UPIID) {
		return utils.BadRequest(c, "Invalid UPI ID")
	}

	if err := h.workers.UpdateUPI(c.Context(), claims.SubjectID(), input.UPIID); err != nil {
		if errors.Is(err, repositories.ErrWorkerNotFound) {
			return utils.NotFound(c, "Worker profile not found")
		}
		return utils.InternalError(c, "Failed to update UPI ID")
	}

	return utils.Success(c, fiber.Map{
		"success": true,
		"message": "UPI ID updated successfully",
		"upi_id":  input.UPIID,
	})
}
