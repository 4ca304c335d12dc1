package handlers

import (
	"errors"
	"time"

	"earnedpay/internal/middleware"
	"earnedpay/internal/models"
	"earnedpay/internal/repositories"
	"earnedpay/internal/services/ledger"
	"earnedpay/internal/services/wage"
	"earnedpay/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EmployerHandler serves the employer-facing surface: profile and
// withdrawal policy, worker management, attendance submission and the
// dashboard rollup.
type EmployerHandler struct {
	employers repositories.EmployerRepository
	workers   repositories.WorkerRepository
	ledgers   repositories.LedgerRepository
	ledgerSvc ledger.Service
}

func NewEmployerHandler(
	employers repositories.EmployerRepository,
	workers repositories.WorkerRepository,
	ledgers repositories.LedgerRepository,
	ledgerSvc ledger.Service,
) *EmployerHandler {
	return &EmployerHandler{
		employers: employers,
		workers:   workers,
		ledgers:   ledgers,
		ledgerSvc: ledgerSvc,
	}
}

func (h *EmployerHandler) GetProfile(c *fiber.Ctx) error {
	claims, err := middleware.Claims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	employer, err := h.employers.GetByID(c.Context(), claims.SubjectID())
	if err != nil {
		return utils.NotFound(c, "Employer profile not found")
	}
	return utils.Success(c, employer)
}

func (h *EmployerHandler) UpdateProfile(c *fiber.Ctx) error {
	claims, err := middleware.Claims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	employer, err := h.employers.GetByID(c.Context(), claims.SubjectID())
	if err != nil {
		return utils.NotFound(c, "Employer profile not found")
	}

	var input struct {
		CompanyName *string `json:"company_name"`
		GSTNumber   *string `json:"gst_number"`
		Config      *struct {
			MaxPercentage int     `json:"max_percentage"`
			MinAmount     float64 `json:"min_amount"`
			MaxAmount     float64 `json:"max_amount"`
			PaydayDate    int     `json:"payday_date"`
		} `json:"withdrawal_config"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}

	if input.CompanyName != nil {
		employer.CompanyName = *input.CompanyName
	}
	if input.GSTNumber != nil {
		employer.GSTNumber = *input.GSTNumber
	}
	if input.Config != nil {
		cfg := input.Config
		if cfg.MaxPercentage < 30 || cfg.MaxPercentage > 50 {
			return utils.BadRequest(c, "max_percentage must be within 30-50")
		}
		if cfg.MinAmount <= 0 || cfg.MaxAmount < cfg.MinAmount {
			return utils.BadRequest(c, "invalid withdrawal amount limits")
		}
		if cfg.PaydayDate < 1 || cfg.PaydayDate > 31 {
			return utils.BadRequest(c, "payday_date must be within 1-31")
		}
		employer.Config = models.WithdrawalConfig{
			MaxPercentage: cfg.MaxPercentage,
			MinAmount:     decimal.NewFromFloat(cfg.MinAmount),
			MaxAmount:     decimal.NewFromFloat(cfg.MaxAmount),
			PaydayDate:    cfg.PaydayDate,
		}
	}
	employer.UpdatedAt = time.Now().UTC()

	if err := h.employers.Update(c.Context(), employer); err != nil {
		return utils.InternalError(c, "Failed to update employer profile")
	}
	return utils.Success(c, employer)
}

func (h *EmployerHandler) ListWorkers(c *fiber.Ctx) error {
	claims, err := middleware.Claims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	activeOnly := c.QueryBool("active_only", false)
	workers, err := h.workers.ListByEmployer(c.Context(), claims.SubjectID(), activeOnly)
	if err != nil {
		return utils.InternalError(c, "Failed to list workers")
	}
	return utils.Success(c, fiber.Map{"workers": workers, "count": len(workers)})
}

func (h *EmployerHandler) AddWorker(c *fiber.Ctx) error {
	claims, err := middleware.Claims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		FullName    string `json:"full_name"`
		PhoneNumber string `json:"phone_number"`
		UPIID       string `json:"upi_id"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}
	if input.FullName == "" || input.PhoneNumber == "" {
		return utils.BadRequest(c, "full_name and phone_number are required")
	}
	if input.UPIID != "" && !upiPattern.MatchString(input.UPIID) {
		return utils.BadRequest(c, "Invalid UPI ID")
	}

	if _, err := h.employers.GetByID(c.Context(), claims.SubjectID()); err != nil {
		return utils.NotFound(c, "Employer profile not found")
	}

	now := time.Now().UTC()
	worker := &models.Worker{
		ID:          uuid.NewString(),
		EmployerID:  claims.SubjectID(),
		FullName:    input.FullName,
		PhoneNumber: input.PhoneNumber,
		UPIID:       input.UPIID,
		IsActive:    true,
		JoinedAt:    now,
		UpdatedAt:   now,
	}
	if err := h.workers.Create(c.Context(), worker); err != nil {
		return utils.InternalError(c, "Failed to add worker")
	}

	// Open the current month's ledger so attendance lands immediately.
	if _, err := h.ledgerSvc.GetOrCreateActiveLedger(c.Context(), worker.ID, worker.EmployerID, wage.MonthOf(now)); err != nil {
		return utils.InternalError(c, "Failed to open wage ledger for worker")
	}

	return utils.Respond(c, fiber.StatusCreated, worker)
}

// GetDashboard aggregates the employer's current month: headcount,
// wage totals and the projected settlement amount.
func (h *EmployerHandler) GetDashboard(c *fiber.Ctx) error {
	claims, err := middleware.Claims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	employer, err := h.employers.GetByID(c.Context(), claims.SubjectID())
	if err != nil {
		return utils.NotFound(c, "Employer profile not found")
	}

	total, active, err := h.workers.CountByEmployer(c.Context(), employer.ID)
	if err != nil {
		return utils.InternalError(c, "Failed to load dashboard")
	}

	now := time.Now().UTC()
	month := wage.MonthOf(now)
	earned, withdrawn, err := h.ledgers.SumByEmployerMonth(c.Context(), employer.ID, month, models.LedgerStatusActive)
	if err != nil {
		return utils.InternalError(c, "Failed to load dashboard")
	}

	return utils.Success(c, fiber.Map{
		"month":              month,
		"total_workers":      total,
		"active_workers":     active,
		"total_earnings":     earned,
		"total_withdrawals":  withdrawn,
		"pending_settlement": earned.Sub(withdrawn),
		"next_payday":        wage.NextPayday(employer.Config.PaydayDate, now),
	})
}

func (h *EmployerHandler) SubmitAttendance(c *fiber.Ctx) error {
	claims, err := middleware.Claims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		Entries []ledger.AttendanceInput `json:"entries"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}
	if len(input.Entries) == 0 {
		return utils.BadRequest(c, "entries must not be empty")
	}

	processed, err := h.ledgerSvc.ProcessAttendance(c.Context(), claims.SubjectID(), input.Entries)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrInvalidEntry):
			return utils.BadRequest(c, err.Error())
		case errors.Is(err, ledger.ErrWorkerNotFound):
			return utils.NotFound(c, "Worker not found for this employer")
		case errors.Is(err, ledger.ErrLedgerNotActive):
			return utils.Conflict(c, "Wage ledger for the period is already settled")
		case errors.Is(err, ledger.ErrConflict):
			return utils.Conflict(c, "Attendance conflicted with concurrent updates, retry")
		default:
			return utils.InternalError(c, "Failed to process attendance")
		}
	}

	return utils.Success(c, fiber.Map{
		"processed": processed,
		"count":     len(processed),
	})
}
