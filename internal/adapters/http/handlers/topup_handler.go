package handlers

import (
	"errors"

	"fuelpay-backend/internal/adapters/http/middleware"
	"fuelpay-backend/internal/core/domain"
	"fuelpay-backend/internal/core/services"
	"fuelpay-backend/internal/pkg/pagination"
	"fuelpay-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// TopUpHandler handles wallet top-up endpoints
type TopUpHandler struct {
	ledgerService *services.LedgerService
}

// NewTopUpHandler creates a new top-up handler
func NewTopUpHandler(ledgerService *services.LedgerService) *TopUpHandler {
	return &TopUpHandler{ledgerService: ledgerService}
}

// Create credits the authenticated customer's wallet
// @Summary Top up wallet
// @Description Credit the customer's wallet balance
// @Tags TopUps
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param Idempotency-Key header string false "Idempotency key"
// @Param body body services.TopUpInput true "Top-up data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /topups [post]
func (h *TopUpHandler) Create(c *fiber.Ctx) error {
	customerID := middleware.GetAccountID(c)

	var req services.TopUpInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	result, err := h.ledgerService.TopUp(c.Context(), customerID, &req, c.Get("Idempotency-Key"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidAmount), errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, "Invalid amount or payment method")
		case errors.Is(err, domain.ErrCustomerNotFound):
			return response.NotFound(c, "Customer not found")
		case errors.Is(err, domain.ErrAccountNotVerified):
			return response.Forbidden(c, "Account verification required")
		case errors.Is(err, domain.ErrConflict):
			return response.Conflict(c, "Idempotency key was used for a different operation")
		default:
			return response.InternalServerError(c, "Failed to top up wallet")
		}
	}

	if result.Replayed {
		return response.Success(c, "Top-up already processed", fiber.Map{
			"top_up":   result.TopUp,
			"replayed": true,
		})
	}

	return response.Created(c, "Top-up completed", fiber.Map{
		"top_up": result.TopUp,
	})
}

// History lists the authenticated customer's top-ups
// @Summary Top-up history
// @Description List the customer's top-ups, newest first
// @Tags TopUps
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /topups [get]
func (h *TopUpHandler) History(c *fiber.Ctx) error {
	customerID := middleware.GetAccountID(c)
	params := pagination.GetParams(c)

	topUps, total, err := h.ledgerService.ListTopUps(c.Context(), customerID, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to load top-up history")
	}

	return response.Success(c, "Top-up history retrieved", pagination.NewResponse(topUps, params, total))
}
