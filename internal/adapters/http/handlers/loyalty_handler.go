package handlers

import (
	"errors"
	"strconv"

	"fuelpay-backend/internal/adapters/http/middleware"
	"fuelpay-backend/internal/core/domain"
	"fuelpay-backend/internal/core/services"
	"fuelpay-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// LoyaltyHandler handles loyalty point endpoints
type LoyaltyHandler struct {
	loyaltyService *services.LoyaltyService
}

// NewLoyaltyHandler creates a new loyalty handler
func NewLoyaltyHandler(loyaltyService *services.LoyaltyService) *LoyaltyHandler {
	return &LoyaltyHandler{loyaltyService: loyaltyService}
}

// ListPoints lists the customer's point balances across pumps
// @Summary List loyalty points
// @Description List the customer's per-pump point balances
// @Tags Loyalty
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /loyalty [get]
func (h *LoyaltyHandler) ListPoints(c *fiber.Ctx) error {
	customerID := middleware.GetAccountID(c)

	entries, err := h.loyaltyService.ListPoints(c.Context(), customerID)
	if err != nil {
		return response.InternalServerError(c, "Failed to load loyalty points")
	}

	return response.Success(c, "Loyalty points retrieved", fiber.Map{
		"points": entries,
	})
}

// GetPoints gets the customer's point balance at one pump
// @Summary Get loyalty points at a pump
// @Description Get the customer's point balance at a specific pump
// @Tags Loyalty
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param pumpId path int true "Pump ID"
// @Success 200 {object} response.Response
// @Router /loyalty/{pumpId} [get]
func (h *LoyaltyHandler) GetPoints(c *fiber.Ctx) error {
	customerID := middleware.GetAccountID(c)

	pumpID, err := strconv.ParseUint(c.Params("pumpId"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid pump ID")
	}

	entry, err := h.loyaltyService.GetPoints(c.Context(), customerID, uint(pumpID))
	if err != nil {
		return response.InternalServerError(c, "Failed to load loyalty points")
	}

	return response.Success(c, "Loyalty points retrieved", fiber.Map{
		"entry": entry,
	})
}

// Redeem converts a full point balance at one pump into wallet credit
// @Summary Redeem loyalty points
// @Description Convert a full-cap point balance into wallet balance
// @Tags Loyalty
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param pumpId path int true "Pump ID"
// @Success 200 {object} response.Response
// @Failure 402 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /loyalty/{pumpId}/redeem [post]
func (h *LoyaltyHandler) Redeem(c *fiber.Ctx) error {
	customerID := middleware.GetAccountID(c)

	pumpID, err := strconv.ParseUint(c.Params("pumpId"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid pump ID")
	}

	result, err := h.loyaltyService.Redeem(c.Context(), customerID, uint(pumpID))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrPumpNotFound):
			return response.NotFound(c, "Pump not found")
		case errors.Is(err, domain.ErrCustomerNotFound):
			return response.NotFound(c, "Customer not found")
		case errors.Is(err, domain.ErrAccountNotVerified):
			return response.Forbidden(c, "Account verification required")
		case errors.Is(err, domain.ErrInsufficientPoints):
			return response.PaymentRequired(c, "Not enough points to redeem")
		default:
			return response.InternalServerError(c, "Failed to redeem points")
		}
	}

	return response.Success(c, "Points redeemed", result)
}

// SetThresholdRequest represents threshold update request body
type SetThresholdRequest struct {
	Threshold int `json:"threshold"`
}

// SetThreshold changes a pump's accrual rate
// @Summary Set loyalty threshold
// @Description Change how much a customer must spend per point at a pump
// @Tags Loyalty
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param pumpId path int true "Pump ID"
// @Param body body SetThresholdRequest true "New threshold"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /loyalty/{pumpId}/threshold [put]
func (h *LoyaltyHandler) SetThreshold(c *fiber.Ctx) error {
	actorID := middleware.GetAccountID(c)
	actor := middleware.GetActor(c)

	pumpID, err := strconv.ParseUint(c.Params("pumpId"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid pump ID")
	}

	var req SetThresholdRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	pump, err := h.loyaltyService.SetThreshold(c.Context(), uint(pumpID), req.Threshold, actorID, actor)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, "Threshold must be at least 1")
		case errors.Is(err, domain.ErrPumpNotFound):
			return response.NotFound(c, "Pump not found")
		case errors.Is(err, domain.ErrForbidden):
			return response.Forbidden(c, "Only an admin or the pump's manager can change the threshold")
		default:
			return response.InternalServerError(c, "Failed to update threshold")
		}
	}

	return response.Success(c, "Threshold updated", fiber.Map{
		"pump": pump,
	})
}
