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

// TransferHandler handles customer-to-customer transfer endpoints
type TransferHandler struct {
	ledgerService *services.LedgerService
}

// NewTransferHandler creates a new transfer handler
func NewTransferHandler(ledgerService *services.LedgerService) *TransferHandler {
	return &TransferHandler{ledgerService: ledgerService}
}

// FindReceiver resolves a receiver before the client commits a transfer
// @Summary Find transfer receiver
// @Description Look up a verified customer by phone number
// @Tags Transfers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param phone query string true "Receiver phone number"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /transfers/receiver [get]
func (h *TransferHandler) FindReceiver(c *fiber.Ctx) error {
	phone := c.Query("phone")
	if phone == "" {
		return response.BadRequest(c, "Phone number is required")
	}

	receiver, err := h.ledgerService.FindReceiver(c.Context(), phone)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrCustomerNotFound):
			return response.NotFound(c, "No customer with that phone number")
		case errors.Is(err, domain.ErrAccountNotVerified):
			return response.UnprocessableEntity(c, "Receiver account is not verified")
		default:
			return response.InternalServerError(c, "Failed to look up receiver")
		}
	}

	return response.Success(c, "Receiver found", fiber.Map{
		"receiver": fiber.Map{
			"id":    receiver.ID,
			"name":  receiver.Name,
			"phone": receiver.PhoneNumber,
		},
	})
}

// Create executes a transfer
// @Summary Transfer balance or points
// @Description Move balance or points to another verified customer
// @Tags Transfers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param Idempotency-Key header string false "Idempotency key"
// @Param body body services.TransferInput true "Transfer data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 402 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /transfers [post]
func (h *TransferHandler) Create(c *fiber.Ctx) error {
	senderID := middleware.GetAccountID(c)

	var req services.TransferInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	result, err := h.ledgerService.Transfer(c.Context(), senderID, &req, c.Get("Idempotency-Key"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidAmount), errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, "Invalid amount or transfer kind")
		case errors.Is(err, domain.ErrSelfTransfer):
			return response.BadRequest(c, "Cannot transfer to yourself")
		case errors.Is(err, domain.ErrCustomerNotFound):
			return response.NotFound(c, "Receiver not found")
		case errors.Is(err, domain.ErrAccountNotVerified):
			return response.Forbidden(c, "Both accounts must be verified")
		case errors.Is(err, domain.ErrInsufficientFunds):
			return response.PaymentRequired(c, "Insufficient balance")
		case errors.Is(err, domain.ErrInsufficientPoints):
			return response.PaymentRequired(c, "Insufficient points")
		case errors.Is(err, domain.ErrConflict):
			return response.Conflict(c, "Idempotency key was used for a different operation")
		default:
			return response.InternalServerError(c, "Failed to execute transfer")
		}
	}

	if result.Replayed {
		return response.Success(c, "Transfer already processed", fiber.Map{
			"transfer": result.Transfer,
			"replayed": true,
		})
	}

	return response.Created(c, "Transfer completed", fiber.Map{
		"transfer": result.Transfer,
	})
}

// History lists the authenticated customer's transfers
// @Summary Transfer history
// @Description List the customer's sent and received transfers, newest first
// @Tags Transfers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /transfers [get]
func (h *TransferHandler) History(c *fiber.Ctx) error {
	customerID := middleware.GetAccountID(c)
	params := pagination.GetParams(c)

	transfers, total, err := h.ledgerService.ListTransfers(c.Context(), customerID, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to load transfer history")
	}

	return response.Success(c, "Transfer history retrieved", pagination.NewResponse(transfers, params, total))
}
