package handlers

import (
	"errors"
	"strconv"

	"fuelpay-backend/internal/adapters/http/middleware"
	"fuelpay-backend/internal/adapters/persistence/models"
	"fuelpay-backend/internal/core/domain"
	"fuelpay-backend/internal/core/services"
	"fuelpay-backend/internal/pkg/pagination"
	"fuelpay-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// CustomerHandler handles customer profile endpoints
type CustomerHandler struct {
	accountService *services.AccountService
}

// NewCustomerHandler creates a new customer handler
func NewCustomerHandler(accountService *services.AccountService) *CustomerHandler {
	return &CustomerHandler{accountService: accountService}
}

// Me returns the authenticated customer's profile
// @Summary Get own profile
// @Description Get the authenticated customer's profile with balances
// @Tags Customers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /customers/me [get]
func (h *CustomerHandler) Me(c *fiber.Ctx) error {
	customerID := middleware.GetAccountID(c)

	customer, err := h.accountService.GetCustomer(c.Context(), customerID)
	if err != nil {
		return response.NotFound(c, "Customer not found")
	}

	return response.Success(c, "Profile retrieved", fiber.Map{
		"customer": customer.ToResponse(),
	})
}

// UpdateMe updates the authenticated customer's profile
// @Summary Update own profile
// @Description Update name and image; balances are never writable here
// @Tags Customers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.UpdateProfileInput true "Profile data"
// @Success 200 {object} response.Response
// @Router /customers/me [put]
func (h *CustomerHandler) UpdateMe(c *fiber.Ctx) error {
	customerID := middleware.GetAccountID(c)

	var req services.UpdateProfileInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	customer, err := h.accountService.UpdateCustomerProfile(c.Context(), customerID, &req)
	if err != nil {
		if errors.Is(err, domain.ErrCustomerNotFound) {
			return response.NotFound(c, "Customer not found")
		}
		return response.InternalServerError(c, "Failed to update profile")
	}

	return response.Success(c, "Profile updated", fiber.Map{
		"customer": customer.ToResponse(),
	})
}

// ChangePasswordRequest represents password change body
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// ChangePassword replaces the authenticated customer's password
// @Summary Change password
// @Description Replace the password after verifying the current one
// @Tags Customers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ChangePasswordRequest true "Password change"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /customers/me/password [put]
func (h *CustomerHandler) ChangePassword(c *fiber.Ctx) error {
	customerID := middleware.GetAccountID(c)

	var req ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.OldPassword == "" || req.NewPassword == "" {
		return response.BadRequest(c, "Old and new passwords are required")
	}

	err := h.accountService.ChangePassword(c.Context(), models.AccountTypeCustomer, customerID, req.OldPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			return response.Unauthorized(c, "Current password is incorrect")
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, err.Error())
		case errors.Is(err, domain.ErrCustomerNotFound):
			return response.NotFound(c, "Customer not found")
		default:
			return response.InternalServerError(c, "Failed to change password")
		}
	}

	return response.Success(c, "Password changed successfully", nil)
}

// PushTokenRequest represents push token registration body
type PushTokenRequest struct {
	Token string `json:"token"`
}

// RegisterPushToken stores the device token for notifications
// @Summary Register push token
// @Description Store the device token notifications are delivered to
// @Tags Customers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body PushTokenRequest true "Push token"
// @Success 200 {object} response.Response
// @Router /customers/me/push-token [put]
func (h *CustomerHandler) RegisterPushToken(c *fiber.Ctx) error {
	accountID := middleware.GetAccountID(c)
	actor := middleware.GetActor(c)

	var req PushTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Token == "" {
		return response.BadRequest(c, "Token is required")
	}

	if err := h.accountService.RegisterPushToken(c.Context(), actor, accountID, req.Token); err != nil {
		return response.InternalServerError(c, "Failed to register push token")
	}

	return response.Success(c, "Push token registered", nil)
}

// List lists customers for the back office
// @Summary List customers
// @Description List customer accounts (admin only)
// @Tags Customers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /customers [get]
func (h *CustomerHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	customers, total, err := h.accountService.ListCustomers(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list customers")
	}

	responses := make([]*models.CustomerResponse, 0, len(customers))
	for _, customer := range customers {
		responses = append(responses, customer.ToResponse())
	}

	return response.Success(c, "Customers retrieved", pagination.NewResponse(responses, params, total))
}

// Get gets one customer for the back office
// @Summary Get customer
// @Description Get a customer account by ID (admin only)
// @Tags Customers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Customer ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /customers/{id} [get]
func (h *CustomerHandler) Get(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid customer ID")
	}

	customer, err := h.accountService.GetCustomer(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, domain.ErrCustomerNotFound) {
			return response.NotFound(c, "Customer not found")
		}
		return response.InternalServerError(c, "Failed to load customer")
	}

	return response.Success(c, "Customer retrieved", fiber.Map{
		"customer": customer.ToResponse(),
	})
}
