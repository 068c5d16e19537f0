package handlers

import (
	"context"
	"errors"
	"strings"
	"time"

	"fuelpay-backend/internal/adapters/persistence/models"
	"fuelpay-backend/internal/config"
	"fuelpay-backend/internal/core/domain"
	"fuelpay-backend/internal/core/services"
	"fuelpay-backend/internal/pkg/jwt"
	"fuelpay-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles authentication and verification endpoints
type AuthHandler struct {
	authService   *services.AuthService
	verifyService *services.VerificationService
	cfg           *config.Config
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService, verifyService *services.VerificationService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		verifyService: verifyService,
		cfg:           cfg,
	}
}

// SignupCustomer handles customer registration
// @Summary Register new customer
// @Description Register a customer account and dispatch a verification code
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body services.SignupCustomerInput true "Signup data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /auth/customer/signup [post]
func (h *AuthHandler) SignupCustomer(c *fiber.Ctx) error {
	var req services.SignupCustomerInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)

	if req.Name == "" || req.Email == "" || req.PhoneNumber == "" || req.Password == "" {
		return response.BadRequest(c, "Name, email, phone number and password are required")
	}

	customer, err := h.authService.SignupCustomer(c.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAccountExists):
			return response.Conflict(c, "Email or phone number already registered")
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, err.Error())
		default:
			return response.InternalServerError(c, "Failed to register customer")
		}
	}

	return response.Created(c, "Customer registered, verification code sent", fiber.Map{
		"customer": customer.ToResponse(),
	})
}

// SignupEmployee handles employee registration
// @Summary Register new employee
// @Description Register an employee account and dispatch a verification code
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body services.SignupEmployeeInput true "Signup data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /auth/employee/signup [post]
func (h *AuthHandler) SignupEmployee(c *fiber.Ctx) error {
	var req services.SignupEmployeeInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)

	if req.Name == "" || req.Email == "" || req.PhoneNumber == "" || req.Password == "" || req.Type == "" {
		return response.BadRequest(c, "Name, email, phone number, password and type are required")
	}

	employee, err := h.authService.SignupEmployee(c.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAccountExists):
			return response.Conflict(c, "Email or phone number already registered")
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, err.Error())
		default:
			return response.InternalServerError(c, "Failed to register employee")
		}
	}

	return response.Created(c, "Employee registered, verification code sent", fiber.Map{
		"employee": employee.ToResponse(),
	})
}

// LoginCustomer handles customer login
// @Summary Login customer
// @Description Authenticate customer and return an access token
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body services.LoginInput true "Login credentials"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/customer/login [post]
func (h *AuthHandler) LoginCustomer(c *fiber.Ctx) error {
	return h.login(c, h.authService.LoginCustomer)
}

// LoginEmployee handles employee login
// @Summary Login employee
// @Description Authenticate employee and return an access token
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body services.LoginInput true "Login credentials"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/employee/login [post]
func (h *AuthHandler) LoginEmployee(c *fiber.Ctx) error {
	return h.login(c, h.authService.LoginEmployee)
}

// LoginAdmin handles back-office admin login
// @Summary Login admin
// @Description Authenticate admin and return an access token
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body services.LoginInput true "Login credentials"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/admin/login [post]
func (h *AuthHandler) LoginAdmin(c *fiber.Ctx) error {
	return h.login(c, h.authService.LoginAdmin)
}

// login is the shared login flow for all actors
func (h *AuthHandler) login(c *fiber.Ctx, loginFn func(ctx context.Context, input *services.LoginInput) (*services.LoginOutput, error)) error {
	var req services.LoginInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		return response.BadRequest(c, "Email and password are required")
	}

	result, err := loginFn(c.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			return response.Unauthorized(c, "Invalid email or password")
		default:
			return response.InternalServerError(c, "Failed to login")
		}
	}

	h.setAuthCookie(c, result.Token)

	return response.Success(c, "Login successful", fiber.Map{
		"token":   result.Token,
		"account": result.Account,
	})
}

// VerifyRequest represents verification request body
type VerifyRequest struct {
	Code string `json:"code"`
}

// Verify consumes a signup code for the authenticated account and
// returns a fresh token carrying the verified flag
// @Summary Verify account
// @Description Consume the signup verification code
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body VerifyRequest true "Verification code"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /auth/verify [post]
func (h *AuthHandler) Verify(c *fiber.Ctx) error {
	accountID, actor, err := h.requireAccount(c)
	if err != nil {
		return err
	}

	var req VerifyRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Code == "" {
		return response.BadRequest(c, "Verification code is required")
	}

	if err := h.verifyService.ConfirmSignup(c.Context(), actor, accountID, req.Code); err != nil {
		switch {
		case errors.Is(err, domain.ErrAlreadyVerified):
			return response.Conflict(c, "Account is already verified")
		case errors.Is(err, domain.ErrChallengeNotFound):
			return response.UnprocessableEntity(c, "No active verification code, request a new one")
		case errors.Is(err, domain.ErrChallengeExpired):
			return response.UnprocessableEntity(c, "Verification code has expired, request a new one")
		case errors.Is(err, domain.ErrCodeMismatch):
			return response.UnprocessableEntity(c, "Verification code is incorrect")
		case errors.Is(err, domain.ErrCustomerNotFound), errors.Is(err, domain.ErrEmployeeNotFound):
			return response.NotFound(c, "Account not found")
		default:
			return response.InternalServerError(c, "Failed to verify account")
		}
	}

	// Old tokens still carry verified=false; hand back one that doesn't
	token, err := jwt.Generate(accountID, actor, true, h.cfg.JWT.Secret, h.cfg.JWT.TokenHours)
	if err != nil {
		return response.InternalServerError(c, "Failed to issue token")
	}
	h.setAuthCookie(c, token)

	return response.Success(c, "Account verified successfully", fiber.Map{
		"token": token,
	})
}

// ResendCode reissues the signup verification code
// @Summary Resend verification code
// @Description Issue a fresh signup verification code
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 429 {object} response.Response
// @Router /auth/resend-code [post]
func (h *AuthHandler) ResendCode(c *fiber.Ctx) error {
	accountID, actor, err := h.requireAccount(c)
	if err != nil {
		return err
	}

	if _, err := h.verifyService.IssueChallenge(c.Context(), actor, accountID, models.ChallengePurposeSignup); err != nil {
		switch {
		case errors.Is(err, domain.ErrAlreadyVerified):
			return response.Conflict(c, "Account is already verified")
		case errors.Is(err, domain.ErrChallengeStillLive):
			return response.Error(c, fiber.StatusTooManyRequests, err.Error())
		case errors.Is(err, domain.ErrCustomerNotFound), errors.Is(err, domain.ErrEmployeeNotFound):
			return response.NotFound(c, "Account not found")
		default:
			return response.InternalServerError(c, "Failed to issue verification code")
		}
	}

	return response.Success(c, "Verification code sent", nil)
}

// ForgotPasswordRequest represents forgot password request body
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ForgotPasswordCustomer starts the customer password reset flow
// @Summary Forgot password (customer)
// @Description Issue a password reset code to a verified customer
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body ForgotPasswordRequest true "Account email"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /auth/customer/forgot-password [post]
func (h *AuthHandler) ForgotPasswordCustomer(c *fiber.Ctx) error {
	return h.forgotPassword(c, models.AccountTypeCustomer)
}

// ForgotPasswordEmployee starts the employee password reset flow
// @Summary Forgot password (employee)
// @Description Issue a password reset code to a verified employee
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body ForgotPasswordRequest true "Account email"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /auth/employee/forgot-password [post]
func (h *AuthHandler) ForgotPasswordEmployee(c *fiber.Ctx) error {
	return h.forgotPassword(c, models.AccountTypeEmployee)
}

func (h *AuthHandler) forgotPassword(c *fiber.Ctx, accountType string) error {
	var req ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" {
		return response.BadRequest(c, "Email is required")
	}

	if _, err := h.verifyService.BeginPasswordReset(c.Context(), accountType, req.Email); err != nil {
		switch {
		case errors.Is(err, domain.ErrCustomerNotFound), errors.Is(err, domain.ErrEmployeeNotFound):
			return response.NotFound(c, "No account with that email")
		case errors.Is(err, domain.ErrAccountNotVerified):
			return response.Forbidden(c, "Account must be verified before resetting the password")
		case errors.Is(err, domain.ErrChallengeStillLive):
			return response.Error(c, fiber.StatusTooManyRequests, err.Error())
		default:
			return response.InternalServerError(c, "Failed to issue reset code")
		}
	}

	return response.Success(c, "Password reset code sent", nil)
}

// ResetPasswordRequest represents reset password request body
type ResetPasswordRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}

// ResetPasswordCustomer completes the customer password reset flow
// @Summary Reset password (customer)
// @Description Consume a reset code and install the new password
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body ResetPasswordRequest true "Reset data"
// @Success 200 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /auth/customer/reset-password [post]
func (h *AuthHandler) ResetPasswordCustomer(c *fiber.Ctx) error {
	return h.resetPassword(c, models.AccountTypeCustomer)
}

// ResetPasswordEmployee completes the employee password reset flow
// @Summary Reset password (employee)
// @Description Consume a reset code and install the new password
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body ResetPasswordRequest true "Reset data"
// @Success 200 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /auth/employee/reset-password [post]
func (h *AuthHandler) ResetPasswordEmployee(c *fiber.Ctx) error {
	return h.resetPassword(c, models.AccountTypeEmployee)
}

func (h *AuthHandler) resetPassword(c *fiber.Ctx, accountType string) error {
	var req ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Code == "" || req.NewPassword == "" {
		return response.BadRequest(c, "Email, code and new password are required")
	}

	if err := h.verifyService.CompletePasswordReset(c.Context(), accountType, req.Email, req.Code, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, domain.ErrCustomerNotFound), errors.Is(err, domain.ErrEmployeeNotFound):
			return response.NotFound(c, "No account with that email")
		case errors.Is(err, domain.ErrChallengeNotFound):
			return response.UnprocessableEntity(c, "No active reset code, request a new one")
		case errors.Is(err, domain.ErrChallengeExpired):
			return response.UnprocessableEntity(c, "Reset code has expired, request a new one")
		case errors.Is(err, domain.ErrCodeMismatch):
			return response.UnprocessableEntity(c, "Reset code is incorrect")
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, err.Error())
		default:
			return response.InternalServerError(c, "Failed to reset password")
		}
	}

	return response.Success(c, "Password reset successfully", nil)
}

// Logout clears the auth cookie
// @Summary Logout
// @Description Clear the access token cookie
// @Tags Auth
// @Accept json
// @Produce json
// @Success 200 {object} response.Response
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Now().Add(-1 * time.Hour),
		Secure:   h.cfg.JWT.CookieSecure,
		HTTPOnly: true,
		SameSite: "Lax",
	})

	return response.Success(c, "Logged out successfully", nil)
}

// requireAccount extracts the authenticated account from context
func (h *AuthHandler) requireAccount(c *fiber.Ctx) (uint, string, error) {
	accountID, ok := c.Locals("accountID").(uint)
	if !ok {
		return 0, "", response.Unauthorized(c, "Unauthorized")
	}
	actor, ok := c.Locals("actor").(string)
	if !ok {
		return 0, "", response.Unauthorized(c, "Unauthorized")
	}
	return accountID, actor, nil
}

// setAuthCookie sets the access token cookie
func (h *AuthHandler) setAuthCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    token,
		Path:     "/",
		MaxAge:   h.cfg.JWT.TokenHours * 60 * 60,
		Secure:   h.cfg.JWT.CookieSecure,
		HTTPOnly: true,
		SameSite: "Lax",
	})
}
