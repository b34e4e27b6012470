package handlers

import (
	stderrors "errors"
	"net/http"

	"expenzy/internal/dto"
	"expenzy/internal/errors"
	"expenzy/internal/services"

	"github.com/labstack/echo/v4"
)

// AuthHandler handles signup and login
type AuthHandler struct {
	authService services.AuthServiceInterface
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authService services.AuthServiceInterface) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Signup registers a new account
// @Summary Create an account
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.SignupRequest true "Signup details"
// @Success 201 {object} dto.AuthResponse
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_001 or AUTH_003 (weak password)"
// @Failure 409 {object} errors.ErrorResponse "AUTH_002 - user already exists"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001"
// @Router /api/auth/signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req dto.SignupRequest

	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return err
	}

	user, err := h.authService.Signup(c.Request().Context(), &req)
	if err != nil {
		switch {
		case stderrors.Is(err, services.ErrUserAlreadyExists):
			return SendError(c, errors.AuthUserAlreadyExists)
		case isPasswordPolicyError(err):
			return SendError(c, errors.AuthWeakPassword, errors.WithDetails(err.Error()))
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusCreated, dto.AuthResponse{
		Success: true,
		Message: "User created successfully",
		User:    dto.ToUserResponse(user),
	})
}

// Login checks credentials
// @Summary Log in
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.AuthResponse
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_001"
// @Failure 401 {object} errors.ErrorResponse "AUTH_001 - invalid credentials"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001"
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.LoginRequest

	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return err
	}

	user, err := h.authService.Login(c.Request().Context(), &req)
	if err != nil {
		if stderrors.Is(err, services.ErrInvalidCredentials) {
			return SendError(c, errors.AuthInvalidCredentials)
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, dto.AuthResponse{
		Success: true,
		Message: "Login successful",
		User:    dto.ToUserResponse(user),
	})
}

func isPasswordPolicyError(err error) bool {
	return stderrors.Is(err, services.ErrPasswordEmpty) ||
		stderrors.Is(err, services.ErrPasswordTooShort) ||
		stderrors.Is(err, services.ErrPasswordTooLong)
}
