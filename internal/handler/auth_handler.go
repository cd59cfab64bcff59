package handler

import (
	"medshop/internal/apperror"
	"medshop/internal/auth"
	"medshop/internal/middleware"
	"medshop/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	userService service.UserService
	tokens      *auth.TokenManager
}

func NewAuthHandler(userService service.UserService, tokens *auth.TokenManager) *AuthHandler {
	return &AuthHandler{userService: userService, tokens: tokens}
}

func (h *AuthHandler) RegisterRoutes(api *gin.RouterGroup) {
	group := api.Group("/auth")
	{
		group.POST("/login", h.Login)
		group.POST("/setup", h.Setup)
		group.POST("/register", middleware.OptionalAuth(h.tokens), h.Register)
		group.GET("/me", middleware.RequireAuth(h.tokens), h.Me)
		group.PUT("/change-password", middleware.RequireAuth(h.tokens), h.ChangePassword)
	}
}

// Login authenticates a user
// @Summary      Login
// @Description  Authenticates with username (or email) and password and returns a JWT
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.LoginRequest  true  "Credentials"
// @Success      200      {object}  response.Response{data=service.AuthResponse}
// @Failure      400      {object}  response.Response
// @Failure      401      {object}  response.Response
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.userService.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, res)
}

// Setup creates the first admin account
// @Summary      Initial setup
// @Description  Creates the first admin. Refused once any user exists.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.SetupRequest  true  "Admin account"
// @Success      201      {object}  response.Response{data=service.AuthResponse}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /api/auth/setup [post]
func (h *AuthHandler) Setup(c *gin.Context) {
	var req service.SetupRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.userService.Setup(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, res)
}

// Register creates a user account
// @Summary      Register
// @Description  Creates a staff account. Creating an admin requires an admin bearer token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.RegisterRequest  true  "Account"
// @Success      201      {object}  response.Response{data=service.UserResponse}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.Register(c.Request.Context(), middleware.UserRole(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, user)
}

// Me returns the current user
// @Summary      Current user
// @Tags         auth
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=service.UserResponse}
// @Failure      401  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		respondError(c, apperror.NewUnauthorized("Authentication required"))
		return
	}

	user, err := h.userService.Me(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, user)
}

// ChangePassword replaces the caller's password
// @Summary      Change password
// @Tags         auth
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.ChangePasswordRequest  true  "Passwords"
// @Success      200      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Failure      401      {object}  response.Response
// @Router       /api/auth/change-password [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		respondError(c, apperror.NewUnauthorized("Authentication required"))
		return
	}

	var req service.ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.userService.ChangePassword(c.Request.Context(), userID, req); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "Password changed successfully")
}
