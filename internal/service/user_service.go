package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"medshop/internal/apperror"
	"medshop/internal/auth"
	"medshop/internal/model"
	"medshop/internal/repository"
	"medshop/pkg/logger"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLength = 6

// DTOs for Request validation
type LoginRequest struct {
	Username string `json:"username" binding:"required"` // username or email
	Password string `json:"password" binding:"required"`
}

type SetupRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"omitempty,oneof=admin staff"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=6"`
}

// UserResponse never exposes the password hash
type UserResponse struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// UserService covers login, first-run setup and account management
type UserService interface {
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	Setup(ctx context.Context, req SetupRequest) (*AuthResponse, error)
	Register(ctx context.Context, callerRole string, req RegisterRequest) (*UserResponse, error)
	Me(ctx context.Context, userID uint) (*UserResponse, error)
	ChangePassword(ctx context.Context, userID uint, req ChangePasswordRequest) error
}

type userService struct {
	repo      repository.UserRepository
	txManager repository.TransactionManager
	tokens    *auth.TokenManager
}

// NewUserService returns a new instance of UserService
func NewUserService(repo repository.UserRepository, txManager repository.TransactionManager, tokens *auth.TokenManager) UserService {
	return &userService{repo: repo, txManager: txManager, tokens: tokens}
}

// Helper: parse model to standard json API response
func mapToResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
}

func hashPassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", apperror.NewValidationf("password must be at least %d characters", minPasswordLength)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", apperror.NewInternal(err)
	}
	return string(hashed), nil
}

func (s *userService) issue(user *model.User) (*AuthResponse, error) {
	token, expiresAt, err := s.tokens.Issue(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	return &AuthResponse{Token: token, ExpiresAt: expiresAt, User: mapToResponse(user)}, nil
}

func (s *userService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	login := strings.TrimSpace(req.Username)
	if login == "" || req.Password == "" {
		return nil, apperror.NewValidation("username and password are required")
	}

	user, err := s.repo.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Info(ctx, "login failed", "login", login, "reason", "unknown user")
			return nil, apperror.NewUnauthorized("Invalid credentials")
		}
		return nil, apperror.NewDatabase(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		logger.Info(ctx, "login failed", "login", login, "reason", "wrong password")
		return nil, apperror.NewUnauthorized("Invalid credentials")
	}

	logger.Info(ctx, "user logged in", "user_id", user.ID, "role", user.Role)
	return s.issue(user)
}

// Setup creates the first admin; it is refused once any user exists
func (s *userService) Setup(ctx context.Context, req SetupRequest) (*AuthResponse, error) {
	hashed, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username: strings.TrimSpace(req.Username),
		Email:    strings.TrimSpace(req.Email),
		Password: hashed,
		Role:     model.RoleAdmin,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.LockSetup(txCtx); err != nil {
			return err
		}
		count, err := s.repo.Count(txCtx)
		if err != nil {
			return err
		}
		if count > 0 {
			return apperror.NewForbidden("Setup has already been completed")
		}
		if err := s.repo.Create(txCtx, user); err != nil {
			return storeErr(err, "User", "username or email")
		}
		return nil
	})
	if err != nil {
		return nil, passThrough(err)
	}

	logger.Info(ctx, "initial admin created", "user_id", user.ID)
	return s.issue(user)
}

// Register creates a staff account; creating an admin needs an admin caller
func (s *userService) Register(ctx context.Context, callerRole string, req RegisterRequest) (*UserResponse, error) {
	role := orDefault(req.Role, model.RoleStaff)
	if role != model.RoleAdmin && role != model.RoleStaff {
		return nil, apperror.NewValidationf("invalid role %q", role)
	}
	if role == model.RoleAdmin && callerRole != model.RoleAdmin {
		return nil, apperror.NewForbidden("Only admins can create admin accounts")
	}
	if strings.TrimSpace(req.Username) == "" || strings.TrimSpace(req.Email) == "" {
		return nil, apperror.NewValidation("username and email are required")
	}

	hashed, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username: strings.TrimSpace(req.Username),
		Email:    strings.TrimSpace(req.Email),
		Password: hashed,
		Role:     role,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, storeErr(err, "User", "username or email")
	}

	logger.Info(ctx, "user registered", "user_id", user.ID, "role", user.Role)
	res := mapToResponse(user)
	return &res, nil
}

func (s *userService) Me(ctx context.Context, userID uint) (*UserResponse, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "User", userID)
	}
	res := mapToResponse(user)
	return &res, nil
}

func (s *userService) ChangePassword(ctx context.Context, userID uint, req ChangePasswordRequest) error {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return notFoundOr(err, "User", userID)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
		return apperror.NewUnauthorized("Current password is incorrect")
	}

	hashed, err := hashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, userID, hashed); err != nil {
		return apperror.NewDatabase(err)
	}

	logger.Info(ctx, "password changed", "user_id", userID)
	return nil
}
