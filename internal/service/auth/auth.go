// internal/service/auth/auth.go
package auth

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"carecycle-service/internal/domain/auth"
	xerrors "carecycle-service/internal/pkg/errors"
	"carecycle-service/internal/pkg/jwt"
	"carecycle-service/internal/pkg/session"
	"carecycle-service/internal/repository/postgres"
	"carecycle-service/internal/service/email"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	authRepo       *postgres.AuthRepository
	jwtManager     *jwt.Manager
	sessionManager *session.Manager
	emailSender    *email.EmailSender
	logger         *zap.Logger
}

func NewAuthService(
	authRepo *postgres.AuthRepository,
	jwtManager *jwt.Manager,
	sessionManager *session.Manager,
	emailSender *email.EmailSender,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		authRepo:       authRepo,
		jwtManager:     jwtManager,
		sessionManager: sessionManager,
		emailSender:    emailSender,
		logger:         logger,
	}
}

// ========== Registration ==========

// Register creates a new customer account and logs it in
func (s *AuthService) Register(ctx context.Context, req *auth.RegisterRequest) (*auth.LoginResponse, error) {
	if _, err := s.authRepo.FindByEmail(ctx, req.Email); err == nil {
		return nil, xerrors.ErrDuplicateEntry
	} else if !xerrors.Is(err, xerrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// Self-registration always creates a customer account. Staff roles are
	// provisioned separately through CreateStaff.
	user := &auth.User{
		Email:        req.Email,
		Phone:        sql.NullString{String: req.Phone, Valid: req.Phone != ""},
		FullName:     req.FullName,
		Role:         session.RoleUser,
		Status:       "active",
		PasswordHash: string(hashedPassword),
	}

	if err := s.authRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := s.emailSender.SendWelcome(user.Email, user.FullName); err != nil {
		// Don't fail registration if email sending fails
		s.logger.Error("failed to send welcome email", zap.Error(err))
	}

	// Auto-login after registration
	return s.loginUser(ctx, user)
}

// ========== Login ==========

// Login authenticates a user with email/password
func (s *AuthService) Login(ctx context.Context, req *auth.LoginRequest) (*auth.LoginResponse, error) {
	user, err := s.authRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return nil, xerrors.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !user.IsActive() {
		return nil, xerrors.ErrAccountInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, xerrors.ErrUnauthorized
	}

	if err := s.authRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.Error("failed to update last login", zap.Error(err))
	}

	return s.loginUser(ctx, user)
}

// loginUser generates a token pair and opens the server-side session
func (s *AuthService) loginUser(ctx context.Context, user *auth.User) (*auth.LoginResponse, error) {
	accessToken, _, err := s.jwtManager.Generator.GenerateAccessToken(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, _, err := s.jwtManager.Generator.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	rec, err := s.sessionManager.Create(ctx, accessToken, session.UserInfo{
		ID:       user.ID,
		Role:     user.Role,
		FullName: user.FullName,
		Email:    user.Email,
	}, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.logger.Info("user logged in",
		zap.Int64("user_id", user.ID),
		zap.String("role", rec.Role),
		zap.Time("session_expires", rec.ExpiryTime),
	)

	return &auth.LoginResponse{
		Token:        accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresAt:    rec.ExpiryTime,
		User: auth.UserInfo{
			ID:       user.ID,
			Role:     user.Role,
			FullName: user.FullName,
			Email:    user.Email,
		},
	}, nil
}

// ========== Refresh ==========

// Refresh exchanges a refresh token for a fresh token pair and a new session.
// The old session is destroyed. Refresh is always an explicit client call,
// never something the server does behind a failed request.
func (s *AuthService) Refresh(ctx context.Context, req *auth.RefreshRequest, oldSessionToken string) (*auth.LoginResponse, error) {
	claims, err := s.jwtManager.Verifier.VerifyRefreshToken(req.RefreshToken)
	if err != nil {
		return nil, xerrors.ErrUnauthorized
	}

	user, err := s.authRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return nil, xerrors.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if !user.IsActive() {
		return nil, xerrors.ErrAccountInactive
	}

	resp, err := s.loginUser(ctx, user)
	if err != nil {
		return nil, err
	}

	// The old record is replaced, not left to age out.
	if oldSessionToken != "" && oldSessionToken != resp.Token {
		if err := s.sessionManager.Destroy(ctx, oldSessionToken); err != nil {
			s.logger.Warn("failed to destroy replaced session", zap.Error(err))
		}
	}

	return resp, nil
}

// ========== Logout ==========

// Logout destroys the server-side session for the given access token
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if err := s.sessionManager.Destroy(ctx, token); err != nil {
		return fmt.Errorf("failed to destroy session: %w", err)
	}
	return nil
}

// ExtendSession pushes the session expiry forward by the role's full window
func (s *AuthService) ExtendSession(ctx context.Context, token string) (time.Duration, error) {
	if !s.sessionManager.Extend(ctx, token) {
		return 0, xerrors.ErrSessionExpired
	}
	return s.sessionManager.TimeRemaining(ctx, token), nil
}

// ========== Profile ==========

// GetProfile returns the caller's account
func (s *AuthService) GetProfile(ctx context.Context, userID int64) (*auth.User, error) {
	return s.authRepo.FindByID(ctx, userID)
}

// UpdateDetails applies profile edits for the caller
func (s *AuthService) UpdateDetails(ctx context.Context, userID int64, req *auth.UpdateDetailsRequest) (*auth.User, error) {
	user, err := s.authRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.FullName != "" {
		user.FullName = req.FullName
	}
	if req.Phone != "" {
		user.Phone = sql.NullString{String: req.Phone, Valid: true}
	}
	if req.AvatarURL != "" {
		user.AvatarURL = sql.NullString{String: req.AvatarURL, Valid: true}
	}
	if req.DateOfBirth != "" {
		dob, err := time.Parse("2006-01-02", req.DateOfBirth)
		if err != nil {
			return nil, xerrors.ErrInvalidInput
		}
		user.DateOfBirth = sql.NullTime{Time: dob, Valid: true}
	}

	if err := s.authRepo.UpdateDetails(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// ChangePassword verifies the current password and stores a new hash
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, req *auth.ChangePasswordRequest) error {
	user, err := s.authRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return xerrors.ErrUnauthorized
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.authRepo.UpdatePassword(ctx, userID, string(hashed))
}

// ========== Back-office account management ==========

// CreateStaff provisions a consultant/admin/manager/staff account
func (s *AuthService) CreateStaff(ctx context.Context, req *auth.CreateStaffRequest) (*auth.User, error) {
	role := session.NormalizeRole(req.Role)
	if !session.IsPrivilegedRole(role) {
		return nil, xerrors.ErrInvalidInput
	}

	if _, err := s.authRepo.FindByEmail(ctx, req.Email); err == nil {
		return nil, xerrors.ErrDuplicateEntry
	} else if !xerrors.Is(err, xerrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &auth.User{
		Email:        req.Email,
		Phone:        sql.NullString{String: req.Phone, Valid: req.Phone != ""},
		FullName:     req.FullName,
		Role:         role,
		Status:       "active",
		PasswordHash: string(hashed),
	}

	if err := s.authRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create staff account: %w", err)
	}

	s.logger.Info("staff account created",
		zap.Int64("user_id", user.ID),
		zap.String("role", user.Role),
	)

	return user, nil
}

// ListUsers enumerates accounts for the back office
func (s *AuthService) ListUsers(ctx context.Context, role, search string, limit, offset int) ([]auth.User, int64, error) {
	return s.authRepo.List(ctx, role, search, limit, offset)
}

// DeactivateUser blocks further logins for an account
func (s *AuthService) DeactivateUser(ctx context.Context, userID int64) error {
	return s.authRepo.UpdateStatus(ctx, userID, "inactive")
}

// ReactivateUser restores a deactivated account
func (s *AuthService) ReactivateUser(ctx context.Context, userID int64) error {
	return s.authRepo.UpdateStatus(ctx, userID, "active")
}
