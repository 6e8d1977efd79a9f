package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pulsebridge-consult/internal/converter"
	"pulsebridge-consult/internal/delivery/dto"
	"pulsebridge-consult/internal/domain/entity"
	"pulsebridge-consult/internal/domain/repository"
	"pulsebridge-consult/internal/service"
	"pulsebridge-consult/pkg/ethsig"
	"pulsebridge-consult/pkg/jwt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrNotAuthenticated = errors.New("user not found in context")
	ErrNonceNotFound    = errors.New("sign-in nonce missing or expired")
	ErrInvalidSignature = errors.New("signature does not match wallet")
	ErrInvalidToken     = errors.New("invalid or expired token")
	ErrTokenRevoked     = errors.New("token has been revoked")
	ErrUserNotFound     = errors.New("user not found")
	ErrUserInactive     = errors.New("user account is disabled")
)

const nonceKeyPrefix = "auth_nonce:"

type AuthUsecase interface {
	RequestNonce(ctx context.Context, req *dto.NonceRequest) (*dto.NonceResponse, error)
	Login(ctx context.Context, req *dto.WalletLoginRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context, accessTokenID, refreshTokenID string) error
	RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error)
	GetCurrentUser(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error)
}

type authUsecase struct {
	db                *gorm.DB
	log               *logrus.Logger
	userRepo          repository.UserRepository
	doctorProfileRepo repository.DoctorProfileRepository
	jwtService        *jwt.JWTService
	redisClient       *redis.Client
	auditService      service.AuditService
	adminWallets      map[string]bool
}

func NewAuthUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	doctorProfileRepo repository.DoctorProfileRepository,
	jwtService *jwt.JWTService,
	redisClient *redis.Client,
	auditService service.AuditService,
	adminWallets []string,
) AuthUsecase {
	admins := make(map[string]bool, len(adminWallets))
	for _, w := range adminWallets {
		admins[strings.ToLower(w)] = true
	}
	return &authUsecase{
		db:                db,
		log:               log,
		userRepo:          userRepo,
		doctorProfileRepo: doctorProfileRepo,
		jwtService:        jwtService,
		redisClient:       redisClient,
		auditService:      auditService,
		adminWallets:      admins,
	}
}

// RequestNonce issues a single-use nonce the wallet must sign to log in.
func (u *authUsecase) RequestNonce(ctx context.Context, req *dto.NonceRequest) (*dto.NonceResponse, error) {
	wallet := common.HexToAddress(req.WalletAddress).Hex()
	nonce := uuid.NewString()
	expiry := u.jwtService.GetNonceExpiry()

	if err := u.redisClient.Set(ctx, nonceKeyPrefix+strings.ToLower(wallet), nonce, expiry).Err(); err != nil {
		u.log.Warnf("Failed to store sign-in nonce: %+v", err)
		return nil, err
	}

	return &dto.NonceResponse{
		WalletAddress: wallet,
		Nonce:         nonce,
		Message:       ethsig.LoginMessage(wallet, nonce),
		ExpiresAt:     time.Now().Add(expiry),
	}, nil
}

// Login verifies the signed nonce, creates the account on first sign-in and
// issues a token pair.
func (u *authUsecase) Login(ctx context.Context, req *dto.WalletLoginRequest) (*dto.TokenResponse, error) {
	wallet := common.HexToAddress(req.WalletAddress).Hex()

	// Nonces are single use, consumed before verification
	nonce, err := u.redisClient.GetDel(ctx, nonceKeyPrefix+strings.ToLower(wallet)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNonceNotFound
	}
	if err != nil {
		u.log.Warnf("Failed to read sign-in nonce: %+v", err)
		return nil, err
	}

	if err := ethsig.Verify(wallet, ethsig.LoginMessage(wallet, nonce), req.Signature); err != nil {
		return nil, ErrInvalidSignature
	}

	user, err := u.resolveUser(ctx, wallet)
	if err != nil {
		return nil, err
	}
	if !user.Active() {
		return nil, ErrUserInactive
	}

	if err := u.userRepo.TouchLogin(u.db.WithContext(ctx), user.ID, time.Now()); err != nil {
		u.log.Warnf("Failed to update last login for %s: %+v", user.ID, err)
	}

	tokens, err := u.issueTokens(ctx, jwt.Subject{UserID: user.ID, WalletAddress: user.WalletAddress, RoleID: user.RoleID})
	if err != nil {
		return nil, err
	}

	_ = u.auditService.Record(ctx, nil, &user.ID, entity.AuditActionUserLogin, "user", user.ID.String(), map[string]interface{}{
		"wallet_address": user.WalletAddress,
		"role":           entity.RoleName(user.RoleID),
	})

	return tokens, nil
}

// resolveUser finds or creates the account for wallet and keeps its role in
// line with the admin list and doctor registrations.
func (u *authUsecase) resolveUser(ctx context.Context, wallet string) (*entity.User, error) {
	db := u.db.WithContext(ctx)

	user, err := u.userRepo.FindByWallet(db, wallet)
	if err != nil {
		u.log.Warnf("Failed to find user by wallet: %+v", err)
		return nil, err
	}

	roleID, err := u.roleFor(ctx, wallet)
	if err != nil {
		return nil, err
	}

	if user == nil {
		user = &entity.User{
			RoleID:        roleID,
			WalletAddress: wallet,
		}
		if err := u.userRepo.Create(db, user); err != nil {
			if !isDuplicateKeyError(err, "wallet") {
				u.log.Warnf("Failed to create user: %+v", err)
				return nil, err
			}
			// Lost a race with a concurrent first login
			user, err = u.userRepo.FindByWallet(db, wallet)
			if err != nil || user == nil {
				u.log.Warnf("Failed to reload user after conflict: %+v", err)
				return nil, ErrUserNotFound
			}
			return user, nil
		}
		_ = u.auditService.Record(ctx, nil, &user.ID, entity.AuditActionUserRegister, "user", user.ID.String(), map[string]interface{}{
			"wallet_address": wallet,
			"role":           entity.RoleName(roleID),
		})
		return user, nil
	}

	if roleID != user.RoleID && roleID != entity.RoleIDPatient {
		if err := u.userRepo.UpdateRole(db, user.ID, roleID); err != nil {
			u.log.Warnf("Failed to update role for %s: %+v", user.ID, err)
			return nil, err
		}
		user.RoleID = roleID
	}
	return user, nil
}

func (u *authUsecase) roleFor(ctx context.Context, wallet string) (int, error) {
	if u.adminWallets[strings.ToLower(wallet)] {
		return entity.RoleIDAdmin, nil
	}
	doctor, err := u.doctorProfileRepo.FindByWallet(u.db.WithContext(ctx), wallet)
	if err != nil {
		u.log.Warnf("Failed to find doctor profile by wallet: %+v", err)
		return 0, err
	}
	if doctor != nil {
		return entity.RoleIDDoctor, nil
	}
	return entity.RoleIDPatient, nil
}

func (u *authUsecase) issueTokens(ctx context.Context, sub jwt.Subject) (*dto.TokenResponse, error) {
	accessToken, accessTokenID, err := u.jwtService.GenerateAccessToken(sub)
	if err != nil {
		u.log.Warnf("Failed to generate access token: %+v", err)
		return nil, err
	}

	refreshToken, refreshTokenID, err := u.jwtService.GenerateRefreshToken(sub)
	if err != nil {
		u.log.Warnf("Failed to generate refresh token: %+v", err)
		return nil, err
	}

	accessKey := fmt.Sprintf("access_token:%s:%s", sub.UserID.String(), accessTokenID)
	refreshKey := fmt.Sprintf("refresh_token:%s:%s", sub.UserID.String(), refreshTokenID)

	if err := u.redisClient.Set(ctx, accessKey, "valid", u.jwtService.GetAccessExpiry()).Err(); err != nil {
		u.log.Warnf("Failed to store access token in Redis: %+v", err)
		return nil, err
	}

	if err := u.redisClient.Set(ctx, refreshKey, "valid", u.jwtService.GetRefreshExpiry()).Err(); err != nil {
		u.log.Warnf("Failed to store refresh token in Redis: %+v", err)
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(u.jwtService.GetAccessExpiry().Seconds()),
	}, nil
}

func (u *authUsecase) Logout(ctx context.Context, accessTokenID, refreshTokenID string) error {
	userID, ok := GetUserID(ctx)
	if !ok {
		return ErrNotAuthenticated
	}

	keys := []string{fmt.Sprintf("access_token:%s:%s", userID.String(), accessTokenID)}
	if refreshTokenID != "" {
		keys = append(keys, fmt.Sprintf("refresh_token:%s:%s", userID.String(), refreshTokenID))
	}

	if err := u.redisClient.Del(ctx, keys...).Err(); err != nil {
		u.log.Warnf("Failed to delete tokens: %+v", err)
		return err
	}

	_ = u.auditService.Record(ctx, nil, &userID, entity.AuditActionUserLogout, "user", userID.String(), nil)
	return nil
}

func (u *authUsecase) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	claims, err := u.jwtService.ValidateToken(req.RefreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	if claims.TokenType != jwt.RefreshToken {
		return nil, ErrInvalidToken
	}

	refreshKey := fmt.Sprintf("refresh_token:%s:%s", claims.UserID.String(), claims.TokenID)
	deleted, err := u.redisClient.Del(ctx, refreshKey).Result()
	if err != nil {
		u.log.Warnf("Failed to delete old refresh token: %+v", err)
		return nil, err
	}
	if deleted == 0 {
		return nil, ErrTokenRevoked
	}

	// Role may have changed since the token was minted
	user, err := u.userRepo.FindByID(u.db.WithContext(ctx), claims.UserID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if !user.Active() {
		return nil, ErrUserInactive
	}

	return u.issueTokens(ctx, jwt.Subject{UserID: user.ID, WalletAddress: user.WalletAddress, RoleID: user.RoleID})
}

func (u *authUsecase) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error) {
	db := u.db.WithContext(ctx)

	user, err := u.userRepo.FindByID(db, userID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	response := converter.UserToResponse(user)

	if user.RoleID == entity.RoleIDDoctor {
		doctor, err := u.doctorProfileRepo.FindByWallet(db, user.WalletAddress)
		if err != nil {
			u.log.Warnf("Failed to find doctor profile: %+v", err)
			return nil, err
		}
		response.DoctorProfile = converter.DoctorProfileToResponse(doctor)
	}

	return response, nil
}

// isDuplicateKeyError checks if the error is a PostgreSQL unique constraint violation
// containing the specified constraint name
func isDuplicateKeyError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// PostgreSQL error code 23505 = unique_violation
		if pgErr.Code == "23505" && strings.Contains(strings.ToLower(pgErr.ConstraintName), strings.ToLower(constraintName)) {
			return true
		}
	}
	return false
}
