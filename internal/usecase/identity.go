package usecase

import (
	"context"

	"pulsebridge-consult/internal/delivery/http/middleware"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

// GetUserID returns the authenticated caller's id.
func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	return middleware.GetUserIDFromContext(ctx)
}

// caller is the authenticated user driving a request.
type caller struct {
	UserID uuid.UUID
	Wallet common.Address
	RoleID int
}

func callerFromContext(ctx context.Context) (*caller, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrNotAuthenticated
	}
	wallet, ok := middleware.GetWalletFromContext(ctx)
	if !ok || !common.IsHexAddress(wallet) {
		return nil, ErrNotAuthenticated
	}
	roleID, _ := middleware.GetRoleIDFromContext(ctx)
	return &caller{UserID: userID, Wallet: common.HexToAddress(wallet), RoleID: roleID}, nil
}
