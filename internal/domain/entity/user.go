package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is the wallet-identified account. WalletAddress is stored in its
// EIP-55 checksummed form.
type User struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	RoleID        int        `gorm:"not null;index" json:"role_id"`
	WalletAddress string     `gorm:"type:varchar(42);uniqueIndex;not null" json:"wallet_address"`
	DisplayName   string     `gorm:"type:varchar(255)" json:"display_name,omitempty"`
	IsActive      *bool      `gorm:"not null;default:true;index" json:"is_active"`
	LastLoginAt   *time.Time `json:"last_login_at,omitempty"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Role           Role            `gorm:"foreignKey:RoleID" json:"role,omitempty"`
	PatientProfile *PatientProfile `gorm:"foreignKey:UserID" json:"patient_profile,omitempty"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) Active() bool {
	return u.IsActive == nil || *u.IsActive
}
