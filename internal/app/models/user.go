package models

import (
	"time"

	"github.com/yigit/nhance/internal/app/catalog"
)

// User is the credential row from the 'users' table
type User struct {
	ID            int64      `json:"id" db:"id" example:"1"`
	Email         string     `json:"email" db:"email" example:"student@nhance.edu"`
	Password      string     `json:"-" db:"password_hash"`
	EmailVerified bool       `json:"emailVerified" db:"email_verified" example:"true"`
	LastLoginAt   *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`
	CreatedAt     time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time  `json:"updatedAt" db:"updated_at"`
}

// Profile is the portal-facing identity from the 'profiles' table.
// Branch is fixed at registration and IsAdmin is only changed out-of-band.
type Profile struct {
	UserID    int64          `json:"userId" db:"user_id" example:"1"`
	Name      string         `json:"name" db:"name" example:"Asha Kumar"`
	Branch    catalog.Branch `json:"branch" db:"branch" example:"CSE"`
	IsAdmin   bool           `json:"isAdmin" db:"is_admin" example:"false"`
	CreatedAt time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time      `json:"updatedAt" db:"updated_at"`
}

// Account joins a credential row with its profile
type Account struct {
	User    User
	Profile Profile
}
