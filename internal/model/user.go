package model

import "time"

// Roles stored in the users table and embedded in access tokens.
const (
	RoleCustomer = "CUSTOMER"
	RoleAdmin    = "ADMIN"
)

// User is an account row in the `users` table.  Only the bcrypt hash of
// the password is stored.  Blocked users can no longer log in but keep
// their booking history.
//
// Fields:
//  ID           – primary key identifier.
//  Name         – display name.
//  Email        – unique, stored lower-case.
//  PasswordHash – bcrypt hash.
//  Role         – CUSTOMER or ADMIN.
//  Blocked      – true when an admin has blocked the account.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Blocked      bool      `json:"blocked"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RefreshToken models a row in the `refresh_tokens` table.  The raw
// token is never stored, only its SHA-256 hex digest.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  TokenHash – SHA-256 hex digest of the raw token.
//  ExpiresAt – expiry timestamp.
//  RevokedAt – revocation timestamp, nil while active.
//  CreatedAt – creation timestamp.
type RefreshToken struct {
	ID        uint64
	UserID    uint64
	TokenHash string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}
