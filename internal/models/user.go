package models

import (
	"database/sql"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleAdmin    = "ADMIN"
	RoleResident = "RESIDENT"
)

type User struct {
	ID           string         `db:"id"`
	Email        string         `db:"email"`
	Name         sql.NullString `db:"name"`
	Image        sql.NullString `db:"image"`
	PasswordHash sql.NullString `db:"password_hash"`
	Role         string         `db:"role"`
	CreatedAt    time.Time      `db:"created_at"`
}

// Claims defines the structure of the JWT claims. Role is a snapshot taken
// at issuance; it is not re-read from the database until the next login.
type Claims struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	Email  string `json:"email"`
	Name   string `json:"name,omitempty"`
	Image  string `json:"image,omitempty"`
	jwt.RegisteredClaims
}
