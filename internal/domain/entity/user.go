package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/irplatform/ir-backend/internal/domain/consts"
)

type User struct {
	ID                uuid.UUID
	FirstName         string
	LastName          string
	Email             string
	Phone             string
	PasswordHash      []byte
	CompanyName       string
	Domain            string
	StockTickerSymbol string
	Role              consts.UserRole
	Status            consts.UserStatus
	LastLoginAt       *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
