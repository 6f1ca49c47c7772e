package db

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID                uuid.UUID  `db:"id"`
	FirstName         string     `db:"first_name"`
	LastName          string     `db:"last_name"`
	Email             string     `db:"email"`
	Phone             string     `db:"phone"`
	PasswordHash      []byte     `db:"password_hash"`
	CompanyName       string     `db:"company_name"`
	Domain            string     `db:"domain"`
	StockTickerSymbol string     `db:"stock_ticker_symbol"`
	Role              string     `db:"role"`
	Status            string     `db:"status"`
	LastLoginAt       *time.Time `db:"last_login_at"`
	CreatedAt         time.Time  `db:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at"`
}

type CustomerDomain struct {
	ID                  uuid.UUID  `db:"id"`
	CompanyName         string     `db:"company_name"`
	StockSymbol         string     `db:"stock_symbol"`
	CompanyWebsite      string     `db:"company_website"`
	Subdomain           string     `db:"subdomain"`
	MappedTo            string     `db:"mapped_to"`
	CustomerDNSProvider string     `db:"customer_dns_provider"`
	CertificateARN      string     `db:"certificate_arn"`
	CloudfrontDomain    string     `db:"cloudfront_domain"`
	DistributionID      string     `db:"distribution_id"`
	Status              string     `db:"status"`
	DNSValidationName   string     `db:"dns_validation_name"`
	DNSValidationType   string     `db:"dns_validation_type"`
	DNSValidationValue  string     `db:"dns_validation_value"`
	ErrorMessage        string     `db:"error_message"`
	LastCheckedAt       *time.Time `db:"last_checked_at"`
	UserID              uuid.UUID  `db:"user_id"`
	CreatedAt           time.Time  `db:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at"`
}

type Outbox struct {
	ID        int64           `db:"id"`
	Event     string          `db:"event"`
	Key       string          `db:"key"`
	Status    int             `db:"status"`
	Attempts  int             `db:"attempts"`
	Payload   json.RawMessage `db:"payload"`
	LastError string          `db:"last_error"`
	CreatedAt time.Time       `db:"created_at"`
	UpdatedAt time.Time       `db:"updated_at"`
}
