package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/irplatform/ir-backend/internal/application/interfaces"
	"github.com/irplatform/ir-backend/internal/domain/entity"
)

type SignUpRequest struct {
	FirstName         string `json:"firstname"`
	LastName          string `json:"lastname"`
	CompanyName       string `json:"companyname"`
	Domain            string `json:"domain"`
	Email             string `json:"email"`
	Phone             string `json:"phone"`
	StockTickerSymbol string `json:"stock_ticker_symbol"`
	Password          string `json:"password"`
}

type UserView struct {
	FirstName         string `json:"firstname"`
	LastName          string `json:"lastname"`
	CompanyName       string `json:"companyname"`
	Domain            string `json:"domain"`
	StockTickerSymbol string `json:"stock_ticker_symbol"`
	Email             string `json:"email"`
	Phone             string `json:"phone"`
}

type SignUpResponse struct {
	Success     bool     `json:"success"`
	Message     string   `json:"message"`
	User        UserView `json:"user"`
	AccessToken string   `json:"accessToken"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

type DNSValidationView struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Value string `json:"value"`
}

type CustomerDomainView struct {
	ID                  uuid.UUID          `json:"id"`
	CompanyName         string             `json:"companyName"`
	StockSymbol         string             `json:"stockSymbol"`
	CompanyWebsite      string             `json:"companyWebsite"`
	Subdomain           string             `json:"subdomain"`
	MappedTo            string             `json:"mappedTo"`
	CustomerDNSProvider string             `json:"customerDNSProvider"`
	CertificateARN      string             `json:"certificateArn,omitempty"`
	CloudfrontDomain    string             `json:"cloudfrontDomain,omitempty"`
	DistributionID      string             `json:"distributionId,omitempty"`
	Status              string             `json:"status"`
	DNSValidation       *DNSValidationView `json:"dnsValidation,omitempty"`
	ErrorMessage        string             `json:"errorMessage,omitempty"`
	LastCheckedAt       *time.Time         `json:"lastCheckedAt,omitempty"`
	User                uuid.UUID          `json:"user"`
	CreatedAt           time.Time          `json:"createdAt"`
	UpdatedAt           time.Time          `json:"updatedAt"`
}

func NewCustomerDomainView(d *entity.CustomerDomain) CustomerDomainView {
	view := CustomerDomainView{
		ID:                  d.ID,
		CompanyName:         d.CompanyName,
		StockSymbol:         d.StockSymbol,
		CompanyWebsite:      d.CompanyWebsite,
		Subdomain:           d.Subdomain,
		MappedTo:            d.MappedTo,
		CustomerDNSProvider: d.CustomerDNSProvider,
		CertificateARN:      d.CertificateARN,
		CloudfrontDomain:    d.CloudfrontDomain,
		DistributionID:      d.DistributionID,
		Status:              string(d.Status),
		ErrorMessage:        d.ErrorMessage,
		LastCheckedAt:       d.LastCheckedAt,
		User:                d.UserID,
		CreatedAt:           d.CreatedAt,
		UpdatedAt:           d.UpdatedAt,
	}
	if d.DNSValidation != nil {
		view.DNSValidation = &DNSValidationView{
			Name:  d.DNSValidation.Name,
			Type:  d.DNSValidation.Type,
			Value: d.DNSValidation.Value,
		}
	}
	return view
}

type CreateCustomerDomainRequest struct {
	CompanyName         string `json:"companyName"`
	StockSymbol         string `json:"stockSymbol"`
	CompanyWebsite      string `json:"companyWebsite"`
	Subdomain           string `json:"subdomain"`
	MappedTo            string `json:"mappedTo"`
	CustomerDNSProvider string `json:"customerDNSProvider"`
	UserID              string `json:"userId"`
}

type CreateCustomerDomainResponse struct {
	Message        string             `json:"message"`
	CustomerDomain CustomerDomainView `json:"customerDomain"`
}

type UpdateCustomerDomainRequest struct {
	Status        string             `json:"status"`
	DNSValidation *DNSValidationView `json:"dnsValidation"`
}

type UpdateCustomerDomainResponse struct {
	Message               string             `json:"message"`
	UpdatedCustomerDomain CustomerDomainView `json:"updatedCustomerDomain"`
}

type RequestCertificateRequest struct {
	Subdomain string `json:"subdomain"`
	UserID    string `json:"userId"`
}

type RequestCertificateResponse struct {
	Message        string             `json:"message"`
	CustomerDomain CustomerDomainView `json:"customerDomain"`
}

type JobView struct {
	ID        int64     `json:"id"`
	Event     string    `json:"event"`
	Status    string    `json:"status"`
	Attempts  int       `json:"attempts"`
	LastError string    `json:"lastError,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func NewJobView(e interfaces.OutboxEvent) JobView {
	return JobView{
		ID:        e.ID,
		Event:     e.Event,
		Status:    e.Status.String(),
		Attempts:  e.Attempts,
		LastError: e.LastError,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

type MessageResponse struct {
	Message string `json:"message"`
}
