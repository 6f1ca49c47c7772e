package db

import (
	"github.com/irplatform/ir-backend/internal/application/consts"
	"github.com/irplatform/ir-backend/internal/application/interfaces"
	domainConsts "github.com/irplatform/ir-backend/internal/domain/consts"
	"github.com/irplatform/ir-backend/internal/domain/entity"
)

func MapUserToModel(u *entity.User) User {
	return User{
		ID:                u.ID,
		FirstName:         u.FirstName,
		LastName:          u.LastName,
		Email:             u.Email,
		Phone:             u.Phone,
		PasswordHash:      u.PasswordHash,
		CompanyName:       u.CompanyName,
		Domain:            u.Domain,
		StockTickerSymbol: u.StockTickerSymbol,
		Role:              string(u.Role),
		Status:            string(u.Status),
		LastLoginAt:       u.LastLoginAt,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}

func MapModelToUser(m User) *entity.User {
	return &entity.User{
		ID:                m.ID,
		FirstName:         m.FirstName,
		LastName:          m.LastName,
		Email:             m.Email,
		Phone:             m.Phone,
		PasswordHash:      m.PasswordHash,
		CompanyName:       m.CompanyName,
		Domain:            m.Domain,
		StockTickerSymbol: m.StockTickerSymbol,
		Role:              domainConsts.UserRole(m.Role),
		Status:            domainConsts.UserStatus(m.Status),
		LastLoginAt:       m.LastLoginAt,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

func MapCustomerDomainToModel(d *entity.CustomerDomain) CustomerDomain {
	m := CustomerDomain{
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
		UserID:              d.UserID,
		CreatedAt:           d.CreatedAt,
		UpdatedAt:           d.UpdatedAt,
	}
	if d.DNSValidation != nil {
		m.DNSValidationName = d.DNSValidation.Name
		m.DNSValidationType = d.DNSValidation.Type
		m.DNSValidationValue = d.DNSValidation.Value
	}
	return m
}

func MapModelToCustomerDomain(m CustomerDomain) *entity.CustomerDomain {
	d := &entity.CustomerDomain{
		ID:                  m.ID,
		CompanyName:         m.CompanyName,
		StockSymbol:         m.StockSymbol,
		CompanyWebsite:      m.CompanyWebsite,
		Subdomain:           m.Subdomain,
		MappedTo:            m.MappedTo,
		CustomerDNSProvider: m.CustomerDNSProvider,
		CertificateARN:      m.CertificateARN,
		CloudfrontDomain:    m.CloudfrontDomain,
		DistributionID:      m.DistributionID,
		Status:              domainConsts.DomainStatus(m.Status),
		ErrorMessage:        m.ErrorMessage,
		LastCheckedAt:       m.LastCheckedAt,
		UserID:              m.UserID,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
	if m.DNSValidationName != "" {
		d.DNSValidation = &entity.DNSValidation{
			Name:  m.DNSValidationName,
			Type:  m.DNSValidationType,
			Value: m.DNSValidationValue,
		}
	}
	return d
}

func MapOutboxModelToEvent(m Outbox) interfaces.OutboxEvent {
	return interfaces.OutboxEvent{
		ID:        m.ID,
		Event:     m.Event,
		Key:       m.Key,
		Status:    consts.OutboxStatus(m.Status),
		Attempts:  m.Attempts,
		Payload:   m.Payload,
		LastError: m.LastError,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
