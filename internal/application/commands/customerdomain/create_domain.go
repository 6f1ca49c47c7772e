package customerdomain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/irplatform/ir-backend/internal/application/dto"
	"github.com/irplatform/ir-backend/internal/application/errs"
	"github.com/irplatform/ir-backend/internal/application/interfaces"
	"github.com/irplatform/ir-backend/internal/domain/consts"
	"github.com/irplatform/ir-backend/internal/domain/entity"
)

type CreateCustomerDomain struct {
	txFactory   interfaces.TxFactory
	baseDomain  string
	dnsProvider string
}

func NewCreateCustomerDomain(txFactory interfaces.TxFactory, baseDomain, dnsProvider string) *CreateCustomerDomain {
	return &CreateCustomerDomain{txFactory: txFactory, baseDomain: baseDomain, dnsProvider: dnsProvider}
}

func (c *CreateCustomerDomain) Execute(ctx context.Context, req *dto.CreateCustomerDomainRequest) (view *dto.CustomerDomainView, err error) {
	subdomain := strings.ToLower(strings.TrimSpace(req.Subdomain))
	if subdomain == "" {
		return nil, errs.ValidationError{Msg: "Subdomain is required"}
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, errs.ValidationError{Msg: "User not found"}
	}

	tx, err := c.txFactory.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Finalize(&err)

	user, err := tx.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, errs.ValidationError{Msg: "User not found"}
		}
		return nil, err
	}

	now := time.Now()
	domain := &entity.CustomerDomain{
		ID:                  uuid.New(),
		CompanyName:         firstNonEmpty(req.CompanyName, user.CompanyName),
		StockSymbol:         strings.ToUpper(firstNonEmpty(req.StockSymbol, user.StockTickerSymbol)),
		CompanyWebsite:      firstNonEmpty(req.CompanyWebsite, "https://"+user.Domain),
		Subdomain:           subdomain,
		MappedTo:            req.MappedTo,
		CustomerDNSProvider: firstNonEmpty(req.CustomerDNSProvider, c.dnsProvider),
		Status:              consts.DomainStatusPending,
		UserID:              user.ID,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if domain.MappedTo == "" {
		domain.MappedTo = entity.DeriveMappedTo(domain.StockSymbol, c.baseDomain)
	}

	if err = tx.CustomerDomains().InsertCustomerDomain(ctx, domain); err != nil {
		if errors.Is(err, errs.ErrAlreadyExists) {
			return nil, errs.ConflictError{Msg: "Customer domain already exists"}
		}
		return nil, err
	}

	v := dto.NewCustomerDomainView(domain)
	return &v, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
