package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/irplatform/ir-backend/internal/application/dto"
	"github.com/irplatform/ir-backend/internal/application/errs"
	"github.com/irplatform/ir-backend/internal/application/events"
	"github.com/irplatform/ir-backend/internal/application/interfaces"
	"github.com/irplatform/ir-backend/internal/domain/consts"
	"github.com/irplatform/ir-backend/internal/domain/entity"
)

var domainPattern = regexp.MustCompile(`^[a-zA-Z0-9-]+\.[a-zA-Z]{2,}$`)

const (
	msgMandatoryFields  = "All mandatory fields are required"
	msgDomainWhitespace = "White spaces are not allowed in Domain name, please check carefully!"
	msgInvalidDomain    = "Invalid domain name (e.g. company.com, mydomain.org)"
	msgPasswordTooLong  = "Password must be at most 72 bytes"
	msgEmailTaken       = "This email is already registered, Please login!"
	msgCompanyTaken     = "This Company name is already registered, Choose a different one!"
	msgDomainTaken      = "This Domain name is already registered!"
	msgInvalidLogin     = "Invalid email or password"
)

type Auth struct {
	txFactory       interfaces.TxFactory
	hasher          interfaces.PasswordHasher
	tokens          interfaces.TokenIssuer
	subdomainPrefix string
}

func NewAuth(txFactory interfaces.TxFactory, hasher interfaces.PasswordHasher, tokens interfaces.TokenIssuer, subdomainPrefix string) *Auth {
	return &Auth{
		txFactory:       txFactory,
		hasher:          hasher,
		tokens:          tokens,
		subdomainPrefix: subdomainPrefix,
	}
}

// SignUp registers a user and queues provisioning of the investor subdomain in the same transaction.
func (c *Auth) SignUp(ctx context.Context, req *dto.SignUpRequest) (*dto.SignUpResponse, error) {
	if err := validateSignUp(req); err != nil {
		return nil, err
	}

	now := time.Now()
	user := &entity.User{
		ID:                uuid.New(),
		FirstName:         strings.TrimSpace(req.FirstName),
		LastName:          strings.TrimSpace(req.LastName),
		Email:             normalizeEmail(req.Email),
		Phone:             strings.TrimSpace(req.Phone),
		CompanyName:       strings.ToLower(strings.TrimSpace(req.CompanyName)),
		Domain:            strings.ToLower(strings.TrimSpace(req.Domain)),
		StockTickerSymbol: strings.ToUpper(strings.TrimSpace(req.StockTickerSymbol)),
		Role:              consts.UserRoleCustomer,
		Status:            consts.UserStatusActive,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	hash, err := c.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("can't hash password, %v", err)
	}
	user.PasswordHash = hash

	if err = c.register(ctx, user); err != nil {
		return nil, err
	}

	token, err := c.tokens.Issue(user.ID.String(), user.Email)
	if err != nil {
		return nil, err
	}

	slog.Info("user registered", "user", user.ID, "domain", user.Domain)
	return &dto.SignUpResponse{
		Success: true,
		Message: "Welcome to the IR platform",
		User: dto.UserView{
			FirstName:         user.FirstName,
			LastName:          user.LastName,
			CompanyName:       user.CompanyName,
			Domain:            user.Domain,
			StockTickerSymbol: user.StockTickerSymbol,
			Email:             user.Email,
			Phone:             user.Phone,
		},
		AccessToken: token,
	}, nil
}

func (c *Auth) register(ctx context.Context, user *entity.User) (err error) {
	tx, err := c.txFactory.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Finalize(&err)

	users := tx.Users()
	checks := []struct {
		exists func(context.Context, string) (bool, error)
		value  string
		msg    string
	}{
		{users.ExistsByEmail, user.Email, msgEmailTaken},
		{users.ExistsByCompanyName, user.CompanyName, msgCompanyTaken},
		{users.ExistsByDomain, user.Domain, msgDomainTaken},
	}
	for _, check := range checks {
		found, err := check.exists(ctx, check.value)
		if err != nil {
			return err
		}
		if found {
			return errs.ConflictError{Msg: check.msg}
		}
	}

	if err = users.InsertUser(ctx, user); err != nil {
		if errors.Is(err, errs.ErrAlreadyExists) {
			return errs.ConflictError{Msg: "This user is already registered!"}
		}
		return err
	}

	return tx.Events().InsertEvent(ctx, events.CustomerDomainRequested{
		UserID:    user.ID,
		Subdomain: entity.DeriveSubdomain(c.subdomainPrefix, user.Domain),
	})
}

func validateSignUp(req *dto.SignUpRequest) error {
	if req.FirstName == "" || req.CompanyName == "" || req.Domain == "" || req.Email == "" ||
		req.StockTickerSymbol == "" || req.Password == "" {
		return errs.ValidationError{Msg: msgMandatoryFields}
	}
	if strings.ContainsAny(strings.TrimSpace(req.Domain), " \t\r\n") {
		return errs.ValidationError{Msg: msgDomainWhitespace}
	}
	if !domainPattern.MatchString(req.Domain) {
		return errs.ValidationError{Msg: msgInvalidDomain}
	}
	// bcrypt rejects anything longer
	if len(req.Password) > 72 {
		return errs.ValidationError{Msg: msgPasswordTooLong}
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (c *Auth) Login(ctx context.Context, req *dto.LoginRequest) (res *dto.LoginResponse, err error) {
	tx, err := c.txFactory.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Finalize(&err)

	user, err := tx.Users().GetUserByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, errs.ValidationError{Msg: msgInvalidLogin}
		}
		return nil, err
	}
	if err = c.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		return nil, errs.ValidationError{Msg: msgInvalidLogin}
	}

	if err = tx.Users().UpdateLastLogin(ctx, user.ID, time.Now()); err != nil {
		return nil, err
	}

	token, err := c.tokens.Issue(user.ID.String(), user.Email)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{Message: "Login successful", Token: token}, nil
}
