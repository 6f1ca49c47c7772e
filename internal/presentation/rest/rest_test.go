package rest_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/irplatform/ir-backend/internal/application"
	authCommands "github.com/irplatform/ir-backend/internal/application/commands/auth"
	"github.com/irplatform/ir-backend/internal/application/commands/customerdomain"
	"github.com/irplatform/ir-backend/internal/application/dto"
	"github.com/irplatform/ir-backend/internal/application/query"
	"github.com/irplatform/ir-backend/internal/infra/auth"
	"github.com/irplatform/ir-backend/internal/infra/config"
	"github.com/irplatform/ir-backend/internal/infra/metrics"
	"github.com/irplatform/ir-backend/internal/presentation/rest"
	"github.com/irplatform/ir-backend/internal/testinfra/memstore"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

type testServer struct {
	app    *fiber.App
	store  *memstore.Store
	tokens *auth.IdentityProvider
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memstore.New()
	tokens := auth.NewIdentityProvider(&config.AuthConfig{JWTSecret: "secret", JWTTTL: time.Hour})
	m := metrics.NewMetrics()

	handlers := &application.Handlers{
		Auth:                 authCommands.NewAuth(store, auth.NewBcryptHasher(bcrypt.MinCost), tokens, "investor"),
		CreateCustomerDomain: customerdomain.NewCreateCustomerDomain(store, "debsom.shop", "GoDaddy"),
		UpdateCustomerDomain: customerdomain.NewUpdateCustomerDomain(store, m),
		RequestCertificate:   customerdomain.NewRequestCertificate(store, m),
		GetCustomerDomain:    query.NewGetCustomerDomain(store),
		ListCustomerDomains:  query.NewListCustomerDomains(store),
		ListDomainJobs:       query.NewListDomainJobs(store),
		GetUser:              query.NewGetUser(store),
		HealthCheck:          query.NewHealthCheck(okPinger{}),
	}
	app := rest.NewApp(&config.ServerConfig{CORSAllowOrigins: "http://localhost:3000"})
	rest.RegisterHandlers(app, rest.NewServer(handlers, tokens, m.Registry))

	return &testServer{app: app, store: store, tokens: tokens}
}

func (s *testServer) do(t *testing.T, method, path, token, body string) (int, []byte) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func (s *testServer) signUp(t *testing.T) dto.SignUpResponse {
	t.Helper()
	status, raw := s.do(t, http.MethodPost, "/api/users/sign-up", "", `{
		"firstname":"Ada","lastname":"Lovelace","companyname":"Acme","domain":"acme.com",
		"email":"ada@acme.com","phone":"1","stock_ticker_symbol":"ACME","password":"pw"}`)
	require.Equal(t, http.StatusOK, status, string(raw))
	var resp dto.SignUpResponse
	require.NoError(t, json.Unmarshal(raw, &resp))
	return resp
}

func message(t *testing.T, raw []byte) string {
	t.Helper()
	var m dto.MessageResponse
	require.NoError(t, json.Unmarshal(raw, &m))
	return m.Message
}

func TestSignUpAndLogin(t *testing.T) {
	s := newTestServer(t)
	resp := s.signUp(t)
	require.True(t, resp.Success)
	require.NotEmpty(t, resp.AccessToken)

	status, raw := s.do(t, http.MethodPost, "/api/users/register", "", `{
		"firstname":"Bob","companyname":"Other","domain":"other.com",
		"email":"ada@acme.com","stock_ticker_symbol":"OTH","password":"pw"}`)
	require.Equal(t, http.StatusConflict, status)
	require.Equal(t, "This email is already registered, Please login!", message(t, raw))

	status, raw = s.do(t, http.MethodPost, "/api/users/sign-up", "", `{
		"firstname":"Bob","companyname":"Other","domain":"oth er.com",
		"email":"bob@other.com","stock_ticker_symbol":"OTH","password":"pw"}`)
	require.Equal(t, http.StatusBadRequest, status)
	require.Contains(t, message(t, raw), "White spaces")

	status, raw = s.do(t, http.MethodPost, "/api/users/login", "", `{"email":"ada@acme.com","password":"pw"}`)
	require.Equal(t, http.StatusOK, status)
	var login dto.LoginResponse
	require.NoError(t, json.Unmarshal(raw, &login))
	require.Equal(t, "Login successful", login.Message)

	status, _ = s.do(t, http.MethodPost, "/api/users/login", "", `{"email":"ada@acme.com","password":"nope"}`)
	require.Equal(t, http.StatusBadRequest, status)
}

func TestCustomerDomainRequiresToken(t *testing.T) {
	s := newTestServer(t)

	status, raw := s.do(t, http.MethodGet, "/api/customer-domain/", "", "")
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "Authentication required", message(t, raw))

	status, raw = s.do(t, http.MethodGet, "/api/customer-domain/", "garbage", "")
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "Invalid token", message(t, raw))

	ghost, err := s.tokens.Issue(uuid.NewString(), "ghost@acme.com")
	require.NoError(t, err)
	status, raw = s.do(t, http.MethodGet, "/api/customer-domain/", ghost, "")
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, "User not found", message(t, raw))
}

func TestCustomerDomainLifecycle(t *testing.T) {
	s := newTestServer(t)
	token := s.signUp(t).AccessToken
	userID := s.store.Users()[0].ID.String()

	status, raw := s.do(t, http.MethodPost, "/api/customer-domain/", token,
		`{"subdomain":"investor.acme.com","userId":"`+uuid.NewString()+`"}`)
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "User not found", message(t, raw))

	status, raw = s.do(t, http.MethodPost, "/api/customer-domain/", token,
		`{"subdomain":"investor.acme.com","userId":"`+userID+`"}`)
	require.Equal(t, http.StatusCreated, status, string(raw))
	var created dto.CreateCustomerDomainResponse
	require.NoError(t, json.Unmarshal(raw, &created))
	require.Equal(t, "pending", created.CustomerDomain.Status)
	require.Equal(t, "acme.debsom.shop", created.CustomerDomain.MappedTo)

	status, _ = s.do(t, http.MethodPost, "/api/customer-domain/request-certificate", token, `{"subdomain":"investor.nope.com"}`)
	require.Equal(t, http.StatusNotFound, status)

	status, _ = s.do(t, http.MethodPost, "/api/customer-domain/request-certificate", token, `{"subdomain":"investor.acme.com"}`)
	require.Equal(t, http.StatusAccepted, status)

	status, raw = s.do(t, http.MethodPut, "/api/customer-domain/investor.acme.com", token, `{"status":"cloudfront_created"}`)
	require.Equal(t, http.StatusConflict, status, string(raw))

	status, _ = s.do(t, http.MethodPut, "/api/customer-domain/investor.acme.com", token, `{"status":"verified"}`)
	require.Equal(t, http.StatusBadRequest, status)

	status, raw = s.do(t, http.MethodPut, "/api/customer-domain/investor.acme.com", token, `{"status":"error"}`)
	require.Equal(t, http.StatusOK, status)
	var updated dto.UpdateCustomerDomainResponse
	require.NoError(t, json.Unmarshal(raw, &updated))
	require.Equal(t, "error", updated.UpdatedCustomerDomain.Status)

	status, raw = s.do(t, http.MethodGet, "/api/customer-domain/investor.acme.com", token, "")
	require.Equal(t, http.StatusOK, status)
	var view dto.CustomerDomainView
	require.NoError(t, json.Unmarshal(raw, &view))
	require.Equal(t, "investor.acme.com", view.Subdomain)

	status, raw = s.do(t, http.MethodGet, "/api/customer-domain/investor.acme.com/jobs", token, "")
	require.Equal(t, http.StatusOK, status)
	var jobs []dto.JobView
	require.NoError(t, json.Unmarshal(raw, &jobs))
	require.Len(t, jobs, 2)

	status, raw = s.do(t, http.MethodGet, "/api/customer-domain/", token, "")
	require.Equal(t, http.StatusOK, status)
	var all []dto.CustomerDomainView
	require.NoError(t, json.Unmarshal(raw, &all))
	require.Len(t, all, 1)

	status, _ = s.do(t, http.MethodGet, "/api/customer-domain/investor.nope.com", token, "")
	require.Equal(t, http.StatusNotFound, status)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	status, _ := s.do(t, http.MethodGet, "/healthz", "", "")
	require.Equal(t, http.StatusOK, status)

	status, raw := s.do(t, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, string(raw), "go_goroutines")
}
