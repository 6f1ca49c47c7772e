package rest

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/irplatform/ir-backend/internal/application"
	"github.com/irplatform/ir-backend/internal/application/dto"
	"github.com/irplatform/ir-backend/internal/application/errs"
	"github.com/irplatform/ir-backend/internal/domain/entity"
	"github.com/irplatform/ir-backend/internal/infra/auth"
	"github.com/irplatform/ir-backend/internal/infra/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const identityKey = "identity"

type TokenVerifier interface {
	GetIdentity(token string) (*auth.Identity, error)
}

type Server struct {
	commands *application.Handlers
	tokens   TokenVerifier
	gatherer prometheus.Gatherer
}

func NewServer(commands *application.Handlers, tokens TokenVerifier, gatherer prometheus.Gatherer) *Server {
	return &Server{commands: commands, tokens: tokens, gatherer: gatherer}
}

func NewApp(cfg *config.ServerConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		IdleTimeout: 5 * time.Second,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}))
	return app
}

func RegisterHandlers(app *fiber.App, s *Server) {
	app.Get("/healthz", s.Health)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))

	users := app.Group("/api/users")
	users.Post("/sign-up", s.SignUp)
	users.Post("/register", s.SignUp)
	users.Post("/login", s.Login)

	domains := app.Group("/api/customer-domain", s.Authenticate)
	domains.Post("/", s.CreateCustomerDomain)
	domains.Get("/", s.ListCustomerDomains)
	domains.Post("/request-certificate", s.RequestCertificate)
	domains.Get("/:subdomain", s.GetCustomerDomain)
	domains.Put("/:subdomain", s.UpdateCustomerDomain)
	domains.Get("/:subdomain/jobs", s.ListDomainJobs)
}

// Authenticate resolves the bearer token to an existing user.
func (s *Server) Authenticate(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || strings.TrimSpace(token) == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.MessageResponse{Message: "Authentication required"})
	}

	identity, err := s.tokens.GetIdentity(strings.TrimSpace(token))
	if err != nil {
		slog.Debug("rejected token", "err", err)
		return c.Status(fiber.StatusUnauthorized).JSON(dto.MessageResponse{Message: "Invalid token"})
	}

	if _, err = s.commands.GetUser.Query(c.UserContext(), identity.UserID); err != nil {
		return s.fail(c, err)
	}

	c.Locals(identityKey, identity)
	return c.Next()
}

func (s *Server) SignUp(c *fiber.Ctx) error {
	var req dto.SignUpRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.MessageResponse{Message: err.Error()})
	}

	resp, err := s.commands.Auth.SignUp(c.UserContext(), &req)
	if err != nil {
		return s.fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

func (s *Server) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.MessageResponse{Message: err.Error()})
	}

	resp, err := s.commands.Auth.Login(c.UserContext(), &req)
	if err != nil {
		return s.fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

func (s *Server) CreateCustomerDomain(c *fiber.Ctx) error {
	var req dto.CreateCustomerDomainRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.MessageResponse{Message: err.Error()})
	}

	view, err := s.commands.CreateCustomerDomain.Execute(c.UserContext(), &req)
	if err != nil {
		return s.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.CreateCustomerDomainResponse{
		Message:        "Customer domain configuration created successfully",
		CustomerDomain: *view,
	})
}

func (s *Server) RequestCertificate(c *fiber.Ctx) error {
	var req dto.RequestCertificateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.MessageResponse{Message: err.Error()})
	}

	identity := c.Locals(identityKey).(*auth.Identity)
	view, err := s.commands.RequestCertificate.Execute(c.UserContext(), &req, identity.UserID)
	if err != nil {
		return s.fail(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(dto.RequestCertificateResponse{
		Message:        "Certificate request accepted",
		CustomerDomain: *view,
	})
}

func (s *Server) ListCustomerDomains(c *fiber.Ctx) error {
	views, err := s.commands.ListCustomerDomains.Query(c.UserContext())
	if err != nil {
		return s.fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(views)
}

func (s *Server) GetCustomerDomain(c *fiber.Ctx) error {
	view, err := s.commands.GetCustomerDomain.Query(c.UserContext(), c.Params("subdomain"))
	if err != nil {
		return s.fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(view)
}

func (s *Server) UpdateCustomerDomain(c *fiber.Ctx) error {
	var req dto.UpdateCustomerDomainRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.MessageResponse{Message: err.Error()})
	}

	view, err := s.commands.UpdateCustomerDomain.Execute(c.UserContext(), c.Params("subdomain"), &req)
	if err != nil {
		return s.fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(dto.UpdateCustomerDomainResponse{
		Message:               "Customer domain updated successfully",
		UpdatedCustomerDomain: *view,
	})
}

func (s *Server) ListDomainJobs(c *fiber.Ctx) error {
	jobs, err := s.commands.ListDomainJobs.Query(c.UserContext(), c.Params("subdomain"))
	if err != nil {
		return s.fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(jobs)
}

func (s *Server) Health(c *fiber.Ctx) error {
	if err := s.commands.HealthCheck.Query(c.UserContext()); err != nil {
		slog.Error("health check failed", "err", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.MessageResponse{Message: "database unavailable"})
	}
	return c.Status(fiber.StatusOK).JSON(dto.MessageResponse{Message: "ok"})
}

func (s *Server) fail(c *fiber.Ctx, err error) error {
	var (
		validation errs.ValidationError
		conflict   errs.ConflictError
		notFound   errs.NotFoundError
		authErr    errs.AuthError
	)
	status := fiber.StatusInternalServerError
	msg := "Internal server error"
	switch {
	case errors.As(err, &validation):
		status, msg = fiber.StatusBadRequest, validation.Msg
	case errors.As(err, &conflict):
		status, msg = fiber.StatusConflict, conflict.Msg
	case errors.Is(err, entity.ErrInvalidTransition):
		status, msg = fiber.StatusConflict, err.Error()
	case errors.As(err, &notFound):
		status, msg = fiber.StatusNotFound, notFound.Msg
	case errors.As(err, &authErr):
		status, msg = fiber.StatusUnauthorized, authErr.Msg
	default:
		slog.Error("request failed", "method", c.Method(), "path", c.Path(), "err", err)
	}

	return c.Status(status).JSON(dto.MessageResponse{Message: msg})
}
