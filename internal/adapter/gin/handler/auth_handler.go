package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"footix-auth-service/internal/usecase/auth"
	pkgerrors "footix-auth-service/pkg/errors"
	"footix-auth-service/pkg/logger"
)

// RegistrationFailedMessage is the generic error text existing clients
// display when registration fails.
const RegistrationFailedMessage = "Erreur lors de l'enregistrement."

// RegisteredMessage accompanies a successful registration.
const RegisteredMessage = "Utilisateur créé avec succès en base de données !"

// DBClock reports the database clock.
type DBClock interface {
	Now(ctx context.Context) (string, error)
}

// Options tunes how AuthHandler reports failures.
type Options struct {
	// ReportConflict answers duplicate emails with 409 instead of 500.
	ReportConflict bool
	ServiceName    string
}

// AuthHandler handles HTTP requests for account operations
type AuthHandler struct {
	uc    auth.Usecase
	clock DBClock
	opts  Options
	log   *zap.Logger
}

// NewAuthHandler creates a new AuthHandler instance
func NewAuthHandler(uc auth.Usecase, clock DBClock, opts Options, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		uc:    uc,
		clock: clock,
		opts:  opts,
		log:   log,
	}
}

// RegisterRequest represents the HTTP request body for registering an account.
// Presence is checked by the usecase so empty strings bind here.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the HTTP request body for a login attempt
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AccountResponse represents the HTTP response for account data
type AccountResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// RegisterResponse represents the HTTP response for a created account
type RegisterResponse struct {
	Message string          `json:"message"`
	User    AccountResponse `json:"user"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	ctx := c.Request.Context()
	log := logger.WithContext(ctx, h.log)

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("invalid register request", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Details: err.Error(),
		})
		return
	}

	resp, err := h.uc.Register(ctx, auth.RegisterRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, RegisterResponse{
		Message: RegisteredMessage,
		User: AccountResponse{
			ID:    resp.Account.ID,
			Name:  resp.Account.Name,
			Email: resp.Account.Email,
		},
	})
}

// Login handles POST /api/auth/login. It answers 501 whatever the body,
// so a malformed payload is only logged.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.WithContext(c.Request.Context(), h.log).Debug("unreadable login request", zap.Error(err))
	}

	_, err := h.uc.Login(c.Request.Context(), auth.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if err == nil {
		// No login flow can succeed yet
		err = pkgerrors.NewNotImplementedError("login")
	}
	h.handleError(c, err)
}

// Status handles GET / by reporting the database clock
func (h *AuthHandler) Status(c *gin.Context) {
	now, err := h.clock.Now(c.Request.Context())
	if err != nil {
		logger.WithContext(c.Request.Context(), h.log).Error("database status check failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_unavailable",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"db_time": now,
	})
}

// Health handles GET /health
func (h *AuthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": h.opts.ServiceName,
	})
}

// handleError converts usecase errors to HTTP responses. The status comes
// from the error itself; conflicts are downgraded to the generic failure
// unless the handler reports them.
func (h *AuthHandler) handleError(c *gin.Context, err error) {
	status := pkgerrors.HTTPStatus(err)
	if status == http.StatusConflict && !h.opts.ReportConflict {
		status = http.StatusInternalServerError
	}

	switch status {
	case http.StatusBadRequest:
		c.JSON(status, ErrorResponse{Error: "validation_error", Details: err.Error()})
	case http.StatusConflict:
		c.JSON(status, ErrorResponse{Error: "conflict", Details: err.Error()})
	case http.StatusNotImplemented:
		c.JSON(status, ErrorResponse{Error: "not_implemented", Details: err.Error()})
	default:
		logger.WithContext(c.Request.Context(), h.log).Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   RegistrationFailedMessage,
			Details: pkgerrors.Detail(err),
		})
	}
}
