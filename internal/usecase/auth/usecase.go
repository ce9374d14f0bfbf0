package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	domain "footix-auth-service/internal/domain/account"
	pkgerrors "footix-auth-service/pkg/errors"
	"footix-auth-service/pkg/logger"
)

// AccountStore persists accounts. Insert must write the row and return it,
// generated id included, in one atomic statement, and must report a
// uniqueness violation on email as domain.ErrDuplicateEmail.
type AccountStore interface {
	Insert(ctx context.Context, name, email, password string) (*domain.Account, error)
}

// CredentialStore turns a submitted password into its stored form.
type CredentialStore interface {
	Protect(password string) (string, error)
}

// Service implements account registration on top of an AccountStore.
type Service struct {
	store       AccountStore
	credentials CredentialStore
	log         *zap.Logger
	validate    *validator.Validate
}

var _ Usecase = (*Service)(nil)

// New creates a new registration Service.
func New(store AccountStore, credentials CredentialStore, log *zap.Logger) *Service {
	return &Service{
		store:       store,
		credentials: credentials,
		log:         log,
		validate:    validator.New(),
	}
}

// formatValidationError converts validator.ValidationErrors into a ValidationError.
func formatValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return pkgerrors.NewValidationError("", err.Error())
	}

	fields := make([]string, 0, len(validationErrors))
	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		fields = append(fields, e.Field())
		switch e.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", e.Field()))
		default:
			messages = append(messages, fmt.Sprintf("%s is invalid", e.Field()))
		}
	}
	return pkgerrors.NewValidationError(strings.Join(fields, ","), strings.Join(messages, ", "))
}

// Register validates the request and persists a new account. Duplicate
// emails surface as *errors.AlreadyExistsError, every other storage
// failure as *errors.InternalError. Nothing is retried.
func (s *Service) Register(ctx context.Context, in RegisterRequest) (*RegisterResponse, error) {
	log := logger.WithContext(ctx, s.log)
	log.Info("registering account", zap.String("name", in.Name), logger.Email(in.Email))

	if err := s.validate.Struct(in); err != nil {
		log.Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	stored, err := s.credentials.Protect(in.Password)
	if err != nil {
		log.Error("failed to protect credential", zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to register account", err)
	}

	acc, err := s.store.Insert(ctx, in.Name, in.Email, stored)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			log.Warn("email already registered", logger.Email(in.Email))
			return nil, &pkgerrors.AlreadyExistsError{
				Resource: "account",
				Message:  "email already registered",
				Err:      err,
			}
		}
		log.Error("failed to insert account", logger.Email(in.Email), zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to register account", err)
	}

	log.Info("account registered", zap.Int64("id", acc.ID))

	return &RegisterResponse{
		Account: Account{
			ID:    acc.ID,
			Name:  acc.Name,
			Email: acc.Email,
		},
	}, nil
}

// Login has no server-side implementation yet; it always reports so
// rather than accepting credentials it cannot verify.
func (s *Service) Login(ctx context.Context, in LoginRequest) (*LoginResponse, error) {
	logger.WithContext(ctx, s.log).Warn("login requested but not implemented", logger.Email(in.Email))
	return nil, pkgerrors.NewNotImplementedError("login")
}
