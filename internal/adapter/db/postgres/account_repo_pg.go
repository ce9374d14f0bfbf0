package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"footix-auth-service/internal/domain/account"
	"footix-auth-service/pkg/logger"
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// emailColumn is the uniquely constrained column duplicates are reported on.
const emailColumn = "email"

// sqliteEmailUnique is the message fragment SQLite emits for the email constraint.
const sqliteEmailUnique = "UNIQUE constraint failed: utilisateur.email"

// AccountRepoPG implements the account store on top of GORM.
type AccountRepoPG struct {
	db  *gorm.DB    // GORM database connection
	log *zap.Logger // Structured logger for database operations
}

// NewAccountRepoPG creates a new instance of AccountRepoPG.
func NewAccountRepoPG(db *gorm.DB, log *zap.Logger) *AccountRepoPG {
	return &AccountRepoPG{db: db, log: log}
}

// AccountSchema represents the database schema for the utilisateur table.
type AccountSchema struct {
	ID       int64  `gorm:"column:id;primaryKey;autoIncrement"`
	Name     string `gorm:"column:nom;not null"`
	Email    string `gorm:"column:email;not null;unique"`
	Password string `gorm:"column:mot_de_passe;not null"`
}

// TableName specifies the table name for the AccountSchema model.
func (AccountSchema) TableName() string {
	return "utilisateur"
}

// Insert writes a new account and returns the stored row in the same
// statement (INSERT ... RETURNING *).
func (r *AccountRepoPG) Insert(ctx context.Context, name, email, password string) (*account.Account, error) {
	log := logger.WithContext(ctx, r.log)

	model := AccountSchema{
		Name:     name,
		Email:    email,
		Password: password,
	}

	if err := r.db.WithContext(ctx).Clauses(clause.Returning{}).Create(&model).Error; err != nil {
		if isDuplicateEmail(err) {
			log.Warn("duplicate email rejected by db", logger.Email(email))
			return nil, fmt.Errorf("failed to insert account: %w: %w", account.ErrDuplicateEmail, err)
		}
		log.Error("failed to insert account in db", zap.Error(err), logger.Email(email))
		return nil, fmt.Errorf("failed to insert account: %w", err)
	}

	log.Info("account inserted in db", zap.Int64("id", model.ID))

	return &account.Account{
		ID:       model.ID,
		Name:     model.Name,
		Email:    model.Email,
		Password: model.Password,
	}, nil
}

// Now returns the database clock, used by the status endpoint.
func (r *AccountRepoPG) Now(ctx context.Context) (string, error) {
	var now string
	if err := r.db.WithContext(ctx).Raw("SELECT CURRENT_TIMESTAMP").Scan(&now).Error; err != nil {
		return "", fmt.Errorf("failed to query database time: %w", err)
	}
	return now, nil
}

// isDuplicateEmail reports whether err is a unique violation on the email
// column. Violations of other constraints, the primary key included, are not.
func isDuplicateEmail(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code != uniqueViolation {
			return false
		}
		// Named utilisateur_email_key by the schema, uni_utilisateur_email by AutoMigrate
		return strings.Contains(pgErr.ConstraintName, emailColumn) ||
			pgErr.ColumnName == emailColumn ||
			strings.HasPrefix(pgErr.Detail, "Key (email)=")
	}
	return strings.Contains(err.Error(), sqliteEmailUnique)
}
