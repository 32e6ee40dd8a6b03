package ports

import (
	"context"
	"time"

	"github.com/freelancehub/auth-service/internal/core/domain"
)

// AccountRepository is the persistence port for identity records.
//
// Update is conditional on Account.Version: implementations must only apply
// the write when the stored version matches, bump the version on success and
// return domain.ErrVersionConflict otherwise. Create must surface a unique
// email violation as domain.ErrDuplicateEmail.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)

	// FindByResetToken and FindByVerificationToken match the hashed token and
	// require the associated expiry to be after now; a missing record and an
	// expired one are both domain.ErrAccountNotFound.
	FindByResetToken(ctx context.Context, hashedToken string, now time.Time) (*domain.Account, error)
	FindByVerificationToken(ctx context.Context, hashedToken string, now time.Time) (*domain.Account, error)

	Update(ctx context.Context, account *domain.Account) error
}
