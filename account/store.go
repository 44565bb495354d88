package account

import (
	"context"

	"github.com/stereohaus/beatstore/id"
)

type Store interface {
	Create(ctx context.Context, a *Account) error
	Get(ctx context.Context, accountID id.AccountID) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
	Update(ctx context.Context, a *Account) error

	CreateVerification(ctx context.Context, v *Verification) error
	GetVerification(ctx context.Context, email string) (*Verification, error)
	DeleteVerification(ctx context.Context, email string) error

	CreateResetToken(ctx context.Context, r *ResetToken) error
	GetResetToken(ctx context.Context, token string) (*ResetToken, error)
	MarkResetTokenUsed(ctx context.Context, token string) error

	CreateSession(ctx context.Context, s *Session) error
	GetSession(ctx context.Context, token string) (*Session, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteSessionsForAccount(ctx context.Context, accountID id.AccountID) error
}
