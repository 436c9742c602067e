package session

import (
	"context"
	"database/sql"
	"fmt"

	sessionrepo "github.com/jimalvess/diario-cli/internal/client/repositories/session"
	"github.com/jimalvess/diario-cli/internal/common"
	"github.com/jimalvess/diario-cli/internal/dbx"
)

// Persistence stores a Session across process restarts.
type Persistence interface {
	Load(ctx context.Context) (Session, error)
	Save(ctx context.Context, s Session) error
	Clear(ctx context.Context) error
}

// SQLitePersistence keeps the session as two rows of the session table.
type SQLitePersistence struct {
	db *sql.DB
}

func NewSQLitePersistence(db *sql.DB) *SQLitePersistence {
	return &SQLitePersistence{db: db}
}

func (p *SQLitePersistence) Load(ctx context.Context) (Session, error) {
	repo := sessionrepo.NewSQLiteRepository(p.db)

	token, _, err := repo.Get(ctx, common.SessionKeyToken)
	if err != nil {
		return Session{}, err
	}
	userID, _, err := repo.Get(ctx, common.SessionKeyUserID)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, UserID: userID}, nil
}

// Save writes both keys in one transaction so a crash never leaves a token
// without its user.
func (p *SQLitePersistence) Save(ctx context.Context, s Session) error {
	return dbx.WithTx(ctx, p.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := sessionrepo.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, common.SessionKeyToken, s.Token); err != nil {
			return err
		}
		if err := repo.Set(ctx, common.SessionKeyUserID, s.UserID); err != nil {
			return err
		}
		return nil
	})
}

// Clear removes both keys in one transaction.
func (p *SQLitePersistence) Clear(ctx context.Context) error {
	err := dbx.WithTx(ctx, p.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := sessionrepo.NewSQLiteRepository(tx)
		for _, key := range []string{common.SessionKeyToken, common.SessionKeyUserID} {
			if err := repo.Delete(ctx, key); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
