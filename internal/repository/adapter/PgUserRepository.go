package adapter

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	repository "github.com/atoyeh09/LinkBazar-sub001/internal/repository/port"
)

// PgUserRepository reads user projections from Postgres.
type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

var _ repository.UserRepository = (*PgUserRepository)(nil)

func (r *PgUserRepository) FindByID(ctx context.Context, id string) (*repository.User, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgUserRepository: nil pool")
	}
	var u repository.User
	var picture *string
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, name, email, profile_picture
		FROM app_user
		WHERE id = $1::uuid
	`, id).Scan(&u.ID, &u.Name, &u.Email, &picture)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	if picture != nil {
		u.ProfilePicture = *picture
	}
	return &u, nil
}
