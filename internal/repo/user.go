package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/homestay/backend/internal/domain"
)

// UserRepo defines the persistence operations for Users and their authorities.
type UserRepo interface {
	// GetByEmail returns domain.ErrNotFound if no user has that email.
	GetByEmail(ctx context.Context, email string) (domain.User, error)

	// GetByPublicID returns domain.ErrNotFound if no user has that public id.
	GetByPublicID(ctx context.Context, publicID uuid.UUID) (domain.User, error)

	// Create inserts a user together with its authorities and returns the
	// persisted record.
	Create(ctx context.Context, user domain.User) (domain.User, error)

	// Update overwrites the profile fields of the user with the given email and
	// adds any authorities it does not have yet. Authorities are never removed.
	Update(ctx context.Context, user domain.User) (domain.User, error)

	// AddAuthority grants an authority. Idempotent.
	AddAuthority(ctx context.Context, userID int64, name string) error
}

// pgUserRepo is the Postgres implementation of UserRepo.
type pgUserRepo struct {
	db db
}

// NewUserRepo constructs a UserRepo backed by the provided db connection.
func NewUserRepo(db db) UserRepo {
	return &pgUserRepo{db: db}
}

// selectUser loads a user and its authorities as a sorted text array.
const selectUser = `
	SELECT u.id, u.public_id, u.first_name, u.last_name, u.email, u.image_url,
	       COALESCE(array_agg(a.name ORDER BY a.name) FILTER (WHERE a.name IS NOT NULL), '{}') AS authorities,
	       u.created_at, u.updated_at
	FROM users u
	LEFT JOIN authorities a ON a.user_id = u.id`

func (r *pgUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	const q = selectUser + `
	WHERE u.email = @email
	GROUP BY u.id`

	u, err := scanUser(r.db.QueryRow(ctx, q, pgx.NamedArgs{"email": email}))
	if err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.GetByEmail: %w", err)
	}
	return u, nil
}

func (r *pgUserRepo) GetByPublicID(ctx context.Context, publicID uuid.UUID) (domain.User, error) {
	const q = selectUser + `
	WHERE u.public_id = @public_id
	GROUP BY u.id`

	u, err := scanUser(r.db.QueryRow(ctx, q, pgx.NamedArgs{"public_id": publicID}))
	if err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.GetByPublicID: %w", err)
	}
	return u, nil
}

// Create inserts the user row, then its authorities in one batch.
func (r *pgUserRepo) Create(ctx context.Context, user domain.User) (domain.User, error) {
	const q = `
		INSERT INTO users (first_name, last_name, email, image_url)
		VALUES (@first_name, @last_name, @email, @image_url)
		RETURNING id`

	var id int64
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"first_name": user.FirstName,
		"last_name":  user.LastName,
		"email":      user.Email,
		"image_url":  user.ImageURL,
	}).Scan(&id)
	if err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.Create: %w", err)
	}

	if err := r.insertAuthorities(ctx, id, user.Authorities); err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.Create: %w", err)
	}

	created, err := r.GetByEmail(ctx, user.Email)
	if err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.Create: %w", err)
	}
	return created, nil
}

func (r *pgUserRepo) Update(ctx context.Context, user domain.User) (domain.User, error) {
	const q = `
		UPDATE users
		SET first_name = @first_name,
		    last_name  = @last_name,
		    image_url  = @image_url,
		    updated_at = now()
		WHERE email = @email
		RETURNING id`

	var id int64
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"first_name": user.FirstName,
		"last_name":  user.LastName,
		"image_url":  user.ImageURL,
		"email":      user.Email,
	}).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, fmt.Errorf("repo.UserRepo.Update: %w", domain.ErrNotFound)
		}
		return domain.User{}, fmt.Errorf("repo.UserRepo.Update: %w", err)
	}

	if err := r.insertAuthorities(ctx, id, user.Authorities); err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.Update: %w", err)
	}

	updated, err := r.GetByEmail(ctx, user.Email)
	if err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.Update: %w", err)
	}
	return updated, nil
}

func (r *pgUserRepo) AddAuthority(ctx context.Context, userID int64, name string) error {
	if err := r.insertAuthorities(ctx, userID, []string{name}); err != nil {
		return fmt.Errorf("repo.UserRepo.AddAuthority: %w", err)
	}
	return nil
}

// insertAuthorities queues one idempotent insert per name and sends them as
// a single round trip.
func (r *pgUserRepo) insertAuthorities(ctx context.Context, userID int64, names []string) error {
	if len(names) == 0 {
		return nil
	}
	const q = `
		INSERT INTO authorities (user_id, name)
		VALUES (@user_id, @name)
		ON CONFLICT (user_id, name) DO NOTHING`

	batch := &pgx.Batch{}
	for _, name := range names {
		batch.Queue(q, pgx.NamedArgs{"user_id": userID, "name": name})
	}
	br := r.db.SendBatch(ctx, batch)
	defer br.Close()

	for range names {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("insert authority: %w", err)
		}
	}
	return nil
}

func scanUser(s scanner) (domain.User, error) {
	var (
		u        domain.User
		publicID pgtype.UUID
	)
	err := s.Scan(&u.ID, &publicID, &u.FirstName, &u.LastName, &u.Email, &u.ImageURL,
		&u.Authorities, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, err
	}
	u.PublicID = fromPgUUID(publicID)
	return u, nil
}
