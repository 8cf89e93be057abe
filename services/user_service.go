package services

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"heatmapAPI/internal/user"
)

type UserService struct {
	db *pgxpool.Pool
}

func NewUserService(db *pgxpool.Pool) *UserService {
	return &UserService{db: db}
}

func (s *UserService) GetUserByClerkID(ctx context.Context, clerkID string) (*user.User, error) {
	query := `
	SELECT id, clerk_id, email, username, first_name, last_name, image_url, email_verified, created_at, updated_at
	FROM users
	WHERE clerk_id = $1
	`

	u := &user.User{}
	err := s.db.QueryRow(ctx, query, clerkID).Scan(
		&u.ID,
		&u.ClerkID,
		&u.Email,
		&u.Username,
		&u.FirstName,
		&u.LastName,
		&u.ImageURL,
		&u.EmailVerified,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	return u, nil
}

// CreateUser inserts a user synced from the Clerk webhook. Replays of the
// same event upsert instead of failing.
func (s *UserService) CreateUser(ctx context.Context, clerkID, email, username, firstName, lastName, imageURL string, emailVerified bool) error {
	query := `
	INSERT INTO users (clerk_id, email, username, first_name, last_name, image_url, email_verified, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	ON CONFLICT (clerk_id)
	DO UPDATE SET
		email = $2,
		username = $3,
		first_name = $4,
		last_name = $5,
		image_url = $6,
		email_verified = $7,
		updated_at = NOW()
	`

	if _, err := s.db.Exec(ctx, query, clerkID, email, username, firstName, lastName, imageURL, emailVerified); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (s *UserService) UpdateUser(ctx context.Context, clerkID, email, username, firstName, lastName, imageURL string, emailVerified bool) error {
	query := `
	UPDATE users SET
		email = $2,
		username = $3,
		first_name = $4,
		last_name = $5,
		image_url = $6,
		email_verified = $7,
		updated_at = NOW()
	WHERE clerk_id = $1
	`

	result, err := s.db.Exec(ctx, query, clerkID, email, username, firstName, lastName, imageURL, emailVerified)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("no user with clerk id %s", clerkID)
	}

	return nil
}

// DeleteUser removes the user and, through ON DELETE CASCADE, their
// activity, notifications and device tokens.
func (s *UserService) DeleteUser(ctx context.Context, clerkID string) error {
	result, err := s.db.Exec(ctx, `DELETE FROM users WHERE clerk_id = $1`, clerkID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("no user with clerk id %s", clerkID)
	}

	return nil
}
