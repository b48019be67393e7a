package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emrekaya/fridgemate/backend/internal/models"
)

// PostgresStore handles user persistence against PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const userColumns = `id, email, COALESCE(username, ''), password, display_name,
	COALESCE(photo_url, ''), role, COALESCE(age, 0),
	COALESCE(country, ''), COALESCE(city, ''), COALESCE(full_address, ''),
	COALESCE(lat, 0), COALESCE(lng, 0),
	allergies, diet_preference, active_fridge_id, created_at, updated_at`

// Migrate creates the users table if it doesn't exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id               UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			email            VARCHAR(255) UNIQUE NOT NULL,
			username         VARCHAR(50)  UNIQUE,
			password         VARCHAR(255) NOT NULL,
			display_name     VARCHAR(255) NOT NULL,
			photo_url        TEXT,
			role             VARCHAR(16)  NOT NULL DEFAULT 'user',
			age              INT,
			country          TEXT,
			city             TEXT,
			full_address     TEXT,
			lat              DOUBLE PRECISION,
			lng              DOUBLE PRECISION,
			allergies        TEXT[]       NOT NULL DEFAULT '{}',
			diet_preference  VARCHAR(16)  NOT NULL DEFAULT 'NONE',
			active_fridge_id TEXT,
			created_at       TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
			updated_at       TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	var addr models.Address
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.Password, &u.DisplayName,
		&u.PhotoURL, &u.Role, &u.Age,
		&addr.Country, &addr.City, &addr.FullAddress, &addr.Lat, &addr.Lng,
		&u.Allergies, &u.DietPreference, &u.ActiveFridgeID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if addr != (models.Address{}) {
		u.Address = &addr
	}
	if u.Allergies == nil {
		u.Allergies = []string{}
	}
	return &u, nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, email, hashedPassword, displayName string) (*models.User, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO users (email, password, display_name)
		 VALUES ($1, $2, $3)
		 RETURNING `+userColumns,
		email, hashedPassword, displayName)
	u, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	// id arrives as an untrusted string in header auth mode; comparing on
	// the text form turns a malformed id into a plain not-found.
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id::text = $1`, id)
	return scanUser(row)
}

// SetActiveFridge updates the user's active fridge pointer; nil clears it.
func (s *PostgresStore) SetActiveFridge(ctx context.Context, userID string, fridgeID *string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET active_fridge_id = $2, updated_at = NOW() WHERE id::text = $1`,
		userID, fridgeID)
	if err != nil {
		return fmt.Errorf("set active fridge: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateProfile applies the non-nil fields of req to the user and returns
// the updated record.
func (s *PostgresStore) UpdateProfile(ctx context.Context, userID string, req *models.UpdateProfileRequest) (*models.User, error) {
	addr := req.Address
	if addr == nil {
		addr = &models.Address{}
	}
	row := s.pool.QueryRow(ctx, `
		UPDATE users SET
			display_name    = COALESCE($2, display_name),
			username        = COALESCE($3, username),
			age             = COALESCE($4, age),
			country         = CASE WHEN $5 THEN $6 ELSE country END,
			city            = CASE WHEN $5 THEN $7 ELSE city END,
			full_address    = CASE WHEN $5 THEN $8 ELSE full_address END,
			lat             = CASE WHEN $5 THEN $9 ELSE lat END,
			lng             = CASE WHEN $5 THEN $10 ELSE lng END,
			allergies       = COALESCE($11, allergies),
			diet_preference = COALESCE($12, diet_preference),
			updated_at      = NOW()
		WHERE id::text = $1
		RETURNING `+userColumns,
		userID, req.DisplayName, req.Username, req.Age,
		req.Address != nil, addr.Country, addr.City, addr.FullAddress, addr.Lat, addr.Lng,
		req.Allergies, req.DietPreference)
	u, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return u, nil
}

// SetPhotoURL records the avatar URL after an upload.
func (s *PostgresStore) SetPhotoURL(ctx context.Context, userID, url string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET photo_url = $2, updated_at = NOW() WHERE id::text = $1`,
		userID, url)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetProfiles resolves user ids to member profile projections, keyed by id.
func (s *PostgresStore) GetProfiles(ctx context.Context, ids []string) (map[string]models.MemberProfile, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, display_name, COALESCE(photo_url, '') FROM users WHERE id::text = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := make(map[string]models.MemberProfile, len(ids))
	for rows.Next() {
		var p models.MemberProfile
		if err := rows.Scan(&p.UserID, &p.DisplayName, &p.PhotoURL); err != nil {
			return nil, err
		}
		profiles[p.UserID] = p
	}
	return profiles, rows.Err()
}

// ListUsers returns one page of users ordered by creation time plus the
// total count.
func (s *PostgresStore) ListUsers(ctx context.Context, limit, offset int) ([]models.User, int, error) {
	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at, id LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, *u)
	}
	return users, total, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
