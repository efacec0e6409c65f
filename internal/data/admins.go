package data

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"errors"
	"time"

	"GameNightApi/internal/validator"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrDuplicateUsername = errors.New("duplicate username")
	AnonymousAdmin       = &Admin{}
)

type Admin struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Username  string    `json:"username"`
	Password  password  `json:"-"`
	Version   int       `json:"-"`
}

func (a *Admin) IsAnonymous() bool {
	return a == AnonymousAdmin
}

type AdminModel struct {
	db *sql.DB
}

func (m *AdminModel) Insert(admin *Admin) error {
	stmt := `
		INSERT INTO admins (username, password_hash)
		VALUES ($1, $2)
		RETURNING id, created_at, version`

	args := []any{admin.Username, admin.Password.hash}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err := m.db.QueryRowContext(ctx, stmt, args...).Scan(
		&admin.ID,
		&admin.CreatedAt,
		&admin.Version,
	)
	if err != nil {
		switch {
		case err.Error() == `pq: duplicate key value violates unique constraint `+
			`"admins_username_key"`:
			return ErrDuplicateUsername
		default:
			return err
		}
	}

	return nil
}

func (m *AdminModel) GetByUsername(username string) (*Admin, error) {
	stmt := `
		SELECT id, created_at, username, password_hash, version
		FROM admins
		WHERE username = $1`

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	var admin Admin
	err := m.db.QueryRowContext(ctx, stmt, username).Scan(
		&admin.ID,
		&admin.CreatedAt,
		&admin.Username,
		&admin.Password.hash,
		&admin.Version,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return &admin, nil
}

func (m *AdminModel) GetForToken(tokenScope, tokenPlaintext string) (*Admin, error) {
	tokenHash := sha256.Sum256([]byte(tokenPlaintext))
	stmt := `
		SELECT admins.id, admins.created_at, admins.username, admins.password_hash,
			admins.version
		FROM admins
		INNER JOIN tokens
		ON admins.id = tokens.admin_id
		WHERE tokens.hash = $1
		AND tokens.scope = $2
		AND tokens.expiry > $3`

	args := []any{tokenHash[:], tokenScope, time.Now()}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	var admin Admin
	err := m.db.QueryRowContext(ctx, stmt, args...).Scan(
		&admin.ID,
		&admin.CreatedAt,
		&admin.Username,
		&admin.Password.hash,
		&admin.Version,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return &admin, nil
}

type password struct {
	plaintext *string
	hash      []byte
}

func (p *password) Set(plaintextPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintextPassword), 12)
	if err != nil {
		return err
	}

	p.plaintext = &plaintextPassword
	p.hash = hash

	return nil
}

func (p *password) Matches(plaintextPassword string) (bool, error) {
	err := bcrypt.CompareHashAndPassword(p.hash, []byte(plaintextPassword))
	if err != nil {
		switch {
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			return false, nil
		default:
			return false, err
		}
	}

	return true, nil
}

func ValidatePasswordPlaintext(v *validator.Validator, password string) {
	v.Check(password != "", "password", "must be provided")
	v.Check(len(password) >= 8, "password", "must be at least 8 characters long")
	v.Check(len(password) <= 72, "password", "must be 72 characters or less")
}

func ValidateAdmin(v *validator.Validator, admin *Admin) {
	v.Check(admin.Username != "", "username", "must be provided")
	v.Check(len(admin.Username) <= 64, "username", "must be 64 characters or less")

	if admin.Password.plaintext != nil {
		ValidatePasswordPlaintext(v, *admin.Password.plaintext)
	}

	if admin.Password.hash == nil {
		panic("missing password hash for admin")
	}
}
