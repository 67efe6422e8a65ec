package auth

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"swiftride.org/internal/ids"
)

var _ Store = (*PGStore)(nil)

// Schema holds the DDL applied at startup when a database is configured.
const Schema = `
create table if not exists users (
	id            text primary key,
	firstname     text not null,
	lastname      text not null default '',
	email         text not null unique,
	password_hash text not null,
	created_at    timestamptz not null default now(),
	updated_at    timestamptz not null default now()
);

create table if not exists captains (
	id               text primary key,
	firstname        text not null,
	lastname         text not null default '',
	email            text not null unique,
	password_hash    text not null,
	vehicle_color    text not null,
	vehicle_plate    text not null,
	vehicle_capacity int  not null,
	vehicle_type     text not null,
	created_at       timestamptz not null default now(),
	updated_at       timestamptz not null default now()
);

create table if not exists revoked_tokens (
	token      text primary key,
	revoked_at timestamptz not null default now()
);
`

// PGStore implements Store using PostgreSQL.
type PGStore struct {
	db *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

// Migrate applies the schema. Safe to run repeatedly.
func (s *PGStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, Schema)
	return err
}

func (s *PGStore) Users() UserStore         { return &userStore{db: s.db} }
func (s *PGStore) Captains() CaptainStore   { return &captainStore{db: s.db} }
func (s *PGStore) Ledger() RevocationLedger { return &ledgerStore{db: s.db} }

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// User store ---------------------------------------------------------------
type userStore struct{ db *sql.DB }

func (s *userStore) Create(ctx context.Context, u *User) error {
	if u.ID == "" {
		u.ID = ids.New()
	}
	row := s.db.QueryRowContext(ctx,
		`insert into users(id, firstname, lastname, email, password_hash) values($1,$2,$3,$4,$5)
		 returning created_at, updated_at`,
		u.ID, u.Fullname.Firstname, u.Fullname.Lastname, strings.ToLower(u.Email), u.PasswordHash,
	)
	if err := row.Scan(&u.CreatedAt, &u.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return err
	}
	u.Email = strings.ToLower(u.Email)
	return nil
}

func (s *userStore) Find(ctx context.Context, id string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`select id, firstname, lastname, email, created_at, updated_at from users where id=$1`, id)
	var u User
	if err := row.Scan(&u.ID, &u.Fullname.Firstname, &u.Fullname.Lastname, &u.Email, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (s *userStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`select id, firstname, lastname, email, password_hash, created_at, updated_at from users where email=$1`,
		strings.ToLower(email))
	var u User
	if err := row.Scan(&u.ID, &u.Fullname.Firstname, &u.Fullname.Lastname, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Captain store ------------------------------------------------------------
type captainStore struct{ db *sql.DB }

func (s *captainStore) Create(ctx context.Context, c *Captain) error {
	if c.ID == "" {
		c.ID = ids.New()
	}
	row := s.db.QueryRowContext(ctx,
		`insert into captains(id, firstname, lastname, email, password_hash, vehicle_color, vehicle_plate, vehicle_capacity, vehicle_type)
		 values($1,$2,$3,$4,$5,$6,$7,$8,$9)
		 returning created_at, updated_at`,
		c.ID, c.Fullname.Firstname, c.Fullname.Lastname, strings.ToLower(c.Email), c.PasswordHash,
		c.Vehicle.Color, c.Vehicle.Plate, c.Vehicle.Capacity, c.Vehicle.VehicleType,
	)
	if err := row.Scan(&c.CreatedAt, &c.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return err
	}
	c.Email = strings.ToLower(c.Email)
	return nil
}

func (s *captainStore) Find(ctx context.Context, id string) (*Captain, error) {
	row := s.db.QueryRowContext(ctx,
		`select id, firstname, lastname, email, vehicle_color, vehicle_plate, vehicle_capacity, vehicle_type, created_at, updated_at
		 from captains where id=$1`, id)
	var c Captain
	if err := row.Scan(&c.ID, &c.Fullname.Firstname, &c.Fullname.Lastname, &c.Email,
		&c.Vehicle.Color, &c.Vehicle.Plate, &c.Vehicle.Capacity, &c.Vehicle.VehicleType,
		&c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (s *captainStore) FindByEmail(ctx context.Context, email string) (*Captain, error) {
	row := s.db.QueryRowContext(ctx,
		`select id, firstname, lastname, email, password_hash, vehicle_color, vehicle_plate, vehicle_capacity, vehicle_type, created_at, updated_at
		 from captains where email=$1`, strings.ToLower(email))
	var c Captain
	if err := row.Scan(&c.ID, &c.Fullname.Firstname, &c.Fullname.Lastname, &c.Email, &c.PasswordHash,
		&c.Vehicle.Color, &c.Vehicle.Plate, &c.Vehicle.Capacity, &c.Vehicle.VehicleType,
		&c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// Revocation ledger --------------------------------------------------------
type ledgerStore struct{ db *sql.DB }

func (s *ledgerStore) Revoke(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx,
		`insert into revoked_tokens(token) values($1) on conflict do nothing`, token)
	return err
}

func (s *ledgerStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	row := s.db.QueryRowContext(ctx,
		`select exists(select 1 from revoked_tokens where token=$1)`, token)
	var revoked bool
	if err := row.Scan(&revoked); err != nil {
		return false, err
	}
	return revoked, nil
}

func (s *ledgerStore) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`delete from revoked_tokens where revoked_at < $1`, before)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
