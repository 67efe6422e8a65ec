package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestPGUserStoreCreateMapsUniqueViolation(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("insert into users").
		WithArgs(sqlmock.AnyArg(), "Ada", "Lovelace", "d1@x.com", "hash").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	store := NewPGStore(db)
	u := &User{
		Fullname:     Fullname{Firstname: "Ada", Lastname: "Lovelace"},
		Email:        "D1@x.com",
		PasswordHash: "hash",
	}
	if err := store.Users().Create(context.Background(), u); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPGUserStoreProjections(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()

	// Public projection: no password_hash column in the select list.
	mock.ExpectQuery(`select id, firstname, lastname, email, created_at, updated_at from users`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "firstname", "lastname", "email", "created_at", "updated_at"}).
			AddRow("u1", "Ada", "Lovelace", "d1@x.com", now, now))

	// Internal projection for login includes the hash.
	mock.ExpectQuery(`select id, firstname, lastname, email, password_hash, created_at, updated_at from users`).
		WithArgs("d1@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "firstname", "lastname", "email", "password_hash", "created_at", "updated_at"}).
			AddRow("u1", "Ada", "Lovelace", "d1@x.com", "hash", now, now))

	store := NewPGStore(db)

	public, err := store.Users().Find(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if public.PasswordHash != "" {
		t.Fatal("public projection must not carry the hash")
	}

	internal, err := store.Users().FindByEmail(context.Background(), "D1@X.com")
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if internal.PasswordHash != "hash" {
		t.Fatalf("internal projection missing hash: %+v", internal)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPGLedger(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	// Idempotent insert: second call hits "on conflict do nothing".
	mock.ExpectExec("insert into revoked_tokens").
		WithArgs("tok-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("insert into revoked_tokens").
		WithArgs("tok-1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`select exists`).
		WithArgs("tok-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectExec("delete from revoked_tokens").
		WithArgs(sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(0, 3))

	ledger := NewPGStore(db).Ledger()
	ctx := context.Background()

	if err := ledger.Revoke(ctx, "tok-1"); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if err := ledger.Revoke(ctx, "tok-1"); err != nil {
		t.Fatalf("second Revoke: %v", err)
	}
	revoked, err := ledger.IsRevoked(ctx, "tok-1")
	if err != nil || !revoked {
		t.Fatalf("IsRevoked: got %v/%v", revoked, err)
	}
	purged, err := ledger.PurgeExpired(ctx, time.Now())
	if err != nil {
		t.Fatalf("PurgeExpired: %v", err)
	}
	if purged != 3 {
		t.Fatalf("expected 3 purged, got %d", purged)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPGCaptainStoreNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("select id, firstname, lastname, email, vehicle_color").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	if _, err := NewPGStore(db).Captains().Find(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
