package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/fekuna/omnipos-catalog-service/internal/apperr"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
)

func newMockRepo(t *testing.T) (*PGRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewPGRepository(sqlx.NewDb(db, "pgx")), mock
}

func TestPGFindByNameIsCaseInsensitive(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()
	mock.ExpectQuery(`WHERE LOWER\(name\) = LOWER\(\$1\)`).
		WithArgs("pokemon").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at", "updated_at"}).
			AddRow("c-1", "POKEMON", now, now))

	cat, err := repo.FindByName(context.Background(), "pokemon")
	if err != nil || cat == nil || cat.Name != "POKEMON" {
		t.Fatalf("find: %+v %v", cat, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGCreateMapsUniqueViolationToConflict(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec(`INSERT INTO categories`).
		WillReturnError(&pgconn.PgError{Code: pgUniqueViolation})

	now := time.Now().UTC()
	err := repo.Create(context.Background(), &model.Category{
		BaseModel: model.BaseModel{ID: "c-1", CreatedAt: now, UpdatedAt: now},
		Name:      "POKEMON",
	})
	if !apperr.IsConflict(err) {
		t.Fatalf("expected Conflict, got %v", err)
	}
}

func TestPGDeleteMapsForeignKeyViolationToConflict(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec(`DELETE FROM categories WHERE id = \$1`).
		WithArgs("c-1").
		WillReturnError(&pgconn.PgError{Code: pgForeignKeyViolation})

	if err := repo.Delete(context.Background(), "c-1"); !apperr.IsConflict(err) {
		t.Fatalf("expected Conflict, got %v", err)
	}
}
