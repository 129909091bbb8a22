package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/fekuna/omnipos-catalog-service/internal/apperr"
	"github.com/fekuna/omnipos-catalog-service/internal/item/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
)

var itemColumns = []string{
	"id", "name", "price", "category_id", "image_url", "created_at", "updated_at",
	"category_name", "category_created_at", "category_updated_at",
}

func newMockRepo(t *testing.T) (*PGRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewPGRepository(sqlx.NewDb(db, "pgx")), mock
}

func TestPGFindByIDMissingReturnsNil(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(`FROM items i\s+JOIN categories c ON c.id = i.category_id WHERE i.id = \$1`).
		WithArgs(int64(7)).
		WillReturnError(sql.ErrNoRows)

	it, err := repo.FindByID(context.Background(), 7)
	if err != nil || it != nil {
		t.Fatalf("expected (nil, nil), got (%v, %v)", it, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGFindAllComposesFilters(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT count\(\*\) FROM items i JOIN categories c ON c.id = i.category_id WHERE i.name ILIKE \$1 AND i.price <= \$2`).
		WithArgs("%chu%", 10.0).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(`WHERE i.name ILIKE \$1 AND i.price <= \$2 ORDER BY i.price DESC, i.id DESC LIMIT 2 OFFSET 2`).
		WithArgs("%chu%", 10.0).
		WillReturnRows(sqlmock.NewRows(itemColumns).
			AddRow(4, "Pichu", 9.99, "c-poke", nil, now, now, "POKEMON", now, now))

	bound := 10.0
	items, total, err := repo.FindAll(context.Background(), &dto.ItemFilters{
		Name: "chu", MaxPrice: &bound, Page: 1, Size: 2, SortBy: "price", Direction: "desc",
	})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if total != 3 || len(items) != 1 {
		t.Fatalf("total %d items %d", total, len(items))
	}
	if items[0].CategoryName() != "POKEMON" || items[0].Category.ID != "c-poke" || items[0].ImageURL != nil {
		t.Fatalf("unexpected item %+v", items[0])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGFindAllMatchesWildcardsLiterally(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`WHERE i.name ILIKE \$1 AND c.name ILIKE \$2`).
		WithArgs(`%50\%\_off\\%`, `%\_%`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`WHERE i.name ILIKE \$1 AND c.name ILIKE \$2 ORDER BY i.id ASC`).
		WithArgs(`%50\%\_off\\%`, `%\_%`).
		WillReturnRows(sqlmock.NewRows(itemColumns))

	_, _, err := repo.FindAll(context.Background(), &dto.ItemFilters{Name: `50%_off\`, Category: "_"})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGCreateMissingCategoryIsConflict(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`INSERT INTO items`).
		WillReturnError(&pgconn.PgError{Code: "23503"})

	_, err := repo.Create(context.Background(), &model.Item{
		Name: "Pikachu", Price: 9.99, CategoryID: "c-gone", CreatedAt: now, UpdatedAt: now,
	})
	if !apperr.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGFindAllUnknownSortFallsBackToID(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM items i JOIN categories c ON c.id = i.category_id$`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`ORDER BY i.id ASC LIMIT 10 OFFSET 0`).
		WillReturnRows(sqlmock.NewRows(itemColumns))

	_, total, err := repo.FindAll(context.Background(), &dto.ItemFilters{SortBy: "image_url; DROP TABLE items"})
	if err != nil || total != 0 {
		t.Fatalf("find: total %d err %v", total, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGDeleteReturnsPreDeleteSnapshot(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`WHERE i.id = \$1`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(itemColumns).
			AddRow(1, "Pikachu", 9.99, "c-poke", "pika.png", now, now, "POKEMON", now, now))
	mock.ExpectExec(`DELETE FROM items WHERE id = \$1`).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	it, err := repo.Delete(context.Background(), 1)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if it == nil || it.Name != "Pikachu" || it.ImageURL == nil || *it.ImageURL != "pika.png" {
		t.Fatalf("unexpected snapshot %+v", it)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestOrderBy(t *testing.T) {
	cases := []struct {
		sortBy, dir, want string
	}{
		{"", "", "i.id ASC"},
		{"id", "desc", "i.id DESC"},
		{"name", "asc", "LOWER(i.name) ASC, i.id ASC"},
		{"createdAt", "DESC", "i.created_at DESC, i.id DESC"},
		{"category", "sideways", "LOWER(c.name) ASC, i.id ASC"},
	}
	for _, c := range cases {
		got := orderBy((&dto.ItemFilters{SortBy: c.sortBy, Direction: c.dir}).Normalize())
		if got != c.want {
			t.Fatalf("orderBy(%q, %q) = %q, want %q", c.sortBy, c.dir, got, c.want)
		}
	}
}
