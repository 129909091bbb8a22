package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/omnipos-catalog-service/internal/apperr"
	"github.com/fekuna/omnipos-catalog-service/internal/item/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
)

const pgForeignKeyViolation = "23503"

const selectItems = `
        SELECT i.id, i.name, i.price, i.category_id, i.image_url, i.created_at, i.updated_at,
               c.name AS category_name,
               c.created_at AS category_created_at,
               c.updated_at AS category_updated_at
        FROM items i
        JOIN categories c ON c.id = i.category_id`

// Sort fields map to columns here; the allow-list lives in dto.ParseSortField.
var sortColumns = map[dto.SortField]string{
	dto.SortByID:        "i.id",
	dto.SortByName:      "LOWER(i.name)",
	dto.SortByPrice:     "i.price",
	dto.SortByCreatedAt: "i.created_at",
	dto.SortByCategory:  "LOWER(c.name)",
}

type itemRow struct {
	model.Item
	CatName      string    `db:"category_name"`
	CatCreatedAt time.Time `db:"category_created_at"`
	CatUpdatedAt time.Time `db:"category_updated_at"`
}

func (r itemRow) toModel() model.Item {
	it := r.Item
	it.Category = &model.Category{
		BaseModel: model.BaseModel{
			ID:        r.CategoryID,
			CreatedAt: r.CatCreatedAt,
			UpdatedAt: r.CatUpdatedAt,
		},
		Name: r.CatName,
	}
	return it
}

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, it *model.Item) (*model.Item, error) {
	query := `
        INSERT INTO items (name, price, category_id, image_url, created_at, updated_at)
        VALUES (:name, :price, :category_id, :image_url, :created_at, :updated_at)
        RETURNING id
    `
	q, args, err := r.DB.BindNamed(query, it)
	if err != nil {
		return nil, err
	}

	var id int64
	if err := r.DB.GetContext(ctx, &id, q, args...); err != nil {
		return nil, mapPGError(fmt.Errorf("insert item: %w", err), it.CategoryID)
	}

	created, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, fmt.Errorf("item %d vanished after insert", id)
	}
	return created, nil
}

func (r *PGRepository) FindByID(ctx context.Context, id int64) (*model.Item, error) {
	var row itemRow
	query := selectItems + ` WHERE i.id = $1 LIMIT 1`
	err := r.DB.GetContext(ctx, &row, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	it := row.toModel()
	return &it, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.ItemFilters) ([]model.Item, int, error) {
	f.Normalize()

	conditions := []string{}
	args := map[string]interface{}{}

	if f.Name != "" {
		conditions = append(conditions, "i.name ILIKE :name")
		args["name"] = containsPattern(f.Name)
	}
	if f.Category != "" {
		conditions = append(conditions, "c.name ILIKE :category")
		args["category"] = containsPattern(f.Category)
	}
	if f.MaxPrice != nil {
		conditions = append(conditions, "i.price <= :max_price")
		args["max_price"] = *f.MaxPrice
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	// Count on the filtered set, before pagination
	countQuery, countArgs, err := sqlx.Named(
		"SELECT count(*) FROM items i JOIN categories c ON c.id = i.category_id"+whereClause, args)
	if err != nil {
		return nil, 0, err
	}
	var count int
	if err := r.DB.GetContext(ctx, &count, r.DB.Rebind(countQuery), countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count items: %w", err)
	}

	query := fmt.Sprintf("%s%s ORDER BY %s LIMIT %d OFFSET %d",
		selectItems, whereClause, orderBy(f), f.Size, f.Offset())
	listQuery, listArgs, err := sqlx.Named(query, args)
	if err != nil {
		return nil, 0, err
	}

	var rows []itemRow
	if err := r.DB.SelectContext(ctx, &rows, r.DB.Rebind(listQuery), listArgs...); err != nil {
		return nil, 0, fmt.Errorf("list items: %w", err)
	}

	items := make([]model.Item, len(rows))
	for i, row := range rows {
		items[i] = row.toModel()
	}
	return items, count, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// containsPattern makes a plain substring match out of user input; backslash
// is the default ILIKE escape character.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// mapPGError reports a category_id foreign key violation as a conflict.
func mapPGError(err error, categoryID string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
		return apperr.Conflict("category %s does not exist", categoryID)
	}
	return err
}

// orderBy builds the ORDER BY clause from the allow-listed column. Ties on
// non-id columns are broken by id in the same direction.
func orderBy(f *dto.ItemFilters) string {
	field := f.SortField()
	dir := "ASC"
	if f.SortDirection() == dto.Descending {
		dir = "DESC"
	}
	column := sortColumns[field]
	if field == dto.SortByID {
		return column + " " + dir
	}
	return column + " " + dir + ", i.id " + dir
}

func (r *PGRepository) Update(ctx context.Context, id int64, it *model.Item) (*model.Item, error) {
	current, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, nil
	}

	it.ID = id
	query := `
        UPDATE items
        SET name = :name,
            price = :price,
            category_id = :category_id,
            image_url = :image_url,
            updated_at = :updated_at
        WHERE id = :id
    `
	if _, err := r.DB.NamedExecContext(ctx, query, it); err != nil {
		return nil, mapPGError(fmt.Errorf("update item %d: %w", id, err), it.CategoryID)
	}

	// Concurrent delete between the two statements resolves to not found.
	return r.FindByID(ctx, id)
}

func (r *PGRepository) Delete(ctx context.Context, id int64) (*model.Item, error) {
	current, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, nil
	}

	res, err := r.DB.ExecContext(ctx, "DELETE FROM items WHERE id = $1", id)
	if err != nil {
		return nil, fmt.Errorf("delete item %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, nil
	}
	return current, nil
}

func (r *PGRepository) CountByCategory(ctx context.Context, categoryID string) (int, error) {
	var count int
	err := r.DB.GetContext(ctx, &count, `SELECT count(*) FROM items WHERE category_id = $1`, categoryID)
	return count, err
}
