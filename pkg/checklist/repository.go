package checklist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/homedash/homedash/pkg/datetime"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	List(ctx context.Context, list string) ([]Item, error)
	Get(ctx context.Context, list string, id uuid.UUID) (Item, error)
	Create(ctx context.Context, item Item) (Item, error)
	Update(ctx context.Context, item Item) (bool, error)
	Delete(ctx context.Context, list string, id uuid.UUID) (bool, error)
	MaxPosition(ctx context.Context, list string) (int, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

const itemColumns = `id, list_id, title, due, due_date, done, position`

func (r *RepositoryImpl) List(ctx context.Context, list string) ([]Item, error) {
	query := `SELECT ` + itemColumns + ` FROM checklist_item WHERE list_id = $1 ORDER BY position, created_at`
	rows, err := r.db.Query(ctx, query, list)
	if err != nil {
		err := fmt.Errorf("could not list items of %s: %w", list, err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	items := make([]Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("could not read items of %s: %w", list, err)
	}
	return items, nil
}

func (r *RepositoryImpl) Get(ctx context.Context, list string, id uuid.UUID) (Item, error) {
	query := `SELECT ` + itemColumns + ` FROM checklist_item WHERE list_id = $1 AND id = $2`
	item, err := scanItem(r.db.QueryRow(ctx, query, list, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Item{}, ErrItemNotFound
	}
	return item, err
}

func (r *RepositoryImpl) Create(ctx context.Context, item Item) (Item, error) {
	dueDate, err := dueDateValue(item.DueDate)
	if err != nil {
		return Item{}, err
	}
	query := `INSERT INTO checklist_item (id, list_id, title, due, due_date, done, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err = r.db.Exec(ctx, query, item.Id, item.List, item.Title, item.Due, dueDate, item.Done, item.Position)
	if err != nil {
		err := fmt.Errorf("could not store item: %w", err)
		log.Error(err)
		return Item{}, err
	}
	return item, nil
}

func (r *RepositoryImpl) Update(ctx context.Context, item Item) (bool, error) {
	dueDate, err := dueDateValue(item.DueDate)
	if err != nil {
		return false, err
	}
	query := `UPDATE checklist_item
		SET title = $1, due = $2, due_date = $3, done = $4, position = $5, updated_at = now()
		WHERE list_id = $6 AND id = $7`
	result, err := r.db.Exec(ctx, query, item.Title, item.Due, dueDate, item.Done, item.Position, item.List, item.Id)
	if err != nil {
		err := fmt.Errorf("could not update item %s: %w", item.Id, err)
		log.Error(err)
		return false, err
	}
	return result.RowsAffected() == 1, nil
}

func (r *RepositoryImpl) Delete(ctx context.Context, list string, id uuid.UUID) (bool, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM checklist_item WHERE list_id = $1 AND id = $2`, list, id)
	if err != nil {
		err := fmt.Errorf("could not delete item %s: %w", id, err)
		log.Error(err)
		return false, err
	}
	return result.RowsAffected() == 1, nil
}

func (r *RepositoryImpl) MaxPosition(ctx context.Context, list string) (int, error) {
	var position int
	err := r.db.QueryRow(ctx, `SELECT COALESCE(MAX(position), 0) FROM checklist_item WHERE list_id = $1`, list).Scan(&position)
	if err != nil {
		return 0, fmt.Errorf("could not read max position of %s: %w", list, err)
	}
	return position, nil
}

func scanItem(row pgx.Row) (Item, error) {
	var item Item
	var due, dueDate *time.Time
	err := row.Scan(&item.Id, &item.List, &item.Title, &due, &dueDate, &item.Done, &item.Position)
	if err != nil {
		return Item{}, err
	}
	item.Due = due
	if dueDate != nil {
		item.DueDate = dueDate.Format(datetime.DateLayout)
	}
	return item, nil
}

func dueDateValue(date string) (*time.Time, error) {
	if date == "" {
		return nil, nil
	}
	d, err := datetime.ParseDate(date)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
