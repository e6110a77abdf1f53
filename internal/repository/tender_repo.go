package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/senyabanana/procurement-service/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
	"github.com/pkg/errors"
)

// TenderRepository - интерфейс для работы с тендерами.
type TenderRepository interface {
	CreateTender(ctx context.Context, tenderReq models.TenderRequest) (*models.Tender, error)
	GetTenderByID(ctx context.Context, tenderId string) (*models.Tender, error)
	GetTenders(ctx context.Context, limit, offset int, statuses []string) ([]models.Tender, error)
	UpdateTenderStatus(ctx context.Context, tenderId string, from, to models.TenderStatus) (*models.Tender, error)
	SoftDeleteTender(ctx context.Context, tenderId string) error
}

// PostgresTenderRepository - реализация TenderRepository для базы данных.
type PostgresTenderRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresTenderRepository создаёт новый экземпляр PostgresTenderRepository.
func NewPostgresTenderRepository(db *pgxpool.Pool) *PostgresTenderRepository {
	return &PostgresTenderRepository{DB: db}
}

const tenderColumns = `id, name, description, status, buyer_id, deadline, budget_min, budget_max,
	currency, is_public, is_deleted, award_state, award_version, version, created_at`

func scanTender(row pgx.Row, tender *models.Tender) error {
	return row.Scan(
		&tender.ID,
		&tender.Name,
		&tender.Description,
		&tender.Status,
		&tender.BuyerID,
		&tender.Deadline,
		&tender.BudgetMin,
		&tender.BudgetMax,
		&tender.Currency,
		&tender.IsPublic,
		&tender.IsDeleted,
		&tender.AwardState,
		&tender.AwardVersion,
		&tender.Version,
		&tender.CreatedAt,
	)
}

// CreateTender создает новый тендер вместе с позициями в одной транзакции.
func (r *PostgresTenderRepository) CreateTender(ctx context.Context, tenderReq models.TenderRequest) (*models.Tender, error) {
	newTender := models.Tender{
		ID:          uuid.New().String(),
		Name:        tenderReq.Name,
		Description: tenderReq.Description,
		Status:      models.DraftTender,
		BuyerID:     tenderReq.BuyerID,
		Deadline:    tenderReq.Deadline,
		BudgetMin:   tenderReq.BudgetMin,
		BudgetMax:   tenderReq.BudgetMax,
		Currency:    tenderReq.Currency,
		IsPublic:    tenderReq.IsPublic,
		AwardState:  models.AwardNotInitialized,
		Version:     1,
		CreatedAt:   time.Now().UTC(),
	}

	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO tender (id, name, description, status, buyer_id, deadline, budget_min, budget_max,
		                    currency, is_public, is_deleted, award_state, award_version, version, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, false, $11, 0, $12, $13)`,
		newTender.ID,
		newTender.Name,
		newTender.Description,
		newTender.Status,
		newTender.BuyerID,
		newTender.Deadline,
		newTender.BudgetMin,
		newTender.BudgetMax,
		newTender.Currency,
		newTender.IsPublic,
		newTender.AwardState,
		newTender.Version,
		newTender.CreatedAt)
	if err != nil {
		return nil, errors.Wrap(err, "failed to insert tender")
	}

	for i, itemReq := range tenderReq.LineItems {
		item := models.LineItem{
			ID:          uuid.New().String(),
			TenderID:    newTender.ID,
			Position:    i + 1,
			Description: itemReq.Description,
			Quantity:    itemReq.Quantity,
			Unit:        itemReq.Unit,
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO line_item (id, tender_id, position, description, quantity, unit)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			item.ID, item.TenderID, item.Position, item.Description, item.Quantity, item.Unit)
		if err != nil {
			return nil, errors.Wrap(err, "failed to insert line item")
		}
		newTender.LineItems = append(newTender.LineItems, item)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to commit tender creation")
	}
	return &newTender, nil
}

// GetTenderByID возвращает тендер с позициями, исключая удаленные тендеры.
func (r *PostgresTenderRepository) GetTenderByID(ctx context.Context, tenderId string) (*models.Tender, error) {
	var tender models.Tender
	query := `SELECT ` + tenderColumns + ` FROM tender WHERE id = $1 AND is_deleted = false`
	err := scanTender(r.DB.QueryRow(ctx, query, tenderId), &tender)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.NewKindError(models.KindNotFound, "tender not found")
		}
		return nil, errors.Wrap(err, "failed to fetch tender")
	}

	items, err := r.getLineItems(ctx, tenderId)
	if err != nil {
		return nil, err
	}
	tender.LineItems = items
	return &tender, nil
}

// GetTenders возвращает список тендеров с фильтром по статусам.
func (r *PostgresTenderRepository) GetTenders(ctx context.Context, limit, offset int, statuses []string) ([]models.Tender, error) {
	query := `SELECT ` + tenderColumns + ` FROM tender WHERE is_deleted = false`
	var args []interface{}
	argIndex := 1

	if len(statuses) > 0 {
		query += ` AND status = ANY($1)`
		args = append(args, pq.Array(statuses))
		argIndex++
	}

	query += fmt.Sprintf(` ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`, argIndex, argIndex+1)
	args = append(args, limit, offset)

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list tenders")
	}
	defer rows.Close()

	var tenders []models.Tender
	for rows.Next() {
		var tender models.Tender
		if err := scanTender(rows, &tender); err != nil {
			return nil, errors.Wrap(err, "failed to scan tender")
		}
		tenders = append(tenders, tender)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read tenders")
	}

	for i := range tenders {
		items, err := r.getLineItems(ctx, tenders[i].ID)
		if err != nil {
			return nil, err
		}
		tenders[i].LineItems = items
	}
	return tenders, nil
}

// UpdateTenderStatus меняет статус тендера с проверкой ожидаемого текущего статуса.
func (r *PostgresTenderRepository) UpdateTenderStatus(ctx context.Context, tenderId string, from, to models.TenderStatus) (*models.Tender, error) {
	query := `UPDATE tender SET status = $1, version = version + 1
	          WHERE id = $2 AND status = $3 AND is_deleted = false
	          RETURNING ` + tenderColumns
	var tender models.Tender
	err := scanTender(r.DB.QueryRow(ctx, query, to, tenderId, from), &tender)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Либо тендер отсутствует, либо статус изменился под другим запросом.
			if _, getErr := r.GetTenderByID(ctx, tenderId); getErr != nil {
				return nil, getErr
			}
			return nil, models.NewKindError(models.KindConcurrentModification,
				"tender status changed concurrently, refetch and retry")
		}
		return nil, errors.Wrap(err, "failed to update tender status")
	}

	items, err := r.getLineItems(ctx, tenderId)
	if err != nil {
		return nil, err
	}
	tender.LineItems = items
	return &tender, nil
}

// SoftDeleteTender помечает тендер удаленным.
func (r *PostgresTenderRepository) SoftDeleteTender(ctx context.Context, tenderId string) error {
	res, err := r.DB.Exec(ctx,
		`UPDATE tender SET is_deleted = true, version = version + 1 WHERE id = $1 AND is_deleted = false`,
		tenderId)
	if err != nil {
		return errors.Wrap(err, "failed to delete tender")
	}
	if res.RowsAffected() == 0 {
		return models.NewKindError(models.KindNotFound, "tender not found")
	}
	return nil
}

func (r *PostgresTenderRepository) getLineItems(ctx context.Context, tenderId string) ([]models.LineItem, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, tender_id, position, description, quantity, unit
		 FROM line_item WHERE tender_id = $1 ORDER BY position`,
		tenderId)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch line items")
	}
	defer rows.Close()

	var items []models.LineItem
	for rows.Next() {
		var item models.LineItem
		if err := rows.Scan(&item.ID, &item.TenderID, &item.Position, &item.Description, &item.Quantity, &item.Unit); err != nil {
			return nil, errors.Wrap(err, "failed to scan line item")
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
