package repository

import (
	"context"

	"github.com/senyabanana/procurement-service/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

// AwardRepository - интерфейс для работы с распределением контракта.
// Каждая мутация выполняется в одной транзакции с оптимистической проверкой
// award_version на строке тендера; несовпадение версии означает, что
// распределение изменилось под другим запросом.
type AwardRepository interface {
	GetAllocations(ctx context.Context, tenderId string) ([]models.AwardAllocation, error)
	InitializeAward(ctx context.Context, tenderId string, rows []models.AwardAllocation, expectedVersion int32) error
	ReplaceLineItemAllocations(ctx context.Context, tenderId, lineItemId string, quantities map[string]int, expectedVersion int32) error
	FinalizeAward(ctx context.Context, tenderId string, expectedVersion int32) error
}

// PostgresAwardRepository - реализация AwardRepository для базы данных.
type PostgresAwardRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresAwardRepository создает новый экземпляр PostgresAwardRepository.
func NewPostgresAwardRepository(db *pgxpool.Pool) *PostgresAwardRepository {
	return &PostgresAwardRepository{DB: db}
}

// GetAllocations возвращает все строки распределения по тендеру.
func (r *PostgresAwardRepository) GetAllocations(ctx context.Context, tenderId string) ([]models.AwardAllocation, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT tender_id, line_item_id, offer_id, supplier_id, quantity, unit_price, state
		FROM award_allocation WHERE tender_id = $1
		ORDER BY line_item_id, offer_id`,
		tenderId)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch allocations")
	}
	defer rows.Close()

	var allocations []models.AwardAllocation
	for rows.Next() {
		var a models.AwardAllocation
		if err := rows.Scan(&a.TenderID, &a.LineItemID, &a.OfferID, &a.SupplierID, &a.Quantity, &a.UnitPrice, &a.State); err != nil {
			return nil, errors.Wrap(err, "failed to scan allocation")
		}
		allocations = append(allocations, a)
	}
	return allocations, rows.Err()
}

// InitializeAward снимает слепок допущенных предложений: вставляет нулевые
// строки распределения и переводит тендер в состояние AwardDraft.
func (r *PostgresAwardRepository) InitializeAward(ctx context.Context, tenderId string, rows []models.AwardAllocation, expectedVersion int32) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	res, err := tx.Exec(ctx, `
		UPDATE tender SET award_state = $1, award_version = award_version + 1
		WHERE id = $2 AND award_version = $3 AND award_state = $4 AND status = $5 AND is_deleted = false`,
		models.AwardDraft, tenderId, expectedVersion, models.AwardNotInitialized, models.ClosedTender)
	if err != nil {
		return errors.Wrap(err, "failed to claim award aggregate")
	}
	if res.RowsAffected() == 0 {
		return models.NewKindError(models.KindConcurrentModification,
			"award state changed concurrently, refetch and retry")
	}

	for _, row := range rows {
		_, err = tx.Exec(ctx, `
			INSERT INTO award_allocation (tender_id, line_item_id, offer_id, supplier_id, quantity, unit_price, state)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			row.TenderID, row.LineItemID, row.OfferID, row.SupplierID, row.Quantity, row.UnitPrice, row.State)
		if err != nil {
			return errors.Wrap(err, "failed to insert allocation")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "failed to commit award initialization")
	}
	return nil
}

// ReplaceLineItemAllocations заменяет распределение одной позиции целиком:
// обнуляет все строки позиции и выставляет переданные количества.
func (r *PostgresAwardRepository) ReplaceLineItemAllocations(ctx context.Context, tenderId, lineItemId string, quantities map[string]int, expectedVersion int32) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	res, err := tx.Exec(ctx, `
		UPDATE tender SET award_version = award_version + 1
		WHERE id = $1 AND award_version = $2 AND award_state = $3 AND is_deleted = false`,
		tenderId, expectedVersion, models.AwardDraft)
	if err != nil {
		return errors.Wrap(err, "failed to claim award aggregate")
	}
	if res.RowsAffected() == 0 {
		return models.NewKindError(models.KindConcurrentModification,
			"award state changed concurrently, refetch and retry")
	}

	_, err = tx.Exec(ctx, `
		UPDATE award_allocation SET quantity = 0
		WHERE tender_id = $1 AND line_item_id = $2`,
		tenderId, lineItemId)
	if err != nil {
		return errors.Wrap(err, "failed to reset line item allocations")
	}

	for offerId, quantity := range quantities {
		_, err = tx.Exec(ctx, `
			UPDATE award_allocation SET quantity = $1
			WHERE tender_id = $2 AND line_item_id = $3 AND offer_id = $4`,
			quantity, tenderId, lineItemId, offerId)
		if err != nil {
			return errors.Wrap(err, "failed to update allocation")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "failed to commit distribution")
	}
	return nil
}

// FinalizeAward фиксирует распределение: переводит все строки в Finalized
// и тендер в Awarded одной транзакцией, все или ничего.
func (r *PostgresAwardRepository) FinalizeAward(ctx context.Context, tenderId string, expectedVersion int32) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	res, err := tx.Exec(ctx, `
		UPDATE tender SET award_state = $1, status = $2, award_version = award_version + 1, version = version + 1
		WHERE id = $3 AND award_version = $4 AND award_state = $5 AND status = $6 AND is_deleted = false`,
		models.AwardFinalized, models.AwardedTender, tenderId, expectedVersion, models.AwardDraft, models.ClosedTender)
	if err != nil {
		return errors.Wrap(err, "failed to claim award aggregate")
	}
	if res.RowsAffected() == 0 {
		return models.NewKindError(models.KindConcurrentModification,
			"award state changed concurrently, refetch and retry")
	}

	_, err = tx.Exec(ctx, `UPDATE award_allocation SET state = $1 WHERE tender_id = $2`,
		models.FinalizedAllocation, tenderId)
	if err != nil {
		return errors.Wrap(err, "failed to finalize allocations")
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "failed to commit finalization")
	}
	return nil
}
