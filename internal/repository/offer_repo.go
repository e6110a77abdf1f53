package repository

import (
	"context"
	"time"

	"github.com/senyabanana/procurement-service/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

// OfferRepository - интерфейс для работы с предложениями.
type OfferRepository interface {
	CreateOffer(ctx context.Context, offerReq models.OfferRequest) (*models.Offer, error)
	GetOfferByID(ctx context.Context, offerId string) (*models.Offer, error)
	GetTenderOffers(ctx context.Context, tenderId string) ([]models.Offer, error)
	UpdateEvaluation(ctx context.Context, offerId string, score float64, notes string) (*models.Offer, error)
	UpdateOfferStatus(ctx context.Context, offerId string, status models.OfferStatus) (*models.Offer, error)
	UpdateRankings(ctx context.Context, tenderId string, ranks map[string]int) error
}

// PostgresOfferRepository - реализация OfferRepository для базы данных.
type PostgresOfferRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresOfferRepository создает новый экземпляр PostgresOfferRepository.
func NewPostgresOfferRepository(db *pgxpool.Pool) *PostgresOfferRepository {
	return &PostgresOfferRepository{DB: db}
}

const offerColumns = `id, tender_id, supplier_id, status, total_amount, currency, score, notes, rank, submitted_at`

func scanOffer(row pgx.Row, offer *models.Offer) error {
	return row.Scan(
		&offer.ID,
		&offer.TenderID,
		&offer.SupplierID,
		&offer.Status,
		&offer.TotalAmount,
		&offer.Currency,
		&offer.Score,
		&offer.Notes,
		&offer.Rank,
		&offer.SubmittedAt,
	)
}

// CreateOffer создает новое предложение вместе со ставками по позициям.
func (r *PostgresOfferRepository) CreateOffer(ctx context.Context, offerReq models.OfferRequest) (*models.Offer, error) {
	newOffer := models.Offer{
		ID:          uuid.New().String(),
		TenderID:    offerReq.TenderID,
		SupplierID:  offerReq.SupplierID,
		Status:      models.SubmittedOffer,
		TotalAmount: offerReq.TotalAmount,
		Currency:    offerReq.Currency,
		SubmittedAt: time.Now().UTC(),
		Items:       offerReq.Items,
	}

	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO offer (id, tender_id, supplier_id, status, total_amount, currency, notes, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, '', $7)`,
		newOffer.ID,
		newOffer.TenderID,
		newOffer.SupplierID,
		newOffer.Status,
		newOffer.TotalAmount,
		newOffer.Currency,
		newOffer.SubmittedAt)
	if err != nil {
		return nil, errors.Wrap(err, "failed to insert offer")
	}

	for _, item := range newOffer.Items {
		_, err = tx.Exec(ctx, `
			INSERT INTO offer_item (offer_id, line_item_id, unit_price, quantity)
			VALUES ($1, $2, $3, $4)`,
			newOffer.ID, item.LineItemID, item.UnitPrice, item.Quantity)
		if err != nil {
			return nil, errors.Wrap(err, "failed to insert offer item")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to commit offer creation")
	}
	return &newOffer, nil
}

// GetOfferByID возвращает предложение со ставками.
func (r *PostgresOfferRepository) GetOfferByID(ctx context.Context, offerId string) (*models.Offer, error) {
	var offer models.Offer
	query := `SELECT ` + offerColumns + ` FROM offer WHERE id = $1`
	err := scanOffer(r.DB.QueryRow(ctx, query, offerId), &offer)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.NewKindError(models.KindNotFound, "offer not found")
		}
		return nil, errors.Wrap(err, "failed to fetch offer")
	}

	items, err := r.getOfferItems(ctx, offerId)
	if err != nil {
		return nil, err
	}
	offer.Items = items
	return &offer, nil
}

// GetTenderOffers возвращает все предложения по тендеру со ставками.
func (r *PostgresOfferRepository) GetTenderOffers(ctx context.Context, tenderId string) ([]models.Offer, error) {
	query := `SELECT ` + offerColumns + ` FROM offer WHERE tender_id = $1 ORDER BY submitted_at, id`
	rows, err := r.DB.Query(ctx, query, tenderId)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list offers")
	}
	defer rows.Close()

	var offers []models.Offer
	for rows.Next() {
		var offer models.Offer
		if err := scanOffer(rows, &offer); err != nil {
			return nil, errors.Wrap(err, "failed to scan offer")
		}
		offers = append(offers, offer)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read offers")
	}

	for i := range offers {
		items, err := r.getOfferItems(ctx, offers[i].ID)
		if err != nil {
			return nil, err
		}
		offers[i].Items = items
	}
	return offers, nil
}

// UpdateEvaluation записывает оценку покупателя и переводит предложение в Evaluated.
func (r *PostgresOfferRepository) UpdateEvaluation(ctx context.Context, offerId string, score float64, notes string) (*models.Offer, error) {
	query := `UPDATE offer SET score = $1, notes = $2, status = $3 WHERE id = $4 RETURNING ` + offerColumns
	var offer models.Offer
	err := scanOffer(r.DB.QueryRow(ctx, query, score, notes, models.EvaluatedOffer, offerId), &offer)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.NewKindError(models.KindNotFound, "offer not found")
		}
		return nil, errors.Wrap(err, "failed to update evaluation")
	}

	items, err := r.getOfferItems(ctx, offerId)
	if err != nil {
		return nil, err
	}
	offer.Items = items
	return &offer, nil
}

// UpdateOfferStatus меняет статус предложения.
func (r *PostgresOfferRepository) UpdateOfferStatus(ctx context.Context, offerId string, status models.OfferStatus) (*models.Offer, error) {
	query := `UPDATE offer SET status = $1 WHERE id = $2 RETURNING ` + offerColumns
	var offer models.Offer
	err := scanOffer(r.DB.QueryRow(ctx, query, status, offerId), &offer)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.NewKindError(models.KindNotFound, "offer not found")
		}
		return nil, errors.Wrap(err, "failed to update offer status")
	}

	items, err := r.getOfferItems(ctx, offerId)
	if err != nil {
		return nil, err
	}
	offer.Items = items
	return &offer, nil
}

// UpdateRankings перезаписывает ранги всех предложений тендера в одной транзакции.
func (r *PostgresOfferRepository) UpdateRankings(ctx context.Context, tenderId string, ranks map[string]int) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `UPDATE offer SET rank = NULL WHERE tender_id = $1`, tenderId)
	if err != nil {
		return errors.Wrap(err, "failed to reset rankings")
	}

	for offerId, rank := range ranks {
		_, err = tx.Exec(ctx, `UPDATE offer SET rank = $1 WHERE id = $2 AND tender_id = $3`, rank, offerId, tenderId)
		if err != nil {
			return errors.Wrap(err, "failed to update ranking")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "failed to commit rankings")
	}
	return nil
}

func (r *PostgresOfferRepository) getOfferItems(ctx context.Context, offerId string) ([]models.OfferItem, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT line_item_id, unit_price, quantity FROM offer_item WHERE offer_id = $1 ORDER BY line_item_id`,
		offerId)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch offer items")
	}
	defer rows.Close()

	var items []models.OfferItem
	for rows.Next() {
		var item models.OfferItem
		if err := rows.Scan(&item.LineItemID, &item.UnitPrice, &item.Quantity); err != nil {
			return nil, errors.Wrap(err, "failed to scan offer item")
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
