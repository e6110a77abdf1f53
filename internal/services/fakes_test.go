package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/senyabanana/procurement-service/internal/models"

	"github.com/google/uuid"
)

// fakeStore - хранилище в памяти, реализующее все три репозитория с той же
// семантикой, что и реализации для Postgres: проверка ожидаемого статуса при
// смене статуса тендера и оптимистическая проверка award_version на каждой
// мутации распределения.
type fakeStore struct {
	mu          sync.Mutex
	tenders     map[string]*models.Tender
	offers      map[string]*models.Offer
	allocations []*models.AwardAllocation
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		tenders: make(map[string]*models.Tender),
		offers:  make(map[string]*models.Offer),
	}
}

func copyTender(t *models.Tender) *models.Tender {
	c := *t
	c.LineItems = append([]models.LineItem(nil), t.LineItems...)
	return &c
}

func copyOffer(o *models.Offer) *models.Offer {
	c := *o
	c.Items = append([]models.OfferItem(nil), o.Items...)
	if o.Score != nil {
		score := *o.Score
		c.Score = &score
	}
	if o.Rank != nil {
		rank := *o.Rank
		c.Rank = &rank
	}
	return &c
}

func (f *fakeStore) CreateTender(ctx context.Context, tenderReq models.TenderRequest) (*models.Tender, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	tender := &models.Tender{
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
	for i, itemReq := range tenderReq.LineItems {
		tender.LineItems = append(tender.LineItems, models.LineItem{
			ID:          uuid.New().String(),
			TenderID:    tender.ID,
			Position:    i + 1,
			Description: itemReq.Description,
			Quantity:    itemReq.Quantity,
			Unit:        itemReq.Unit,
		})
	}
	f.tenders[tender.ID] = tender
	return copyTender(tender), nil
}

func (f *fakeStore) GetTenderByID(ctx context.Context, tenderId string) (*models.Tender, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	tender, ok := f.tenders[tenderId]
	if !ok || tender.IsDeleted {
		return nil, models.NewKindError(models.KindNotFound, "tender not found")
	}
	return copyTender(tender), nil
}

func (f *fakeStore) GetTenders(ctx context.Context, limit, offset int, statuses []string) ([]models.Tender, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	wanted := make(map[string]bool, len(statuses))
	for _, status := range statuses {
		wanted[status] = true
	}

	var tenders []models.Tender
	for _, tender := range f.tenders {
		if tender.IsDeleted {
			continue
		}
		if len(wanted) > 0 && !wanted[string(tender.Status)] {
			continue
		}
		tenders = append(tenders, *copyTender(tender))
	}
	sort.Slice(tenders, func(i, j int) bool {
		if !tenders[i].CreatedAt.Equal(tenders[j].CreatedAt) {
			return tenders[i].CreatedAt.After(tenders[j].CreatedAt)
		}
		return tenders[i].ID < tenders[j].ID
	})

	if offset >= len(tenders) {
		return nil, nil
	}
	tenders = tenders[offset:]
	if limit < len(tenders) {
		tenders = tenders[:limit]
	}
	return tenders, nil
}

func (f *fakeStore) UpdateTenderStatus(ctx context.Context, tenderId string, from, to models.TenderStatus) (*models.Tender, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	tender, ok := f.tenders[tenderId]
	if !ok || tender.IsDeleted {
		return nil, models.NewKindError(models.KindNotFound, "tender not found")
	}
	if tender.Status != from {
		return nil, models.NewKindError(models.KindConcurrentModification,
			"tender status changed concurrently, refetch and retry")
	}
	tender.Status = to
	tender.Version++
	return copyTender(tender), nil
}

func (f *fakeStore) SoftDeleteTender(ctx context.Context, tenderId string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	tender, ok := f.tenders[tenderId]
	if !ok || tender.IsDeleted {
		return models.NewKindError(models.KindNotFound, "tender not found")
	}
	tender.IsDeleted = true
	tender.Version++
	return nil
}

func (f *fakeStore) CreateOffer(ctx context.Context, offerReq models.OfferRequest) (*models.Offer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	offer := &models.Offer{
		ID:          uuid.New().String(),
		TenderID:    offerReq.TenderID,
		SupplierID:  offerReq.SupplierID,
		Status:      models.SubmittedOffer,
		TotalAmount: offerReq.TotalAmount,
		Currency:    offerReq.Currency,
		SubmittedAt: time.Now().UTC(),
		Items:       append([]models.OfferItem(nil), offerReq.Items...),
	}
	f.offers[offer.ID] = offer
	return copyOffer(offer), nil
}

func (f *fakeStore) GetOfferByID(ctx context.Context, offerId string) (*models.Offer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	offer, ok := f.offers[offerId]
	if !ok {
		return nil, models.NewKindError(models.KindNotFound, "offer not found")
	}
	return copyOffer(offer), nil
}

func (f *fakeStore) GetTenderOffers(ctx context.Context, tenderId string) ([]models.Offer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var offers []models.Offer
	for _, offer := range f.offers {
		if offer.TenderID == tenderId {
			offers = append(offers, *copyOffer(offer))
		}
	}
	sort.Slice(offers, func(i, j int) bool {
		if !offers[i].SubmittedAt.Equal(offers[j].SubmittedAt) {
			return offers[i].SubmittedAt.Before(offers[j].SubmittedAt)
		}
		return offers[i].ID < offers[j].ID
	})
	return offers, nil
}

func (f *fakeStore) UpdateEvaluation(ctx context.Context, offerId string, score float64, notes string) (*models.Offer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	offer, ok := f.offers[offerId]
	if !ok {
		return nil, models.NewKindError(models.KindNotFound, "offer not found")
	}
	offer.Score = &score
	offer.Notes = notes
	offer.Status = models.EvaluatedOffer
	return copyOffer(offer), nil
}

func (f *fakeStore) UpdateOfferStatus(ctx context.Context, offerId string, status models.OfferStatus) (*models.Offer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	offer, ok := f.offers[offerId]
	if !ok {
		return nil, models.NewKindError(models.KindNotFound, "offer not found")
	}
	offer.Status = status
	return copyOffer(offer), nil
}

func (f *fakeStore) UpdateRankings(ctx context.Context, tenderId string, ranks map[string]int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, offer := range f.offers {
		if offer.TenderID != tenderId {
			continue
		}
		if rank, ok := ranks[offer.ID]; ok {
			r := rank
			offer.Rank = &r
		} else {
			offer.Rank = nil
		}
	}
	return nil
}

func (f *fakeStore) GetAllocations(ctx context.Context, tenderId string) ([]models.AwardAllocation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var rows []models.AwardAllocation
	for _, row := range f.allocations {
		if row.TenderID == tenderId {
			rows = append(rows, *row)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].LineItemID != rows[j].LineItemID {
			return rows[i].LineItemID < rows[j].LineItemID
		}
		return rows[i].OfferID < rows[j].OfferID
	})
	return rows, nil
}

func (f *fakeStore) InitializeAward(ctx context.Context, tenderId string, rows []models.AwardAllocation, expectedVersion int32) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	tender, ok := f.tenders[tenderId]
	if !ok || tender.IsDeleted || tender.AwardVersion != expectedVersion ||
		tender.AwardState != models.AwardNotInitialized || tender.Status != models.ClosedTender {
		return models.NewKindError(models.KindConcurrentModification,
			"award state changed concurrently, refetch and retry")
	}
	tender.AwardState = models.AwardDraft
	tender.AwardVersion++
	for i := range rows {
		row := rows[i]
		f.allocations = append(f.allocations, &row)
	}
	return nil
}

func (f *fakeStore) ReplaceLineItemAllocations(ctx context.Context, tenderId, lineItemId string, quantities map[string]int, expectedVersion int32) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	tender, ok := f.tenders[tenderId]
	if !ok || tender.IsDeleted || tender.AwardVersion != expectedVersion || tender.AwardState != models.AwardDraft {
		return models.NewKindError(models.KindConcurrentModification,
			"award state changed concurrently, refetch and retry")
	}
	tender.AwardVersion++
	for _, row := range f.allocations {
		if row.TenderID != tenderId || row.LineItemID != lineItemId {
			continue
		}
		row.Quantity = quantities[row.OfferID]
	}
	return nil
}

func (f *fakeStore) FinalizeAward(ctx context.Context, tenderId string, expectedVersion int32) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	tender, ok := f.tenders[tenderId]
	if !ok || tender.IsDeleted || tender.AwardVersion != expectedVersion ||
		tender.AwardState != models.AwardDraft || tender.Status != models.ClosedTender {
		return models.NewKindError(models.KindConcurrentModification,
			"award state changed concurrently, refetch and retry")
	}
	tender.AwardState = models.AwardFinalized
	tender.Status = models.AwardedTender
	tender.AwardVersion++
	tender.Version++
	for _, row := range f.allocations {
		if row.TenderID == tenderId {
			row.State = models.FinalizedAllocation
		}
	}
	return nil
}

// fakeNotifier считает события для проверки "ровно один раз".
type fakeNotifier struct {
	mu        sync.Mutex
	published []models.TenderPublishedEvent
	finalized []models.AwardFinalizedEvent
}

func (n *fakeNotifier) TenderPublished(ctx context.Context, event models.TenderPublishedEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.published = append(n.published, event)
}

func (n *fakeNotifier) AwardFinalized(ctx context.Context, event models.AwardFinalizedEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.finalized = append(n.finalized, event)
}
