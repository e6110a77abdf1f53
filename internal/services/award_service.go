package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/senyabanana/procurement-service/internal/models"
	"github.com/senyabanana/procurement-service/internal/repository"

	"github.com/sirupsen/logrus"
)

// AwardService управляет частичным распределением контракта по тендеру:
// initialize -> distribute (многократно) -> finalize.
type AwardService struct {
	Repo    repository.AwardRepository
	Tenders repository.TenderRepository
	Offers  repository.OfferRepository

	// Требовать ли полного распределения каждой позиции перед фиксацией.
	RequireFullAllocation bool

	Notifier Notifier
	Logger   *logrus.Logger
}

// NewAwardService создает новый экземпляр AwardService.
func NewAwardService(repo repository.AwardRepository, tenders repository.TenderRepository, offers repository.OfferRepository, requireFullAllocation bool, notifier Notifier, logger *logrus.Logger) *AwardService {
	return &AwardService{
		Repo:                  repo,
		Tenders:               tenders,
		Offers:                offers,
		RequireFullAllocation: requireFullAllocation,
		Notifier:              notifier,
		Logger:                logger,
	}
}

// InitializeAward снимает слепок допущенных предложений: по одной нулевой
// строке распределения на каждую пару (позиция, ставка допущенного
// предложения). Допущены предложения в статусе Submitted или Evaluated.
// Повторная инициализация не затирает прогресс покупателя.
func (s *AwardService) InitializeAward(ctx context.Context, tenderId string) (*models.AwardDetails, error) {
	tender, err := s.Tenders.GetTenderByID(ctx, tenderId)
	if err != nil {
		return nil, err
	}
	if tender.AwardState != models.AwardNotInitialized {
		return nil, models.NewKindError(models.KindAlreadyInitialized, "award is already initialized")
	}
	if tender.Status != models.ClosedTender {
		return nil, models.NewInvalidTransition(string(tender.Status), "award initialization")
	}

	offers, err := s.Offers.GetTenderOffers(ctx, tenderId)
	if err != nil {
		return nil, err
	}

	var rows []models.AwardAllocation
	for _, item := range tender.LineItems {
		for _, offer := range offers {
			if offer.Status != models.SubmittedOffer && offer.Status != models.EvaluatedOffer {
				continue
			}
			for _, bid := range offer.Items {
				if bid.LineItemID != item.ID {
					continue
				}
				rows = append(rows, models.AwardAllocation{
					TenderID:   tenderId,
					LineItemID: item.ID,
					OfferID:    offer.ID,
					SupplierID: offer.SupplierID,
					Quantity:   0,
					UnitPrice:  bid.UnitPrice,
					State:      models.DraftAllocation,
				})
			}
		}
	}
	if len(rows) == 0 {
		return nil, models.NewKindError(models.KindValidation, "no eligible offers to initialize award from")
	}

	if err := s.Repo.InitializeAward(ctx, tenderId, rows, tender.AwardVersion); err != nil {
		return nil, err
	}
	s.Logger.WithFields(logrus.Fields{
		"tender_id":   tenderId,
		"allocations": len(rows),
	}).Info("award initialized")
	return s.GetAwardDetails(ctx, tenderId)
}

// DistributeLineItem заменяет распределение одной позиции целиком.
// Проверки выполняются до записи, при любой ошибке запись не происходит.
func (s *AwardService) DistributeLineItem(ctx context.Context, tenderId, lineItemId string, allocations []models.AllocationRequest) (*models.AwardDetails, error) {
	tender, err := s.Tenders.GetTenderByID(ctx, tenderId)
	if err != nil {
		return nil, err
	}
	if tender.AwardState != models.AwardDraft {
		return nil, models.NewInvalidTransition(string(tender.AwardState), "distribution")
	}

	var lineItem *models.LineItem
	for i := range tender.LineItems {
		if tender.LineItems[i].ID == lineItemId {
			lineItem = &tender.LineItems[i]
			break
		}
	}
	if lineItem == nil {
		return nil, models.NewKindError(models.KindNotFound, "line item not found")
	}

	rows, err := s.Repo.GetAllocations(ctx, tenderId)
	if err != nil {
		return nil, err
	}
	allocatable := make(map[string]bool)
	for _, row := range rows {
		if row.LineItemID == lineItemId {
			allocatable[row.OfferID] = true
		}
	}

	offers, err := s.Offers.GetTenderOffers(ctx, tenderId)
	if err != nil {
		return nil, err
	}
	bidQuantities := make(map[string]int)
	for _, offer := range offers {
		for _, bid := range offer.Items {
			if bid.LineItemID == lineItemId {
				bidQuantities[offer.ID] = bid.Quantity
			}
		}
	}

	quantities := make(map[string]int, len(allocations))
	total := 0
	for _, alloc := range allocations {
		if alloc.OfferID == "" {
			return nil, models.NewKindError(models.KindValidation, "allocation is missing offerId")
		}
		if !allocatable[alloc.OfferID] {
			return nil, models.NewKindError(models.KindValidation,
				fmt.Sprintf("offer %s has no allocation row for this line item", alloc.OfferID))
		}
		if _, ok := quantities[alloc.OfferID]; ok {
			return nil, models.NewKindError(models.KindValidation,
				fmt.Sprintf("duplicate allocation for offer %s", alloc.OfferID))
		}
		if alloc.Quantity < 0 {
			return nil, models.NewKindError(models.KindValidation, "allocation quantity must be non-negative")
		}
		quantities[alloc.OfferID] = alloc.Quantity
		total += alloc.Quantity
	}
	if total > lineItem.Quantity {
		return nil, models.NewKindError(models.KindOverAllocation,
			fmt.Sprintf("allocated quantity %d exceeds requested quantity %d", total, lineItem.Quantity))
	}
	for offerId, quantity := range quantities {
		if quantity > bidQuantities[offerId] {
			return nil, models.NewKindError(models.KindOverAllocation,
				fmt.Sprintf("allocation %d exceeds bid quantity %d of offer %s", quantity, bidQuantities[offerId], offerId))
		}
	}

	if err := s.Repo.ReplaceLineItemAllocations(ctx, tenderId, lineItemId, quantities, tender.AwardVersion); err != nil {
		return nil, err
	}
	s.Logger.WithFields(logrus.Fields{
		"tender_id":    tenderId,
		"line_item_id": lineItemId,
		"allocated":    total,
	}).Info("line item distributed")
	return s.GetAwardDetails(ctx, tenderId)
}

// GetAwardDetails возвращает проекцию текущего распределения: по каждой
// позиции запрошенное, распределенное и остаток, плюс итоги по поставщикам.
// Всегда отражает последнее зафиксированное распределение.
func (s *AwardService) GetAwardDetails(ctx context.Context, tenderId string) (*models.AwardDetails, error) {
	tender, err := s.Tenders.GetTenderByID(ctx, tenderId)
	if err != nil {
		return nil, err
	}

	rows, err := s.Repo.GetAllocations(ctx, tenderId)
	if err != nil {
		return nil, err
	}

	byLineItem := make(map[string][]models.AwardAllocation)
	for _, row := range rows {
		byLineItem[row.LineItemID] = append(byLineItem[row.LineItemID], row)
	}

	details := models.AwardDetails{
		TenderID: tenderId,
		State:    tender.AwardState,
	}
	supplierQuantities := make(map[string]int)
	supplierAmounts := make(map[string]float64)

	for _, item := range tender.LineItems {
		lineAward := models.LineItemAward{
			LineItemID:  item.ID,
			Description: item.Description,
			Unit:        item.Unit,
			Requested:   item.Quantity,
		}
		for _, row := range byLineItem[item.ID] {
			lineAward.Allocated += row.Quantity
			lineAward.Allocations = append(lineAward.Allocations, models.AllocationDetail{
				OfferID:    row.OfferID,
				SupplierID: row.SupplierID,
				Quantity:   row.Quantity,
				UnitPrice:  row.UnitPrice,
			})
			if row.Quantity > 0 {
				supplierQuantities[row.SupplierID] += row.Quantity
				supplierAmounts[row.SupplierID] += float64(row.Quantity) * row.UnitPrice
			}
		}
		lineAward.Remaining = lineAward.Requested - lineAward.Allocated
		details.LineItems = append(details.LineItems, lineAward)
	}

	for supplierId, quantity := range supplierQuantities {
		details.SupplierTotals = append(details.SupplierTotals, models.SupplierTotal{
			SupplierID: supplierId,
			Quantity:   quantity,
			Amount:     supplierAmounts[supplierId],
		})
	}
	sort.Slice(details.SupplierTotals, func(i, j int) bool {
		totals := details.SupplierTotals
		if totals[i].Amount != totals[j].Amount {
			return totals[i].Amount > totals[j].Amount
		}
		return totals[i].SupplierID < totals[j].SupplierID
	})

	return &details, nil
}
