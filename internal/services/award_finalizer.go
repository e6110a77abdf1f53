package services

import (
	"context"
	"fmt"

	"github.com/senyabanana/procurement-service/internal/models"

	"github.com/sirupsen/logrus"
)

// FinalizeAward фиксирует распределение: все строки переходят в Finalized,
// тендер в Awarded, одной транзакцией. Повторный вызов по состоявшемуся
// тендеру возвращает AlreadyFinalized и ничего не пишет; событие фиксации
// уходит ровно один раз, уже после коммита.
func (s *AwardService) FinalizeAward(ctx context.Context, tenderId string) (*models.AwardDetails, error) {
	tender, err := s.Tenders.GetTenderByID(ctx, tenderId)
	if err != nil {
		return nil, err
	}
	if tender.AwardState == models.AwardFinalized {
		return nil, models.NewKindError(models.KindAlreadyFinalized, "award is already finalized")
	}
	if tender.AwardState != models.AwardDraft {
		return nil, models.NewInvalidTransition(string(tender.AwardState), string(models.AwardFinalized))
	}

	rows, err := s.Repo.GetAllocations(ctx, tenderId)
	if err != nil {
		return nil, err
	}

	if s.RequireFullAllocation {
		allocated := make(map[string]int)
		for _, row := range rows {
			allocated[row.LineItemID] += row.Quantity
		}
		for _, item := range tender.LineItems {
			if allocated[item.ID] < item.Quantity {
				return nil, models.NewKindError(models.KindValidation,
					fmt.Sprintf("line item %s is not fully allocated: %d of %d", item.ID, allocated[item.ID], item.Quantity))
			}
		}
	}

	if err := s.Repo.FinalizeAward(ctx, tenderId, tender.AwardVersion); err != nil {
		return nil, err
	}

	event := models.AwardFinalizedEvent{TenderID: tenderId}
	for _, row := range rows {
		if row.Quantity == 0 {
			continue
		}
		event.Lines = append(event.Lines, models.AwardFinalizedLine{
			SupplierID: row.SupplierID,
			OfferID:    row.OfferID,
			LineItemID: row.LineItemID,
			Quantity:   row.Quantity,
			UnitPrice:  row.UnitPrice,
		})
	}
	s.Notifier.AwardFinalized(ctx, event)
	s.Logger.WithFields(logrus.Fields{
		"tender_id": tenderId,
		"lines":     len(event.Lines),
	}).Info("award finalized")

	return s.GetAwardDetails(ctx, tenderId)
}
