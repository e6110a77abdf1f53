package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/senyabanana/procurement-service/internal/models"
	"github.com/senyabanana/procurement-service/internal/repository"

	"github.com/sirupsen/logrus"
)

// EvaluationWeights - веса составного ранга предложения.
type EvaluationWeights struct {
	Price    float64 // Доля ценовой конкурентности
	Score    float64 // Доля ручной оценки покупателя
	MaxScore float64 // Верхняя граница ручной оценки
}

// OfferService отвечает за подачу, оценку и ранжирование предложений.
type OfferService struct {
	Repo    repository.OfferRepository
	Tenders repository.TenderRepository
	Weights EvaluationWeights
	Logger  *logrus.Logger
}

// NewOfferService создает новый экземпляр OfferService.
func NewOfferService(repo repository.OfferRepository, tenders repository.TenderRepository, weights EvaluationWeights, logger *logrus.Logger) *OfferService {
	return &OfferService{Repo: repo, Tenders: tenders, Weights: weights, Logger: logger}
}

// SubmitOffer принимает предложение поставщика по опубликованному тендеру.
func (s *OfferService) SubmitOffer(ctx context.Context, offerReq models.OfferRequest) (*models.Offer, error) {
	if offerReq.TenderID == "" || offerReq.SupplierID == "" {
		return nil, models.NewKindError(models.KindValidation, "missing required fields: tenderId or supplierId")
	}
	if len(offerReq.Items) == 0 {
		return nil, models.NewKindError(models.KindValidation, "offer must bid on at least one line item")
	}

	tender, err := s.Tenders.GetTenderByID(ctx, offerReq.TenderID)
	if err != nil {
		return nil, err
	}
	if tender.Status != models.PublishedTender {
		return nil, models.NewInvalidTransition(string(tender.Status), "offer submission")
	}
	if !tender.Deadline.After(time.Now().UTC()) {
		return nil, models.NewKindError(models.KindValidation, "tender deadline has passed")
	}

	lineItems := make(map[string]bool, len(tender.LineItems))
	for _, item := range tender.LineItems {
		lineItems[item.ID] = true
	}

	var total float64
	seen := make(map[string]bool, len(offerReq.Items))
	for _, item := range offerReq.Items {
		if !lineItems[item.LineItemID] {
			return nil, models.NewKindError(models.KindValidation,
				fmt.Sprintf("unknown line item: %s", item.LineItemID))
		}
		if seen[item.LineItemID] {
			return nil, models.NewKindError(models.KindValidation,
				fmt.Sprintf("duplicate bid for line item: %s", item.LineItemID))
		}
		seen[item.LineItemID] = true
		if item.Quantity <= 0 {
			return nil, models.NewKindError(models.KindValidation, "bid quantity must be a positive integer")
		}
		if item.UnitPrice <= 0 {
			return nil, models.NewKindError(models.KindValidation, "bid unit price must be positive")
		}
		total += item.UnitPrice * float64(item.Quantity)
	}
	if math.Abs(total-offerReq.TotalAmount) > 0.01 {
		return nil, models.NewKindError(models.KindValidation,
			fmt.Sprintf("total amount %.2f does not match sum of bids %.2f", offerReq.TotalAmount, total))
	}

	offer, err := s.Repo.CreateOffer(ctx, offerReq)
	if err != nil {
		return nil, err
	}
	s.Logger.WithFields(logrus.Fields{
		"offer_id":    offer.ID,
		"tender_id":   offer.TenderID,
		"supplier_id": offer.SupplierID,
	}).Info("offer submitted")
	return offer, nil
}

// GetOffer получает предложение по ID.
func (s *OfferService) GetOffer(ctx context.Context, offerId string) (*models.Offer, error) {
	if offerId == "" {
		return nil, models.NewKindError(models.KindValidation, "missing required parameter: offerId")
	}
	return s.Repo.GetOfferByID(ctx, offerId)
}

// GetTenderOffers получает все предложения по тендеру.
func (s *OfferService) GetTenderOffers(ctx context.Context, tenderId string) ([]models.Offer, error) {
	if _, err := s.Tenders.GetTenderByID(ctx, tenderId); err != nil {
		return nil, err
	}
	return s.Repo.GetTenderOffers(ctx, tenderId)
}

// EvaluateOffer записывает оценку покупателя и пересчитывает ранги тендера.
func (s *OfferService) EvaluateOffer(ctx context.Context, offerId string, evalReq models.EvaluationRequest) (*models.Offer, error) {
	offer, err := s.Repo.GetOfferByID(ctx, offerId)
	if err != nil {
		return nil, err
	}
	if offer.Status == models.SelectedOffer || offer.Status == models.RejectedOffer {
		return nil, models.NewInvalidTransition(string(offer.Status), string(models.EvaluatedOffer))
	}
	if evalReq.Score < 0 || evalReq.Score > s.Weights.MaxScore {
		return nil, models.NewKindError(models.KindValidation,
			fmt.Sprintf("score must be within [0, %g]", s.Weights.MaxScore))
	}

	updated, err := s.Repo.UpdateEvaluation(ctx, offerId, evalReq.Score, evalReq.Notes)
	if err != nil {
		return nil, err
	}
	if err := s.recomputeRankings(ctx, updated.TenderID); err != nil {
		return nil, err
	}
	s.Logger.WithFields(logrus.Fields{
		"offer_id": offerId,
		"score":    evalReq.Score,
	}).Info("offer evaluated")
	return s.Repo.GetOfferByID(ctx, offerId)
}

// SelectWinningOffer выбирает предложение победителем целиком. Грубая операция
// для тендеров без частичного распределения, строк распределения не создает.
func (s *OfferService) SelectWinningOffer(ctx context.Context, offerId string) (*models.Offer, error) {
	return s.decideOffer(ctx, offerId, models.SelectedOffer)
}

// RejectOffer отклоняет предложение.
func (s *OfferService) RejectOffer(ctx context.Context, offerId string) (*models.Offer, error) {
	return s.decideOffer(ctx, offerId, models.RejectedOffer)
}

func (s *OfferService) decideOffer(ctx context.Context, offerId string, decision models.OfferStatus) (*models.Offer, error) {
	offer, err := s.Repo.GetOfferByID(ctx, offerId)
	if err != nil {
		return nil, err
	}
	if offer.Status != models.SubmittedOffer && offer.Status != models.EvaluatedOffer {
		return nil, models.NewInvalidTransition(string(offer.Status), string(decision))
	}

	updated, err := s.Repo.UpdateOfferStatus(ctx, offerId, decision)
	if err != nil {
		return nil, err
	}
	if err := s.recomputeRankings(ctx, updated.TenderID); err != nil {
		return nil, err
	}
	s.Logger.WithFields(logrus.Fields{
		"offer_id": offerId,
		"decision": decision,
	}).Info("offer decision submitted")
	return updated, nil
}

// recomputeRankings детерминированно пересчитывает ранги предложений тендера.
// Составной ранг: нормированная ценовая конкурентность (минимальная сумма
// получает 1.0) и ручная оценка, в долях Weights. Ничьи разрешаются ранним
// временем подачи, затем ID предложения. Вызывается на каждом изменении
// состояния оценки, результат никогда не кэшируется.
func (s *OfferService) recomputeRankings(ctx context.Context, tenderId string) error {
	offers, err := s.Repo.GetTenderOffers(ctx, tenderId)
	if err != nil {
		return err
	}

	var eligible []models.Offer
	minTotal := math.MaxFloat64
	for _, offer := range offers {
		if offer.Status != models.SubmittedOffer && offer.Status != models.EvaluatedOffer {
			continue
		}
		eligible = append(eligible, offer)
		if offer.TotalAmount < minTotal {
			minTotal = offer.TotalAmount
		}
	}
	if len(eligible) == 0 {
		return s.Repo.UpdateRankings(ctx, tenderId, map[string]int{})
	}

	composite := func(offer models.Offer) float64 {
		priceScore := 0.0
		if offer.TotalAmount > 0 {
			priceScore = minTotal / offer.TotalAmount
		}
		manualScore := 0.0
		if offer.Score != nil {
			manualScore = *offer.Score / s.Weights.MaxScore
		}
		return s.Weights.Price*priceScore + s.Weights.Score*manualScore
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		ci, cj := composite(eligible[i]), composite(eligible[j])
		if ci != cj {
			return ci > cj
		}
		if !eligible[i].SubmittedAt.Equal(eligible[j].SubmittedAt) {
			return eligible[i].SubmittedAt.Before(eligible[j].SubmittedAt)
		}
		return eligible[i].ID < eligible[j].ID
	})

	ranks := make(map[string]int, len(eligible))
	for i, offer := range eligible {
		ranks[offer.ID] = i + 1
	}
	return s.Repo.UpdateRankings(ctx, tenderId, ranks)
}
