package services

import (
	"context"
	"net/http"
	"time"

	"github.com/senyabanana/procurement-service/internal/models"
	"github.com/senyabanana/procurement-service/internal/repository"
	"github.com/senyabanana/procurement-service/internal/utils"

	"github.com/sirupsen/logrus"
)

// allowedStatusTransitions - единственный источник истины по переходам
// жизненного цикла тендера. Переход в Awarded выполняется только через
// фиксацию распределения, прямой вызов UpdateTenderStatus его не делает.
var allowedStatusTransitions = map[models.TenderStatus][]models.TenderStatus{
	models.DraftTender:     {models.PublishedTender, models.CancelledTender},
	models.PublishedTender: {models.ClosedTender, models.CancelledTender},
	models.ClosedTender:    {models.AwardedTender, models.CancelledTender},
	models.AwardedTender:   {},
	models.CancelledTender: {},
}

// CanTransition проверяет допустимость перехода по таблице жизненного цикла.
func CanTransition(from, to models.TenderStatus) bool {
	for _, valid := range allowedStatusTransitions[from] {
		if valid == to {
			return true
		}
	}
	return false
}

// TenderService управляет жизненным циклом тендера.
type TenderService struct {
	Repo     repository.TenderRepository
	Notifier Notifier
	Logger   *logrus.Logger
}

// NewTenderService создаёт новый экземпляр TenderService.
func NewTenderService(repo repository.TenderRepository, notifier Notifier, logger *logrus.Logger) *TenderService {
	return &TenderService{Repo: repo, Notifier: notifier, Logger: logger}
}

// CreateTender создает новый тендер в статусе Draft.
func (s *TenderService) CreateTender(ctx context.Context, tenderReq models.TenderRequest) (*models.Tender, error) {
	if tenderReq.Name == "" || tenderReq.BuyerID == "" {
		return nil, models.NewKindError(models.KindValidation, "missing required fields: name or buyerId")
	}
	if len(tenderReq.LineItems) == 0 {
		return nil, models.NewKindError(models.KindValidation, "tender must have at least one line item")
	}
	for _, item := range tenderReq.LineItems {
		if item.Description == "" {
			return nil, models.NewKindError(models.KindValidation, "line item description must not be empty")
		}
		if item.Quantity <= 0 {
			return nil, models.NewKindError(models.KindValidation, "line item quantity must be a positive integer")
		}
	}
	if tenderReq.BudgetMin < 0 || tenderReq.BudgetMax < 0 || tenderReq.BudgetMin > tenderReq.BudgetMax {
		return nil, models.NewKindError(models.KindValidation, "invalid budget range")
	}

	tender, err := s.Repo.CreateTender(ctx, tenderReq)
	if err != nil {
		return nil, err
	}
	s.Logger.WithFields(logrus.Fields{
		"tender_id": tender.ID,
		"buyer_id":  tender.BuyerID,
	}).Info("tender created")
	return tender, nil
}

// FetchTenders получает список тендеров с фильтром по статусам.
func (s *TenderService) FetchTenders(ctx context.Context, limitStr, offsetStr string, statuses []string) ([]models.Tender, error) {
	limit, offset, err := utils.ParseLimitOffset(limitStr, offsetStr)
	if err != nil {
		return nil, models.NewErrorResponse(http.StatusBadRequest, err.Error())
	}
	for _, status := range statuses {
		if _, ok := allowedStatusTransitions[models.TenderStatus(status)]; !ok {
			return nil, models.NewKindError(models.KindValidation, "unsupported tender status: "+status)
		}
	}
	return s.Repo.GetTenders(ctx, limit, offset, statuses)
}

// GetTender получает тендер по ID.
func (s *TenderService) GetTender(ctx context.Context, tenderId string) (*models.Tender, error) {
	if tenderId == "" {
		return nil, models.NewKindError(models.KindValidation, "missing required parameter: tenderId")
	}
	return s.Repo.GetTenderByID(ctx, tenderId)
}

// PublishTender публикует тендер: Draft -> Published.
func (s *TenderService) PublishTender(ctx context.Context, tenderId string) (*models.Tender, error) {
	tender, err := s.Repo.GetTenderByID(ctx, tenderId)
	if err != nil {
		return nil, err
	}
	if tender.Status != models.DraftTender {
		return nil, models.NewInvalidTransition(string(tender.Status), string(models.PublishedTender))
	}
	if !tender.Deadline.After(time.Now().UTC()) {
		return nil, models.NewKindError(models.KindValidation, "deadline must be in the future")
	}
	for _, item := range tender.LineItems {
		if item.Quantity <= 0 {
			return nil, models.NewKindError(models.KindValidation, "all line items must have positive quantity")
		}
	}

	updated, err := s.Repo.UpdateTenderStatus(ctx, tenderId, models.DraftTender, models.PublishedTender)
	if err != nil {
		return nil, err
	}

	s.Notifier.TenderPublished(ctx, models.TenderPublishedEvent{
		TenderID:  updated.ID,
		Name:      updated.Name,
		BudgetMin: updated.BudgetMin,
		BudgetMax: updated.BudgetMax,
		Currency:  updated.Currency,
		Deadline:  updated.Deadline,
	})
	s.Logger.WithField("tender_id", updated.ID).Info("tender published")
	return updated, nil
}

// CloseTender завершает прием предложений: Published -> Closed.
// Закрытие допустимо по явному запросу владельца либо после дедлайна.
func (s *TenderService) CloseTender(ctx context.Context, tenderId string) (*models.Tender, error) {
	tender, err := s.Repo.GetTenderByID(ctx, tenderId)
	if err != nil {
		return nil, err
	}
	if tender.Status != models.PublishedTender {
		return nil, models.NewInvalidTransition(string(tender.Status), string(models.ClosedTender))
	}

	updated, err := s.Repo.UpdateTenderStatus(ctx, tenderId, models.PublishedTender, models.ClosedTender)
	if err != nil {
		return nil, err
	}
	s.Logger.WithField("tender_id", updated.ID).Info("tender closed")
	return updated, nil
}

// CancelTender отменяет тендер из любого нетерминального статуса.
func (s *TenderService) CancelTender(ctx context.Context, tenderId string) (*models.Tender, error) {
	tender, err := s.Repo.GetTenderByID(ctx, tenderId)
	if err != nil {
		return nil, err
	}
	if !CanTransition(tender.Status, models.CancelledTender) {
		return nil, models.NewInvalidTransition(string(tender.Status), string(models.CancelledTender))
	}

	updated, err := s.Repo.UpdateTenderStatus(ctx, tenderId, tender.Status, models.CancelledTender)
	if err != nil {
		return nil, err
	}
	s.Logger.WithField("tender_id", updated.ID).Info("tender cancelled")
	return updated, nil
}

// DeleteTender помечает тендер удаленным. Допустимо только для черновиков
// и отмененных тендеров: у опубликованного тендера уже могут быть живые
// предложения, а контракт по состоявшемуся тендеру нельзя стереть.
func (s *TenderService) DeleteTender(ctx context.Context, tenderId string) error {
	tender, err := s.Repo.GetTenderByID(ctx, tenderId)
	if err != nil {
		return err
	}
	if tender.Status != models.DraftTender && tender.Status != models.CancelledTender {
		return models.NewInvalidTransition(string(tender.Status), "Deleted")
	}
	if err := s.Repo.SoftDeleteTender(ctx, tenderId); err != nil {
		return err
	}
	s.Logger.WithField("tender_id", tenderId).Info("tender deleted")
	return nil
}
