package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/senyabanana/procurement-service/internal/models"
	"github.com/senyabanana/procurement-service/internal/services"
	"github.com/senyabanana/procurement-service/internal/utils"

	"github.com/sirupsen/logrus"
)

// AwardHandler - структура для обработки HTTP-запросов распределения контракта.
type AwardHandler struct {
	Service *services.AwardService
	Logger  *logrus.Logger
	Timeout time.Duration
}

// NewAwardHandler создает новый экземпляр AwardHandler.
func NewAwardHandler(service *services.AwardService, logger *logrus.Logger, timeout time.Duration) *AwardHandler {
	return &AwardHandler{
		Service: service,
		Logger:  logger,
		Timeout: timeout,
	}
}

func (h *AwardHandler) respondError(w http.ResponseWriter, err error, fallback string) {
	if errorResponse, ok := err.(*models.ErrorResponse); ok {
		h.Logger.Warn(err)
		utils.SendError(w, errorResponse)
		return
	}
	h.Logger.Error(err)
	utils.SendErrorResponse(w, http.StatusInternalServerError, fallback)
}

// InitializeAward обрабатывает запросы инициализации распределения.
func (h *AwardHandler) InitializeAward(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	tenderId := r.PathValue("tenderId")

	details, err := h.Service.InitializeAward(ctx, tenderId)
	if err != nil {
		h.respondError(w, err, "failed to initialize award")
		return
	}

	if err = utils.SendJSON(w, http.StatusCreated, details); err != nil {
		h.Logger.Error(err)
	}
}

// DistributeLineItem обрабатывает запросы распределения одной позиции.
func (h *AwardHandler) DistributeLineItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	tenderId := r.PathValue("tenderId")
	lineItemId := r.PathValue("lineItemId")

	var distributeReq models.DistributeRequest
	if err := json.NewDecoder(r.Body).Decode(&distributeReq); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	details, err := h.Service.DistributeLineItem(ctx, tenderId, lineItemId, distributeReq.Allocations)
	if err != nil {
		h.respondError(w, err, "failed to distribute line item")
		return
	}

	if err = utils.SendJSON(w, http.StatusOK, details); err != nil {
		h.Logger.Error(err)
	}
}

// GetAwardDetails обрабатывает запросы проекции текущего распределения.
func (h *AwardHandler) GetAwardDetails(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	tenderId := r.PathValue("tenderId")

	details, err := h.Service.GetAwardDetails(ctx, tenderId)
	if err != nil {
		h.respondError(w, err, "failed to fetch award details")
		return
	}

	if err = utils.SendJSON(w, http.StatusOK, details); err != nil {
		h.Logger.Error(err)
	}
}

// FinalizeAward обрабатывает запросы фиксации распределения.
func (h *AwardHandler) FinalizeAward(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	tenderId := r.PathValue("tenderId")

	details, err := h.Service.FinalizeAward(ctx, tenderId)
	if err != nil {
		h.respondError(w, err, "failed to finalize award")
		return
	}

	if err = utils.SendJSON(w, http.StatusOK, details); err != nil {
		h.Logger.Error(err)
	}
}
