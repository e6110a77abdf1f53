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

// OfferHandler - структура для обработки HTTP-запросов по предложениям.
type OfferHandler struct {
	Service *services.OfferService
	Logger  *logrus.Logger
	Timeout time.Duration
}

// NewOfferHandler создает новый экземпляр OfferHandler.
func NewOfferHandler(service *services.OfferService, logger *logrus.Logger, timeout time.Duration) *OfferHandler {
	return &OfferHandler{
		Service: service,
		Logger:  logger,
		Timeout: timeout,
	}
}

func (h *OfferHandler) respondError(w http.ResponseWriter, err error, fallback string) {
	if errorResponse, ok := err.(*models.ErrorResponse); ok {
		h.Logger.Warn(err)
		utils.SendError(w, errorResponse)
		return
	}
	h.Logger.Error(err)
	utils.SendErrorResponse(w, http.StatusInternalServerError, fallback)
}

// CreateOffer обрабатывает запросы для подачи предложения.
func (h *OfferHandler) CreateOffer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid method, only POST is allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var offerReq models.OfferRequest
	if err := json.NewDecoder(r.Body).Decode(&offerReq); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	offer, err := h.Service.SubmitOffer(ctx, offerReq)
	if err != nil {
		h.respondError(w, err, "failed to submit offer")
		return
	}

	if err = utils.SendJSON(w, http.StatusCreated, offer); err != nil {
		h.Logger.Error(err)
	}
}

// GetOffer обрабатывает запросы для получения предложения по ID.
func (h *OfferHandler) GetOffer(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	offerId := r.PathValue("offerId")

	offer, err := h.Service.GetOffer(ctx, offerId)
	if err != nil {
		h.respondError(w, err, "failed to fetch offer")
		return
	}

	if err = utils.SendJSON(w, http.StatusOK, offer); err != nil {
		h.Logger.Error(err)
	}
}

// GetTenderOffers обрабатывает запросы для получения предложений тендера.
func (h *OfferHandler) GetTenderOffers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	tenderId := r.PathValue("tenderId")

	offers, err := h.Service.GetTenderOffers(ctx, tenderId)
	if err != nil {
		h.respondError(w, err, "failed to fetch offers")
		return
	}

	if err = utils.SendJSON(w, http.StatusOK, offers); err != nil {
		h.Logger.Error(err)
	}
}

// EvaluateOffer обрабатывает запросы для оценки предложения.
func (h *OfferHandler) EvaluateOffer(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	offerId := r.PathValue("offerId")

	var evalReq models.EvaluationRequest
	if err := json.NewDecoder(r.Body).Decode(&evalReq); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	offer, err := h.Service.EvaluateOffer(ctx, offerId, evalReq)
	if err != nil {
		h.respondError(w, err, "failed to evaluate offer")
		return
	}

	if err = utils.SendJSON(w, http.StatusOK, offer); err != nil {
		h.Logger.Error(err)
	}
}

// SelectWinner обрабатывает запросы для выбора предложения победителем.
func (h *OfferHandler) SelectWinner(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	offerId := r.PathValue("offerId")

	offer, err := h.Service.SelectWinningOffer(ctx, offerId)
	if err != nil {
		h.respondError(w, err, "failed to select winning offer")
		return
	}

	if err = utils.SendJSON(w, http.StatusOK, offer); err != nil {
		h.Logger.Error(err)
	}
}

// RejectOffer обрабатывает запросы для отклонения предложения.
func (h *OfferHandler) RejectOffer(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	offerId := r.PathValue("offerId")

	offer, err := h.Service.RejectOffer(ctx, offerId)
	if err != nil {
		h.respondError(w, err, "failed to reject offer")
		return
	}

	if err = utils.SendJSON(w, http.StatusOK, offer); err != nil {
		h.Logger.Error(err)
	}
}
