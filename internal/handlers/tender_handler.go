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

// TenderHandler - структура для обработки HTTP-запросов жизненного цикла тендера.
type TenderHandler struct {
	Service *services.TenderService
	Logger  *logrus.Logger
	Timeout time.Duration
}

// NewTenderHandler создаёт новый экземпляр TenderHandler.
func NewTenderHandler(service *services.TenderService, logger *logrus.Logger, timeout time.Duration) *TenderHandler {
	return &TenderHandler{
		Service: service,
		Logger:  logger,
		Timeout: timeout,
	}
}

func (h *TenderHandler) respondError(w http.ResponseWriter, err error, fallback string) {
	if errorResponse, ok := err.(*models.ErrorResponse); ok {
		h.Logger.Warn(err)
		utils.SendError(w, errorResponse)
		return
	}
	h.Logger.Error(err)
	utils.SendErrorResponse(w, http.StatusInternalServerError, fallback)
}

// GetTenders обрабатывает запросы для получения списка тендеров.
func (h *TenderHandler) GetTenders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid method, only GET is allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	limitStr := r.URL.Query().Get("limit")
	offsetStr := r.URL.Query().Get("offset")
	statuses := r.URL.Query()["status"]

	tenders, err := h.Service.FetchTenders(ctx, limitStr, offsetStr, statuses)
	if err != nil {
		h.respondError(w, err, "failed to fetch tenders")
		return
	}

	if err = utils.SendJSON(w, http.StatusOK, tenders); err != nil {
		h.Logger.Error(err)
	}
}

// GetTender обрабатывает запросы для получения тендера по ID.
func (h *TenderHandler) GetTender(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	tenderId := r.PathValue("tenderId")

	tender, err := h.Service.GetTender(ctx, tenderId)
	if err != nil {
		h.respondError(w, err, "failed to fetch tender")
		return
	}

	if err = utils.SendJSON(w, http.StatusOK, tender); err != nil {
		h.Logger.Error(err)
	}
}

// CreateTender обрабатывает запросы для создания тендера.
func (h *TenderHandler) CreateTender(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid method, only POST is allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var tenderReq models.TenderRequest
	if err := json.NewDecoder(r.Body).Decode(&tenderReq); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tender, err := h.Service.CreateTender(ctx, tenderReq)
	if err != nil {
		h.respondError(w, err, "failed to create tender")
		return
	}

	if err = utils.SendJSON(w, http.StatusCreated, tender); err != nil {
		h.Logger.Error(err)
	}
}

// PublishTender обрабатывает запросы для публикации тендера.
func (h *TenderHandler) PublishTender(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	tenderId := r.PathValue("tenderId")

	tender, err := h.Service.PublishTender(ctx, tenderId)
	if err != nil {
		h.respondError(w, err, "failed to publish tender")
		return
	}

	if err = utils.SendJSON(w, http.StatusOK, tender); err != nil {
		h.Logger.Error(err)
	}
}

// CloseTender обрабатывает запросы для завершения приема предложений.
func (h *TenderHandler) CloseTender(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	tenderId := r.PathValue("tenderId")

	tender, err := h.Service.CloseTender(ctx, tenderId)
	if err != nil {
		h.respondError(w, err, "failed to close tender")
		return
	}

	if err = utils.SendJSON(w, http.StatusOK, tender); err != nil {
		h.Logger.Error(err)
	}
}

// CancelTender обрабатывает запросы для отмены тендера.
func (h *TenderHandler) CancelTender(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	tenderId := r.PathValue("tenderId")

	tender, err := h.Service.CancelTender(ctx, tenderId)
	if err != nil {
		h.respondError(w, err, "failed to cancel tender")
		return
	}

	if err = utils.SendJSON(w, http.StatusOK, tender); err != nil {
		h.Logger.Error(err)
	}
}

// DeleteTender обрабатывает запросы для мягкого удаления тендера.
func (h *TenderHandler) DeleteTender(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	tenderId := r.PathValue("tenderId")

	if err := h.Service.DeleteTender(ctx, tenderId); err != nil {
		h.respondError(w, err, "failed to delete tender")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
