package models

import "time"

type OfferStatus string // Статус предложения

const (
	SubmittedOffer OfferStatus = "Submitted" // Предложение подано поставщиком
	EvaluatedOffer OfferStatus = "Evaluated" // Покупатель выставил оценку
	SelectedOffer  OfferStatus = "Selected"  // Предложение выбрано победителем целиком
	RejectedOffer  OfferStatus = "Rejected"  // Предложение отклонено
)

// Offer представляет модель предложения поставщика.
type Offer struct {
	ID          string      `json:"id"`
	TenderID    string      `json:"tenderId"`
	SupplierID  string      `json:"supplierId"`
	Status      OfferStatus `json:"status"`
	TotalAmount float64     `json:"totalAmount"`
	Currency    string      `json:"currency"`
	Score       *float64    `json:"score,omitempty"`
	Notes       string      `json:"notes,omitempty"`
	Rank        *int        `json:"rank,omitempty"`
	SubmittedAt time.Time   `json:"submittedAt"`
	Items       []OfferItem `json:"items"`
}

// OfferItem представляет ставку предложения по одной позиции тендера.
type OfferItem struct {
	LineItemID string  `json:"lineItemId"`
	UnitPrice  float64 `json:"unitPrice"`
	Quantity   int     `json:"quantity"`
}

// OfferRequest представляет структуру запроса для подачи предложения.
type OfferRequest struct {
	TenderID    string      `json:"tenderId"`
	SupplierID  string      `json:"supplierId"`
	TotalAmount float64     `json:"totalAmount"`
	Currency    string      `json:"currency"`
	Items       []OfferItem `json:"items"`
}

// EvaluationRequest представляет структуру запроса для оценки предложения.
type EvaluationRequest struct {
	Score float64 `json:"score"`
	Notes string  `json:"notes"`
}
