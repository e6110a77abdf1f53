package models

import "time"

type TenderStatus string // Статус тендера

const (
	DraftTender     TenderStatus = "Draft"     // Тендер создан и не виден поставщикам
	PublishedTender TenderStatus = "Published" // Тендер опубликован, идет прием предложений
	ClosedTender    TenderStatus = "Closed"    // Прием предложений завершен
	AwardedTender   TenderStatus = "Awarded"   // Распределение контракта зафиксировано
	CancelledTender TenderStatus = "Cancelled" // Тендер отменен
)

// Tender представляет модель тендера.
type Tender struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Description  string       `json:"description"`
	Status       TenderStatus `json:"status"`
	BuyerID      string       `json:"buyerId"`
	Deadline     time.Time    `json:"deadline"`
	BudgetMin    float64      `json:"budgetMin"`
	BudgetMax    float64      `json:"budgetMax"`
	Currency     string       `json:"currency"`
	IsPublic     bool         `json:"isPublic"`
	IsDeleted    bool         `json:"-"`
	AwardState   AwardState   `json:"awardState"`
	AwardVersion int32        `json:"-"`
	Version      int32        `json:"version"`
	CreatedAt    time.Time    `json:"createdAt"`
	LineItems    []LineItem   `json:"lineItems"`
}

// LineItem представляет одну позицию тендера.
type LineItem struct {
	ID          string `json:"id"`
	TenderID    string `json:"-"`
	Position    int    `json:"position"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	Unit        string `json:"unit"`
}

// TenderRequest представляет структуру запроса для создания тендера.
type TenderRequest struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	BuyerID     string            `json:"buyerId"`
	Deadline    time.Time         `json:"deadline"`
	BudgetMin   float64           `json:"budgetMin"`
	BudgetMax   float64           `json:"budgetMax"`
	Currency    string            `json:"currency"`
	IsPublic    bool              `json:"isPublic"`
	LineItems   []LineItemRequest `json:"lineItems"`
}

// LineItemRequest представляет одну позицию в запросе на создание тендера.
type LineItemRequest struct {
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	Unit        string `json:"unit"`
}

// TenderPublishedEvent - событие публикации тендера для внешнего сервиса уведомлений.
type TenderPublishedEvent struct {
	TenderID  string    `json:"tenderId"`
	Name      string    `json:"name"`
	BudgetMin float64   `json:"budgetMin"`
	BudgetMax float64   `json:"budgetMax"`
	Currency  string    `json:"currency"`
	Deadline  time.Time `json:"deadline"`
}
