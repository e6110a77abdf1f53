package models

type AwardState string // Состояние распределения контракта по тендеру

const (
	AwardNotInitialized AwardState = "NotInitialized" // Распределение не начато
	AwardDraft          AwardState = "Draft"          // Распределение идет, можно менять
	AwardFinalized      AwardState = "Finalized"      // Распределение зафиксировано
)

type AllocationState string // Состояние строки распределения

const (
	DraftAllocation     AllocationState = "Draft"
	FinalizedAllocation AllocationState = "Finalized"
)

// AwardAllocation представляет количество позиции, закрепленное за предложением.
type AwardAllocation struct {
	TenderID   string          `json:"tenderId"`
	LineItemID string          `json:"lineItemId"`
	OfferID    string          `json:"offerId"`
	SupplierID string          `json:"supplierId"`
	Quantity   int             `json:"quantity"`
	UnitPrice  float64         `json:"unitPrice"`
	State      AllocationState `json:"state"`
}

// AllocationRequest представляет одну пару (предложение, количество) в запросе распределения.
type AllocationRequest struct {
	OfferID  string `json:"offerId"`
	Quantity int    `json:"quantity"`
}

// DistributeRequest представляет структуру запроса на распределение позиции.
type DistributeRequest struct {
	Allocations []AllocationRequest `json:"allocations"`
}

// AwardDetails - проекция текущего распределения по тендеру.
type AwardDetails struct {
	TenderID       string          `json:"tenderId"`
	State          AwardState      `json:"state"`
	LineItems      []LineItemAward `json:"lineItems"`
	SupplierTotals []SupplierTotal `json:"supplierTotals"`
}

// LineItemAward - распределение одной позиции тендера.
type LineItemAward struct {
	LineItemID  string             `json:"lineItemId"`
	Description string             `json:"description"`
	Unit        string             `json:"unit"`
	Requested   int                `json:"requested"`
	Allocated   int                `json:"allocated"`
	Remaining   int                `json:"remaining"`
	Allocations []AllocationDetail `json:"allocations"`
}

// AllocationDetail - одна строка распределения позиции.
type AllocationDetail struct {
	OfferID    string  `json:"offerId"`
	SupplierID string  `json:"supplierId"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unitPrice"`
}

// SupplierTotal - итог по поставщику по всем позициям тендера.
type SupplierTotal struct {
	SupplierID string  `json:"supplierId"`
	Quantity   int     `json:"quantity"`
	Amount     float64 `json:"amount"`
}

// AwardFinalizedEvent - событие фиксации распределения для внешних сервисов
// (генерация заказов на поставку, уведомления). Содержит только строки
// с ненулевым количеством.
type AwardFinalizedEvent struct {
	TenderID string               `json:"tenderId"`
	Lines    []AwardFinalizedLine `json:"lines"`
}

// AwardFinalizedLine - одна строка события фиксации.
type AwardFinalizedLine struct {
	SupplierID string  `json:"supplierId"`
	OfferID    string  `json:"offerId"`
	LineItemID string  `json:"lineItemId"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unitPrice"`
}
