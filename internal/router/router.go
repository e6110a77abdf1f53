package router

import (
	"net/http"

	"github.com/senyabanana/procurement-service/internal/auth"
	"github.com/senyabanana/procurement-service/internal/handlers"
)

// InitRoutes собирает таблицу маршрутов. Каждый маршрут движка обернут
// проверкой права внешним guard-ом; обработчики считают авторизацию пройденной.
func InitRoutes(tenderHandler *handlers.TenderHandler, offerHandler *handlers.OfferHandler, awardHandler *handlers.AwardHandler, guard *auth.Middleware) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/ping", handlers.PingHandler)

	mux.HandleFunc("GET /api/tenders", guard.Require(auth.ViewTender, tenderHandler.GetTenders))
	mux.HandleFunc("/api/tenders/new", guard.Require(auth.CreateTender, tenderHandler.CreateTender))
	mux.HandleFunc("GET /api/tenders/{tenderId}", guard.Require(auth.ViewTender, tenderHandler.GetTender))
	mux.HandleFunc("DELETE /api/tenders/{tenderId}", guard.Require(auth.EditTender, tenderHandler.DeleteTender))
	mux.HandleFunc("POST /api/tenders/{tenderId}/publish", guard.Require(auth.CreateTender, tenderHandler.PublishTender))
	mux.HandleFunc("POST /api/tenders/{tenderId}/close", guard.Require(auth.CreateTender, tenderHandler.CloseTender))
	mux.HandleFunc("POST /api/tenders/{tenderId}/cancel", guard.Require(auth.CreateTender, tenderHandler.CancelTender))

	mux.HandleFunc("POST /api/tenders/{tenderId}/award/initialize", guard.Require(auth.CreateTender, awardHandler.InitializeAward))
	mux.HandleFunc("POST /api/tenders/{tenderId}/award/line-items/{lineItemId}/distribute", guard.Require(auth.ApproveOffer, awardHandler.DistributeLineItem))
	mux.HandleFunc("GET /api/tenders/{tenderId}/award", guard.Require(auth.ViewTender, awardHandler.GetAwardDetails))
	mux.HandleFunc("POST /api/tenders/{tenderId}/award/finalize", guard.Require(auth.ApproveOffer, awardHandler.FinalizeAward))

	mux.HandleFunc("/api/offers/new", guard.Require(auth.SubmitOffer, offerHandler.CreateOffer))
	mux.HandleFunc("GET /api/offers/{offerId}", guard.Require(auth.ViewTender, offerHandler.GetOffer))
	mux.HandleFunc("GET /api/tenders/{tenderId}/offers", guard.Require(auth.ViewTender, offerHandler.GetTenderOffers))
	mux.HandleFunc("POST /api/offers/{offerId}/evaluate", guard.Require(auth.ApproveOffer, offerHandler.EvaluateOffer))
	mux.HandleFunc("POST /api/offers/{offerId}/select-winner", guard.Require(auth.ApproveOffer, offerHandler.SelectWinner))
	mux.HandleFunc("POST /api/offers/{offerId}/reject", guard.Require(auth.RejectOffer, offerHandler.RejectOffer))

	return mux
}
