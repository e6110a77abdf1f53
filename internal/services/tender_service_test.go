package services

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/senyabanana/procurement-service/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testTenderRequest() models.TenderRequest {
	return models.TenderRequest{
		Name:      "Office furniture",
		BuyerID:   "b7a651c5-5a06-43c8-a72e-9e4f3f1994a2",
		Deadline:  time.Now().UTC().Add(48 * time.Hour),
		BudgetMin: 1000,
		BudgetMax: 5000,
		Currency:  "EUR",
		IsPublic:  true,
		LineItems: []models.LineItemRequest{
			{Description: "Desks", Quantity: 100, Unit: "pcs"},
			{Description: "Chairs", Quantity: 200, Unit: "pcs"},
		},
	}
}

func newTenderService() (*TenderService, *fakeStore, *fakeNotifier) {
	store := newFakeStore()
	notifier := &fakeNotifier{}
	return NewTenderService(store, notifier, testLogger()), store, notifier
}

func TestCreateTenderValidation(t *testing.T) {
	service, _, _ := newTenderService()
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*models.TenderRequest)
	}{
		{"empty name", func(r *models.TenderRequest) { r.Name = "" }},
		{"missing buyer", func(r *models.TenderRequest) { r.BuyerID = "" }},
		{"no line items", func(r *models.TenderRequest) { r.LineItems = nil }},
		{"zero quantity", func(r *models.TenderRequest) { r.LineItems[0].Quantity = 0 }},
		{"negative quantity", func(r *models.TenderRequest) { r.LineItems[1].Quantity = -5 }},
		{"empty item description", func(r *models.TenderRequest) { r.LineItems[0].Description = "" }},
		{"inverted budget", func(r *models.TenderRequest) { r.BudgetMin = 10000 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testTenderRequest()
			tt.mutate(&req)
			_, err := service.CreateTender(ctx, req)
			require.Error(t, err)
			assert.True(t, models.IsKind(err, models.KindValidation))
		})
	}
}

func TestCreateTender(t *testing.T) {
	service, _, _ := newTenderService()
	ctx := context.Background()

	tender, err := service.CreateTender(ctx, testTenderRequest())
	require.NoError(t, err)

	assert.Equal(t, models.DraftTender, tender.Status)
	assert.Equal(t, models.AwardNotInitialized, tender.AwardState)
	require.Len(t, tender.LineItems, 2)
	assert.Equal(t, 1, tender.LineItems[0].Position)
	assert.Equal(t, 2, tender.LineItems[1].Position)
	assert.Equal(t, int32(1), tender.Version)
}

func TestPublishTender(t *testing.T) {
	service, _, notifier := newTenderService()
	ctx := context.Background()

	tender, err := service.CreateTender(ctx, testTenderRequest())
	require.NoError(t, err)

	published, err := service.PublishTender(ctx, tender.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PublishedTender, published.Status)

	require.Len(t, notifier.published, 1)
	assert.Equal(t, tender.ID, notifier.published[0].TenderID)
}

func TestPublishTenderPastDeadline(t *testing.T) {
	service, store, _ := newTenderService()
	ctx := context.Background()

	tender, err := service.CreateTender(ctx, testTenderRequest())
	require.NoError(t, err)
	store.tenders[tender.ID].Deadline = time.Now().UTC().Add(-time.Hour)

	_, err = service.PublishTender(ctx, tender.ID)
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindValidation))
}

func TestPublishTenderIllegalStates(t *testing.T) {
	service, store, notifier := newTenderService()
	ctx := context.Background()

	for _, status := range []models.TenderStatus{
		models.PublishedTender, models.ClosedTender, models.AwardedTender, models.CancelledTender,
	} {
		t.Run(string(status), func(t *testing.T) {
			tender, err := service.CreateTender(ctx, testTenderRequest())
			require.NoError(t, err)
			store.tenders[tender.ID].Status = status

			_, err = service.PublishTender(ctx, tender.ID)
			require.Error(t, err)
			assert.True(t, models.IsKind(err, models.KindInvalidTransition))

			// Статус не должен измениться.
			current, err := service.GetTender(ctx, tender.ID)
			require.NoError(t, err)
			assert.Equal(t, status, current.Status)
		})
	}
	assert.Empty(t, notifier.published)
}

func TestCloseTender(t *testing.T) {
	service, _, _ := newTenderService()
	ctx := context.Background()

	tender, err := service.CreateTender(ctx, testTenderRequest())
	require.NoError(t, err)

	_, err = service.CloseTender(ctx, tender.ID)
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindInvalidTransition))

	_, err = service.PublishTender(ctx, tender.ID)
	require.NoError(t, err)

	closed, err := service.CloseTender(ctx, tender.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ClosedTender, closed.Status)
}

func TestCancelTender(t *testing.T) {
	service, store, _ := newTenderService()
	ctx := context.Background()

	for _, status := range []models.TenderStatus{models.DraftTender, models.PublishedTender, models.ClosedTender} {
		tender, err := service.CreateTender(ctx, testTenderRequest())
		require.NoError(t, err)
		store.tenders[tender.ID].Status = status

		cancelled, err := service.CancelTender(ctx, tender.ID)
		require.NoError(t, err)
		assert.Equal(t, models.CancelledTender, cancelled.Status)

		// Терминальный статус: повторная отмена недопустима.
		_, err = service.CancelTender(ctx, tender.ID)
		require.Error(t, err)
		assert.True(t, models.IsKind(err, models.KindInvalidTransition))
	}

	tender, err := service.CreateTender(ctx, testTenderRequest())
	require.NoError(t, err)
	store.tenders[tender.ID].Status = models.AwardedTender

	_, err = service.CancelTender(ctx, tender.ID)
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindInvalidTransition))
}

func TestDeleteTender(t *testing.T) {
	service, store, _ := newTenderService()
	ctx := context.Background()

	tender, err := service.CreateTender(ctx, testTenderRequest())
	require.NoError(t, err)

	store.tenders[tender.ID].Status = models.PublishedTender
	err = service.DeleteTender(ctx, tender.ID)
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindInvalidTransition))

	store.tenders[tender.ID].Status = models.DraftTender
	require.NoError(t, service.DeleteTender(ctx, tender.ID))

	_, err = service.GetTender(ctx, tender.ID)
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindNotFound))
}

func TestFetchTenders(t *testing.T) {
	service, _, _ := newTenderService()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := service.CreateTender(ctx, testTenderRequest())
		require.NoError(t, err)
	}
	tender, err := service.CreateTender(ctx, testTenderRequest())
	require.NoError(t, err)
	_, err = service.PublishTender(ctx, tender.ID)
	require.NoError(t, err)

	tenders, err := service.FetchTenders(ctx, "", "", []string{string(models.PublishedTender)})
	require.NoError(t, err)
	require.Len(t, tenders, 1)
	assert.Equal(t, tender.ID, tenders[0].ID)

	_, err = service.FetchTenders(ctx, "", "", []string{"Open"})
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindValidation))

	_, err = service.FetchTenders(ctx, "-1", "", nil)
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindValidation))
}

func TestUpdateTenderStatusConflict(t *testing.T) {
	_, store, _ := newTenderService()
	ctx := context.Background()

	tender, err := store.CreateTender(ctx, testTenderRequest())
	require.NoError(t, err)

	_, err = store.UpdateTenderStatus(ctx, tender.ID, models.DraftTender, models.PublishedTender)
	require.NoError(t, err)

	// Повторный переход с устаревшим ожидаемым статусом.
	_, err = store.UpdateTenderStatus(ctx, tender.ID, models.DraftTender, models.PublishedTender)
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindConcurrentModification))
}
