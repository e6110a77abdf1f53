package services

import (
	"context"

	"github.com/senyabanana/procurement-service/internal/models"

	"github.com/sirupsen/logrus"
)

// Notifier - порт внешнего сервиса уведомлений. Движок гарантирует, что
// AwardFinalized вызывается ровно один раз на тендер, уже после фиксации
// распределения в базе.
type Notifier interface {
	TenderPublished(ctx context.Context, event models.TenderPublishedEvent)
	AwardFinalized(ctx context.Context, event models.AwardFinalizedEvent)
}

// LogNotifier пишет события в журнал. Реальная доставка уведомлений и
// генерация заказов на поставку живут за этим интерфейсом во внешних сервисах.
type LogNotifier struct {
	Logger *logrus.Logger
}

// NewLogNotifier создает новый экземпляр LogNotifier.
func NewLogNotifier(logger *logrus.Logger) *LogNotifier {
	return &LogNotifier{Logger: logger}
}

func (n *LogNotifier) TenderPublished(ctx context.Context, event models.TenderPublishedEvent) {
	n.Logger.WithFields(logrus.Fields{
		"tender_id": event.TenderID,
		"name":      event.Name,
		"deadline":  event.Deadline,
	}).Info("tender published")
}

func (n *LogNotifier) AwardFinalized(ctx context.Context, event models.AwardFinalizedEvent) {
	n.Logger.WithFields(logrus.Fields{
		"tender_id": event.TenderID,
		"lines":     len(event.Lines),
	}).Info("award finalized")
}
