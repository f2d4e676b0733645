package notify

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/shDavlatbek/bmsb/internal/model"
	"github.com/shDavlatbek/bmsb/prometheus"
)

// Notifier sends news notifications to a school's email subscribers. It is
// always invoked in its own goroutine: the triggering request never waits
// for it and a delivery failure never rolls back the write.
type Notifier struct {
	db     *gorm.DB
	mailer Mailer
	log    *zap.Logger
}

// NewNotifier creates a notifier
func NewNotifier(db *gorm.DB, mailer Mailer, log *zap.Logger) *Notifier {
	return &Notifier{db: db, mailer: mailer, log: log}
}

// NotifyNewsCreated emails every active subscriber of the news item's
// school. Errors are logged and counted, never propagated.
func (n *Notifier) NotifyNewsCreated(news model.News, school model.School) {
	var subs []model.EmailSubscription
	err := n.db.
		Where("school_id = ? AND is_active = ?", school.ID, true).
		Find(&subs).Error
	if err != nil {
		n.log.Error("Failed to load subscriptions for news notification",
			zap.Uint("news_id", news.ID),
			zap.Uint("school_id", school.ID),
			zap.Error(err))
		prometheus.RecordNotification("failed")
		return
	}
	if len(subs) == 0 {
		return
	}

	subject := fmt.Sprintf("Yangi xabar: %s", news.Title)
	plain := fmt.Sprintf("%s\n\nSana: %s\n\n%s\n\nBu xabar %s tomonidan yuborildi.",
		news.Title, news.CreatedAt.Format("02.01.2006"), news.Content, school.Name)
	html := fmt.Sprintf(
		"<h2>%s</h2><div><strong>Sana:</strong> %s</div><div>%s</div><p>Bu xabar %s tomonidan yuborildi.</p>",
		news.Title, news.CreatedAt.Format("02.01.2006"), news.Content, school.Name)

	sent := 0
	for _, sub := range subs {
		if err := n.mailer.Send(sub.Email, subject, plain, html); err != nil {
			n.log.Error("Failed to send news notification",
				zap.Uint("news_id", news.ID),
				zap.String("to", sub.Email),
				zap.Error(err))
			prometheus.RecordNotification("failed")
			continue
		}
		sent++
		prometheus.RecordNotification("sent")
	}

	n.log.Info("News notification dispatched",
		zap.Uint("news_id", news.ID),
		zap.Uint("school_id", school.ID),
		zap.Int("subscribers", len(subs)),
		zap.Int("sent", sent))
}
