package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/rl1809/storefront/internal/core/domain"
)

// LogNotifier records the deep link handed to the storefront.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.Named("notify.log")}
}

func (l *LogNotifier) Notify(ctx context.Context, n domain.Notification) error {
	l.logger.Info("order confirmation ready",
		zap.String("order_number", n.OrderNumber),
		zap.String("client_id", n.Tenant.ID),
		zap.String("deep_link", n.DeepLink),
		zap.Int("items", len(n.Lines)),
	)
	return nil
}
