package port

import (
	"context"

	"github.com/rl1809/storefront/internal/core/domain"
)

type OrderGateway interface {
	// CreateOrder submits the order to the backend; no retries are performed
	CreateOrder(ctx context.Context, req domain.OrderRequest) (domain.OrderResult, error)
}

type TenantDirectory interface {
	// GetTenant resolves a client by ID
	GetTenant(ctx context.Context, clientID string) (domain.Tenant, error)
}

type Notifier interface {
	// Notify delivers a placed-order notification, best effort
	Notify(ctx context.Context, n domain.Notification) error
}
