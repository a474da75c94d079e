package postgres

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/platewise/platewise/internal/config"
	"github.com/platewise/platewise/internal/domain/repository"
)

// Module wires PostgreSQL storage and repository adapters.
var Module = fx.Options(
	fx.Provide(newStorage),
	fx.Provide(
		func(s *Storage) repository.CustomerRepository { return s.Customers() },
		func(s *Storage) repository.OrderRepository { return s.Orders() },
		func(s *Storage) repository.SubOrderRepository { return s.SubOrders() },
		func(s *Storage) repository.WalletRepository { return s.Wallets() },
		func(s *Storage) repository.CouponRepository { return s.Coupons() },
		func(s *Storage) repository.NotificationRepository { return s.Notifications() },
		func(s *Storage) repository.WebhookEventRepository { return s.WebhookEvents() },
		func(s *Storage) repository.RolloverRepository { return s.Rollovers() },
	),
	fx.Invoke(registerLifecycle),
)

type storageParams struct {
	fx.In

	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

func newStorage(p storageParams) (*Storage, error) {
	return New(p.Ctx, p.Config.DatabaseURI, p.Logger)
}

func registerLifecycle(lc fx.Lifecycle, storage *Storage) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			storage.Close()
			return nil
		},
	})
}
