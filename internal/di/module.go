package di

import (
	"github.com/platewise/platewise/internal/adapter/dispatch"
	"github.com/platewise/platewise/internal/adapter/notify"
	"github.com/platewise/platewise/internal/adapter/payment"
	"github.com/platewise/platewise/internal/app"
	"github.com/platewise/platewise/internal/config"
	"github.com/platewise/platewise/internal/logger"
	"github.com/platewise/platewise/internal/pkg/auth"
	"github.com/platewise/platewise/internal/server/http/handlers"
	"github.com/platewise/platewise/internal/server/http/router"
	"github.com/platewise/platewise/internal/storage/postgres"
	"github.com/platewise/platewise/internal/usecase"
	"go.uber.org/fx"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		auth.Module,
		postgres.Module,
		dispatch.Module,
		payment.Module,
		notify.Module,
		usecase.Module,
		fx.Provide(func(client notify.Client) app.Messenger { return client }),
		fx.Provide(func(s *postgres.Storage) app.HealthChecker { return s }),
		fx.Provide(func(f *app.StorefrontFacade) handlers.StorefrontFacade { return f }),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
