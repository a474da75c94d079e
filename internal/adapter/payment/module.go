package payment

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/platewise/platewise/internal/config"
)

// Module exposes billing client implementation to fx graph.
var Module = fx.Provide(newClient)

type clientParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newClient(p clientParams) (Client, error) {
	return NewHTTPClient(p.Config.PaymentAddress, p.Logger)
}
