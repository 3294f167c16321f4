package razorpay

import (
	"go.uber.org/fx"

	"github.com/sahayog-foundation/sahayog/internal/config"
)

var Module = fx.Module("gateway.razorpay",
	fx.Provide(func(cfg config.Config) *Client {
		return NewClient(cfg.GatewayBaseURL, cfg.GatewayKeyID, cfg.GatewaySecret)
	}),
)
