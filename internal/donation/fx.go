package donation

import (
	"go.uber.org/fx"

	"github.com/sahayog-foundation/sahayog/internal/donation/domain"
	"github.com/sahayog-foundation/sahayog/internal/donation/repository"
	"github.com/sahayog-foundation/sahayog/internal/donation/service"
	"github.com/sahayog-foundation/sahayog/internal/gateway/razorpay"
)

var Module = fx.Module("donation.service",
	fx.Provide(repository.Provide),
	fx.Provide(func(client *razorpay.Client) domain.Gateway { return client }),
	fx.Provide(service.New),
)
