package campaign

import (
	"go.uber.org/fx"

	"github.com/sahayog-foundation/sahayog/internal/campaign/repository"
	"github.com/sahayog-foundation/sahayog/internal/campaign/service"
)

var Module = fx.Module("campaign.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
