package volunteer

import (
	"go.uber.org/fx"

	"github.com/sahayog-foundation/sahayog/internal/volunteer/repository"
	"github.com/sahayog-foundation/sahayog/internal/volunteer/service"
)

var Module = fx.Module("volunteer.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
