package certificate

import (
	"go.uber.org/fx"

	"github.com/sahayog-foundation/sahayog/internal/certificate/repository"
	"github.com/sahayog-foundation/sahayog/internal/certificate/service"
)

var Module = fx.Module("certificate.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
