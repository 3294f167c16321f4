package audit

import (
	"go.uber.org/fx"

	"github.com/sahayog-foundation/sahayog/internal/audit/repository"
	"github.com/sahayog-foundation/sahayog/internal/audit/service"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
