package notice

import (
	"go.uber.org/fx"

	"github.com/sahayog-foundation/sahayog/internal/notice/repository"
	"github.com/sahayog-foundation/sahayog/internal/notice/service"
)

var Module = fx.Module("notice.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
