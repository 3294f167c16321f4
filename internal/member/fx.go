package member

import (
	"go.uber.org/fx"

	"github.com/sahayog-foundation/sahayog/internal/member/repository"
	"github.com/sahayog-foundation/sahayog/internal/member/service"
)

var Module = fx.Module("member.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
