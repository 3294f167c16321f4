package message

import (
	"go.uber.org/fx"

	"github.com/sahayog-foundation/sahayog/internal/message/repository"
	"github.com/sahayog-foundation/sahayog/internal/message/service"
)

var Module = fx.Module("message.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
