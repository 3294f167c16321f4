package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/sahayog-foundation/sahayog/internal/clock"
	"github.com/sahayog-foundation/sahayog/internal/config"
	"github.com/sahayog-foundation/sahayog/internal/migration"
	"github.com/sahayog-foundation/sahayog/internal/observability"
	"github.com/sahayog-foundation/sahayog/internal/server"
	"github.com/sahayog-foundation/sahayog/pkg/db"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
