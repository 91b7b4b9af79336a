package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/openunited/platform/internal/config"
	"github.com/openunited/platform/internal/migration"
	"github.com/openunited/platform/internal/observability"
	"github.com/openunited/platform/internal/server"
	"github.com/openunited/platform/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
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
