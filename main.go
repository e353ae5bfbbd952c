package main

import (
	"context"

	"github.com/stepauth/stepauth/internal/configuration"
	"github.com/stepauth/stepauth/internal/core"
	"github.com/stepauth/stepauth/internal/messaging"

	"go.uber.org/zap"
)

func main() {
	zap.ReplaceGlobals(zap.Must(zap.NewProduction()))

	config := configuration.Read()
	core.NewLogger(config.App.LogLevel)

	ctx := context.Background()

	stateStore := core.NewStore(config.Store)
	defer stateStore.Close()

	id := core.NewIdentity(ctx, config.Identity, config.Delivery.PrivilegedGroup)
	dispatcher := core.NewDispatcher(ctx, config.Delivery)

	stream := messaging.NewAuthStream()
	defer stream.Close()
	core.StartAuditWorker(stream)

	core.StartHTTPServer(config, stateStore, stateStore, id, dispatcher, stream)
}
