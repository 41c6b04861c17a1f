//go:build wireinject
// +build wireinject

package main

import (
	"github.com/Jacobbrewer1/ticketeer/pkg/logging"
	"github.com/google/wire"
	"github.com/gorilla/mux"
)

func InitializeApp() (*App, error) {
	wire.Build(
		wire.Value(logging.Name(AppName)),
		logging.NewConfig,
		logging.CommonLogger,
		mux.NewRouter,
		provideConfig,
		NewApp,
	)
	return new(App), nil
}
