package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/Jacobbrewer1/ticketeer/pkg/logging"
)

func main() {
	// The .env file may hold LOG_LEVEL, so it is loaded before the logger is built.
	if err := loadDotEnv(); err != nil {
		log.Fatalln(err)
	}

	a, err := InitializeApp()
	if err != nil {
		log.Fatalln(err)
	}

	a.Info("Starting application")
	if err := a.Run(); err != nil {
		a.Error("Error running application", slog.String(logging.KeyError, err.Error()))
		os.Exit(1)
	}
}
