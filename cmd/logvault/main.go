package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	flag "github.com/spf13/pflag"

	"logvault/pkg/models"
)

func main() {
	cfg, err := parseConfig(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, programName+":", err)
		os.Exit(2)
	}

	app, err := newApplication(cfg, os.Stdout)
	if err != nil {
		fmt.Fprintln(os.Stderr, programName+":", err)
		os.Exit(2)
	}
	app.alerts.Start()
	defer app.alerts.Stop()

	if err := app.run(app.mount()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.report(models.LevelCritical, "server stopped", models.Context{"error": err.Error()})
		os.Exit(1)
	}
}
