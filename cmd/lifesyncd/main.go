package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/fx"

	"github.com/NayandG07/LifeSync-AI-sub001/internal/daemon"
	"github.com/NayandG07/LifeSync-AI-sub001/internal/session"
)

func main() {
	sessionFlag := flag.String("session", "", "session name (overrides config default)")
	configFlag := flag.String("config", "", "path to config.toml (overrides default location)")
	flag.Parse()

	sessionName := session.Resolve(*sessionFlag)
	if err := session.ValidateName(sessionName); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	app := fx.New(
		daemon.Module(daemon.Params{
			SessionName: sessionName,
			ConfigPath:  *configFlag,
		}),
	)

	app.Run()
}
