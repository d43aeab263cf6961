package main

import (
	"github.com/OFFIS-RIT/synthetix/backend/internal/server"
	"github.com/OFFIS-RIT/synthetix/backend/internal/util"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/logger"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/logger/console"
)

func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
		JSON:  util.GetEnv("LOG_FORMAT") == "json",
	})
	logger.Init(consoleLogger)

	server.Init()
}
