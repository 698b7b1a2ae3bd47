package main

import (
	"github.com/graphbio/bel/internal/server"
	"github.com/graphbio/bel/internal/util"
	"github.com/graphbio/bel/pkg/logger"
	"github.com/graphbio/bel/pkg/logger/console"

	_ "github.com/lib/pq"
)

func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	server.Init()
}
