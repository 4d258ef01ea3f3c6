package main

import (
	"marquee/cmd/handlers"
	"marquee/internal/logger"
)

func main() {
	logger.Init() // Initialize the logger
	handlers.Execute()
}
