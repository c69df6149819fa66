package main

import (
	"log"

	"github.com/matjarhq/matjar/internal/server"

	// Register migrations so server.Start can run them at boot.
	_ "github.com/matjarhq/matjar/database/migrations"
)

func main() {
	if err := server.Start(); err != nil {
		log.Fatal(err)
	}
}
