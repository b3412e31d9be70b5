package main

import (
	"log"

	"github.com/patric-chuzhbe/clipnotes/internal/app"
)

var (
	buildVersion = "N/A"
	buildDate    = "N/A"
	buildCommit  = "N/A"
)

func main() {
	log.Printf("Build version: %s", buildVersion)
	log.Printf("Build date: %s", buildDate)
	log.Printf("Build commit: %s", buildCommit)

	application, err := app.New()
	if err != nil {
		log.Fatalln("Unable to initialize the application:", err)
	}
	defer application.Close()

	if err := application.Run(); err != nil {
		log.Fatalln("The application finished with error:", err)
	}
}
