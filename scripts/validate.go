package main

import (
	"flag"
	"os"

	"salonbook/internal/logger"
	"salonbook/internal/validation"
)

func main() {
	var baseURL, adminToken string
	flag.StringVar(&baseURL, "url", "http://localhost:8081", "Base URL for API validation")
	flag.StringVar(&adminToken, "token", os.Getenv("ADMIN_TOKEN"), "Admin token (X-Admin-Token)")
	flag.Parse()

	logger.Init("info", "text")

	if err := validation.RunValidation(baseURL, adminToken); err != nil {
		logger.Fatal("Validation failed", "error", err)
	}
}
