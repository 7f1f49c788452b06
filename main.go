package main

import (
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"notely/config/database"
	"notely/internal/asset"
	"notely/pkg/logger"
	"notely/router"
)

const cleanupQueueSize = 256

func main() {
	logger.Init()
	defer logger.Log.Sync()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		logger.Sugar.Info("No .env file found, using environment variables from OS")
	}

	db := database.Connect()
	defer db.Close()

	folder := os.Getenv("CLOUDINARY_FOLDER")
	if folder == "" {
		folder = "notely"
	}
	assets, err := asset.NewCloudinary(
		os.Getenv("CLOUDINARY_CLOUD_NAME"),
		os.Getenv("CLOUDINARY_API_KEY"),
		os.Getenv("CLOUDINARY_API_SECRET"),
		folder,
	)
	if err != nil {
		logger.Sugar.Fatalf("Failed to configure asset store: %v", err)
	}

	// Best-effort asset deletions run off the request path.
	cleaner := asset.NewCleaner(assets, cleanupQueueSize)
	go cleaner.Run()
	defer cleaner.Close()

	handler := router.Setup(db, assets, cleaner)

	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}
	logger.Sugar.Infof("Backend listening on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		logger.Sugar.Fatalf("Server stopped: %v", err)
	}
}
