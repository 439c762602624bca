package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/example/task-api/modules/api"
	"github.com/example/task-api/modules/auth"
	"github.com/example/task-api/modules/tasks"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
	"github.com/joho/godotenv"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// Load .env if present; real environment variables take precedence.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	// Create mono application
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	// Register modules with the framework
	// Order: independent modules first, then dependent modules
	app.Register(auth.NewModule())  // Provides token and user services
	app.Register(tasks.NewModule()) // Provides owner-scoped task services
	app.Register(api.NewModule())   // Depends on auth and tasks modules

	// Start application
	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo()

	// Graceful shutdown
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo() {
	log.Println("")
	log.Println("Task API started successfully!")
	log.Println("")
	log.Println("REST API Endpoints (http://localhost:3000):")
	log.Println("")
	log.Println("  Public Endpoints:")
	log.Println("  POST   /api/auth/register   - Register a new user")
	log.Println("  POST   /api/token           - Obtain access + refresh tokens")
	log.Println("  POST   /api/token/refresh   - Refresh the access token")
	log.Println("  GET    /health              - Health check")
	log.Println("")
	log.Println("  Protected Endpoints (require Bearer access token):")
	log.Println("  GET    /api/auth/me         - Your account details")
	log.Println("  GET    /api/tasks           - List your tasks (newest first)")
	log.Println("  POST   /api/tasks           - Create a task")
	log.Println("  GET    /api/tasks/:id       - Retrieve one of your tasks")
	log.Println("  PUT    /api/tasks/:id       - Update a task")
	log.Println("  PATCH  /api/tasks/:id       - Partially update a task")
	log.Println("  DELETE /api/tasks/:id       - Delete a task")
	log.Println("")
	log.Println("Tasks are always scoped to the authenticated user.")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
