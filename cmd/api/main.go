// Package main is the entry point for the auth service.
package main

import (
	"authcore/internal/app"
)

// @title Auth Core API
// @version 1.0
// @description Authentication and session service: registration, credential login, email verification, password reset and session lifecycle.
// @host localhost:8080
// @BasePath /api/v1
func main() {
	app.Run()
}
