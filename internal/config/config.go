// Package config provides environment-driven configuration for the API server.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Server holds the top-level configuration for the HTTP API.
type Server struct {
	Port        int
	DatabaseURL string
}

// NewServer reads server configuration from environment variables.
// PORT defaults to 8080; DATABASE_URL is required.
func NewServer() (*Server, error) {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required but not set")
	}

	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %v", err)
	}
	if port < 1 || port > 65535 {
		return nil, fmt.Errorf("PORT out of range: %d", port)
	}

	return &Server{
		Port:        port,
		DatabaseURL: databaseURL,
	}, nil
}
