package server

import (
	"errors"
	"fmt"
	"os"
	"strconv"
)

const DefaultPort = "8081"

type Config struct {
	Port    string
	Enabled bool
}

// LoadConfig reads OPS_PORT. The ops server is disabled when OPS_PORT is "off" or "0".
func LoadConfig() (*Config, error) {
	port := os.Getenv("OPS_PORT")
	switch port {
	case "":
		port = DefaultPort
	case "off", "0":
		return &Config{Enabled: false}, nil
	}

	if err := validatePort(port); err != nil {
		return nil, fmt.Errorf("invalid OPS_PORT: %w", err)
	}

	return &Config{Port: port, Enabled: true}, nil
}

func validatePort(port string) error {
	portNum, err := strconv.Atoi(port)

	if err != nil {
		return errors.New("port must be a number")
	}

	if portNum < 1 || portNum > 65535 {
		return errors.New("port must be between 1 and 65535")
	}

	return nil
}
