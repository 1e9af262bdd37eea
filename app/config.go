package app

import (
	"encoding/json"
	"os"
)

// Config settings for main App.
type Config struct {
	Server  *ServerConfig  `json:"server"`
	Service *ServiceConfig `json:"service"`
}

// ServerConfig settings for App Server.
type ServerConfig struct {
	Host      string `json:"host"`
	Port      int    `json:"port"`
	StorePath string `json:"store_path"`
}

// ServiceConfig identity strings reported by the API.
type ServiceConfig struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
}

// DefaultConfig returns Config initialized with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: &ServerConfig{
			Host:      "0.0.0.0",
			Port:      8000,
			StorePath: "gleamweb.db",
		},
		Service: &ServiceConfig{
			Name:        "gleam_web_server",
			DisplayName: "Gleam",
		},
	}
}

// ReadFile reads a JSON file into Config.
func (c *Config) ReadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	d := json.NewDecoder(f)
	return d.Decode(c)
}
