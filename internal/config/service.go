package config

import "time"

type ServiceConfig struct {
	Name        string        `yaml:"name"`
	Environment string        `yaml:"environment"`
	Version     string        `yaml:"version"`
	ClientURL   string        `yaml:"client_url"`
	JWTSecret   string        `yaml:"jwt_secret"`
	DedupWindow time.Duration `yaml:"dedup_window"`
	Momo        MomoConfig    `yaml:"momo"`
}

// MomoConfig holds the mobile-money rail credentials and endpoints
type MomoConfig struct {
	BaseURL        string        `yaml:"base_url"`
	APIUser        string        `yaml:"api_user"`
	APIKey         string        `yaml:"api_key"`
	CallbackSecret string        `yaml:"callback_secret"`
	Currency       string        `yaml:"currency"`
	Timeout        time.Duration `yaml:"timeout"`
}
