package config

import "time"

// Root holds cfgstack's own settings: where the layered documents live and
// where the merged result goes.
type Root struct {
	// Dir is the directory the other paths are resolved against.
	Dir string `config:"dir" validate:"required"`

	// Profile names the overlay document, profiles/<Profile>.toml.
	Profile string `config:"profile" validate:"required,excludes=.."`

	Template string `config:"template" validate:"required"`
	Profiles string `config:"profiles" validate:"required"`
	Local    string `config:"local" validate:"required"`
	Output   string `config:"output" validate:"required"`

	// Format selects the rendering: "toml" or "yaml".
	Format string `config:"format" validate:"oneof=toml yaml"`

	Log    LogConfig    `config:"log"`
	Server ServerConfig `config:"server"`
}

type LogConfig struct {
	Level string `config:"level" validate:"omitempty,oneof=debug info warn error"`
}

type ServerConfig struct {
	Addr         string        `config:"addr" validate:"required"`
	ReadTimeout  time.Duration `config:"readTimeout"`
	WriteTimeout time.Duration `config:"writeTimeout"`
	IdleTimeout  time.Duration `config:"idleTimeout"`

	// ActuatorPath prefixes the health, info and metrics endpoints.
	ActuatorPath   string `config:"actuatorPath"`
	DisableMetrics bool   `config:"disableMetrics"`
}

// DefaultProfile is used when no profile is selected.
const DefaultProfile = "safe"

// Defaults returns the settings used for every field left unset.
func Defaults() Root {
	return Root{
		Dir:      ".",
		Profile:  DefaultProfile,
		Template: "config.template.toml",
		Profiles: "profiles",
		Local:    "config.local.toml",
		Output:   "config.toml",
		Format:   "toml",
		Log:      LogConfig{Level: "warn"},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
			ActuatorPath: "/actuator",
		},
	}
}
