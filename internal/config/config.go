package config

import "time"

// Config holds all application configuration.
type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	Scores  ScoresConfig  `mapstructure:"scores"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Rules   RulesConfig   `mapstructure:"rules"`
	Server  ServerConfig  `mapstructure:"server"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=text json"`
	// File receives the log output of the terminal client, which owns stdout.
	// Empty discards it.
	File string `mapstructure:"file"`
}

type ScoresConfig struct {
	// Path of the local score file; empty means ~/.config/akaun-master/scores.json.
	Path          string        `mapstructure:"path"`
	RemoteURL     string        `mapstructure:"remote_url" validate:"omitempty,url"`
	RemoteTimeout time.Duration `mapstructure:"remote_timeout" validate:"gt=0"`
}

type CatalogConfig struct {
	// Paths are extra level packs (files or directories) loaded on top of
	// the built-in levels.
	Paths []string `mapstructure:"paths"`
}

type RulesConfig struct {
	BounceDelay   time.Duration `mapstructure:"bounce_delay" validate:"gt=0"`
	SurplusDelay  time.Duration `mapstructure:"surplus_delay" validate:"gt=0"`
	SettleDelay   time.Duration `mapstructure:"settle_delay" validate:"gt=0"`
	PenaltyCopies int           `mapstructure:"penalty_copies" validate:"gte=0,lte=10"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr" validate:"required,hostname_port"`
}
