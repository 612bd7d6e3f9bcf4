package application

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	mees "esg-reporting/internal/mees/domain"
)

// ParamsOverride is a per-building rent param override. Nil fields keep the
// default.
type ParamsOverride struct {
	EPCAUpliftPercent *float64 `yaml:"epc_a_uplift_percent"`
	EPCBUpliftPercent *float64 `yaml:"epc_b_uplift_percent"`
}

// Config holds rent protection configuration.
type Config struct {
	Defaults  mees.RentParams           `yaml:"defaults"`
	Buildings map[string]ParamsOverride `yaml:"buildings"`
}

// LoadConfig loads config from env and the optional yaml file in MEES_CONFIG.
func LoadConfig() (Config, error) {
	defaults := mees.DefaultRentParams()
	cfg := Config{
		Defaults: mees.RentParams{
			EPCAUpliftPercent: getenvFloatDefault("RENT_UPLIFT_EPC_A_PCT", defaults.EPCAUpliftPercent),
			EPCBUpliftPercent: getenvFloatDefault("RENT_UPLIFT_EPC_B_PCT", defaults.EPCBUpliftPercent),
		},
	}

	if path := os.Getenv("MEES_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}
	if err := cfg.Defaults.Validate(); err != nil {
		return cfg, err
	}
	for _, override := range cfg.Buildings {
		if err := mergeParams(cfg.Defaults, override).Validate(); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

// ParamsForBuilding returns rent params for a building.
func (c Config) ParamsForBuilding(buildingID string) mees.RentParams {
	if c.Buildings != nil {
		if override, ok := c.Buildings[buildingID]; ok {
			return mergeParams(c.Defaults, override)
		}
	}
	return c.Defaults
}

func mergeParams(base mees.RentParams, override ParamsOverride) mees.RentParams {
	if override.EPCAUpliftPercent != nil {
		base.EPCAUpliftPercent = *override.EPCAUpliftPercent
	}
	if override.EPCBUpliftPercent != nil {
		base.EPCBUpliftPercent = *override.EPCBUpliftPercent
	}
	return base
}

func getenvFloatDefault(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
