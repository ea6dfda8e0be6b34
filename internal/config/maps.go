package config

type MapsConfig struct {
	GoogleMapsAPIKey string `yaml:"google_maps_api_key"`
}

func (c *MapsConfig) Enabled() bool {
	return c.GoogleMapsAPIKey != ""
}

func loadMapsConfig() *MapsConfig {
	return &MapsConfig{
		GoogleMapsAPIKey: getEnv("GOOGLE_MAPS_API_KEY", ""),
	}
}
