package config

// DefaultSettings returns settings with default values
func DefaultSettings() *Settings {
	return &Settings{
		Timeout:     0,
		ValidateSSL: BoolPtr(true),
		NoColor:     BoolPtr(false),
	}
}
