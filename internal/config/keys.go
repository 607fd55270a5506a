package config

import "os"

// KeySource represents where a credential comes from.
type KeySource string

const (
	KeySourceEnv    KeySource = "env"
	KeySourceConfig KeySource = "config"
	KeySourceNone   KeySource = "none"
)

// KeyStatus represents the status of a credential.
type KeyStatus struct {
	Name   string    `json:"name"`
	Source KeySource `json:"source"`
	IsSet  bool      `json:"is_set"`
	Masked string    `json:"masked,omitempty"` // e.g., "abc...xyz"
}

// CheckCredentials returns the status of every secret the config can carry.
func CheckCredentials(cfg *Config) []KeyStatus {
	return []KeyStatus{
		checkKey("Ticker API Key", cfg.Tickers.APIKey, "SENDWALLET_TICKERS_API_KEY"),
		checkKey("Redis Password", cfg.Tickers.Redis.Password, "SENDWALLET_TICKERS_REDIS_PASSWORD"),
	}
}

// checkKey checks if a key is set and where it came from.
func checkKey(name, value, envVar string) KeyStatus {
	status := KeyStatus{
		Name:  name,
		IsSet: value != "",
	}

	if value != "" {
		if os.Getenv(envVar) != "" {
			status.Source = KeySourceEnv
		} else {
			status.Source = KeySourceConfig
		}
		status.Masked = maskKey(value)
	} else {
		status.Source = KeySourceNone
	}

	return status
}

// maskKey masks a key for display, showing only first 3 and last 3 chars.
func maskKey(key string) string {
	if len(key) <= 8 {
		return "***"
	}
	return key[:3] + "..." + key[len(key)-3:]
}
