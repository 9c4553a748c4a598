package config

import (
	"fmt"
	"os"
	"time"

	"tcgsearch/lib/cardsearch"
	"tcgsearch/lib/configutil"
)

const (
	FileName  = "tcgsearch.json5"
	ApiKeyEnv = "TCGSEARCH_API_KEY"

	defaultProxyPort = 8080
)

type ProxyConfig struct {
	Port int `json:"port"`
}

type Config struct {
	BaseUrl        string      `json:"base_url"`
	ApiKey         string      `json:"api_key"`
	TimeoutSeconds int         `json:"timeout_seconds"`
	RateLimit      float64     `json:"rate_limit"`
	StrictDecoding bool        `json:"strict_decoding"`
	OverlapPolicy  string      `json:"overlap_policy"`
	Output         string      `json:"output"`
	Proxy          ProxyConfig `json:"proxy"`
}

// Load reads the config from `path`, or when it is empty, the nearest
// tcgsearch.json5 going up from the cwd. A missing file is not an error when
// searching, the defaults are used instead. The api key from the environment
// takes precedence over the file.
func Load(path string) (Config, error) {
	var cfg Config
	var err error
	if path != "" {
		cfg, err = configutil.ReadConfig[Config](path)
	} else {
		cfg, err = configutil.ReadRecursively[Config](FileName)
		if os.IsNotExist(err) {
			err = nil
		}
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	if key, ok := os.LookupEnv(ApiKeyEnv); ok && key != "" {
		cfg.ApiKey = key
	}
	if cfg.BaseUrl == "" {
		cfg.BaseUrl = cardsearch.DefaultBaseUrl
	}
	if cfg.Proxy.Port == 0 {
		cfg.Proxy.Port = defaultProxyPort
	}

	err = cfg.validate()
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout_seconds must not be negative, got %d", c.TimeoutSeconds)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate_limit must not be negative, got %v", c.RateLimit)
	}
	_, err := c.Policy()
	if err != nil {
		return err
	}
	_, err = c.Format()
	return err
}

func (c Config) ClientOptions() cardsearch.Options {
	return cardsearch.Options{
		BaseUrl:        c.BaseUrl,
		ApiKey:         c.ApiKey,
		Timeout:        time.Duration(c.TimeoutSeconds) * time.Second,
		RateLimit:      c.RateLimit,
		StrictDecoding: c.StrictDecoding,
	}
}

func (c Config) Policy() (cardsearch.OverlapPolicy, error) {
	return cardsearch.ParseOverlapPolicy(c.OverlapPolicy)
}

func (c Config) Format() (cardsearch.Format, error) {
	return cardsearch.ParseFormat(c.Output)
}
