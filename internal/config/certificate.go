package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// CertificateConfig controls the rendered certificate and ID-card documents.
// It lives in a mounted YAML file so the layout can change without a deploy.
type CertificateConfig struct {
	OrganizationName string `mapstructure:"organizationName"`
	TagLine          string `mapstructure:"tagLine"`
	SignatoryName    string `mapstructure:"signatoryName"`
	SignatoryTitle   string `mapstructure:"signatoryTitle"`
	VerifyBaseURL    string `mapstructure:"verifyBaseUrl"`
}

func DefaultCertificateConfig() CertificateConfig {
	return CertificateConfig{
		OrganizationName: "Sahayog Foundation",
		TagLine:          "Together for a better tomorrow",
		SignatoryName:    "Secretary",
		SignatoryTitle:   "Sahayog Foundation",
		VerifyBaseURL:    "https://sahayog.org/certificates",
	}
}

type CertificateConfigHolder struct {
	current atomic.Value // holds CertificateConfig
}

func NewCertificateConfigHolder() (*CertificateConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("certificate")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/sahayog/config")
	v.AddConfigPath("/etc/sahayog")
	v.AddConfigPath(".")

	v.SetEnvPrefix("SAHAYOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultCertificateConfig()
		v.SetDefault("certificate.organizationName", defaults.OrganizationName)
		v.SetDefault("certificate.tagLine", defaults.TagLine)
		v.SetDefault("certificate.signatoryName", defaults.SignatoryName)
		v.SetDefault("certificate.signatoryTitle", defaults.SignatoryTitle)
		v.SetDefault("certificate.verifyBaseUrl", defaults.VerifyBaseURL)
	}

	var cfg CertificateConfig
	if err := v.UnmarshalKey("certificate", &cfg); err != nil {
		return nil, err
	}
	if err := validateCertificateConfig(cfg); err != nil {
		return nil, err
	}

	holder := &CertificateConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated CertificateConfig
		if err := v.UnmarshalKey("certificate", &updated); err != nil {
			log.Printf("[certificate-config] reload failed: %v", err)
			return
		}
		if err := validateCertificateConfig(updated); err != nil {
			log.Printf("[certificate-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[certificate-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticCertificateConfigHolder wraps a fixed config with no file
// watching.
func NewStaticCertificateConfigHolder(cfg CertificateConfig) *CertificateConfigHolder {
	holder := &CertificateConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *CertificateConfigHolder) Get() CertificateConfig {
	return h.current.Load().(CertificateConfig)
}

func validateCertificateConfig(cfg CertificateConfig) error {
	if strings.TrimSpace(cfg.OrganizationName) == "" {
		return errors.New("certificate.organizationName cannot be empty")
	}
	return nil
}
