package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// SettlementConfig holds the operator-tunable settlement defaults. The
// platform fee seeds the first fee configuration row; the VAT rate applies
// to EU buyers without an organisation-specific override.
type SettlementConfig struct {
	FeePercent   int64 `mapstructure:"feePercent"`
	EUVATRateBps int64 `mapstructure:"euVatRateBps"`
}

func DefaultSettlementConfig() SettlementConfig {
	return SettlementConfig{
		FeePercent:   10,
		EUVATRateBps: 2000,
	}
}

// SettlementConfigHolder serves the current settlement config and swaps it
// in place when the backing file changes.
type SettlementConfigHolder struct {
	current atomic.Value // holds SettlementConfig
}

func NewSettlementConfigHolder() (*SettlementConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("settlement")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/openunited/config") // Volume-mounted config
	v.AddConfigPath("/etc/openunited")            // System config
	v.AddConfigPath(".")                          // Current directory (dev mode)

	v.SetEnvPrefix("OPENUNITED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultSettlementConfig()
	v.SetDefault("settlement.feePercent", defaults.FeePercent)
	v.SetDefault("settlement.euVatRateBps", defaults.EUVATRateBps)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg SettlementConfig
	if err := v.UnmarshalKey("settlement", &cfg); err != nil {
		return nil, err
	}
	if err := validateSettlementConfig(cfg); err != nil {
		return nil, err
	}

	holder := &SettlementConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated SettlementConfig
		if err := v.UnmarshalKey("settlement", &updated); err != nil {
			log.Printf("[settlement-config] reload failed: %v", err)
			return
		}
		if err := validateSettlementConfig(updated); err != nil {
			log.Printf("[settlement-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[settlement-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *SettlementConfigHolder) Get() SettlementConfig {
	return h.current.Load().(SettlementConfig)
}

func validateSettlementConfig(cfg SettlementConfig) error {
	if cfg.FeePercent < 1 || cfg.FeePercent > 100 {
		return errors.New("settlement.feePercent must be between 1 and 100")
	}
	if cfg.EUVATRateBps < 0 || cfg.EUVATRateBps > 10000 {
		return errors.New("settlement.euVatRateBps must be between 0 and 10000")
	}
	return nil
}
