package config

import (
	"errors"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// DashboardConfig holds presentation settings that can change without a restart.
type DashboardConfig struct {
	CurrencySymbol string         `mapstructure:"currencySymbol"`
	Organization   Organization   `mapstructure:"organization"`
	FallbackUsers  []FallbackUser `mapstructure:"fallbackUsers"`
}

// Organization is printed on invoice and receipt documents.
type Organization struct {
	Name    string `mapstructure:"name"`
	Address string `mapstructure:"address"`
	Email   string `mapstructure:"email"`
}

// FallbackUser is offered in the owner selector when the users endpoint is unavailable.
type FallbackUser struct {
	ID       int64  `mapstructure:"id"`
	Username string `mapstructure:"username"`
	Email    string `mapstructure:"email"`
	Role     string `mapstructure:"role"`
}

func DefaultDashboardConfig() DashboardConfig {
	return DashboardConfig{
		CurrencySymbol: "$",
		Organization: Organization{
			Name:  "KDevBill",
			Email: "billing@kdevbill.local",
		},
		FallbackUsers: []FallbackUser{
			{ID: 1, Username: "admin2", Email: "admin2@example.com", Role: "ADMIN"},
			{ID: 2, Username: "user1", Email: "user1@example.com", Role: "USER"},
			{ID: 3, Username: "newuser", Email: "newuser@example.com", Role: "USER"},
		},
	}
}

type DashboardConfigHolder struct {
	current atomic.Value // holds DashboardConfig
}

// NewStaticDashboardConfigHolder returns a holder that never reloads.
func NewStaticDashboardConfigHolder(cfg DashboardConfig) *DashboardConfigHolder {
	holder := &DashboardConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func NewDashboardConfigHolder(log *zap.Logger) (*DashboardConfigHolder, error) {
	log = log.Named("config.dashboard")
	v := viper.New()

	v.SetConfigName("dashboard")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/billdesk")
	v.AddConfigPath(".")

	v.SetEnvPrefix("BILLDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultDashboardConfig()
	v.SetDefault("dashboard.currencySymbol", defaults.CurrencySymbol)
	v.SetDefault("dashboard.organization.name", defaults.Organization.Name)
	v.SetDefault("dashboard.organization.email", defaults.Organization.Email)

	fileLoaded := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		fileLoaded = false
	}

	cfg, err := decodeDashboardConfig(v, defaults)
	if err != nil {
		return nil, err
	}

	holder := NewStaticDashboardConfigHolder(cfg)
	if !fileLoaded {
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		updated, err := decodeDashboardConfig(v, defaults)
		if err != nil {
			log.Warn("dashboard config reload rejected", zap.String("file", e.Name), zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("dashboard config reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

func (h *DashboardConfigHolder) Get() DashboardConfig {
	return h.current.Load().(DashboardConfig)
}

func decodeDashboardConfig(v *viper.Viper, defaults DashboardConfig) (DashboardConfig, error) {
	var cfg DashboardConfig
	if err := v.UnmarshalKey("dashboard", &cfg); err != nil {
		return DashboardConfig{}, err
	}
	if len(cfg.FallbackUsers) == 0 {
		cfg.FallbackUsers = defaults.FallbackUsers
	}
	if err := validateDashboardConfig(cfg); err != nil {
		return DashboardConfig{}, err
	}
	return cfg, nil
}

func validateDashboardConfig(cfg DashboardConfig) error {
	if strings.TrimSpace(cfg.CurrencySymbol) == "" {
		return errors.New("dashboard.currencySymbol cannot be empty")
	}
	for _, user := range cfg.FallbackUsers {
		if user.ID < 1 {
			return errors.New("dashboard.fallbackUsers ids must be positive")
		}
		switch strings.ToUpper(strings.TrimSpace(user.Role)) {
		case "ADMIN", "USER":
		default:
			return errors.New("dashboard.fallbackUsers role must be ADMIN or USER")
		}
	}
	return nil
}
