package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Mode     string `mapstructure:"mode" validate:"oneof=debug release"`
	Port     int    `mapstructure:"port" validate:"min=1,max=65535"`
	LogLevel string `mapstructure:"log_level" validate:"oneof=trace debug info warn error"`
	// Secret is the admin API bearer token. It may only be empty in debug mode.
	Secret  string  `mapstructure:"secret" validate:"required_unless=Mode debug"`
	Discord Discord `mapstructure:"discord"`
	Voice   Voice   `mapstructure:"voice"`
}

type Discord struct {
	Token         string `mapstructure:"token" validate:"required"`
	GuildID       string `mapstructure:"guild_id" validate:"required"`
	AdminRoleID   string `mapstructure:"admin_role_id"`
	CommandPrefix string `mapstructure:"command_prefix" validate:"required"`
}

type Voice struct {
	CategoryID         string        `mapstructure:"category_id" validate:"required"`
	TriggerRoomID      string        `mapstructure:"trigger_room_id"`
	TriggerName        string        `mapstructure:"trigger_name" validate:"required"`
	InterfaceChannelID string        `mapstructure:"interface_channel_id"`
	SweepInterval      time.Duration `mapstructure:"sweep_interval" validate:"gt=0"`
	GracePeriod        time.Duration `mapstructure:"grace_period" validate:"gt=0"`
	GatewayTimeout     time.Duration `mapstructure:"gateway_timeout" validate:"gt=0"`
	AdoptOrphans       bool          `mapstructure:"adopt_orphans"`
	JoinBurst          int           `mapstructure:"join_burst" validate:"gte=0"`
	JoinWindow         time.Duration `mapstructure:"join_window" validate:"gte=0"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("log_level", "info")
	v.SetDefault("secret", "")

	v.SetDefault("discord.token", "")
	v.SetDefault("discord.guild_id", "")
	v.SetDefault("discord.admin_role_id", "")
	v.SetDefault("discord.command_prefix", ".")

	v.SetDefault("voice.category_id", "")
	v.SetDefault("voice.trigger_room_id", "")
	v.SetDefault("voice.trigger_name", "➕ Join to Create")
	v.SetDefault("voice.interface_channel_id", "")
	v.SetDefault("voice.sweep_interval", "30s")
	v.SetDefault("voice.grace_period", "60s")
	v.SetDefault("voice.gateway_timeout", "10s")
	v.SetDefault("voice.adopt_orphans", false)
	v.SetDefault("voice.join_burst", 3)
	v.SetDefault("voice.join_window", "10s")
}

// Load reads config/config.<CONFIG_ENV>.yaml, applies TEMPVOICE_* overrides
// (TEMPVOICE_DISCORD_TOKEN for discord.token) and validates the result.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("tempvoice")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("⚠️ Config file not found (%s), using defaults\n", fileName)
	} else {
		fmt.Printf("✅ Loaded config: %s\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	fmt.Printf("🧩 Mode: %s | Port: %d | Guild: %s | Category: %s\n", cfg.Mode, cfg.Port, cfg.Discord.GuildID, cfg.Voice.CategoryID)
	return &cfg, nil
}

func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid config: %w", err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(fields, ", "))
}
