package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

const envPrefix = "JUDGEMENT"

type Config struct {
	AppName string      `mapstructure:"appName"`
	Log     LogConf     `mapstructure:"log"`
	Server  ServerConf  `mapstructure:"server"`
	Metrics MetricsConf `mapstructure:"metrics"`
	Pacing  PacingConf  `mapstructure:"pacing"`
	Limits  LimitsConf  `mapstructure:"limits"`
	Monitor MonitorConf `mapstructure:"monitor"`
	Rooms   RoomsConf   `mapstructure:"rooms"`
}

type LogConf struct {
	Level string `mapstructure:"level"`
}

type ServerConf struct {
	Addr           string        `mapstructure:"addr"`
	WsPath         string        `mapstructure:"wsPath"`
	Mode           string        `mapstructure:"mode"`
	MaxMessageSize int64         `mapstructure:"maxMessageSize"`
	WriteWait      time.Duration `mapstructure:"writeWait"`
	PongWait       time.Duration `mapstructure:"pongWait"`
	SendBuffer     int           `mapstructure:"sendBuffer"`
}

type MetricsConf struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// PacingConf holds the pauses between the automatic messages of a trick and a round.
type PacingConf struct {
	TrickResult time.Duration `mapstructure:"trickResult"`
	ScoreRound  time.Duration `mapstructure:"scoreRound"`
	GameOver    time.Duration `mapstructure:"gameOver"`
	NextTrick   time.Duration `mapstructure:"nextTrick"`
}

type LimitsConf struct {
	MessagesPerSecond int `mapstructure:"messagesPerSecond"`
	Burst             int `mapstructure:"burst"`
}

type MonitorConf struct {
	Interval         time.Duration `mapstructure:"interval"`
	AbandonedRoomTTL time.Duration `mapstructure:"abandonedRoomTTL"`
}

type RoomsConf struct {
	ListCacheTTL time.Duration `mapstructure:"listCacheTTL"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("appName", "judgement")
	v.SetDefault("log.level", "info")

	v.SetDefault("server.addr", "0.0.0.0:8000")
	v.SetDefault("server.wsPath", "/ws")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.maxMessageSize", 4096)
	v.SetDefault("server.writeWait", 10*time.Second)
	v.SetDefault("server.pongWait", 60*time.Second)
	v.SetDefault("server.sendBuffer", 256)

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.port", 6060)

	v.SetDefault("pacing.trickResult", time.Second)
	v.SetDefault("pacing.scoreRound", time.Second)
	v.SetDefault("pacing.gameOver", 1500*time.Millisecond)
	v.SetDefault("pacing.nextTrick", 500*time.Millisecond)

	v.SetDefault("limits.messagesPerSecond", 20)
	v.SetDefault("limits.burst", 40)

	v.SetDefault("monitor.interval", 30*time.Second)
	v.SetDefault("monitor.abandonedRoomTTL", 30*time.Minute)

	v.SetDefault("rooms.listCacheTTL", time.Second)
}

func newViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}
	return v, nil
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load reads configFile on top of the defaults. An empty name loads defaults
// and environment overrides only.
func Load(configFile string) (*Config, error) {
	v, err := newViper(configFile)
	if err != nil {
		return nil, err
	}
	return decode(v)
}

// Watch calls onChange with the reloaded config every time configFile is
// written. Invalid edits are reported through onError and otherwise ignored.
func Watch(configFile string, onChange func(*Config), onError func(error)) error {
	if configFile == "" {
		return errors.New("watch: no config file")
	}
	v, err := newViper(configFile)
	if err != nil {
		return err
	}
	v.OnConfigChange(func(in fsnotify.Event) {
		cfg, err := decode(v)
		if err != nil {
			if onError != nil {
				onError(fmt.Errorf("reload %s: %w", in.Name, err))
			}
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
	return nil
}

func (c *Config) Validate() error {
	switch {
	case c.Server.Addr == "":
		return errors.New("server.addr is required")
	case !strings.HasPrefix(c.Server.WsPath, "/"):
		return fmt.Errorf("server.wsPath must start with '/': %q", c.Server.WsPath)
	case c.Server.MaxMessageSize <= 0:
		return errors.New("server.maxMessageSize must be positive")
	case c.Server.PongWait <= 0 || c.Server.WriteWait <= 0:
		return errors.New("server.pongWait and server.writeWait must be positive")
	case c.Server.SendBuffer <= 0:
		return errors.New("server.sendBuffer must be positive")
	case c.Pacing.TrickResult < 0 || c.Pacing.ScoreRound < 0 || c.Pacing.GameOver < 0 || c.Pacing.NextTrick < 0:
		return errors.New("pacing durations cannot be negative")
	case c.Monitor.Interval <= 0:
		return errors.New("monitor.interval must be positive")
	}
	return nil
}

func (c *Config) MetricsAddr() string {
	return fmt.Sprintf(":%d", c.Metrics.Port)
}
