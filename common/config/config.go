// Package config loads the single-process game core's configuration via
// viper, adapted from the teacher's per-service AConfig/LogConf/JwtConf/
// DatabaseConf split (common/config/app_config.go) into one Config struct
// since this module runs as one binary instead of a service mesh.
package config

import (
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConf    `mapstructure:"server"`
	Log       LogConf       `mapstructure:"log"`
	Ticket    TicketConf    `mapstructure:"ticket"`
	Mongo     MongoConf     `mapstructure:"mongo"`
	Redis     RedisConf     `mapstructure:"redis"`
	Timer     TimerConf     `mapstructure:"timer"`
	RateLimit RateLimitConf `mapstructure:"rateLimit"`
	Replay    ReplayConf    `mapstructure:"replay"`
}

type ServerConf struct {
	ID         string `mapstructure:"id"`
	ListenAddr string `mapstructure:"listenAddr"`
	MetricPort int    `mapstructure:"metricPort"`
}

type LogConf struct {
	Level string `mapstructure:"level"`
	Path  string `mapstructure:"path"`
}

// TicketConf configures the HMAC admission-ticket verifier and, separately,
// the JWT reconnection-session token signer (see ticket.HMACVerifier and
// ticket.SessionSigner).
type TicketConf struct {
	AdmissionSecret string `mapstructure:"admissionSecret"`
	SessionSecret   string `mapstructure:"sessionSecret"`
	SessionTTL      int    `mapstructure:"sessionTTLSeconds"`
}

type MongoConf struct {
	URL         string `mapstructure:"url"`
	Db          string `mapstructure:"db"`
	MinPoolSize int    `mapstructure:"minPoolSize"`
	MaxPoolSize int    `mapstructure:"maxPoolSize"`
}

type RedisConf struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	PoolSize int    `mapstructure:"poolSize"`
}

// TimerConf mirrors original_source/backend/game/logic/timer.py's TimerConfig.
type TimerConf struct {
	BaseTurnSeconds          float64 `mapstructure:"baseTurnSeconds"`
	InitialBankSeconds       float64 `mapstructure:"initialBankSeconds"`
	MaxBankSeconds           float64 `mapstructure:"maxBankSeconds"`
	RoundBonusSeconds        float64 `mapstructure:"roundBonusSeconds"`
	MeldDecisionSeconds      float64 `mapstructure:"meldDecisionSeconds"`
	RoundAdvanceTimeoutSecs  float64 `mapstructure:"roundAdvanceTimeoutSeconds"`
}

type RateLimitConf struct {
	RatePerSecond float64 `mapstructure:"ratePerSecond"`
	Burst         int     `mapstructure:"burst"`
	DecodeStrikes int     `mapstructure:"decodeStrikes"`
}

type ReplayConf struct {
	Dir string `mapstructure:"dir"`
}

var Conf Config

// Load reads configuration from configFile and installs a hot-reload
// watcher for the mutable tunables (rate limiting, timer bank), matching
// the teacher's InitFixedConfig use of viper.WatchConfig/fsnotify.
func Load(configFile string) error {
	v := viper.New()
	v.SetConfigFile(configFile)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return err
	}
	if err := v.Unmarshal(&Conf); err != nil {
		return err
	}

	v.WatchConfig()
	v.OnConfigChange(func(in fsnotify.Event) {
		var reloaded Config
		if err := v.Unmarshal(&reloaded); err == nil {
			Conf.Timer = reloaded.Timer
			Conf.RateLimit = reloaded.RateLimit
		}
	})
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.listenAddr", ":8765")
	v.SetDefault("log.level", "info")
	v.SetDefault("ticket.sessionTTLSeconds", 1800)
	v.SetDefault("timer.baseTurnSeconds", 5.0)
	v.SetDefault("timer.initialBankSeconds", 20.0)
	v.SetDefault("timer.maxBankSeconds", 60.0)
	v.SetDefault("timer.roundBonusSeconds", 10.0)
	v.SetDefault("timer.meldDecisionSeconds", 5.0)
	v.SetDefault("timer.roundAdvanceTimeoutSeconds", 30.0)
	v.SetDefault("rateLimit.ratePerSecond", 10.0)
	v.SetDefault("rateLimit.burst", 20)
	v.SetDefault("rateLimit.decodeStrikes", 5)
	v.SetDefault("replay.dir", "./replays")
}
