package config

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// MemoryConfig holds in-memory/JSON storage backend settings
type MemoryConfig struct {
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
}

// SQLiteConfig holds sqlite storage backend settings. An empty Path keeps the
// database in memory and dumps it to the memory output dir.
type SQLiteConfig struct {
	Path         string        `json:"path" mapstructure:"path"`
	DumpInterval time.Duration `json:"dumpInterval" mapstructure:"dumpInterval"`
}

// StorageConfig selects and configures the storage backend
type StorageConfig struct {
	Type   string       `json:"type" mapstructure:"type"`
	Memory MemoryConfig `json:"memory" mapstructure:"memory"`
	SQLite SQLiteConfig `json:"sqlite" mapstructure:"sqlite"`
}

// OTelConfig holds OpenTelemetry settings
type OTelConfig struct {
	Enabled      bool
	ServiceName  string
	BatchTimeout time.Duration
	Endpoint     string
	Insecure     bool
}

// TransportConfig holds the peer channel settings
type TransportConfig struct {
	Enabled bool
	URL     string
	Secret  string
}

// SimConfig tunes the local tick loop
type SimConfig struct {
	TickRate         int
	PresenceInterval time.Duration
	Seed             int64
}

// MatchConfig describes the match this client joins
type MatchConfig struct {
	Code          string
	Name          string
	Mode          string
	Map           string
	ScoreLimit    int
	RoundDuration time.Duration
	LayoutFile    string
}

// InfluxConfig holds InfluxDB connection settings
type InfluxConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Protocol string
	Token    string
	Org      string
	Bucket   string
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	// Set default values
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./arenalogs")

	viper.SetDefault("player.name", "Operator")
	viper.SetDefault("player.character", "ranger")

	viper.SetDefault("match.code", "DUST-SIM")
	viper.SetDefault("match.name", "Dust Simulation")
	viper.SetDefault("match.mode", "tdm")
	viper.SetDefault("match.map", "dust")
	viper.SetDefault("match.scoreLimit", 30)
	viper.SetDefault("match.roundDuration", "10m")

	viper.SetDefault("sim.tickRate", 60)
	viper.SetDefault("sim.presenceInterval", "50ms")
	viper.SetDefault("sim.seed", 0)

	viper.SetDefault("arena.layoutFile", "")

	viper.SetDefault("transport.enabled", false)
	viper.SetDefault("transport.url", "ws://localhost:8080/ws")
	viper.SetDefault("transport.secret", "")

	viper.SetDefault("api.serverUrl", "http://localhost:5000")
	viper.SetDefault("api.apiKey", "")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "arena")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "supersecrettoken")
	viper.SetDefault("influx.org", "arena-metrics")
	viper.SetDefault("influx.bucket", "match_telemetry")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.memory.outputDir", "./matches")
	viper.SetDefault("storage.memory.compressOutput", true)
	viper.SetDefault("storage.sqlite.path", "")
	viper.SetDefault("storage.sqlite.dumpInterval", "3m")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "arena-client")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)

	viper.SetConfigName("arena.cfg.json")
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// flagKeys maps command line flags to the config keys they override.
var flagKeys = map[string]string{
	"log-level": "logLevel",
	"name":      "player.name",
	"character": "player.character",
	"match":     "match.code",
	"map":       "match.map",
	"layout":    "arena.layoutFile",
	"storage":   "storage.type",
	"seed":      "sim.seed",
}

// BindFlags lets the flags of fs that were set override the config file.
// Flags without a config key are ignored.
func BindFlags(fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := viper.BindPFlag(key, f); err != nil {
			return fmt.Errorf("error binding flag %s: %w", name, err)
		}
	}
	return nil
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetStorageConfig returns the storage backend configuration.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type: viper.GetString("storage.type"),
		Memory: MemoryConfig{
			OutputDir:      viper.GetString("storage.memory.outputDir"),
			CompressOutput: viper.GetBool("storage.memory.compressOutput"),
		},
		SQLite: SQLiteConfig{
			Path:         viper.GetString("storage.sqlite.path"),
			DumpInterval: viper.GetDuration("storage.sqlite.dumpInterval"),
		},
	}
}

// GetOTelConfig returns the OpenTelemetry configuration.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
	}
}

// GetTransportConfig returns the peer channel configuration.
func GetTransportConfig() TransportConfig {
	return TransportConfig{
		Enabled: viper.GetBool("transport.enabled"),
		URL:     viper.GetString("transport.url"),
		Secret:  viper.GetString("transport.secret"),
	}
}

// GetSimConfig returns the tick loop configuration. A non-positive tick rate
// falls back to 60.
func GetSimConfig() SimConfig {
	rate := viper.GetInt("sim.tickRate")
	if rate <= 0 {
		rate = 60
	}
	return SimConfig{
		TickRate:         rate,
		PresenceInterval: viper.GetDuration("sim.presenceInterval"),
		Seed:             viper.GetInt64("sim.seed"),
	}
}

// GetMatchConfig returns the match this client joins.
func GetMatchConfig() MatchConfig {
	return MatchConfig{
		Code:          viper.GetString("match.code"),
		Name:          viper.GetString("match.name"),
		Mode:          viper.GetString("match.mode"),
		Map:           viper.GetString("match.map"),
		ScoreLimit:    viper.GetInt("match.scoreLimit"),
		RoundDuration: viper.GetDuration("match.roundDuration"),
		LayoutFile:    viper.GetString("arena.layoutFile"),
	}
}

// GetInfluxConfig returns the InfluxDB configuration.
func GetInfluxConfig() InfluxConfig {
	return InfluxConfig{
		Enabled:  viper.GetBool("influx.enabled"),
		Host:     viper.GetString("influx.host"),
		Port:     viper.GetString("influx.port"),
		Protocol: viper.GetString("influx.protocol"),
		Token:    viper.GetString("influx.token"),
		Org:      viper.GetString("influx.org"),
		Bucket:   viper.GetString("influx.bucket"),
	}
}
