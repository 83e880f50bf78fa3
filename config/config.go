package config

import (
	"io"
	"strings"
	"time"

	storetypes "github.com/cosmos/cosmos-sdk/store/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	"github.com/spf13/viper"
	"github.com/tendermint/tendermint/libs/log"

	"github.com/hyperledger-labs/yui-ibc-core/core/client"
	"github.com/hyperledger-labs/yui-ibc-core/core/connection"
	"github.com/hyperledger-labs/yui-ibc-core/core/host"
)

// EnvPrefix prefixes the environment variables overriding file values,
// e.g. IBC_HOST_CHAIN_ID or IBC_LOG_LEVEL.
const EnvPrefix = "IBC"

const (
	LogFormatPlain = "plain"
	LogFormatJSON  = "json"
)

var ErrInvalidConfig = sdkerrors.Register("config", 2, "invalid config")

type Config struct {
	Host       HostConfig       `mapstructure:"host"`
	Client     ClientConfig     `mapstructure:"client"`
	Connection ConnectionConfig `mapstructure:"connection"`
	Store      StoreConfig      `mapstructure:"store"`
	Log        LogConfig        `mapstructure:"log"`
}

type HostConfig struct {
	ChainID string `mapstructure:"chain_id"`
	// StoreKey names the committed IBC store. It is also the commitment
	// prefix counterparties verify proofs of this chain under.
	StoreKey string `mapstructure:"store_key"`
}

type ClientConfig struct {
	AllowedClients []string `mapstructure:"allowed_clients"`
}

type ConnectionConfig struct {
	MaxExpectedTimePerBlock time.Duration        `mapstructure:"max_expected_time_per_block"`
	Versions                []connection.Version `mapstructure:"versions"`
}

type StoreConfig struct {
	// KeepRecent is the number of committed versions that stay provable. Zero keeps all.
	KeepRecent uint64 `mapstructure:"keep_recent"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func DefaultConfig() Config {
	return Config{
		Host: HostConfig{
			ChainID:  "ibc-0",
			StoreKey: host.StoreKey,
		},
		Client: ClientConfig{
			AllowedClients: client.DefaultParams().AllowedClients,
		},
		Connection: ConnectionConfig{
			MaxExpectedTimePerBlock: connection.DefaultMaxExpectedTimePerBlock,
			Versions:                connection.GetCompatibleVersions(),
		},
		Store: StoreConfig{
			KeepRecent: 0,
		},
		Log: LogConfig{
			Level:  "info",
			Format: LogFormatPlain,
		},
	}
}

// Load reads the config file at path over the defaults. Environment variables
// prefixed with EnvPrefix override both. An empty path reads the environment only.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, sdkerrors.Wrapf(ErrInvalidConfig, "failed to read %s: %v", path, err)
		}
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, sdkerrors.Wrap(ErrInvalidConfig, err.Error())
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// setDefaults registers every scalar key so that AutomaticEnv can override it.
func setDefaults(v *viper.Viper, cfg Config) {
	v.SetDefault("host.chain_id", cfg.Host.ChainID)
	v.SetDefault("host.store_key", cfg.Host.StoreKey)
	v.SetDefault("client.allowed_clients", cfg.Client.AllowedClients)
	v.SetDefault("connection.max_expected_time_per_block", cfg.Connection.MaxExpectedTimePerBlock)
	v.SetDefault("store.keep_recent", cfg.Store.KeepRecent)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
}

func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.Host.ChainID) == "" {
		return sdkerrors.Wrap(ErrInvalidConfig, "chain id cannot be blank")
	}
	if err := host.PortIdentifierValidator(cfg.Host.StoreKey); err != nil {
		return sdkerrors.Wrapf(ErrInvalidConfig, "invalid store key: %v", err)
	}
	if len(cfg.Client.AllowedClients) == 0 {
		return sdkerrors.Wrap(ErrInvalidConfig, "allowed clients cannot be empty")
	}
	if cfg.Connection.MaxExpectedTimePerBlock <= 0 {
		return sdkerrors.Wrap(ErrInvalidConfig, "max expected time per block must be positive")
	}
	for i, version := range cfg.Connection.Versions {
		if err := connection.ValidateVersion(version); err != nil {
			return sdkerrors.Wrapf(ErrInvalidConfig, "connection version %d: %v", i, err)
		}
	}
	if _, err := log.AllowLevel(cfg.Log.Level); err != nil {
		return sdkerrors.Wrap(ErrInvalidConfig, err.Error())
	}
	switch cfg.Log.Format {
	case LogFormatPlain, LogFormatJSON:
	default:
		return sdkerrors.Wrapf(ErrInvalidConfig, "unknown log format %q", cfg.Log.Format)
	}
	return nil
}

func (cfg ClientConfig) Params() client.Params {
	return client.Params{AllowedClients: cfg.AllowedClients}
}

func (cfg ConnectionConfig) Params() connection.Params {
	return connection.Params{
		MaxExpectedTimePerBlock: cfg.MaxExpectedTimePerBlock,
		Versions:                cfg.Versions,
	}
}

func (cfg StoreConfig) PruningOptions() storetypes.PruningOptions {
	return storetypes.PruningOptions{KeepRecent: cfg.KeepRecent}
}

// NewLogger returns a logger writing to w in cfg.Format, filtered at cfg.Level.
func NewLogger(cfg LogConfig, w io.Writer) (log.Logger, error) {
	var logger log.Logger
	switch cfg.Format {
	case LogFormatPlain, "":
		logger = log.NewTMLogger(log.NewSyncWriter(w))
	case LogFormatJSON:
		logger = log.NewTMJSONLogger(log.NewSyncWriter(w))
	default:
		return nil, sdkerrors.Wrapf(ErrInvalidConfig, "unknown log format %q", cfg.Format)
	}
	option, err := log.AllowLevel(cfg.Level)
	if err != nil {
		return nil, sdkerrors.Wrap(ErrInvalidConfig, err.Error())
	}
	return log.NewFilter(logger, option), nil
}
