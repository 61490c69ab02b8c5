package config

import (
	"fmt"
	"math/big"
	"path/filepath"
	"time"

	"github.com/MinterTeam/incentives-engine/cmd/utils"
	"github.com/MinterTeam/incentives-engine/core/types"
	tmConfig "github.com/tendermint/tendermint/config"
)

const (
	// LogFormatPlain is a format for colored text
	LogFormatPlain = "plain"
	// LogFormatJSON is a format for json output
	LogFormatJSON = "json"

	defaultConfigDir = "config"
	defaultDataDir   = "data"

	defaultConfigFileName  = "config.toml"
	defaultGenesisJSONName = "genesis.json"
)

var (
	defaultConfigFilePath  = filepath.Join(defaultConfigDir, defaultConfigFileName)
	defaultGenesisJSONPath = filepath.Join(defaultConfigDir, defaultGenesisJSONName)
)

// DefaultConfig returns the configuration written on first run.
func DefaultConfig() *Config {
	cfg := &Config{
		BaseConfig:      DefaultBaseConfig(),
		Engine:          DefaultEngineConfig(),
		Oracle:          DefaultOracleConfig(),
		Keeper:          DefaultKeeperConfig(),
		Instrumentation: tmConfig.DefaultInstrumentationConfig(),
	}
	cfg.Instrumentation.Namespace = "incentives"

	return cfg
}

// GetConfig returns the defaults rooted at the home directory, creating it
// when missing.
func GetConfig() *Config {
	cfg := DefaultConfig()

	cfg.SetRoot(utils.GetHome())
	EnsureRoot(utils.GetHome())

	return cfg
}

// Config defines the top level configuration of the engine process
type Config struct {
	// Top level options use an anonymous struct
	BaseConfig `mapstructure:",squash"`

	Engine          *EngineConfig                   `mapstructure:"engine"`
	Oracle          *OracleConfig                   `mapstructure:"oracle"`
	Keeper          *KeeperConfig                   `mapstructure:"keeper"`
	Instrumentation *tmConfig.InstrumentationConfig `mapstructure:"instrumentation"`
}

func (cfg *Config) SetRoot(root string) *Config {
	cfg.BaseConfig.RootDir = root
	return cfg
}

// ValidateBasic performs basic validation and returns an error if any check
// fails.
func (cfg *Config) ValidateBasic() error {
	if cfg.KeepLastStates < 0 {
		return fmt.Errorf("keep_last_states can't be negative")
	}
	if cfg.LogFormat != LogFormatPlain && cfg.LogFormat != LogFormatJSON {
		return fmt.Errorf("unsupported log_format %q", cfg.LogFormat)
	}
	if !types.IsHexAddress(cfg.Treasury) {
		return fmt.Errorf("treasury %q is not an address", cfg.Treasury)
	}
	if _, err := cfg.Engine.Params(); err != nil {
		return fmt.Errorf("error in [engine] section: %w", err)
	}
	if err := cfg.Oracle.ValidateBasic(); err != nil {
		return fmt.Errorf("error in [oracle] section: %w", err)
	}
	if err := cfg.Keeper.ValidateBasic(); err != nil {
		return fmt.Errorf("error in [keeper] section: %w", err)
	}
	return nil
}

//-----------------------------------------------------------------------------
// BaseConfig

type BaseConfig struct {
	// The root directory for all data.
	// This should be set in viper so it can unmarshal into this struct
	RootDir string `mapstructure:"home"`

	// Path to the JSON file containing the genesis document
	Genesis string `mapstructure:"genesis_file"`

	// Output level for logging
	LogLevel string `mapstructure:"log_level"`

	// Output format: 'plain' (colored text) or 'json'
	LogFormat string `mapstructure:"log_format"`

	LogPath string `mapstructure:"log_path"`

	// Database backend: goleveldb | memdb
	DBBackend string `mapstructure:"db_backend"`

	// Database directory
	DBPath string `mapstructure:"db_dir"`

	// Number of recent state versions kept; 0 keeps all
	KeepLastStates int64 `mapstructure:"keep_last_states"`

	StateCacheSize int `mapstructure:"state_cache_size"`

	// leveldb block cache and write buffer, in MB
	DBCacheSize       int `mapstructure:"db_cache_size"`
	DBWriteBufferSize int `mapstructure:"db_write_buffer_size"`

	// Address the engine collects payments into and pays withdrawals from
	Treasury string `mapstructure:"treasury"`
}

func DefaultBaseConfig() BaseConfig {
	return BaseConfig{
		Genesis:           defaultGenesisJSONPath,
		LogLevel:          DefaultPackageLogLevels(),
		LogFormat:         LogFormatPlain,
		LogPath:           "stdout",
		DBBackend:         "goleveldb",
		DBPath:            defaultDataDir,
		KeepLastStates:    0,
		StateCacheSize:    100000,
		DBCacheSize:       64,
		DBWriteBufferSize: 16,
		Treasury:          types.NameToAddress("treasury").String(),
	}
}

// GenesisFile returns the full path to the genesis.json file
func (cfg BaseConfig) GenesisFile() string {
	return rootify(cfg.Genesis, cfg.RootDir)
}

// DBDir returns the full path to the database directory
func (cfg BaseConfig) DBDir() string {
	return rootify(cfg.DBPath, cfg.RootDir)
}

// PriceFile returns the full path to the oracle price file, if any
func (cfg *Config) PriceFile() string {
	if cfg.Oracle.PriceFile == "" {
		return ""
	}
	return rootify(cfg.Oracle.PriceFile, cfg.RootDir)
}

func (cfg BaseConfig) TreasuryAddress() types.Address {
	return types.HexToAddress(cfg.Treasury)
}

// DefaultLogLevel returns a default log level of "error"
func DefaultLogLevel() string {
	return "error"
}

// DefaultPackageLogLevels returns a default log level setting so all modules
// log at "error", while the `engine` and `main` modules log at "info"
func DefaultPackageLogLevels() string {
	return fmt.Sprintf("engine:info,keeper:info,main:info,*:%s", DefaultLogLevel())
}

//-----------------------------------------------------------------------------
// EngineConfig

// EngineConfig holds the fixed engine constants. Amounts are decimal strings
// in the smallest unit.
type EngineConfig struct {
	CapMultiplier uint64 `mapstructure:"cap_multiplier"`

	UplineDepth   int `mapstructure:"upline_depth"`
	LevelDepth    int `mapstructure:"level_depth"`
	TeamSizeDepth int `mapstructure:"team_size_depth"`

	NetworkSizeMaxQueue   int           `mapstructure:"network_size_max_queue"`
	NetworkSizeMaxVisited int           `mapstructure:"network_size_max_visited"`
	NetworkSizeCacheTTL   time.Duration `mapstructure:"network_size_cache_ttl"`
	NetworkSizeCacheSize  int           `mapstructure:"network_size_cache_size"`

	BatchSize uint64 `mapstructure:"batch_size"`

	MinWithdrawal       string `mapstructure:"min_withdrawal"`
	MaxSingleWithdrawal string `mapstructure:"max_single_withdrawal"`
	PlatformFeeBP       uint64 `mapstructure:"platform_fee_bp"`
	ReinvestLevelBP     uint64 `mapstructure:"reinvest_level_bp"`
	ReinvestUplineBP    uint64 `mapstructure:"reinvest_upline_bp"`

	LeadershipInterval  time.Duration `mapstructure:"leadership_interval"`
	CommunityInterval   time.Duration `mapstructure:"community_interval"`
	ClubInterval        time.Duration `mapstructure:"club_interval"`
	AlgorithmicInterval time.Duration `mapstructure:"algorithmic_interval"`

	LeaderSilverDirects uint64 `mapstructure:"leader_silver_directs"`
	LeaderGoldDirects   uint64 `mapstructure:"leader_gold_directs"`
	LeaderGoldShareBP   uint64 `mapstructure:"leader_gold_share_bp"`
	ClubMinLevel        uint32 `mapstructure:"club_min_level"`
	AlgorithmicMinTeam  uint64 `mapstructure:"algorithmic_min_team"`
}

func DefaultEngineConfig() *EngineConfig {
	p := types.DefaultParams()

	return &EngineConfig{
		CapMultiplier:         p.CapMultiplier,
		UplineDepth:           p.UplineDepth,
		LevelDepth:            p.LevelDepth,
		TeamSizeDepth:         p.TeamSizeDepth,
		NetworkSizeMaxQueue:   p.NetworkSizeMaxQueue,
		NetworkSizeMaxVisited: p.NetworkSizeMaxVisited,
		NetworkSizeCacheTTL:   p.NetworkSizeCacheTTL,
		NetworkSizeCacheSize:  p.NetworkSizeCacheSize,
		BatchSize:             p.BatchSize,
		MinWithdrawal:         p.MinWithdrawal.String(),
		MaxSingleWithdrawal:   p.MaxSingleWithdrawal.String(),
		PlatformFeeBP:         p.PlatformFeeBP,
		ReinvestLevelBP:       p.ReinvestLevelBP,
		ReinvestUplineBP:      p.ReinvestUplineBP,
		LeadershipInterval:    p.DistributionIntervals[types.PoolLeadership],
		CommunityInterval:     p.DistributionIntervals[types.PoolCommunity],
		ClubInterval:          p.DistributionIntervals[types.PoolClub],
		AlgorithmicInterval:   p.DistributionIntervals[types.PoolAlgorithmic],
		LeaderSilverDirects:   p.LeaderSilverDirects,
		LeaderGoldDirects:     p.LeaderGoldDirects,
		LeaderGoldShareBP:     p.LeaderGoldShareBP,
		ClubMinLevel:          p.ClubMinLevel,
		AlgorithmicMinTeam:    p.AlgorithmicMinTeam,
	}
}

// Params converts the section into validated engine parameters. Withdrawal
// rate tiers keep their defaults.
func (cfg *EngineConfig) Params() (types.Params, error) {
	p := types.DefaultParams()

	minWithdrawal, ok := big.NewInt(0).SetString(cfg.MinWithdrawal, 10)
	if !ok {
		return p, fmt.Errorf("min_withdrawal %q is not a number", cfg.MinWithdrawal)
	}
	maxWithdrawal, ok := big.NewInt(0).SetString(cfg.MaxSingleWithdrawal, 10)
	if !ok {
		return p, fmt.Errorf("max_single_withdrawal %q is not a number", cfg.MaxSingleWithdrawal)
	}

	p.CapMultiplier = cfg.CapMultiplier
	p.UplineDepth = cfg.UplineDepth
	p.LevelDepth = cfg.LevelDepth
	p.TeamSizeDepth = cfg.TeamSizeDepth
	p.NetworkSizeMaxQueue = cfg.NetworkSizeMaxQueue
	p.NetworkSizeMaxVisited = cfg.NetworkSizeMaxVisited
	p.NetworkSizeCacheTTL = cfg.NetworkSizeCacheTTL
	p.NetworkSizeCacheSize = cfg.NetworkSizeCacheSize
	p.BatchSize = cfg.BatchSize
	p.MinWithdrawal = minWithdrawal
	p.MaxSingleWithdrawal = maxWithdrawal
	p.PlatformFeeBP = cfg.PlatformFeeBP
	p.ReinvestLevelBP = cfg.ReinvestLevelBP
	p.ReinvestUplineBP = cfg.ReinvestUplineBP
	p.DistributionIntervals = map[types.PoolType]time.Duration{
		types.PoolLeadership:  cfg.LeadershipInterval,
		types.PoolCommunity:   cfg.CommunityInterval,
		types.PoolClub:        cfg.ClubInterval,
		types.PoolAlgorithmic: cfg.AlgorithmicInterval,
	}
	p.LeaderSilverDirects = cfg.LeaderSilverDirects
	p.LeaderGoldDirects = cfg.LeaderGoldDirects
	p.LeaderGoldShareBP = cfg.LeaderGoldShareBP
	p.ClubMinLevel = cfg.ClubMinLevel
	p.AlgorithmicMinTeam = cfg.AlgorithmicMinTeam

	return p, p.Validate()
}

//-----------------------------------------------------------------------------
// OracleConfig

// OracleConfig selects and bounds the native coin price. Rates are reference
// units per native coin, scaled by 1e18. A price file takes precedence over
// a fixed rate.
type OracleConfig struct {
	PriceFile   string        `mapstructure:"price_file"`
	Rate        string        `mapstructure:"rate"`
	MinRate     string        `mapstructure:"min_rate"`
	MaxRate     string        `mapstructure:"max_rate"`
	MaxAge      time.Duration `mapstructure:"max_age"`
	RefreshRate float64       `mapstructure:"refresh_rate"`
}

func DefaultOracleConfig() *OracleConfig {
	return &OracleConfig{
		PriceFile:   "",
		Rate:        "",
		MinRate:     types.Units(1).String(),
		MaxRate:     types.Units(1000).String(),
		MaxAge:      10 * time.Minute,
		RefreshRate: 1,
	}
}

// Enabled reports whether native coin payments are accepted.
func (cfg *OracleConfig) Enabled() bool {
	return cfg.PriceFile != "" || cfg.Rate != ""
}

func (cfg *OracleConfig) ValidateBasic() error {
	for name, value := range map[string]string{"min_rate": cfg.MinRate, "max_rate": cfg.MaxRate} {
		if v, ok := big.NewInt(0).SetString(value, 10); !ok || v.Sign() <= 0 {
			return fmt.Errorf("%s %q must be a positive number", name, value)
		}
	}
	if cfg.Rate != "" {
		if v, ok := big.NewInt(0).SetString(cfg.Rate, 10); !ok || v.Sign() <= 0 {
			return fmt.Errorf("rate %q must be a positive number", cfg.Rate)
		}
	}
	if cfg.MaxAge <= 0 {
		return fmt.Errorf("max_age must be positive")
	}
	if cfg.RefreshRate < 0 {
		return fmt.Errorf("refresh_rate can't be negative")
	}
	return nil
}

//-----------------------------------------------------------------------------
// KeeperConfig

// KeeperConfig drives the distribution keeper run by `incentives node`.
type KeeperConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// cron schedule, e.g. "@every 1m"
	Schedule string `mapstructure:"schedule"`
	// address the keeper submits distributions as
	Address string `mapstructure:"address"`
	// distributions per second
	RateLimit float64 `mapstructure:"rate_limit"`
	// batches delivered per pool and run
	MaxBatches int `mapstructure:"max_batches"`
}

func DefaultKeeperConfig() *KeeperConfig {
	return &KeeperConfig{
		Enabled:    true,
		Schedule:   "@every 1m",
		Address:    types.NameToAddress("keeper").String(),
		RateLimit:  5,
		MaxBatches: 20,
	}
}

func (cfg *KeeperConfig) ValidateBasic() error {
	if !cfg.Enabled {
		return nil
	}
	if cfg.Schedule == "" {
		return fmt.Errorf("schedule is empty")
	}
	if !types.IsHexAddress(cfg.Address) {
		return fmt.Errorf("address %q is not an address", cfg.Address)
	}
	if cfg.RateLimit <= 0 {
		return fmt.Errorf("rate_limit must be positive")
	}
	if cfg.MaxBatches <= 0 {
		return fmt.Errorf("max_batches must be positive")
	}
	return nil
}

//-----------------------------------------------------------------------------
// Utils

// helper function to make config creation independent of root dir
func rootify(path, root string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
