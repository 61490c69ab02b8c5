package config

import (
	"bytes"
	"path/filepath"
	"text/template"

	tmos "github.com/tendermint/tendermint/libs/os"
)

var configTemplate *template.Template

func init() {
	var err error
	if configTemplate, err = template.New("configFileTemplate").Parse(defaultConfigTemplate); err != nil {
		panic(err)
	}
}

// EnsureRoot creates the root, config, and data directories if they don't exist,
// and panics if it fails.
func EnsureRoot(rootDir string) {
	if err := tmos.EnsureDir(rootDir, 0700); err != nil {
		panic(err.Error())
	}
	if err := tmos.EnsureDir(filepath.Join(rootDir, defaultConfigDir), 0700); err != nil {
		panic(err.Error())
	}
	if err := tmos.EnsureDir(filepath.Join(rootDir, defaultDataDir), 0700); err != nil {
		panic(err.Error())
	}

	configFilePath := filepath.Join(rootDir, defaultConfigFilePath)

	// Write default config file if missing.
	if !tmos.FileExists(configFilePath) {
		WriteConfigFile(configFilePath, DefaultConfig())
	}
}

// WriteConfigFile renders config using the template and writes it to configFilePath.
func WriteConfigFile(configFilePath string, config *Config) {
	var buffer bytes.Buffer

	if err := configTemplate.Execute(&buffer, config); err != nil {
		panic(err)
	}

	tmos.MustWriteFile(configFilePath, buffer.Bytes(), 0644)
}

// Note: any changes to the comments/variables/mapstructure
// must be reflected in the appropriate struct in config/config.go
const defaultConfigTemplate = `# This is a TOML config file.
# For more information, see https://github.com/toml-lang/toml

##### main base config options #####

# Path to the JSON file with the initial state
genesis_file = "{{ js .BaseConfig.Genesis }}"

# Database backend: goleveldb | memdb
db_backend = "{{ .BaseConfig.DBBackend }}"

# Database directory
db_dir = "{{ js .BaseConfig.DBPath }}"

# Number of recent state versions kept on disk, 0 keeps all of them
keep_last_states = {{ .BaseConfig.KeepLastStates }}

# Number of tree nodes cached in memory
state_cache_size = {{ .BaseConfig.StateCacheSize }}

# leveldb block cache and write buffer, in MB
db_cache_size = {{ .BaseConfig.DBCacheSize }}
db_write_buffer_size = {{ .BaseConfig.DBWriteBufferSize }}

# Output level for logging, including package level options
log_level = "{{ .BaseConfig.LogLevel }}"

# Output format: 'plain' (colored text) or 'json'
log_format = "{{ .BaseConfig.LogFormat }}"

# Path to file for logs, "stdout" by default
log_path = "{{ .BaseConfig.LogPath }}"

# Address payments are collected into and withdrawals are paid from
treasury = "{{ .BaseConfig.Treasury }}"

##### engine constants #####
# Changing these for an existing state changes how it evolves.
[engine]

cap_multiplier = {{ .Engine.CapMultiplier }}

upline_depth = {{ .Engine.UplineDepth }}
level_depth = {{ .Engine.LevelDepth }}
team_size_depth = {{ .Engine.TeamSizeDepth }}

network_size_max_queue = {{ .Engine.NetworkSizeMaxQueue }}
network_size_max_visited = {{ .Engine.NetworkSizeMaxVisited }}
network_size_cache_ttl = "{{ .Engine.NetworkSizeCacheTTL }}"
network_size_cache_size = {{ .Engine.NetworkSizeCacheSize }}

# Recipients paid per distribution batch
batch_size = {{ .Engine.BatchSize }}

min_withdrawal = "{{ .Engine.MinWithdrawal }}"
max_single_withdrawal = "{{ .Engine.MaxSingleWithdrawal }}"
platform_fee_bp = {{ .Engine.PlatformFeeBP }}
reinvest_level_bp = {{ .Engine.ReinvestLevelBP }}
reinvest_upline_bp = {{ .Engine.ReinvestUplineBP }}

leadership_interval = "{{ .Engine.LeadershipInterval }}"
community_interval = "{{ .Engine.CommunityInterval }}"
club_interval = "{{ .Engine.ClubInterval }}"
algorithmic_interval = "{{ .Engine.AlgorithmicInterval }}"

leader_silver_directs = {{ .Engine.LeaderSilverDirects }}
leader_gold_directs = {{ .Engine.LeaderGoldDirects }}
leader_gold_share_bp = {{ .Engine.LeaderGoldShareBP }}
club_min_level = {{ .Engine.ClubMinLevel }}
algorithmic_min_team = {{ .Engine.AlgorithmicMinTeam }}

##### native coin price #####
[oracle]

# JSON file {"rate": "...", "updated_at": <unix>} kept fresh by a price relayer
price_file = "{{ js .Oracle.PriceFile }}"

# Fixed reference units per native coin scaled by 1e18, used without a price file.
# Leave both empty to disable native payments.
rate = "{{ .Oracle.Rate }}"
min_rate = "{{ .Oracle.MinRate }}"
max_rate = "{{ .Oracle.MaxRate }}"

# Quotes older than this are rejected
max_age = "{{ .Oracle.MaxAge }}"

# Quote refreshes per second
refresh_rate = {{ .Oracle.RefreshRate }}

##### distribution keeper #####
[keeper]

enabled = {{ .Keeper.Enabled }}

# cron schedule for due pool checks
schedule = "{{ .Keeper.Schedule }}"

# Address distributions are submitted as
address = "{{ .Keeper.Address }}"

# Distributions per second
rate_limit = {{ .Keeper.RateLimit }}

# Batches delivered per pool and run
max_batches = {{ .Keeper.MaxBatches }}

##### instrumentation configuration options #####
[instrumentation]

# When true, Prometheus metrics are served under /metrics on
# PrometheusListenAddr.
prometheus = {{ .Instrumentation.Prometheus }}

# Address to listen for Prometheus collector(s) connections
prometheus_listen_addr = "{{ .Instrumentation.PrometheusListenAddr }}"

# Maximum number of simultaneous connections.
# 0 - unlimited.
max_open_connections = {{ .Instrumentation.MaxOpenConnections }}

# Instrumentation namespace
namespace = "{{ .Instrumentation.Namespace }}"
`
