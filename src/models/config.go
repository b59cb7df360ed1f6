package models

// MConfig Structure
type MConfig struct {
	Name     string          `yaml:"name" envconfig:"APP_NAME"`
	Host     string          `yaml:"host" envconfig:"SERVER_HOST"`
	Port     int             `yaml:"port" envconfig:"SERVER_PORT"`
	LogLevel string          `yaml:"log_level" envconfig:"LOG_LEVEL"`
	Gateway  MGatewayConfig  `yaml:"gateway"`
	Market   MMarketConfig   `yaml:"market"`
	Engine   MEngineConfig   `yaml:"engine"`
	Schedule MScheduleConfig `yaml:"schedule"`
	Storage  MStorageConfig  `yaml:"storage"`
	Network  MNetworkConfig  `yaml:"network"`
}

type MGatewayConfig struct {
	Host     string `yaml:"host" envconfig:"IB_HOST"`
	Port     int    `yaml:"port" envconfig:"IB_PORT"`
	ClientID int    `yaml:"client_id" envconfig:"IB_CLIENT_ID"`
	Readonly bool   `yaml:"readonly" envconfig:"IB_READONLY"`
}

type MMarketConfig struct {
	FutureSymbol    string   `yaml:"future_symbol"`
	FutureExchange  string   `yaml:"future_exchange"`
	IndexSymbol     string   `yaml:"index_symbol"`
	IndexExchange   string   `yaml:"index_exchange"`
	TradingClass    string   `yaml:"trading_class"`
	OptionExchanges []string `yaml:"option_exchanges"`
}

type MEngineConfig struct {
	UpdateIntervalSeconds int     `yaml:"update_interval_seconds"`
	ReconnectBackoffSec   int     `yaml:"reconnect_backoff_seconds"`
	ReselectPoints        float64 `yaml:"reselect_points"`
	RingCapacity          int     `yaml:"ring_capacity"`
	PauseWhenClosed       bool    `yaml:"pause_when_closed"`
}

type MScheduleConfig struct {
	Timezone      string `yaml:"timezone"`
	MorningSnap   string `yaml:"morning_snapshot"`   // "10:00"
	AfternoonSnap string `yaml:"afternoon_snapshot"` // "15:30"
	LateSnap      string `yaml:"late_snapshot"`      // "15:45"
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type"`
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string" envconfig:"DB_CONNECTION_STRING"`
	RetentionDays      int    `yaml:"retention_days"`
	TickCSVPath        string `yaml:"tick_csv_path"`
	SnapshotCSVPath    string `yaml:"snapshot_csv_path"`
}

type MNetworkConfig struct {
	RequestTimeout int    `yaml:"timeout"`
	MaxRetries     int    `yaml:"retries"`
	UserAgent      string `yaml:"user_agent"`
}
