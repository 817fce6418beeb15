package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

const defaultCurrentCSVURL = "https://sam.gov/api/prod/fileextractservices/v1/api/download/" +
	"Contract%20Opportunities/datagov/ContractOpportunitiesFullCSV.csv?privacy=Public"

const defaultArchiveBaseURL = "https://sam.gov/api/prod/fileextractservices/v1/api/download/" +
	"Contract%20Opportunities/Archived%20Data/"

type rawCfg struct {
	// Storage configuration
	DBPath  string `long:"db-path" env:"DB_PATH" default:"data/opportunities.db" description:"Path to the SQLite database file"`
	DataDir string `long:"data-dir" env:"DATA_DIR" default:"data" description:"Directory for downloads and progress files"`

	// Ingestion configuration
	ChunkSize      int    `long:"chunk-size" env:"CHUNK_SIZE" default:"10000" description:"Number of CSV rows per ingestion batch"`
	StartYear      int    `long:"start-year" env:"START_YEAR" default:"2020" description:"First fiscal year archive to bootstrap"`
	EndYear        int    `long:"end-year" env:"END_YEAR" description:"Last fiscal year archive to bootstrap (default: current FY)"`
	CurrentCSVURL  string `long:"current-csv-url" env:"CURRENT_CSV_URL" description:"Override URL for the current opportunities CSV"`
	ArchiveBaseURL string `long:"archive-base-url" env:"ARCHIVE_BASE_URL" description:"Override base URL for fiscal year archives"`
	RecentDays     int    `long:"recent-days" env:"RECENT_DAYS" default:"30" description:"Trailing window in days for recent-activity stats"`
	Bootstrap      bool   `long:"bootstrap" env:"BOOTSTRAP" description:"Run the archive bootstrap before serving"`
	SkipCurrent    bool   `long:"skip-current" env:"SKIP_CURRENT" description:"Skip the current CSV during bootstrap"`

	// Application configuration
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for admin endpoints (optional)"`
	RedisAddr    string `long:"redis-addr" env:"REDIS_ADDR" description:"Redis address for response caching (optional, e.g. localhost:6379)"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"SAM Atlas/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:         raw.DBPath,
		DataDir:        raw.DataDir,
		ChunkSize:      raw.ChunkSize,
		StartYear:      raw.StartYear,
		EndYear:        cmp.Or(raw.EndYear, currentFiscalYear()),
		CurrentCSVURL:  cmp.Or(raw.CurrentCSVURL, defaultCurrentCSVURL),
		ArchiveBaseURL: cmp.Or(raw.ArchiveBaseURL, defaultArchiveBaseURL),
		RecentDays:     raw.RecentDays,
		Bootstrap:      raw.Bootstrap,
		SkipCurrent:    raw.SkipCurrent,
		Port:           raw.Port,
		APIAccessKey:   raw.APIAccessKey,
		RedisAddr:      raw.RedisAddr,
		UserAgent:      raw.UserAgent,
		Timezone:       raw.Timezone,
		Debug:          raw.Debug,
		Version:        GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

// currentFiscalYear returns the US federal fiscal year of today: FY N runs
// from October of N-1 through September of N.
func currentFiscalYear() int {
	now := time.Now()
	if now.Month() >= time.October {
		return now.Year() + 1
	}
	return now.Year()
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
			fmt.Printf("Timezone configured: %s\n", timezone)
		}
	}
	return nil
}
