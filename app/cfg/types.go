package cfg

type Cfg struct {
	// Storage configuration
	DBPath  string
	DataDir string

	// Ingestion configuration
	ChunkSize     int
	StartYear     int
	EndYear       int
	CurrentCSVURL string
	ArchiveBaseURL string
	RecentDays    int
	Bootstrap     bool
	SkipCurrent   bool

	// Application configuration
	Port         string
	APIAccessKey string
	RedisAddr    string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
