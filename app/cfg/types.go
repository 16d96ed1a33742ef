package cfg

type Cfg struct {
	// Database configuration
	DBPath string

	// Application configuration
	Port              string
	WorkerCount       int
	RefreshInterval   int
	FetchTimeout      int
	SubscriptionsFile string
	APIAccessKey      string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
