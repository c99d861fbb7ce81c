package sqlite

import "time"

// Config defines the configuration for the embedded SQLite engine.
type Config struct {
	// Path is the database file. ":memory:" opens a private in-memory
	// database that lives as long as the client.
	// Default: "coach.db"
	Path string `yaml:"path" envconfig:"SQLITE_PATH"`

	// JournalMode is passed to PRAGMA journal_mode. WAL lets readers proceed
	// while a writer commits. Ignored for in-memory databases.
	// Default: "WAL"
	JournalMode string `yaml:"journal_mode"`

	// BusyTimeout is how long a statement waits on a locked database before
	// failing with a connectivity error.
	// Default: 5 seconds
	BusyTimeout time.Duration `yaml:"busy_timeout"`

	// DisableForeignKeys turns off foreign key enforcement, which is on by default.
	DisableForeignKeys bool `yaml:"disable_foreign_keys"`

	// MaxOpenConns caps the connection pool. SQLite serialises writers
	// regardless; extra connections only add concurrent readers. In-memory
	// databases always use a single connection.
	// Default: 1
	MaxOpenConns int `yaml:"max_open_conns"`
}

const (
	MemoryPath = ":memory:"

	DefaultPath         = "coach.db"
	DefaultJournalMode  = "WAL"
	DefaultBusyTimeout  = 5 * time.Second
	DefaultMaxOpenConns = 1
)

// withDefaults fills unset fields.
func (c Config) withDefaults() Config {
	if c.Path == "" {
		c.Path = DefaultPath
	}
	if c.JournalMode == "" {
		c.JournalMode = DefaultJournalMode
	}
	if c.BusyTimeout <= 0 {
		c.BusyTimeout = DefaultBusyTimeout
	}
	if c.MaxOpenConns <= 0 || c.inMemory() {
		c.MaxOpenConns = DefaultMaxOpenConns
	}
	return c
}

func (c Config) inMemory() bool {
	return c.Path == MemoryPath
}
