package redis

import "time"

// Config defines the connection to the Redis server that caches sessions.
type Config struct {
	// Host is the Redis server hostname or IP address
	// Default: "localhost"
	Host string `yaml:"host" envconfig:"REDIS_HOST"`

	// Port is the Redis server port
	// Default: 6379
	Port int `yaml:"port" envconfig:"REDIS_PORT"`

	// Username is the ACL user (Redis 6.0+). Leave empty for password-only auth.
	Username string `yaml:"username" envconfig:"REDIS_USERNAME"`

	// Password is the Redis password. Leave empty for no authentication.
	Password string `yaml:"password" envconfig:"REDIS_PASSWORD"`

	// DB is the Redis database number.
	// Default: 0
	DB int `yaml:"db" envconfig:"REDIS_DB"`

	// PoolSize is the maximum number of socket connections.
	// Default: 10 per CPU (set by go-redis)
	PoolSize int `yaml:"pool_size"`

	// DialTimeout is the timeout for establishing new connections
	// Default: 5 seconds
	DialTimeout time.Duration `yaml:"dial_timeout"`

	// ReadTimeout is the timeout for socket reads
	// Default: 3 seconds
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the timeout for socket writes
	// Default: ReadTimeout
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// KeyPrefix namespaces every key this client writes.
	// Default: "coach:"
	KeyPrefix string `yaml:"key_prefix" envconfig:"REDIS_KEY_PREFIX"`

	// TTL is how long a cached entry lives.
	// Default: 15 minutes
	TTL time.Duration `yaml:"ttl" envconfig:"REDIS_TTL"`

	TLS TLSConfig `yaml:"tls"`
}

// TLSConfig contains TLS/SSL configuration parameters.
type TLSConfig struct {
	Enabled bool `yaml:"enabled"`

	// CACertPath is the file path to the CA certificate for verifying the server
	CACertPath string `yaml:"ca_cert_path"`

	ClientCertPath string `yaml:"client_cert_path"`
	ClientKeyPath  string `yaml:"client_key_path"`

	// InsecureSkipVerify skips server certificate verification. Testing only.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify"`

	// ServerName overrides the name checked against the certificate.
	// If empty, Host is used.
	ServerName string `yaml:"server_name"`
}

const (
	DefaultHost        = "localhost"
	DefaultPort        = 6379
	DefaultDialTimeout = 5 * time.Second
	DefaultReadTimeout = 3 * time.Second
	DefaultKeyPrefix   = "coach:"
	DefaultTTL         = 15 * time.Minute
)

func (c Config) withDefaults() Config {
	if c.Host == "" {
		c.Host = DefaultHost
	}
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.DialTimeout <= 0 {
		c.DialTimeout = DefaultDialTimeout
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = DefaultReadTimeout
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = DefaultKeyPrefix
	}
	if c.TTL <= 0 {
		c.TTL = DefaultTTL
	}
	return c
}
