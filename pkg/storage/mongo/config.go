package mongo

import (
	"fmt"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	defaultCollection = "banned_words"
	defaultTimeout    = 5 * time.Second
)

var ErrConfParamMissing = fmt.Errorf("configuration parameter missing")

// Config describes where the banned words collection lives.
type Config struct {
	Host       string
	Port       string
	DBName     string
	Collection string
	User       string
	Pass       string

	// Timeout bounds connecting and server selection.
	Timeout time.Duration
}

// NewConfig reads the connection parameters from MONGO_* variables.
// MONGO_HOST, MONGO_PORT and MONGO_DB_NAME are required; MONGO_COLLECTION
// defaults to banned_words and MONGO_TIMEOUT (a duration such as "3s") to 5s.
func NewConfig() (*Config, error) {
	conf := Config{
		Host:       os.Getenv("MONGO_HOST"),
		Port:       os.Getenv("MONGO_PORT"),
		DBName:     os.Getenv("MONGO_DB_NAME"),
		Collection: os.Getenv("MONGO_COLLECTION"),
		User:       os.Getenv("MONGO_USER"),
		Pass:       os.Getenv("MONGO_PASS"),
		Timeout:    defaultTimeout,
	}

	for param, val := range map[string]string{
		"MONGO_HOST":    conf.Host,
		"MONGO_PORT":    conf.Port,
		"MONGO_DB_NAME": conf.DBName,
	} {
		if val == "" {
			return nil, fmt.Errorf("%w: %s", ErrConfParamMissing, param)
		}
	}

	if conf.Collection == "" {
		conf.Collection = defaultCollection
	}
	if s := os.Getenv("MONGO_TIMEOUT"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid MONGO_TIMEOUT %q", s)
		}
		conf.Timeout = d
	}

	return &conf, nil
}

// uri builds the connection string; credentials are only added when both are set.
func (c *Config) uri() string {
	if c.User != "" && c.Pass != "" {
		return fmt.Sprintf("mongodb://%s:%s@%s:%s/", c.User, c.Pass, c.Host, c.Port)
	}
	return fmt.Sprintf("mongodb://%s:%s/", c.Host, c.Port)
}

func (c *Config) String() string {
	return fmt.Sprintf("%s:%s/%s.%s", c.Host, c.Port, c.DBName, c.collection())
}

func (c *Config) collection() string {
	if c.Collection == "" {
		return defaultCollection
	}
	return c.Collection
}

// Options returns client options with the connect and server selection timeouts applied.
func (c *Config) Options() *options.ClientOptions {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return options.Client().
		ApplyURI(c.uri()).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout)
}
