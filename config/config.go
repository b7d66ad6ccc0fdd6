package config

import (
	"flag"
	"net"
	"os"
	"strconv"

	"github.com/searchktools/quickfast/core"
)

// Config holds the information an operator supplies to run a receiver:
// where to listen, how many buffers to keep idle, and how loud to log.
type Config struct {
	Group       net.IP
	Interface   net.IP
	Port        int
	BufferSize  int
	BufferCount int
	LogLevel    string
	Env         string
}

// New loads configuration from flags, with environment-variable overrides
// applied on top (QUICKFAST_GROUP, QUICKFAST_INTERFACE, QUICKFAST_PORT,
// QUICKFAST_BUFFER_SIZE, QUICKFAST_BUFFER_COUNT, QUICKFAST_LOG_LEVEL,
// QUICKFAST_ENV).
func New() *Config {
	cfg := &Config{}

	group := flag.String("group", "", "multicast group address to join")
	iface := flag.String("interface", "", "local interface address to bind (empty: any)")
	flag.IntVar(&cfg.Port, "port", core.DefaultMulticastPort, "multicast port")
	flag.IntVar(&cfg.BufferSize, "buffer-size", core.DefaultBufferSize, "idle buffer size in bytes")
	flag.IntVar(&cfg.BufferCount, "buffer-count", core.DefaultBufferCount, "number of idle buffers")
	flag.StringVar(&cfg.LogLevel, "log-level", "info", "log level (fatal/error/warning/info/verbose)")
	flag.StringVar(&cfg.Env, "env", "development", "environment (development/production)")

	flag.Parse()

	cfg.Group = net.ParseIP(*group)
	if *iface != "" {
		cfg.Interface = net.ParseIP(*iface)
	}

	applyEnvOverrides(cfg)

	return cfg
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("QUICKFAST_GROUP"); v != "" {
		cfg.Group = net.ParseIP(v)
	}
	if v := os.Getenv("QUICKFAST_INTERFACE"); v != "" {
		cfg.Interface = net.ParseIP(v)
	}
	if v := os.Getenv("QUICKFAST_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Port = p
		}
	}
	if v := os.Getenv("QUICKFAST_BUFFER_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.BufferSize = n
		}
	}
	if v := os.Getenv("QUICKFAST_BUFFER_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.BufferCount = n
		}
	}
	if v := os.Getenv("QUICKFAST_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("QUICKFAST_ENV"); v != "" {
		cfg.Env = v
	}
}
