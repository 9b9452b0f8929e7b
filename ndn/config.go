package ndn

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds every build/init-time knob spec.md names. Zero-value fields
// are filled in by DefaultConfig; LoadConfig applies an optional TOML file
// on top of the defaults, the way caddy layers its own config files.
type Config struct {
	PITSize       int      `toml:"pit_size"`
	PITHashSize   int      `toml:"pit_hash_size"`
	PITTTLMillis  int      `toml:"pit_ttl_ms"`
	UDPBufferSize int      `toml:"udp_buffer_size"`
	Port          uint16   `toml:"port"`
	Mode          string   `toml:"mode"` // "broadcast" | "static-peers"
	ListenAddr    string   `toml:"listen_addr"`
	Peers         []string `toml:"peers"` // static-peers mode only
}

// DefaultConfig returns the defaults listed in spec.md §6.
func DefaultConfig() Config {
	return Config{
		PITSize:       DefaultPITSize,
		PITHashSize:   DefaultPITHashSize,
		PITTTLMillis:  5000,
		UDPBufferSize: MaxDatagramSize,
		Port:          8888,
		Mode:          "broadcast",
	}
}

// LoadConfig reads a TOML file and overlays it onto DefaultConfig. An empty
// path returns the defaults unchanged.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); err != nil {
		return Config{}, fmt.Errorf("ndn: reading config %s: %w", path, err)
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("ndn: parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the fields that, if wrong, would otherwise surface as a
// confusing runtime failure rather than a clear startup error.
func (c Config) Validate() error {
	switch c.Mode {
	case "broadcast", "static-peers":
	default:
		return fmt.Errorf("ndn: invalid mode %q (want \"broadcast\" or \"static-peers\")", c.Mode)
	}
	if c.PITSize <= 0 {
		return fmt.Errorf("ndn: pit_size must be positive")
	}
	if c.UDPBufferSize <= 0 || c.UDPBufferSize > MaxDatagramSize {
		return fmt.Errorf("ndn: udp_buffer_size must be in (0, %d]", MaxDatagramSize)
	}
	if c.Mode == "static-peers" && len(c.Peers) == 0 {
		return fmt.Errorf("ndn: static-peers mode requires at least one peer")
	}
	return nil
}
