package config

import (
	"fmt"
	"net"
	"strings"
)

// MaxDeriveLimit caps rpc.maxderive; each derivation holds 256 MiB.
const MaxDeriveLimit = 16

// Validate checks runtime config for obvious operator mistakes.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if cfg.DataDir == "" {
		return fmt.Errorf("datadir must not be empty")
	}
	if cfg.RPC.Port < 0 || cfg.RPC.Port > 65535 {
		return fmt.Errorf("rpc.port must be in range [0, 65535]")
	}
	if cfg.RPC.MaxDerive < 1 || cfg.RPC.MaxDerive > MaxDeriveLimit {
		return fmt.Errorf("rpc.maxderive must be in range [1, %d]", MaxDeriveLimit)
	}
	for i, ip := range cfg.RPC.AllowedIPs {
		s := strings.TrimSpace(ip)
		if net.ParseIP(s) == nil {
			return fmt.Errorf("rpc.allowed[%d] %q is not an IP address", i, ip)
		}
		cfg.RPC.AllowedIPs[i] = s
	}
	switch strings.ToLower(cfg.Log.Level) {
	case "debug", "info", "warn", "error", "off", "disabled":
	default:
		return fmt.Errorf("log.level must be debug, info, warn, error or off")
	}
	return nil
}
