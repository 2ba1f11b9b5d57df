package config

// DefaultRPCPort is the default JSON-RPC listen port.
const DefaultRPCPort = 8555

// DefaultMaxDerive bounds concurrent derivations served over RPC.
const DefaultMaxDerive = 2

// Default returns the default daemon configuration.
func Default() *Config {
	return &Config{
		DataDir: DefaultDataDir(),
		RPC: RPCConfig{
			Enabled:    true,
			Addr:       "127.0.0.1",
			Port:       DefaultRPCPort,
			AllowedIPs: []string{"127.0.0.1"},
			MaxDerive:  DefaultMaxDerive,
		},
		Log: LogConfig{
			Level: "info",
			JSON:  false,
		},
	}
}
