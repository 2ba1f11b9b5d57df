// Package node provides the klingseed service that can be embedded in any
// binary (daemon, desktop app, etc.).
package node

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Klingon-tech/klingseed/config"
	klog "github.com/Klingon-tech/klingseed/internal/log"
	"github.com/Klingon-tech/klingseed/internal/masterkey"
	"github.com/Klingon-tech/klingseed/internal/rpc"
	"github.com/Klingon-tech/klingseed/pkg/wordlist"
	"github.com/rs/zerolog"
)

// Node is a fully-initialized klingseed service.
type Node struct {
	cfg    *config.Config
	logger zerolog.Logger

	deriver   *masterkey.Deriver
	rpcServer *rpc.Server

	// Languages installed from the wordlist directory at startup.
	extraLanguages []wordlist.Language
}

// New creates and initializes a new Node. It sets up logging, provisions
// extra wordlists and builds the RPC server, but does not bind any listener.
// Call Start() for that.
func New(cfg *config.Config) (*Node, error) {
	// ── 1. Init logger ──────────────────────────────────────────────
	logFile := expandHome(cfg.Log.File)
	if logFile == "" {
		logsDir := cfg.LogsDir()
		if err := os.MkdirAll(logsDir, 0700); err != nil {
			return nil, fmt.Errorf("creating logs dir: %w", err)
		}
		logFile = filepath.Join(logsDir, "klingseed.log")
	}
	if err := klog.Init(cfg.Log.Level, cfg.Log.JSON, logFile); err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	logger := klog.WithComponent("node")

	params := masterkey.DefaultParams()
	logger.Info().
		Str("version", config.Version).
		Int("scrypt_n", params.N()).
		Int("scrypt_r", params.R).
		Int("scrypt_p", params.P).
		Msg("Starting Klingseed")

	// ── 2. Wordlists ────────────────────────────────────────────────
	extra, err := provisionWordlists(expandHome(cfg.WordlistDir()))
	if err != nil {
		return nil, err
	}
	for _, lang := range extra {
		klog.Wordlist.Info().Str("language", lang.String()).Msg("Wordlist installed")
	}
	for _, lang := range wordlist.Languages() {
		if !wordlist.Available(lang) {
			klog.Wordlist.Warn().
				Str("language", lang.String()).
				Str("dir", cfg.WordlistDir()).
				Msg("Wordlist not installed, requests for this language will fail")
		}
	}

	n := &Node{
		cfg:            cfg,
		logger:         logger,
		deriver:        masterkey.NewDeriver(),
		extraLanguages: extra,
	}

	// ── 3. RPC ──────────────────────────────────────────────────────
	if cfg.RPC.Enabled {
		addr := net.JoinHostPort(cfg.RPC.Addr, strconv.Itoa(cfg.RPC.Port))
		n.rpcServer = rpc.New(addr, n.deriver, cfg.RPC)
	}

	return n, nil
}

// Start binds the RPC listener.
func (n *Node) Start() error {
	if n.rpcServer != nil {
		if err := n.rpcServer.Start(); err != nil {
			return fmt.Errorf("start rpc: %w", err)
		}
		n.logger.Info().
			Str("addr", n.rpcServer.Addr()).
			Int("max_derive", n.cfg.RPC.MaxDerive).
			Msg("RPC server listening")
	}

	n.logger.Info().
		Bool("rpc", n.rpcServer != nil).
		Int("extra_wordlists", len(n.extraLanguages)).
		Msg("Node started successfully")
	return nil
}

// Stop performs graceful shutdown.
func (n *Node) Stop() {
	if n.rpcServer != nil {
		if err := n.rpcServer.Stop(); err != nil {
			n.logger.Warn().Err(err).Msg("RPC shutdown")
		}
	}
	n.logger.Info().Msg("Goodbye!")
}

// RPCAddr returns the address the RPC server is listening on.
func (n *Node) RPCAddr() string {
	if n.rpcServer == nil {
		return ""
	}
	return n.rpcServer.Addr()
}

// Deriver returns the key deriver shared with the RPC server.
func (n *Node) Deriver() *masterkey.Deriver {
	return n.deriver
}

// ExtraLanguages returns the languages installed from the wordlist directory.
func (n *Node) ExtraLanguages() []wordlist.Language {
	out := make([]wordlist.Language, len(n.extraLanguages))
	copy(out, n.extraLanguages)
	return out
}
