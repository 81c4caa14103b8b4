// Package gwconfig loads and hot-reloads the tagotip-gatewayd TOML
// configuration.
package gwconfig

import (
	"fmt"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"

	"github.com/tagotip-io/tagotip-go"
)

// DeviceEntry is one [[device]] table: the credentials a device uses and
// the cipher suite the gateway expects from it.
type DeviceEntry struct {
	Serial string `toml:"serial"`
	Token  string `toml:"token"`
	Suite  string `toml:"cipher_suite"`
}

// Config is the resolved gateway configuration.
type Config struct {
	ListenAddr   string
	MonitorAddr  string
	DefaultSuite tagotip.CipherSuite
	ReplayDir    string
	Devices      []DeviceEntry
}

// DefaultConfig returns the gateway's baseline configuration, used before
// any file is layered on top.
func DefaultConfig() Config {
	return Config{
		ListenAddr:   ":7710",
		MonitorAddr:  ":7711",
		DefaultSuite: tagotip.CipherSuiteAes128Ccm,
		ReplayDir:    "./tagotip-replay",
		Devices:      nil,
	}
}

type fileConfig struct {
	ListenAddr   string        `toml:"listen_addr"`
	MonitorAddr  string        `toml:"monitor_addr"`
	DefaultSuite string        `toml:"default_cipher_suite"`
	ReplayDir    string        `toml:"replay_dir"`
	Device       []DeviceEntry `toml:"device"`
}

// Load reads path and layers it onto DefaultConfig, treating an absent
// field as "use the default" rather than its zero value.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("gwconfig: load %s: %w", path, err)
	}

	if meta.IsDefined("listen_addr") {
		cfg.ListenAddr = strings.TrimSpace(raw.ListenAddr)
	}
	if meta.IsDefined("monitor_addr") {
		cfg.MonitorAddr = strings.TrimSpace(raw.MonitorAddr)
	}
	if meta.IsDefined("replay_dir") {
		cfg.ReplayDir = strings.TrimSpace(raw.ReplayDir)
	}
	if meta.IsDefined("default_cipher_suite") {
		suite, err := ParseSuiteName(raw.DefaultSuite)
		if err != nil {
			return Config{}, fmt.Errorf("gwconfig: %w", err)
		}
		cfg.DefaultSuite = suite
	}
	if meta.IsDefined("device") {
		cfg.Devices = raw.Device
	}

	return cfg, nil
}

// ParseSuiteName maps a config string to a tagotip.CipherSuite.
func ParseSuiteName(name string) (tagotip.CipherSuite, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "aes-128-ccm", "aes128ccm":
		return tagotip.CipherSuiteAes128Ccm, nil
	case "aes-128-gcm", "aes128gcm":
		return tagotip.CipherSuiteAes128Gcm, nil
	case "aes-256-ccm", "aes256ccm":
		return tagotip.CipherSuiteAes256Ccm, nil
	case "aes-256-gcm", "aes256gcm":
		return tagotip.CipherSuiteAes256Gcm, nil
	case "chacha20-poly1305", "chacha20poly1305":
		return tagotip.CipherSuiteChaCha20Poly1305, nil
	default:
		return 0, fmt.Errorf("unknown cipher suite %q", name)
	}
}

// Watcher reloads Config from disk whenever the underlying file changes
// and keeps the new value, which Current returns. The zero value is not
// usable; use NewWatcher.
type Watcher struct {
	mu      sync.RWMutex
	current Config
	path    string
}

// NewWatcher loads path once and starts an fsnotify goroutine that
// reloads on write/create/rename events, matching the filesystem-watch
// idiom the reference service repos use for config and keystore files.
func NewWatcher(path string) (*Watcher, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	w := &Watcher{current: cfg, path: path}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("gwconfig: watcher init: %w", err)
	}
	if err := fw.Add(path); err != nil {
		fw.Close()
		return nil, fmt.Errorf("gwconfig: watch %s: %w", path, err)
	}

	go w.watchLoop(fw)
	return w, nil
}

func (w *Watcher) watchLoop(fw *fsnotify.Watcher) {
	defer fw.Close()
	for {
		select {
		case ev, ok := <-fw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			cfg, err := Load(w.path)
			if err != nil {
				log.Warn().Err(err).Str("path", w.path).Msg("gwconfig: reload failed, keeping previous config")
				continue
			}
			w.mu.Lock()
			w.current = cfg
			w.mu.Unlock()
			log.Info().Str("path", w.path).Msg("gwconfig: reloaded")
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("gwconfig: watch error")
		}
	}
}

// Current returns the most recently loaded Config.
func (w *Watcher) Current() Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}
