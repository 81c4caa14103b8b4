// Command tagotip-gatewayd runs the reference TagoTiP/S UDP gateway: it
// terminates uplink datagrams, authenticates and decrypts them against a
// configured device keystore, enforces the envelope's anti-replay
// counter, and answers with an ACK. It also serves a read-only WebSocket
// monitor feed for dashboards.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"

	svc "github.com/kardianos/service"
	"github.com/rs/zerolog/log"

	"github.com/tagotip-io/tagotip-go/internal/gateway"
	"github.com/tagotip-io/tagotip-go/internal/gatewaykeys"
	"github.com/tagotip-io/tagotip-go/internal/gwconfig"
	"github.com/tagotip-io/tagotip-go/internal/logging"
	"github.com/tagotip-io/tagotip-go/internal/replay"
)

type program struct {
	configPath string
	gw         *gateway.Gateway
}

func (p *program) Start(s svc.Service) error {
	go func() {
		if err := p.run(); err != nil {
			log.Error().Err(err).Msg("tagotip-gatewayd: fatal")
			os.Exit(1)
		}
	}()
	return nil
}

func (p *program) Stop(s svc.Service) error {
	if p.gw != nil {
		return p.gw.Close()
	}
	return nil
}

func (p *program) run() error {
	watcher, err := gwconfig.NewWatcher(p.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg := watcher.Current()

	keys, err := gatewaykeys.Build(cfg.Devices, cfg.DefaultSuite)
	if err != nil {
		return fmt.Errorf("build keystore: %w", err)
	}

	replayPolicy, err := replay.NewMonotonic(cfg.ReplayDir)
	if err != nil {
		return fmt.Errorf("init replay policy: %w", err)
	}

	events := make(chan gateway.Event, 64)
	monitor := gateway.NewMonitor()
	go monitor.Run(events)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", monitor.HandleWS)
	go func() {
		if err := http.ListenAndServe(cfg.MonitorAddr, mux); err != nil {
			log.Error().Err(err).Msg("tagotip-gatewayd: monitor server failed")
		}
	}()

	gw, err := gateway.New(cfg.ListenAddr, keys, replayPolicy, events)
	if err != nil {
		return fmt.Errorf("bind gateway: %w", err)
	}
	p.gw = gw

	log.Info().Str("listen_addr", cfg.ListenAddr).Str("monitor_addr", cfg.MonitorAddr).Msg("tagotip-gatewayd: serving")
	gw.Serve()
	return nil
}

func serviceConfig() *svc.Config {
	return &svc.Config{
		Name:        "tagotip-gatewayd",
		DisplayName: "TagoTiP Gateway",
		Description: "TagoTiP/S UDP uplink gateway and monitor bridge",
		Option:      map[string]interface{}{"Restart": "on-failure"},
	}
}

func main() {
	configPath := flag.String("config", "/etc/tagotip/gateway.toml", "path to gateway.toml")
	flag.Parse()

	cmd := "run"
	if flag.NArg() > 0 {
		cmd = strings.ToLower(flag.Arg(0))
	}

	logging.ConfigureRuntime()

	p := &program{configPath: *configPath}
	s, err := svc.New(p, serviceConfig())
	if err != nil {
		log.Fatal().Err(err).Msg("tagotip-gatewayd: service init failed")
	}

	switch cmd {
	case "install":
		err = s.Install()
	case "uninstall":
		err = s.Uninstall()
	case "start":
		err = s.Start()
	case "stop":
		err = s.Stop()
	case "run":
		err = s.Run()
	default:
		fmt.Fprintf(os.Stderr, "usage: tagotip-gatewayd [install|uninstall|start|stop|run]\n")
		os.Exit(2)
	}

	if err != nil {
		log.Fatal().Err(err).Str("command", cmd).Msg("tagotip-gatewayd: command failed")
	}
}
