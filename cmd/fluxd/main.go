package main

import (
	"flag"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/RuyaSavascisi/Flux-Networks/internal/config"
	"github.com/RuyaSavascisi/Flux-Networks/internal/device"
	"github.com/RuyaSavascisi/Flux-Networks/internal/fluxnet"
	"github.com/RuyaSavascisi/Flux-Networks/internal/observability"
	"github.com/RuyaSavascisi/Flux-Networks/internal/protocol"
	"github.com/RuyaSavascisi/Flux-Networks/internal/server"
)

func main() {
	configPath := flag.String("config", "", "path to fluxd TOML config")
	flag.Parse()

	cfg, err := config.LoadServerConfig(*configPath)
	if err != nil {
		logger := observability.InitLogger("fluxd", "info")
		logger.Fatal().Err(err).Msg("config load failed")
	}
	logger := observability.InitLogger(cfg.Name, cfg.LogLevel)

	superAdmins := make(map[uuid.UUID]struct{}, len(cfg.SuperAdmins))
	for _, raw := range cfg.SuperAdmins {
		id, err := uuid.Parse(raw)
		if err != nil {
			logger.Fatal().Str("id", raw).Err(err).Msg("invalid super_admins entry")
		}
		superAdmins[id] = struct{}{}
	}
	superPolicy := func(s *server.Session) bool {
		_, ok := superAdmins[s.PlayerID]
		return ok
	}

	registry := fluxnet.NewRegistry(cfg.MaxNetworks)
	sessions := server.NewSessions()
	exec := server.NewExecutor(cfg.QueueDepth)
	exec.Start()
	defer exec.Close()

	dispatcher := server.NewDispatcher(registry, sessions, emptyWorld{}, exec, superPolicy, logger)

	listener, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		logger.Fatal().Err(err).Str("addr", cfg.Addr).Msg("listen failed")
	}
	logger.Info().Str("addr", cfg.Addr).Uint16("protocol", protocol.Version).Msg("fluxd listening")

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		logger.Info().Msg("shutting down")
		listener.Close()
	}()

	limits := server.DefaultLimits()
	for {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		go dispatcher.ServeConn(conn, limits)
	}
}

// emptyWorld is the standalone runtime's device layer: no simulation is
// attached, so no position resolves and every player is offline.
type emptyWorld struct{}

func (emptyWorld) DeviceAt(protocol.GlobalPos) (device.Device, bool) {
	return nil, false
}

func (emptyWorld) ResolvePlayer(uuid.UUID) (string, bool) {
	return "", false
}
