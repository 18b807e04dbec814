package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustline/arena/internal/api"
	"github.com/dustline/arena/internal/arena"
	"github.com/dustline/arena/internal/combat"
	"github.com/dustline/arena/internal/config"
	"github.com/dustline/arena/internal/dispatcher"
	"github.com/dustline/arena/internal/influx"
	"github.com/dustline/arena/internal/logging"
	"github.com/dustline/arena/internal/match"
	"github.com/dustline/arena/internal/monitor"
	intOtel "github.com/dustline/arena/internal/otel"
	"github.com/dustline/arena/internal/parser"
	"github.com/dustline/arena/internal/storage"
	"github.com/dustline/arena/internal/storage/factory"
	"github.com/dustline/arena/internal/transport"
	"github.com/dustline/arena/internal/worker"
	"github.com/dustline/arena/pkg/core"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/metric"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// runtime is everything one client session owns, in start order.
type runtime struct {
	sessionStart time.Time
	logsDir      string
	logFile      *os.File

	slogManager  *logging.SlogManager
	logger       *slog.Logger
	otelProvider *intOtel.Provider
	zl           zerolog.Logger

	storageCfg config.StorageConfig
	backend    storage.Backend
	match      *match.Context
	parser     *parser.Parser
	dispatcher *dispatcher.Dispatcher
	influx     *influx.Manager
	worker     *worker.Manager
	monitor    *monitor.Service
	transport  *transport.Client // nil when disabled

	layout  arena.Layout
	loadout core.LoadoutRecord
	session *combat.Session
	pilot   *combat.Pilot
	sim     config.SimConfig
}

// setup brings every service up. A failure here leaves nothing running that
// needs a shutdown beyond the process exit.
func setup(configDir string, sessionStart time.Time) (*runtime, error) {
	rt := &runtime{sessionStart: sessionStart}

	// console logging until the log file exists
	rt.slogManager = logging.NewSlogManager()
	rt.slogManager.Setup(nil, viper.GetString("logLevel"), nil)
	rt.logger = rt.slogManager.Logger()

	if err := config.Load(configDir); err != nil {
		rt.logger.Warn("Failed to load config, using defaults!", "error", err)
	} else {
		rt.logger.Info("Loaded config", "dir", configDir)
	}

	if err := rt.setupLogging(); err != nil {
		return nil, err
	}
	if err := rt.setupStorage(); err != nil {
		return nil, err
	}
	if err := rt.setupMatch(); err != nil {
		return nil, err
	}
	if err := rt.setupWorkers(); err != nil {
		return nil, err
	}
	if err := rt.setupSession(); err != nil {
		return nil, err
	}
	if err := rt.setupTransport(); err != nil {
		return nil, err
	}

	rt.monitor = monitor.NewService(monitor.Dependencies{
		LogManager: rt.slogManager,
		Influx:     rt.influx,
		StatusFile: filepath.Join(rt.logsDir, "status.txt"),
	})
	if !rt.monitor.IsRunning() {
		rt.monitor.Start()
	}

	go rt.checkServerStatus()
	return rt, nil
}

func (rt *runtime) setupLogging() error {
	rt.logsDir = viper.GetString("logsDir")
	if err := os.MkdirAll(rt.logsDir, 0755); err != nil {
		return fmt.Errorf("failed to create logs dir: %w", err)
	}

	logFilePath := logging.LogFilePath(rt.logsDir, ClientName, rt.sessionStart)
	if _, err := os.Stat(logFilePath); err == nil {
		os.Rename(logFilePath, logFilePath+".old")
	}
	var err error
	rt.logFile, err = os.OpenFile(logFilePath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", logFilePath, err)
	}
	rt.logger.Info("Begin logging in logs directory", "path", logFilePath)

	otelCfg := config.GetOTelConfig()
	if otelCfg.Enabled {
		rt.otelProvider, err = intOtel.New(intOtel.FromConfig(otelCfg, CurrentClientVersion, config.GetString("player.name"), rt.logFile))
		if err != nil {
			rt.logger.Error("Failed to initialize OTel provider", "error", err)
		} else {
			rt.logger.Info("OTel provider initialized", "endpoint", otelCfg.Endpoint)
		}
	}

	if config.GetBool("graylog.enabled") {
		address := config.GetString("graylog.address")
		if err := rt.slogManager.AttachGraylog(address); err != nil {
			rt.logger.Error("Failed to attach Graylog", "error", err, "address", address)
		}
	}

	rt.slogManager.SetContext(func(context.Context) []slog.Attr {
		attrs := []slog.Attr{slog.String("client", ClientName)}
		if rt.match != nil {
			attrs = append(attrs, slog.String("match", rt.match.GetMatch().Code))
		}
		return attrs
	})

	var otelLogProvider *sdklog.LoggerProvider
	if rt.otelProvider != nil {
		otelLogProvider = rt.otelProvider.LoggerProvider()
	}
	level := viper.GetString("logLevel")
	rt.slogManager.Setup(rt.logFile, level, otelLogProvider)
	rt.logger = rt.slogManager.Logger()

	zlLevel, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		zlLevel = zerolog.InfoLevel
	}
	rt.zl = zerolog.New(rt.logFile).Level(zlLevel).With().Timestamp().Logger()
	return nil
}

func (rt *runtime) setupStorage() error {
	rt.storageCfg = config.GetStorageConfig()

	backend, err := factory.New(rt.storageCfg, factory.Dependencies{
		LogManager:   rt.slogManager,
		SessionStart: rt.sessionStart,
	})
	if err != nil {
		return fmt.Errorf("failed to create storage backend: %w", err)
	}
	if err := backend.Init(); err != nil {
		return fmt.Errorf("failed to initialize storage backend: %w", err)
	}
	rt.backend = backend
	rt.logger.Info("Storage backend initialized", "type", rt.storageCfg.Type)
	return nil
}

func (rt *runtime) setupMatch() error {
	mcfg := config.GetMatchConfig()
	rt.sim = config.GetSimConfig()
	if rt.sim.Seed == 0 {
		rt.sim.Seed = rt.sessionStart.UnixNano()
	}

	layout, err := arena.Resolve(mcfg.LayoutFile, mcfg.Map)
	if err != nil {
		return fmt.Errorf("failed to load arena: %w", err)
	}
	warnings, err := layout.Validate()
	if err != nil {
		return err
	}
	for _, w := range warnings {
		rt.logger.Warn("Arena layout", "layout", layout.Name, "warning", w)
	}
	rt.layout = layout

	rec := core.MatchRecord{
		Code:            mcfg.Code,
		Name:            mcfg.Name,
		Mode:            mcfg.Mode,
		Map:             layout.Name,
		Status:          core.MatchLive,
		ScoreLimit:      mcfg.ScoreLimit,
		RoundDurationMs: mcfg.RoundDuration.Milliseconds(),
		CreatedAt:       rt.sessionStart.UTC(),
		Settings: map[string]any{
			"tickRate":   rt.sim.TickRate,
			"layoutFile": mcfg.LayoutFile,
			"client":     CurrentClientVersion,
		},
	}
	if err := rt.backend.StartMatch(&rec); err != nil {
		return fmt.Errorf("failed to start match %s: %w", mcfg.Code, err)
	}

	rt.match = match.NewContext()
	rt.match.SetMatch(&rec)
	rt.logger.Info("Joined match", "code", rec.Code, "name", rec.Name, "map", rec.Map, "status", rec.Status)
	return nil
}

func (rt *runtime) setupWorkers() error {
	var err error
	var meter metric.Meter
	if rt.otelProvider != nil {
		meter = rt.otelProvider.Meter()
	}
	rt.dispatcher, err = dispatcher.New(logging.NewDispatcherLogger(rt.zl), meter)
	if err != nil {
		return fmt.Errorf("failed to create dispatcher: %w", err)
	}

	influxCfg := config.GetInfluxConfig()
	if influxCfg.Enabled {
		backupPath := filepath.Join(rt.logsDir, fmt.Sprintf("influx_%s.lp.gz", rt.sessionStart.Format("20060102_150405")))
		rt.influx = influx.NewManager(rt.zl.With().Str("component", "influx").Logger(), influxCfg, backupPath)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rt.influx.Connect(ctx); err != nil {
			rt.logger.Error("Failed to set up InfluxDB, telemetry disabled", "error", err)
			rt.influx = nil
		}
	}

	rt.parser = parser.NewParser(rt.logger)
	rt.parser.SetMatch(rt.match.GetMatch().Code)

	rt.worker = worker.NewManager(worker.Dependencies{
		LogManager: rt.slogManager,
		Parser:     rt.parser,
		Match:      rt.match,
		Influx:     rt.influx,
		// a shared database already gets every victim's own kill
		RecordPeerKills: rt.storageCfg.Type != factory.TypePostgres,
	}, rt.backend)

	rt.logger.Debug("Registering worker handlers with dispatcher")
	rt.worker.RegisterHandlers(rt.dispatcher)
	rt.logger.Info("Worker handlers registered with dispatcher")
	return nil
}

func (rt *runtime) setupSession() error {
	name := config.GetString("player.name")
	character, ok := core.ParseCharacterKind(config.GetString("player.character"))
	if !ok {
		rt.logger.Warn("Unknown character, using default", "character", config.GetString("player.character"))
	}

	rt.loadout = rt.worker.RestoreLoadout(name, character)
	world := rt.layout.World()
	state := combat.NewState(rt.match.GetMatch().Code, combat.NewPlayerID(), name, rt.loadout.Character, rt.loadout.PrimaryWeapon, world)

	pubs := combat.Publishers{worker.NewRecorder(rt.dispatcher)}
	if tcfg := config.GetTransportConfig(); tcfg.Enabled {
		rt.transport = transport.New(transport.Config{
			URL:       tcfg.URL,
			Secret:    tcfg.Secret,
			Match:     state.MatchCode,
			PlayerID:  state.PlayerID,
			Name:      state.Name,
			Character: state.Character,
		}, rt.logger)
		pubs = append(pubs, rt.transport)
	}

	rt.session = combat.NewSession(state, world, pubs, combat.SessionConfig{
		PresenceInterval: rt.sim.PresenceInterval,
		Seed:             rt.sim.Seed,
	}, rt.logger)
	rt.worker.SetInbox(rt.session)
	rt.pilot = combat.NewPilot(rt.sim.Seed)

	rt.logger.Info("Spawned",
		"playerId", state.PlayerID,
		"name", state.Name,
		"team", state.Team,
		"character", state.Character,
		"weapon", state.Arsenal.Active,
		"position", state.Body.Position,
	)
	return nil
}

func (rt *runtime) setupTransport() error {
	if rt.transport == nil {
		rt.logger.Info("Transport disabled, playing offline")
		return nil
	}
	rt.transport.OnReceive(func(data []byte, binary bool) {
		rt.worker.Receive(rt.dispatcher, data, binary)
	})
	if err := rt.transport.Connect(); err != nil {
		return fmt.Errorf("failed to join match channel: %w", err)
	}
	rt.logger.Info("Connected to match channel", "url", config.GetTransportConfig().URL)
	return nil
}

func (rt *runtime) checkServerStatus() {
	client := api.New(viper.GetString("api.serverUrl"), viper.GetString("api.apiKey"), ClientName+"/"+CurrentClientVersion)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Healthcheck(ctx); err != nil {
		rt.logger.Info("Scoreboard is offline", "error", err)
	} else {
		rt.logger.Info("Scoreboard is online")
	}
}

// shutdown stops every service in reverse start order, then ends the match
// and uploads its export when the backend produced one.
func (rt *runtime) shutdown(reason string) error {
	rt.logger.Info("Shutting down", "reason", reason)
	var errs []error

	rt.monitor.Stop()

	if rt.transport != nil {
		if err := rt.transport.Close(); err != nil {
			errs = append(errs, fmt.Errorf("transport: %w", err))
		}
	}

	state := rt.session.State()
	if err := rt.worker.SaveLoadout(core.LoadoutRecord{
		PlayerName:      state.Name,
		PrimaryWeapon:   state.Arsenal.Active,
		SecondaryWeapon: rt.loadout.SecondaryWeapon,
		Character:       state.Character,
	}); err != nil {
		errs = append(errs, err)
	}

	// drains the buffered record handlers
	rt.dispatcher.Close()

	if err := rt.backend.EndMatch(); err != nil {
		errs = append(errs, fmt.Errorf("end match: %w", err))
	} else {
		rt.match.SetStatus(core.MatchEnded)
	}
	rt.uploadExport()

	if err := rt.backend.Close(); err != nil {
		errs = append(errs, fmt.Errorf("storage: %w", err))
	}
	if rt.influx != nil {
		if err := rt.influx.Close(); err != nil {
			errs = append(errs, fmt.Errorf("influx: %w", err))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if rt.otelProvider != nil {
		if err := rt.otelProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("otel: %w", err))
		}
	}

	err := errors.Join(errs...)
	if err == nil {
		rt.logger.Info("Shutdown complete")
	}
	rt.slogManager.Close()
	rt.logFile.Close()
	return err
}

func (rt *runtime) uploadExport() {
	up, ok := rt.backend.(storage.Uploadable)
	if !ok {
		return
	}
	path := up.GetExportedFilePath()
	apiKey := viper.GetString("api.apiKey")
	if path == "" || apiKey == "" {
		return
	}

	client := api.New(viper.GetString("api.serverUrl"), apiKey, ClientName+"/"+CurrentClientVersion)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := client.Upload(ctx, path, up.GetExportMetadata()); err != nil {
		rt.logger.Error("Failed to upload match export", "error", err, "path", path)
		return
	}
	rt.logger.Info("Uploaded match export", "path", path)
}
