package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/annel0/channel-guard/internal/api"
	"github.com/annel0/channel-guard/internal/config"
	"github.com/annel0/channel-guard/internal/eventbus"
	"github.com/annel0/channel-guard/internal/guard"
	"github.com/annel0/channel-guard/internal/logging"
	"github.com/annel0/channel-guard/internal/observability"
	"github.com/annel0/channel-guard/internal/sim"
	"github.com/annel0/channel-guard/internal/world"
)

func main() {
	configPath := flag.String("config", "", "путь к YAML конфигурации (иначе ENV GUARD_CONFIG)")
	flag.Parse()

	// === Инициализация системы логирования ===
	if err := logging.InitDefaultLogger("server"); err != nil {
		fmt.Printf("Ошибка инициализации логгера: %v\n", err)
		os.Exit(1)
	}
	defer logging.CloseDefaultLogger()
	defer logging.GetLoggerManager().CloseAll()

	logging.Info("=== Запуск Channel Guard ===")

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Error("Ошибка чтения конфигурации: %v", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// === OpenTelemetry ===
	shutdownTelemetry, err := observability.InitTelemetry(ctx, "channel-guard", observability.Options{
		Endpoint: cfg.Telemetry.GetOTLPEndpoint(),
		Insecure: cfg.Telemetry.Insecure,
	})
	if err != nil {
		logging.Warn("OpenTelemetry недоступен: %v", err)
		shutdownTelemetry = func(context.Context) error { return nil }
	}

	// === Шина событий ===
	var bus eventbus.EventBus
	var jetBus *eventbus.JetStreamBus
	if cfg.EventBus.URL != "" {
		jetBus, err = eventbus.NewJetStreamBus(cfg.EventBus.URL, cfg.EventBus.Stream,
			time.Duration(cfg.EventBus.Retention)*time.Hour)
		if err != nil {
			logging.Error("Подключение к NATS: %v", err)
			os.Exit(1)
		}
		bus = jetBus
		logging.Info("EventBus: NATS JetStream (%s)", cfg.EventBus.URL)
	} else {
		bus = eventbus.NewMemoryBus(1024)
		logging.Info("EventBus: in-memory")
	}
	eventbus.Init(bus)

	if err := eventbus.StartLoggingListener(bus); err != nil {
		logging.Warn("LoggingListener не запущен: %v", err)
	}

	busExporter := eventbus.NewMetricsExporter(bus, nil)
	busExporter.Start()
	defer busExporter.Stop()

	// === Карта и ядро ===
	logging.Info("Генерация карты %dx%dx%d (seed=%d)…",
		cfg.Sim.SizeX, cfg.Sim.SizeY, cfg.Sim.SizeZ, cfg.Sim.Seed)
	gen := world.NewMapGenerator(cfg.Sim.Seed)
	grid := gen.Generate(cfg.Sim.SizeX, cfg.Sim.SizeY, cfg.Sim.SizeZ)

	jobs := sim.NewJobList()
	bridge := sim.NewEventBridge()

	manager := guard.NewManager(grid, jobs, guard.Options{
		PriorityThreshold: cfg.Guard.PriorityThreshold,
		RescanEveryTicks:  cfg.Guard.RescanEveryTicks,
		Metrics:           guard.NewMetrics(nil),
		Publisher:         guard.NewPublisher(bus, "channel-guard"),
	})
	manager.Attach(bridge)

	if cfg.Guard.EnableOnStart {
		manager.Enable(ctx)
	}

	// === Хост симуляции ===
	tickEvery := time.Duration(cfg.Sim.TickMillis) * time.Millisecond
	if tickEvery <= 0 {
		tickEvery = 50 * time.Millisecond
	}
	host := NewHost(grid, jobs, bridge, manager, cfg.Sim.Seed, tickEvery)
	go host.Run(ctx)

	// === Командная поверхность ===
	restServer := api.NewRestServer(api.Config{
		Port: fmt.Sprintf(":%d", cfg.Server.GetRESTPort()),
		Ctrl: host.Controller(),
	})
	if err := restServer.Start(); err != nil {
		logging.Error("Запуск REST сервера: %v", err)
		os.Exit(1)
	}

	metricsServer := api.NewMetricsServer(fmt.Sprintf(":%d", cfg.Server.GetMetricsPort()))
	if err := metricsServer.Start(); err != nil {
		logging.Error("Запуск сервера метрик: %v", err)
		os.Exit(1)
	}

	logging.Info("Channel Guard запущен (перескан каждые %d тиков, порог приоритета %d)",
		cfg.Guard.RescanEveryTicks, cfg.Guard.PriorityThreshold)

	// === Ожидание сигнала завершения ===
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logging.Info("Получен сигнал завершения, останавливаемся…")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := restServer.Stop(shutdownCtx); err != nil {
		logging.Warn("Остановка REST сервера: %v", err)
	}
	if err := metricsServer.Stop(shutdownCtx); err != nil {
		logging.Warn("Остановка сервера метрик: %v", err)
	}
	if jetBus != nil {
		jetBus.Close()
	}
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		logging.Warn("Остановка телеметрии: %v", err)
	}

	logging.Info("=== Channel Guard остановлен ===")
}
