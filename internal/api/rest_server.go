package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzip"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/annel0/channel-guard/internal/guard"
	"github.com/annel0/channel-guard/internal/logging"
	"github.com/annel0/channel-guard/internal/middleware"
)

// GuardController — операции командной поверхности над ядром.
// Реализация хоста обязана выполнять их в цикле симуляции (single-writer);
// HTTP-обработчики никогда не трогают ядро напрямую.
type GuardController interface {
	Enable()
	Disable()
	Rescan()
	Status() guard.Status
	Dump() guard.Dump
}

// RestServer — командная поверхность поверх HTTP: включение/выключение
// ядра, статус, принудительный перескан и отладочный дамп.
type RestServer struct {
	router  *gin.Engine
	ctrl    GuardController
	port    string
	metrics *ServerMetrics
	srv     *http.Server
}

// Config — конфигурация REST сервера.
type Config struct {
	Port string          // Адрес вида ":8090"
	Ctrl GuardController // Контроллер ядра
}

// NewRestServer создаёт REST сервер командной поверхности
func NewRestServer(config Config) *RestServer {
	if config.Port == "" {
		config.Port = ":8090"
	}

	gin.SetMode(gin.ReleaseMode)

	router := gin.New() // без стандартного logger/recovery
	router.Use(gin.Recovery())

	// === Observability middleware ===
	loggerMw := middleware.NewRequestLogger()
	router.Use(loggerMw.Handler())

	router.Use(otelgin.Middleware("guard_api"))

	promMw := middleware.NewPrometheusMiddleware("guard_api")
	router.Use(promMw.Handler())
	promMw.RegisterMetricsEndpoint(router)

	server := &RestServer{
		router:  router,
		ctrl:    config.Ctrl,
		port:    config.Port,
		metrics: NewServerMetrics(),
	}

	server.setupRoutes()
	return server
}

// setupRoutes настраивает маршруты командной поверхности
func (rs *RestServer) setupRoutes() {
	api := rs.router.Group("/api/guard")
	{
		api.GET("/status", rs.handleStatus)
		api.POST("/enable", rs.handleEnable)
		api.POST("/disable", rs.handleDisable)
		api.POST("/rescan", rs.handleRescan)
		api.GET("/dump", rs.handleDump)
	}

	rs.router.GET("/health", rs.handleHealth)
}

// StatusResponse — ответ /api/guard/status.
type StatusResponse struct {
	Guard  guard.Status           `json:"guard"`
	Server map[string]interface{} `json:"server"`
}

func (rs *RestServer) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, StatusResponse{
		Guard:  rs.ctrl.Status(),
		Server: rs.metrics.Snapshot(),
	})
}

func (rs *RestServer) handleEnable(c *gin.Context) {
	rs.ctrl.Enable()
	c.JSON(http.StatusOK, gin.H{"enabled": true})
}

func (rs *RestServer) handleDisable(c *gin.Context) {
	rs.ctrl.Disable()
	c.JSON(http.StatusOK, gin.H{"enabled": false})
}

func (rs *RestServer) handleRescan(c *gin.Context) {
	rs.ctrl.Rescan()
	c.JSON(http.StatusOK, gin.H{"rescan": "done"})
}

// handleDump отдаёт отладочный дамп ядра; при ?gzip=1 поток сжимается.
func (rs *RestServer) handleDump(c *gin.Context) {
	dump := rs.ctrl.Dump()

	if c.Query("gzip") == "1" {
		c.Header("Content-Encoding", "gzip")
		c.Header("Content-Type", "application/json")
		c.Status(http.StatusOK)
		gz := gzip.NewWriter(c.Writer)
		defer gz.Close()
		_ = json.NewEncoder(gz).Encode(dump)
		return
	}

	c.JSON(http.StatusOK, dump)
}

func (rs *RestServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": rs.metrics.GetUptime(),
	})
}

// Start запускает HTTP-сервер в отдельной горутине
func (rs *RestServer) Start() error {
	rs.srv = &http.Server{
		Addr:    rs.port,
		Handler: rs.router,
	}

	go func() {
		if err := rs.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Error("REST сервер: %v", err)
		}
	}()

	logging.Info("Командная поверхность доступна на http://localhost%s", rs.port)
	return nil
}

// Stop останавливает HTTP-сервер с учётом контекста
func (rs *RestServer) Stop(ctx context.Context) error {
	if rs.srv == nil {
		return nil
	}
	if err := rs.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("остановка REST сервера: %w", err)
	}
	return nil
}

// Router возвращает gin-роутер (для тестов)
func (rs *RestServer) Router() http.Handler {
	return rs.router
}
