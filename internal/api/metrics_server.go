package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/annel0/channel-guard/internal/logging"
)

// MetricsServer отдаёт Prometheus-метрики на отдельном порту, изолированном
// от командной поверхности: скрейп не проходит через middleware REST API.
type MetricsServer struct {
	mux  *http.ServeMux
	port string
	srv  *http.Server
}

// NewMetricsServer создаёт сервер метрик на указанном адресе (вида ":2112")
func NewMetricsServer(port string) *MetricsServer {
	if port == "" {
		port = ":2112"
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	return &MetricsServer{
		mux:  mux,
		port: port,
	}
}

// Start запускает HTTP-сервер метрик в отдельной горутине
func (ms *MetricsServer) Start() error {
	ms.srv = &http.Server{
		Addr:    ms.port,
		Handler: ms.mux,
	}

	go func() {
		if err := ms.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Error("Сервер метрик: %v", err)
		}
	}()

	logging.Info("Метрики доступны на http://localhost%s/metrics", ms.port)
	return nil
}

// Stop останавливает сервер метрик с учётом контекста
func (ms *MetricsServer) Stop(ctx context.Context) error {
	if ms.srv == nil {
		return nil
	}
	if err := ms.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("остановка сервера метрик: %w", err)
	}
	return nil
}

// Handler возвращает HTTP-обработчик сервера (для тестов)
func (ms *MetricsServer) Handler() http.Handler {
	return ms.mux
}
