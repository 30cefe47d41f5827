package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Результаты команд для метки result.
const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
	ResultError    = "error"
)

// DeskMetrics содержит метрики стойки оформления заказов.
// Все методы безопасны для nil-получателя: метрики необязательны.
type DeskMetrics struct {
	// Сессии
	sessionsOpened  prometheus.Counter
	sessionsExpired prometheus.Counter
	activeSessions  prometheus.Gauge

	// Команды и поиск
	commands *prometheus.CounterVec
	searches *prometheus.CounterVec

	// Заказы
	ordersFinalized    prometheus.Counter
	ordersCompleted    prometheus.Counter
	ordersSubmitFailed prometheus.Counter
	orderValue         prometheus.Histogram
	submitDuration     prometheus.Histogram

	// Каталог
	catalogEntries *prometheus.GaugeVec
}

// NewDeskMetrics создаёт метрики в DefaultRegisterer.
func NewDeskMetrics() *DeskMetrics {
	return NewDeskMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewDeskMetricsWithRegisterer создаёт метрики в заданном registerer (удобно в тестах).
func NewDeskMetricsWithRegisterer(registerer prometheus.Registerer) *DeskMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &DeskMetrics{
		sessionsOpened: registerCounter(registerer, prometheus.CounterOpts{
			Name: "messeorder_sessions_opened_total",
			Help: "Total number of order desk sessions opened",
		}),
		sessionsExpired: registerCounter(registerer, prometheus.CounterOpts{
			Name: "messeorder_sessions_expired_total",
			Help: "Total number of idle sessions removed by the sweeper",
		}),
		activeSessions: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "messeorder_active_sessions",
			Help: "Number of currently open sessions",
		}),
		commands: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "messeorder_commands_total",
			Help: "Session commands grouped by command and result",
		}, []string{"command", "result"}),
		searches: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "messeorder_searches_total",
			Help: "Catalog searches grouped by kind and status",
		}, []string{"kind", "status"}),
		ordersFinalized: registerCounter(registerer, prometheus.CounterOpts{
			Name: "messeorder_orders_finalized_total",
			Help: "Total number of orders finalized for review",
		}),
		ordersCompleted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "messeorder_orders_completed_total",
			Help: "Total number of orders handed off successfully",
		}),
		ordersSubmitFailed: registerCounter(registerer, prometheus.CounterOpts{
			Name: "messeorder_orders_submit_failed_total",
			Help: "Total number of failed order hand-offs",
		}),
		orderValue: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "messeorder_order_value_eur",
			Help:    "Total value of completed orders in EUR",
			Buckets: []float64{10, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 25000},
		}),
		submitDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "messeorder_order_submit_duration_seconds",
			Help:    "Duration of order hand-off in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}),
		catalogEntries: registerGaugeVec(registerer, prometheus.GaugeOpts{
			Name: "messeorder_catalog_entries",
			Help: "Number of catalog entries by kind",
		}, []string{"kind"}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	return register(registerer, opts.Name, prometheus.NewCounter(opts))
}

func registerGauge(registerer prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	return register(registerer, opts.Name, prometheus.NewGauge(opts))
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	return register(registerer, opts.Name, prometheus.NewHistogram(opts))
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	return register(registerer, opts.Name, prometheus.NewCounterVec(opts, labels))
}

func registerGaugeVec(registerer prometheus.Registerer, opts prometheus.GaugeOpts, labels []string) *prometheus.GaugeVec {
	return register(registerer, opts.Name, prometheus.NewGaugeVec(opts, labels))
}

// register регистрирует коллектор; при повторной регистрации возвращает уже существующий.
func register[C prometheus.Collector](registerer prometheus.Registerer, name string, collector C) C {
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(C)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", name))
			}
			return existing
		}
		panic(fmt.Sprintf("register collector %q: %v", name, err))
	}
	return collector
}

// RecordSessionOpened учитывает новую сессию.
func (m *DeskMetrics) RecordSessionOpened() {
	if m == nil {
		return
	}
	m.sessionsOpened.Inc()
	m.activeSessions.Inc()
}

// RecordSessionClosed уменьшает число активных сессий; expired - удалена по таймауту.
func (m *DeskMetrics) RecordSessionClosed(expired bool) {
	if m == nil {
		return
	}
	m.activeSessions.Dec()
	if expired {
		m.sessionsExpired.Inc()
	}
}

// RecordCommand учитывает выполнение команды сессии.
func (m *DeskMetrics) RecordCommand(command, result string) {
	if m == nil {
		return
	}
	m.commands.WithLabelValues(command, result).Inc()
}

// RecordSearch учитывает поиск по каталогу.
func (m *DeskMetrics) RecordSearch(kind, status string) {
	if m == nil {
		return
	}
	m.searches.WithLabelValues(kind, status).Inc()
}

// RecordOrderFinalized учитывает заказ, зафиксированный для просмотра.
func (m *DeskMetrics) RecordOrderFinalized() {
	if m == nil {
		return
	}
	m.ordersFinalized.Inc()
}

// RecordOrderCompleted учитывает переданный заказ и его сумму.
func (m *DeskMetrics) RecordOrderCompleted(valueEUR float64, duration time.Duration) {
	if m == nil {
		return
	}
	m.ordersCompleted.Inc()
	m.orderValue.Observe(valueEUR)
	m.submitDuration.Observe(duration.Seconds())
}

// RecordOrderSubmitFailed учитывает неудачную передачу заказа.
func (m *DeskMetrics) RecordOrderSubmitFailed(duration time.Duration) {
	if m == nil {
		return
	}
	m.ordersSubmitFailed.Inc()
	m.submitDuration.Observe(duration.Seconds())
}

// SetCatalogSize публикует размеры каталога.
func (m *DeskMetrics) SetCatalogSize(customers, articles int) {
	if m == nil {
		return
	}
	m.catalogEntries.WithLabelValues("customers").Set(float64(customers))
	m.catalogEntries.WithLabelValues("articles").Set(float64(articles))
}
