package monitor_ledger

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Collector struct {
	monitor *Monitor

	StartTimestamp         *prometheus.Desc
	UpForSeconds           *prometheus.Desc
	TicketsCreated         *prometheus.Desc
	TokensDeposited        *prometheus.Desc
	ClaimsExecuted         *prometheus.Desc
	TokensClaimed          *prometheus.Desc
	TicketsRevoked         *prometheus.Desc
	TokensReturned         *prometheus.Desc
	AverageClaimsPerMinute *prometheus.Desc

	DbTicketInsert    *prometheus.Desc
	DbTicketUpdate    *prometheus.Desc
	DbTicketCounter   *prometheus.Desc
	TransferIn        *prometheus.Desc
	TransferOut       *prometheus.Desc
	Unauthorized      *prometheus.Desc
	InvalidRequest    *prometheus.Desc
	RedisPublish      *prometheus.Desc
	RedisPersistent   *prometheus.Desc
	MessagesPublished *prometheus.Desc
}

func NewCollector() *Collector {
	labels := prometheus.Labels{
		"app": "ledger",
	}

	return &Collector{
		StartTimestamp:         prometheus.NewDesc("start_timestamp", "", nil, labels),
		UpForSeconds:           prometheus.NewDesc("up_for_seconds", "", nil, labels),
		TicketsCreated:         prometheus.NewDesc("tickets_created", "", nil, labels),
		TokensDeposited:        prometheus.NewDesc("tokens_deposited", "", nil, labels),
		ClaimsExecuted:         prometheus.NewDesc("claims_executed", "", nil, labels),
		TokensClaimed:          prometheus.NewDesc("tokens_claimed", "", nil, labels),
		TicketsRevoked:         prometheus.NewDesc("tickets_revoked", "", nil, labels),
		TokensReturned:         prometheus.NewDesc("tokens_returned", "", nil, labels),
		AverageClaimsPerMinute: prometheus.NewDesc("average_claims_per_minute", "", nil, labels),

		// Errors
		DbTicketInsert:    prometheus.NewDesc("error_db_ticket_insert", "", nil, labels),
		DbTicketUpdate:    prometheus.NewDesc("error_db_ticket_update", "", nil, labels),
		DbTicketCounter:   prometheus.NewDesc("error_db_ticket_counter", "", nil, labels),
		TransferIn:        prometheus.NewDesc("error_transfer_in", "", nil, labels),
		TransferOut:       prometheus.NewDesc("error_transfer_out", "", nil, labels),
		Unauthorized:      prometheus.NewDesc("error_unauthorized", "", nil, labels),
		InvalidRequest:    prometheus.NewDesc("error_invalid_request", "", nil, labels),
		RedisPublish:      prometheus.NewDesc("error_redis_publish", "", nil, labels),
		RedisPersistent:   prometheus.NewDesc("error_redis_persistent_failure", "", nil, labels),
		MessagesPublished: prometheus.NewDesc("messages_published", "", nil, labels),
	}
}

func (self *Collector) WithMonitor(m *Monitor) *Collector {
	self.monitor = m
	return self
}

func (self *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- self.StartTimestamp
	ch <- self.UpForSeconds
	ch <- self.TicketsCreated
	ch <- self.TokensDeposited
	ch <- self.ClaimsExecuted
	ch <- self.TokensClaimed
	ch <- self.TicketsRevoked
	ch <- self.TokensReturned
	ch <- self.AverageClaimsPerMinute

	// Errors
	ch <- self.DbTicketInsert
	ch <- self.DbTicketUpdate
	ch <- self.DbTicketCounter
	ch <- self.TransferIn
	ch <- self.TransferOut
	ch <- self.Unauthorized
	ch <- self.InvalidRequest
	ch <- self.RedisPublish
	ch <- self.RedisPersistent
	ch <- self.MessagesPublished
}

// Collect implements required collect function for all promehteus collectors
func (self *Collector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(self.StartTimestamp, prometheus.GaugeValue, float64(self.monitor.Report.Ledger.State.StartTimestamp.Load()))
	ch <- prometheus.MustNewConstMetric(self.UpForSeconds, prometheus.GaugeValue, float64(self.monitor.Report.Ledger.State.UpForSeconds.Load()))
	ch <- prometheus.MustNewConstMetric(self.TicketsCreated, prometheus.CounterValue, float64(self.monitor.Report.Ledger.State.TicketsCreated.Load()))
	ch <- prometheus.MustNewConstMetric(self.TokensDeposited, prometheus.CounterValue, float64(self.monitor.Report.Ledger.State.TokensDeposited.Load()))
	ch <- prometheus.MustNewConstMetric(self.ClaimsExecuted, prometheus.CounterValue, float64(self.monitor.Report.Ledger.State.ClaimsExecuted.Load()))
	ch <- prometheus.MustNewConstMetric(self.TokensClaimed, prometheus.CounterValue, float64(self.monitor.Report.Ledger.State.TokensClaimed.Load()))
	ch <- prometheus.MustNewConstMetric(self.TicketsRevoked, prometheus.CounterValue, float64(self.monitor.Report.Ledger.State.TicketsRevoked.Load()))
	ch <- prometheus.MustNewConstMetric(self.TokensReturned, prometheus.CounterValue, float64(self.monitor.Report.Ledger.State.TokensReturned.Load()))
	ch <- prometheus.MustNewConstMetric(self.AverageClaimsPerMinute, prometheus.GaugeValue, self.monitor.Report.Ledger.State.AverageClaimsPerMinute.Load())

	// Errors
	ch <- prometheus.MustNewConstMetric(self.DbTicketInsert, prometheus.CounterValue, float64(self.monitor.Report.Ledger.Errors.DbTicketInsert.Load()))
	ch <- prometheus.MustNewConstMetric(self.DbTicketUpdate, prometheus.CounterValue, float64(self.monitor.Report.Ledger.Errors.DbTicketUpdate.Load()))
	ch <- prometheus.MustNewConstMetric(self.DbTicketCounter, prometheus.CounterValue, float64(self.monitor.Report.Ledger.Errors.DbTicketCounter.Load()))
	ch <- prometheus.MustNewConstMetric(self.TransferIn, prometheus.CounterValue, float64(self.monitor.Report.Ledger.Errors.TransferIn.Load()))
	ch <- prometheus.MustNewConstMetric(self.TransferOut, prometheus.CounterValue, float64(self.monitor.Report.Ledger.Errors.TransferOut.Load()))
	ch <- prometheus.MustNewConstMetric(self.Unauthorized, prometheus.CounterValue, float64(self.monitor.Report.Ledger.Errors.Unauthorized.Load()))
	ch <- prometheus.MustNewConstMetric(self.InvalidRequest, prometheus.CounterValue, float64(self.monitor.Report.Ledger.Errors.InvalidRequest.Load()))
	ch <- prometheus.MustNewConstMetric(self.RedisPublish, prometheus.CounterValue, float64(self.monitor.Report.RedisPublisher.Errors.Publish.Load()))
	ch <- prometheus.MustNewConstMetric(self.RedisPersistent, prometheus.CounterValue, float64(self.monitor.Report.RedisPublisher.Errors.PersistentFailure.Load()))
	ch <- prometheus.MustNewConstMetric(self.MessagesPublished, prometheus.CounterValue, float64(self.monitor.Report.RedisPublisher.State.MessagesPublished.Load()))
}
