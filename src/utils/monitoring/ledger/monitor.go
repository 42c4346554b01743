package monitor_ledger

import (
	"net/http"
	"time"

	"github.com/vestlock/vestd/src/utils/monitoring/report"
	"github.com/vestlock/vestd/src/utils/task"

	"github.com/gammazero/deque"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Stores and computes monitor counters
type Monitor struct {
	*task.Task

	Report report.Report

	historySize int

	collector *Collector

	// Claim processing speed
	ClaimCounts *deque.Deque[uint64]
}

func NewMonitor() (self *Monitor) {
	self = new(Monitor)

	self.Report = report.Report{
		Ledger:         &report.LedgerReport{},
		RedisPublisher: &report.RedisPublisherReport{},
	}

	self.Report.Ledger.State.StartTimestamp.Store(time.Now().Unix())

	self.collector = NewCollector().WithMonitor(self)

	self.Task = task.NewTask(nil, "monitor").
		WithPeriodicSubtaskFunc(time.Minute, self.monitorClaims)
	return
}

func (self *Monitor) GetReport() *report.Report {
	return &self.Report
}

func (self *Monitor) WithMaxHistorySize(maxHistorySize int) *Monitor {
	self.historySize = maxHistorySize

	self.ClaimCounts = deque.New[uint64](self.historySize)

	return self
}

func (self *Monitor) GetPrometheusCollector() (collector prometheus.Collector) {
	return self.collector
}

// Measure claim processing speed
func (self *Monitor) monitorClaims() (err error) {
	executed := self.Report.Ledger.State.ClaimsExecuted.Load()

	self.ClaimCounts.PushBack(executed)
	if self.ClaimCounts.Len() > self.historySize {
		self.ClaimCounts.PopFront()
	}
	if self.ClaimCounts.Len() < 2 {
		return
	}
	value := float64(self.ClaimCounts.Back()-self.ClaimCounts.Front()) / float64(self.ClaimCounts.Len())

	self.Report.Ledger.State.AverageClaimsPerMinute.Store(value)
	return
}

// The ledger is passive, it only serves requests. As long as the process
// is up it is considered healthy.
func (self *Monitor) IsOK() bool {
	return true
}

func (self *Monitor) OnGetState(c *gin.Context) {
	self.Report.Ledger.State.UpForSeconds.Store(uint64(time.Now().Unix() - self.Report.Ledger.State.StartTimestamp.Load()))

	c.JSON(http.StatusOK, &self.Report)
}

func (self *Monitor) OnGetHealth(c *gin.Context) {
	if self.IsOK() {
		c.Status(http.StatusOK)
	} else {
		c.Status(http.StatusServiceUnavailable)
	}
}
