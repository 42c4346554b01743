package task

import (
	"time"

	"github.com/vestlock/vestd/src/utils/config"
)

// Restarts the watched task whenever the health check fails
type Watchdog struct {
	*Task

	watchedFunc func() *Task
	watched     *Task
	isOK        func() bool

	interval time.Duration
}

func NewWatchdog(config *config.Config) (self *Watchdog) {
	self = new(Watchdog)

	self.interval = time.Minute

	self.Task = NewTask(config, "watchdog").
		WithOnBeforeStart(self.startWatched).
		WithPeriodicSubtaskFunc(self.interval, self.check).
		WithOnStop(self.stopWatched)

	return
}

func (self *Watchdog) WithTask(f func() *Task) *Watchdog {
	self.watchedFunc = f
	return self
}

func (self *Watchdog) WithIsOK(f func() bool) *Watchdog {
	self.isOK = f
	return self
}

func (self *Watchdog) WithInterval(v time.Duration) *Watchdog {
	self.interval = v
	return self
}

func (self *Watchdog) startWatched() (err error) {
	self.watched = self.watchedFunc()
	return self.watched.Start()
}

func (self *Watchdog) stopWatched() {
	if self.watched != nil {
		self.watched.StopWait()
	}
}

func (self *Watchdog) check() (err error) {
	if self.isOK() {
		return nil
	}

	self.Log.Warn("Health check failed, restarting watched task")

	self.stopWatched()

	return self.startWatched()
}
