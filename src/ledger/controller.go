package ledger

import (
	"github.com/vestlock/vestd/src/utils/config"
	"github.com/vestlock/vestd/src/utils/model"
	"github.com/vestlock/vestd/src/utils/monitoring"
	monitor_ledger "github.com/vestlock/vestd/src/utils/monitoring/ledger"
	"github.com/vestlock/vestd/src/utils/publisher"
	"github.com/vestlock/vestd/src/utils/task"
	"github.com/vestlock/vestd/src/utils/token"
)

type Controller struct {
	*task.Task
}

// Main class that orchestrates the vesting ledger service.
// Sets up the engine, its REST surface and the notification pipeline.
func NewController(config *config.Config) (self *Controller, err error) {
	self = new(Controller)

	self.Task = task.NewTask(config, "ledger-controller")

	monitor := monitor_ledger.NewMonitor().
		WithMaxHistorySize(config.Monitor.MaxHistorySize)

	monitoringServer := monitoring.NewServer(config).
		WithMonitor(monitor)

	watched := func() *task.Task {
		db, err := model.NewConnection(self.Ctx, self.Config, "ledger")
		if err != nil {
			panic(err)
		}

		transferor, err := token.NewErc20(self.Config)
		if err != nil {
			panic(err)
		}

		engine := NewEngine(self.Config).
			WithStore(NewGormStore(db)).
			WithTransferor(transferor).
			WithMonitor(monitor)

		server := NewServer(self.Config).
			WithEngine(engine)

		watchedTask := task.NewTask(self.Config, "watched-ledger").
			WithSubtask(engine.Task).
			WithSubtask(server.Task)

		if self.Config.Redis.Enabled {
			redisPublisher := publisher.NewRedisPublisher[*model.TicketNotification](self.Config, "ticket-redis-publisher").
				WithChannelName(self.Config.Redis.ChannelName).
				WithMonitor(monitor).
				WithInputChannel(engine.Output)

			watchedTask = watchedTask.WithSubtask(redisPublisher.Task)
		} else {
			// Nobody consumes notifications, drain the channel
			watchedTask = watchedTask.WithSubtaskFunc(func() error {
				for range engine.Output {
				}
				return nil
			})
		}

		return watchedTask
	}

	watchdog := task.NewWatchdog(config).
		WithTask(watched).
		WithIsOK(monitor.IsOK)

	self.Task = self.Task.
		WithSubtask(monitor.Task).
		WithSubtask(monitoringServer.Task).
		WithSubtask(watchdog.Task)

	return
}
