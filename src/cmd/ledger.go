package cmd

import (
	"github.com/vestlock/vestd/src/ledger"
	"github.com/vestlock/vestd/src/utils/logger"

	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(ledgerCmd)
}

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Runs the vesting ledger: REST API, token custody and notifications",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		controller, err := ledger.NewController(conf)
		if err != nil {
			return
		}

		err = controller.Start()
		if err != nil {
			return
		}

		select {
		case <-controller.CtxRunning.Done():
		case <-applicationCtx.Done():
		}

		controller.StopWait()

		return
	},
	PostRunE: func(cmd *cobra.Command, args []string) (err error) {
		log := logger.NewSublogger("ledger-cmd")
		log.Debug("Finished ledger command")
		applicationCtxCancel()
		return
	},
}
