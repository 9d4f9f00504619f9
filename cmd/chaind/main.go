// chaind hosts the smart-contract execution core as a standalone process:
// it opens the state store, builds the chain-wide service bundle, and
// exposes the subcommands an external block-production loop or operator
// uses to drive it. Networking, consensus and the RPC surface are explicitly
// out of scope (see ambient-stack notes in DESIGN.md); this binary only
// owns what core/ implements.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	cmdconfig "github.com/infrabridge/chaincore/cmd/config"
	"github.com/infrabridge/chaincore/core"
)

func main() {
	rootCmd := &cobra.Command{Use: "chaind"}
	rootCmd.PersistentFlags().String("env", "", "configuration environment overlay, e.g. staging")
	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(versionCmd())
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print the chaind build version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("chaind dev")
		},
	}
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "open the state store and block on an external driver",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, _ := cmd.Flags().GetString("env")
			cmdconfig.LoadConfig(env)
			cfg := cmdconfig.AppConfig

			level, err := logrus.ParseLevel(cfg.Logging.Level)
			if err != nil {
				level = logrus.InfoLevel
			}
			core.SetLogLevel(level)

			store, err := core.OpenStateStore(cfg.Storage.DBPath)
			if err != nil {
				return err
			}
			defer store.Close()

			services := newChainServices()
			_ = services
			_ = store

			logrus.Infof("chaind ready: backend=%s db=%s", cfg.VM.Backend, cfg.Storage.DBPath)
			select {}
		},
	}
}

// newChainServices wires the chain-wide singletons shared by every
// apply-context, per DESIGN.md's ChainServices note.
func newChainServices() *core.ChainServices {
	backend := core.NewWasmerBackend()
	return &core.ChainServices{
		Tokens:    core.NewStandardTokenManager(),
		Fees:      core.NewTransactionFeeManager(),
		Resources: core.NewResourceLimitsManager(),
		Producers: core.NewProducerScheduleManager(),
		Accounts:  core.NewAccountRegistry(),
		Votes:     core.NewTransactionVoteAccumulator(),
		Contracts: core.NewContractRegistry(),
		Modules:   core.NewModuleCache(backend),
	}
}
