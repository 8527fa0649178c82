package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"vel.dev/pkg/velc/internal/domain"
	m "vel.dev/pkg/velc/internal/model"
)

var checkParallelFlag int

// checkCmd represents the check command.
var checkCmd = newCheckCmd()

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [paths...]",
		Short: "Run initialization and null-safety checks",
		Long:  checkLongDescription,
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := parsePaths(args)
			reportsPath := m.Path(viper.GetString(outputFlagName))
			interopPath := m.Path(viper.GetString(interopConfigKey))
			threads := viper.GetInt(checkParallelConfigKey)

			err := workflow.Check(context.Background(), domain.CheckArgs{
				Paths:   paths,
				Exclude: viper.GetStringSlice(excludeConfigKey),
				Interop: interopPath,
				Reports: reportsPath,
				Threads: threads,
			})
			if errors.Is(err, domain.ErrChecksFailed) {
				// Diagnostics were already displayed; exit non-zero
				// without cobra repeating the error.
				cmd.SilenceUsage = true
				cmd.SilenceErrors = true
			}

			return err
		},
	}

	configureCheckFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func configureCheckFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&checkParallelFlag, checkParallelFlagName, "p", viper.GetInt(checkParallelConfigKey), "number of files checked in parallel")
	bindFlagToConfig(cmd.Flags().Lookup(checkParallelFlagName), checkParallelConfigKey)
}
