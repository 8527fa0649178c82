// Package cmd provides the root command and CLI setup for velc.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"vel.dev/pkg/velc/internal/adapter"
	"vel.dev/pkg/velc/internal/controller"
	"vel.dev/pkg/velc/internal/domain"
	m "vel.dev/pkg/velc/internal/model"
)

var fsAdapter adapter.SourceFSAdapter
var unitAdapter adapter.UnitAdapter
var interopAdapter adapter.InteropAdapter
var reportStore adapter.ReportStore
var workflow domain.Workflow
var ui controller.UI

// reportsOutputDirFlag is a root-level flag shared by commands that read/write reports.
var reportsOutputDirFlag string

// interopFileFlag points at a YAML file describing struct fields
// defined outside the analyzed sources.
var interopFileFlag string

// excludePatterns is a root-level flag that filters files for applicable commands.
var excludePatterns []string

// verboseFlag switches the log file to debug level.
var verboseFlag bool

func init() {
	configureRootFlags(rootCmd)

	// Initialize shared dependencies.
	ui = controller.NewUI(rootCmd, controller.IsTTY(os.Stdout))
	fsAdapter = adapter.NewLocalSourceFSAdapter()
	unitAdapter = adapter.NewLocalUnitAdapter()
	interopAdapter = adapter.NewLocalInteropAdapter()
	reportStore = adapter.NewLocalReportStore()
	workflow = domain.NewWorkflow(
		fsAdapter,
		unitAdapter,
		interopAdapter,
		reportStore,
		ui,
	)
}

const pathPatternsHelp = `Supports Go-style path patterns:
  - ./...          recursively scan current directory
  - ./src/...      recursively scan src directory
  - ./src ./lib    scan multiple directories`

const rootLongDescription = `Velc is the semantic analyzer for the Vel language. It enforces
definite initialization (every variable and struct field must be
assigned before it is read) and null safety (values returned by
nullable C functions must be checked against NULL before use) and
reports violations as compiler-style errors.

` + pathPatternsHelp

const checkLongDescription = `Run the initialization and null-safety checks for the given paths
(default: current directory).

` + pathPatternsHelp

const listLongDescription = `List source files with their function, struct and global counts.

` + pathPatternsHelp

// rootCmd represents the base command when called without any subcommands.
var rootCmd = baseRootCmd()

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "velc",
		Short: "Vel semantic analyzer",
		Long:  rootLongDescription,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger(viper.GetString(logFilenameKey), verboseFlag || viper.GetBool(logVerboseKey))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVarP(
			&reportsOutputDirFlag, outputFlagName, "o",
			viper.GetString(outputFlagName),
			"output directory for check reports",
		)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(outputFlagName), outputFlagName)

	cmd.PersistentFlags().StringVar(&interopFileFlag, interopFlagName, viper.GetString(interopConfigKey), "YAML file declaring struct fields defined outside the analyzed sources")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(interopFlagName), interopConfigKey)

	cmd.PersistentFlags().StringArrayVarP(&excludePatterns, excludeFlagName, "x", viper.GetStringSlice(excludeConfigKey), "exclude files matching regex (can be repeated)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(excludeFlagName), excludeConfigKey)

	cmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", viper.GetBool(logVerboseKey), "log at debug level")
	bindFlagToConfig(cmd.PersistentFlags().Lookup("verbose"), logVerboseKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func parsePaths(args []string) []m.Path {
	paths := make([]m.Path, 0, len(args))
	for _, arg := range args {
		paths = append(paths, m.Path(arg))
	}

	return paths
}
