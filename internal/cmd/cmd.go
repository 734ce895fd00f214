package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ikalevatykh/vmg30/internal/config"
	"github.com/ikalevatykh/vmg30/internal/server"
)

var RootCmd = &cobra.Command{
	Use:   "vmgserver",
	Short: "data server for the VMG30 motion capture glove",
	Long:  "data server for the VMG30 motion capture glove",
}

func ServeCmdRunE(cmd *cobra.Command, args []string) error {
	server.NewMainApp(cmd, args).PrepareRun().Run()
	return nil
}

func ServeCmdFlags(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "default configuration path")
	cmd.Flags().Int64P("port", "p", config.DefaultAPIPort, "port that the API server listen on")
	cmd.Flags().StringP("interface", "i", config.DefaultAPIInterface, "interface that the API server listen on, default to 0.0.0.0")
	cmd.Flags().String("glove-port", config.DefaultGlovePort, "serial port of the glove")
	cmd.Flags().Bool("debug", false, "toggle debug logging")
}

var ServeCmd = &cobra.Command{
	Use: "serve",
	SuggestFor: []string{
		"ru", "ser",
	},
	Short: "serve start the glove data server using predefined configs.",
	Long: `serve start the glove data server using predefined configs, by the following order:
1. path specified in --config flag
2. path defined VMGSERVER_CONFIG environment variable
3. default location $HOME/.config/vmgserver/config.yaml, /etc/vmgserver/config.yaml, current directory
The parameters in the configuration file will be overwritten by the following order:
1. command line arguments
2. environment variables
`,
	Example: `  vmgserver serve --config=/path/to/config`,
	RunE:    ServeCmdRunE,
}

func InitCmdFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("print", false, "print config to stdout")
	cmd.Flags().BoolP("yes", "y", false, "overwrite")
	cmd.Flags().StringP("output", "o", config.DefaultConfig, "specify output directory")
}

var InitCmd = &cobra.Command{
	Use: "init",
	SuggestFor: []string{
		"ini", "in",
	},
	Short: "init create a configuration template",
	Long: `init create a configuration template.
The configuration file can be used to launch the glove data server.
If --print flag is present, the configuration will be printed to stdout.
If --output / -o flag is present, the configuration will be saved to the path specified
Otherwise init will output configuration file to $HOME/.config/vmgserver/config.yaml
If --yes / -y flag is present, the configuration will be overwrite without confirmation
`,
	Example: `  vmgserver init --print
  vmgserver init --output /path/to/config.yaml
  vmgserver init -o /path/to/config.yaml -y`,
	RunE: config.InitCfg,
}

var ProbeCmd = &cobra.Command{
	Use: "probe",
	SuggestFor: []string{
		"pro", "pr", "prob",
	},
	Short: "probe the connected gloves",
	Long: `probe the connected gloves.
The probe command will scan the serial ports for responding gloves and print the result to stdout.
Warning: probing opens every serial port and runs the connect handshake on it.
`,
	Example: `  vmgserver probe`,
	Run: func(cmd *cobra.Command, args []string) {
		_ = server.NewMainApp(cmd, args).PrepareRun().ProbeGlove()
	},
}

func getRootCmd() *cobra.Command {

	ServeCmdFlags(ServeCmd)
	RootCmd.AddCommand(ServeCmd)

	InitCmdFlags(InitCmd)
	RootCmd.AddCommand(InitCmd)

	RootCmd.AddCommand(ProbeCmd)

	return RootCmd
}

func Execute() {
	rootCmd := getRootCmd()
	if err := rootCmd.Execute(); err != nil {
		panic(err)
	}
}
