package main

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ikalevatykh/vmg30/internal/config"
	"github.com/ikalevatykh/vmg30/internal/glove"
)

func _main(cmd *cobra.Command, args []string) error {
	port, _ := cmd.Flags().GetString("port")

	s, err := glove.Connect(port)
	if err != nil {
		log.Errorln(err)
		return err
	}
	defer func() { _ = s.Disconnect() }()

	if err := s.Reboot(); err != nil {
		log.Errorln(err)
		return err
	}
	log.Infoln("glove is rebooting")
	return nil
}

var rootCmd = &cobra.Command{
	Use:   "glove_reboot",
	Short: "reboot the glove",
	Long:  "reboot the glove",
	RunE:  _main,
}

func main() {
	rootCmd.Flags().StringP("port", "p", config.DefaultGlovePort, "glove serial port")

	if err := rootCmd.Execute(); err != nil {
		return
	}
}
