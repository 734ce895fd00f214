package main

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ikalevatykh/vmg30/internal/config"
	"github.com/ikalevatykh/vmg30/internal/glove"
)

func _main(cmd *cobra.Command, args []string) error {
	port, _ := cmd.Flags().GetString("port")
	id, _ := cmd.Flags().GetUint16("id")
	label, _ := cmd.Flags().GetString("label")

	if !cmd.Flags().Changed("id") && !cmd.Flags().Changed("label") {
		return fmt.Errorf("nothing to do, pass --id and/or --label")
	}

	s, err := glove.Connect(port)
	if err != nil {
		log.Errorln(err)
		return err
	}
	defer func() { _ = s.Disconnect() }()

	if cmd.Flags().Changed("id") {
		if err := s.SetDeviceID(id); err != nil {
			log.Errorln(err)
			return err
		}
		log.Infof("device id set to %d", s.DeviceID())
	}
	if cmd.Flags().Changed("label") {
		if err := s.SetLabel(label); err != nil {
			log.Errorln(err)
			return err
		}
		log.Infof("device label set to %q", s.Label())
	}
	return nil
}

var rootCmd = &cobra.Command{
	Use:   "glove_setup",
	Short: "update the glove id and label",
	Long:  "update the glove id and label",
	RunE:  _main,
}

func main() {
	rootCmd.Flags().StringP("port", "p", config.DefaultGlovePort, "glove serial port")
	rootCmd.Flags().Uint16("id", 0, "new device id")
	rootCmd.Flags().String("label", "", "new device label, 16 bytes at most")

	if err := rootCmd.Execute(); err != nil {
		return
	}
}
