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

	s, err := glove.Connect(port)
	if err != nil {
		log.Errorln(err)
		return err
	}
	defer func() { _ = s.Disconnect() }()

	log.Infoln("starting orientation module calibration, keep the glove still")
	cal, err := s.Calibrate()
	if err != nil {
		log.Errorln(err)
		return err
	}
	for {
		stage, ok, err := cal.Next()
		if err != nil {
			log.Errorln(err)
			return err
		}
		if !ok {
			break
		}
		fmt.Printf("\rcalibration: %3d%%", stage)
	}
	fmt.Println()
	log.Infoln("calibration done")
	return nil
}

var rootCmd = &cobra.Command{
	Use:   "glove_calibrate",
	Short: "self calibration of the glove orientation module",
	Long:  "self calibration of the glove orientation module",
	RunE:  _main,
}

func main() {
	rootCmd.Flags().StringP("port", "p", config.DefaultGlovePort, "glove serial port")

	if err := rootCmd.Execute(); err != nil {
		return
	}
}
