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

	id := s.Identity()
	fmt.Printf("Device %q\n", port)
	fmt.Printf("- id: %d\n", id.DeviceID)
	fmt.Printf("- label: %q\n", id.Label)
	fmt.Printf("- firmware: %s\n", id.Firmware)
	fmt.Printf("- has WIFI module: %v\n", id.HasWifiModule())
	if id.HasWifiModule() {
		fmt.Printf("- address: %s\n", id.Address)
		fmt.Printf("- netmask: %s\n", id.Netmask)
		fmt.Printf("- gateway: %s\n", id.Gateway)
		fmt.Printf("- dhcp: %v\n", id.DHCP)
	}
	return nil
}

var rootCmd = &cobra.Command{
	Use:   "glove_info",
	Short: "show information about the glove",
	Long:  "show information about the glove",
	RunE:  _main,
}

func main() {
	rootCmd.Flags().StringP("port", "p", config.DefaultGlovePort, "glove serial port")

	if err := rootCmd.Execute(); err != nil {
		return
	}
}
