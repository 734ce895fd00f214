package main

import (
	"fmt"

	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ikalevatykh/vmg30/internal/config"
	"github.com/ikalevatykh/vmg30/internal/glove"
)

var defaultTableValue = [][]string{{"Sensor", "Value"}}

func getTable() *widgets.Table {
	table := widgets.NewTable()
	table.Rows = defaultTableValue
	table.ColumnWidths = []int{20, 60}
	table.TextStyle = ui.NewStyle(ui.ColorWhite)
	table.TextAlignment = ui.AlignRight
	table.SetRect(0, 0, 84, 26)
	return table
}

func printArray(arr []float64) string {
	str := ""
	for i, num := range arr {
		str += fmt.Sprintf("%.2f", num)
		if i != len(arr)-1 {
			str += ", "
		}
	}
	return str
}

func updateValue(port string, raw bool, table *widgets.Table) {
	s, err := glove.Connect(port)
	if err != nil {
		log.Panicln(err)
	}
	defer func() { _ = s.Disconnect() }()

	err = s.Sampling(raw, func() error {
		for {
			sample, err := s.NextSample()
			if err != nil {
				if glove.IsPacketError(err) {
					continue
				}
				return err
			}

			rows := [][]string{
				defaultTableValue[0],
				{"device", fmt.Sprintf("%d (%s)", sample.DeviceID, s.Label())},
				{"clock", fmt.Sprintf("%.3f s", sample.Clock)},
				{"pip joints", printArray(sample.PIPJoints[:])},
				{"dip joints", printArray(sample.DIPJoints[:])},
				{"abductions", printArray(sample.Abductions[:])},
				{"pressures", printArray(sample.Pressures[:])},
				{"palm arch", fmt.Sprintf("%.2f", sample.PalmArch)},
				{"thumb cross over", fmt.Sprintf("%.2f", sample.ThumbCrossOver)},
				{"battery", fmt.Sprintf("%.0f %%", sample.BatteryCharge*100)},
			}
			if sample.Raw() {
				rows = append(rows,
					[]string{"wrist gyro", printArray(sample.WristIMU.AngularVelocity[:])},
					[]string{"wrist accel", printArray(sample.WristIMU.Acceleration[:])},
					[]string{"hand gyro", printArray(sample.HandIMU.AngularVelocity[:])},
					[]string{"hand accel", printArray(sample.HandIMU.Acceleration[:])})
			} else {
				rows = append(rows,
					[]string{"wrist quat", printArray(sample.WristQuat[:])},
					[]string{"hand quat", printArray(sample.HandQuat[:])})
			}
			table.Rows = rows
			ui.Render(table)
		}
	})
	if err != nil {
		log.Warnln(err)
	}
}

func _main(cmd *cobra.Command, args []string) {
	port, _ := cmd.Flags().GetString("port")
	raw, _ := cmd.Flags().GetBool("raw")

	log.Info("Starting")
	if err := ui.Init(); err != nil {
		log.Fatalf("failed to initialize termui: %v", err)
	}
	defer ui.Close()

	t := getTable()
	go updateValue(port, raw, t)

	uiEvents := ui.PollEvents()
	for {
		e := <-uiEvents
		switch e.ID {
		case "q", "<C-c>":
			return
		}
	}
}

var rootCmd = &cobra.Command{
	Use:   "glove_playground",
	Short: "live view of the glove sensors",
	Long:  "live view of the glove sensors",
	Run: func(cmd *cobra.Command, args []string) {
		_main(cmd, args)
	},
}

func main() {
	rootCmd.Flags().StringP("port", "p", config.DefaultGlovePort, "glove serial port")
	rootCmd.Flags().Bool("raw", false, "show raw IMU data instead of quaternions")

	if err := rootCmd.Execute(); err != nil {
		return
	}
}
