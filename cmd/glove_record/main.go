package main

import (
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ikalevatykh/vmg30/internal/config"
	"github.com/ikalevatykh/vmg30/internal/glove"
)

func record(s *glove.Session, raw bool, stop <-chan os.Signal) ([]*glove.Sample, error) {
	var samples []*glove.Sample
	err := s.Sampling(raw, func() error {
		for {
			select {
			case <-stop:
				return nil
			default:
			}
			sample, err := s.NextSample()
			if err != nil {
				if glove.IsPacketError(err) {
					log.Warnln(err)
					continue
				}
				return err
			}
			samples = append(samples, sample)
		}
	})
	return samples, err
}

func _main(cmd *cobra.Command, args []string) error {
	port, _ := cmd.Flags().GetString("port")
	outFile, _ := cmd.Flags().GetString("output")
	raw, _ := cmd.Flags().GetBool("raw")

	s, err := glove.Connect(port)
	if err != nil {
		log.Errorln(err)
		return err
	}
	defer func() { _ = s.Disconnect() }()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	log.Infoln("recording, press Ctrl-C to stop")
	samples, err := record(s, raw, stop)
	if err != nil {
		log.Errorln(err)
		return err
	}

	log.Infof("saving %d samples to %q...", len(samples), outFile)
	buffer, err := yaml.Marshal(samples)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outFile, buffer, 0644); err != nil {
		return err
	}
	log.Infoln("done")
	return nil
}

var rootCmd = &cobra.Command{
	Use:   "glove_record",
	Short: "record glove data to a file",
	Long:  "record glove data to a file",
	RunE:  _main,
}

func main() {
	rootCmd.Flags().StringP("port", "p", config.DefaultGlovePort, "glove serial port")
	rootCmd.Flags().StringP("output", "o", "glove_data.yaml", "path to output file")
	rootCmd.Flags().Bool("raw", false, "record raw IMU data instead of quaternions")

	if err := rootCmd.Execute(); err != nil {
		return
	}
}
