/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	prefixed "github.com/BertoldVdb/logrus-prefixed-formatter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/allbin/go-ftdx"
	"github.com/allbin/go-ftdx/tty"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ftdx",
	Short: "Work with FTDI-style USB serial adapters",
	Long: `ftdx talks to USB serial adapters through a device session with
explicit open/configure/close semantics.

Devices can be addressed by enumeration index or by serial number:
  ftdx info 0
  ftdx send "AT" FT1234XY --newline

Configuration flags can also come from a config file (~/.ftdx.yaml) or
from FTDX_* environment variables.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().IntP("baud", "b", 115200, "Baud rate")
	rootCmd.PersistentFlags().Int("data-bits", 8, "Data bits: 7 or 8")
	rootCmd.PersistentFlags().Int("stop-bits", 1, "Stop bits: 1 or 2")
	rootCmd.PersistentFlags().StringP("parity", "p", "none", "Parity: none, odd, even, mark, space")
	rootCmd.PersistentFlags().String("log-level", "warning", "Log level: panic, fatal, error, warning, info, debug, trace")

	viper.BindPFlag("baud", rootCmd.PersistentFlags().Lookup("baud"))
	viper.BindPFlag("data-bits", rootCmd.PersistentFlags().Lookup("data-bits"))
	viper.BindPFlag("stop-bits", rootCmd.PersistentFlags().Lookup("stop-bits"))
	viper.BindPFlag("parity", rootCmd.PersistentFlags().Lookup("parity"))
	viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	home, err := os.UserHomeDir()
	if err == nil {
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".ftdx")
	}

	viper.SetEnvPrefix("ftdx")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// Config file is optional
	_ = viper.ReadInConfig()
}

// newLogger builds the logrus entry handed to sessions. Log output goes to
// stderr so it never mixes with data written to stdout by read/send.
func newLogger() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	level, err := logrus.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		level = logrus.WarnLevel
	}
	logger.SetLevel(level)

	formatter := new(prefixed.TextFormatter)
	formatter.TimestampFormat = "2006-01-02 15:04:05"
	formatter.FullTimestamp = true
	logger.SetFormatter(formatter)

	return logrus.NewEntry(logger)
}

// parseParity maps the CLI spelling to a parity mode.
func parseParity(s string) (ftdx.Parity, error) {
	switch strings.ToLower(s) {
	case "none", "n":
		return ftdx.ParityNone, nil
	case "odd", "o":
		return ftdx.ParityOdd, nil
	case "even", "e":
		return ftdx.ParityEven, nil
	case "mark", "m":
		return ftdx.ParityMark, nil
	case "space", "s":
		return ftdx.ParitySpace, nil
	default:
		return ftdx.ParityNone, fmt.Errorf("unknown parity %q", s)
	}
}

// sessionOptions assembles session options from viper-resolved settings.
func sessionOptions() ([]ftdx.Option, error) {
	parity, err := parseParity(viper.GetString("parity"))
	if err != nil {
		return nil, err
	}

	return []ftdx.Option{
		ftdx.WithBaudRate(viper.GetInt("baud")),
		ftdx.WithDataBits(viper.GetInt("data-bits")),
		ftdx.WithStopBits(viper.GetInt("stop-bits")),
		ftdx.WithParity(parity),
		ftdx.WithLogger(newLogger()),
	}, nil
}

// newSession creates a session over the system tty driver with the
// configuration resolved from flags, env and config file.
func newSession(extra ...ftdx.Option) (*ftdx.Session, error) {
	opts, err := sessionOptions()
	if err != nil {
		return nil, err
	}
	return ftdx.New(tty.New(), append(opts, extra...)...)
}

// openTarget opens a device by CLI argument: a plain integer is treated as
// an enumeration index, anything else as a serial number.
func openTarget(s *ftdx.Session, target string) error {
	if index, err := strconv.Atoi(target); err == nil {
		return s.Open(index)
	}
	return s.OpenBySerialNumber(target)
}

func exitErr(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
