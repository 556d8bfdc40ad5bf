// Command adbpake runs the adb pairing handshake locally, playing both
// roles in one process.
package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"slices"
	"strings"

	spake2 "github.com/backkem/adb-spake2"
	"github.com/pion/logging"
	"github.com/spf13/cobra"
)

var (
	password     string
	peerPassword string
	suite        string
	logLevel     string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&password, "password", "123456", "pairing code used by the client")
	flags.StringVar(&peerPassword, "peer-password", "", "pairing code used by the server (defaults to --password)")
	flags.StringVar(&suite, "suite", "ed25519", "ciphersuite: ed25519 or p256")
	flags.StringVar(&logLevel, "log-level", "disabled", "log level: disabled, error, warn, info, debug or trace")

	rootCmd.AddCommand(handshakeCmd)
	rootCmd.AddCommand(sealCmd)
}

var rootCmd = &cobra.Command{
	Use:          "adbpake",
	Short:        "adb pairing SPAKE2 handshake tool",
	SilenceUsage: true,
}

var logLevels = map[string]logging.LogLevel{
	"disabled": logging.LogLevelDisabled,
	"error":    logging.LogLevelError,
	"warn":     logging.LogLevelWarn,
	"info":     logging.LogLevelInfo,
	"debug":    logging.LogLevelDebug,
	"trace":    logging.LogLevelTrace,
}

// newOptions builds handshake options from the persistent flags. Logs go to
// the command's error stream.
func newOptions(cmd *cobra.Command) (*spake2.Options, error) {
	opts := spake2.DefaultOptions()

	switch strings.ToLower(suite) {
	case "ed25519":
		opts.Ciphersuite = spake2.Ed25519Ciphersuite()
	case "p256":
		opts.Ciphersuite = spake2.P256Ciphersuite()
	default:
		return nil, fmt.Errorf("unknown suite %q", suite)
	}

	level, ok := logLevels[strings.ToLower(logLevel)]
	if !ok {
		return nil, fmt.Errorf("unknown log level %q", logLevel)
	}
	if level != logging.LogLevelDisabled {
		factory := logging.NewDefaultLoggerFactory()
		factory.Writer = cmd.ErrOrStderr()
		factory.DefaultLogLevel = level
		opts.LoggerFactory = factory
	}
	return opts, nil
}

// passwords returns the client and server passwords
func passwords() ([]byte, []byte) {
	server := peerPassword
	if server == "" {
		server = password
	}
	return []byte(password), []byte(server)
}

// hexRow is the number of bytes printed per line
const hexRow = 32

// hexBlock prints data as hex, hexRow bytes per line, continuation lines
// indented under the label.
func hexBlock(data []byte) string {
	var rows []string
	for row := range slices.Chunk(data, hexRow) {
		rows = append(rows, hex.EncodeToString(row))
	}
	return strings.Join(rows, "\n  ")
}
