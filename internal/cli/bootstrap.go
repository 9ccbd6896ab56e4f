// Package cli provides CLI commands for the sweep application.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/example/nsfwsweep/internal/config"
	"github.com/example/nsfwsweep/internal/wire"
)

// configDir is resolved once at startup by Setup.
var configDir string

// NewContext returns a context cancelled on interrupt or SIGTERM.
// CLI commands should use this instead of context.Background() directly.
func NewContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// AddGlobalFlags registers the flags every command understands.
func AddGlobalFlags(root *cobra.Command) {
	root.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().String("config-dir", "", "Config directory (default ~/.sweep)")
}

// Setup loads the config and logger and hands them to the wiring layer.
// It runs once at CLI startup in PersistentPreRunE.
func Setup(cmd *cobra.Command, args []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	dir, _ := cmd.Flags().GetString("config-dir")

	if dir == "" {
		var err error
		dir, err = config.DefaultDir()
		if err != nil {
			return err
		}
	}
	configDir = dir

	cfg, err := config.LoadConfig(dir)
	if err != nil {
		return err
	}

	wire.Configure(cfg, NewLogger(os.Stderr, verbose))
	return nil
}

// NewLogger creates the structured logger used by services.
func NewLogger(w io.Writer, verbose bool) *log.Logger {
	level := log.WarnLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: verbose,
		Prefix:          "sweep",
	})
}

// readLine prints a prompt and reads one trimmed line.
func readLine(in *bufio.Reader, out io.Writer, prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	line, err := in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// confirmPrompt asks a yes/no question; anything but y/yes is a no.
func confirmPrompt(in *bufio.Reader, out io.Writer, msg string) bool {
	response, err := readLine(in, out, msg)
	if err != nil {
		return false
	}
	response = strings.ToLower(response)
	return response == "y" || response == "yes"
}
