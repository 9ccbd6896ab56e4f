package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/example/nsfwsweep/internal/config"
	"github.com/example/nsfwsweep/internal/wire"
)

// ConfigCmd returns the config command with all subcommands attached.
func ConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage credentials and settings",
		Long: `Manage ~/.sweep/config.json.

Every setting can also be supplied as an environment variable prefixed with
SWEEP_, e.g. SWEEP_PASSWORD or SWEEP_TIMEOUT_SECONDS.`,
	}

	cmd.AddCommand(configInitCmd())
	cmd.AddCommand(configShowCmd())
	return cmd
}

func configInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a config file interactively",
		Long: `Prompt for the Reddit script-app credentials and write them to the config file.

Create a "script" app at https://www.reddit.com/prefs/apps to obtain a client ID and secret.
Press Enter to keep the value shown in brackets.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := bufio.NewReader(cmd.InOrStdin())
			out := cmd.OutOrStdout()

			cfg := *wire.Config()
			if err := promptConfig(&cfg, in, out, isTerminalInput(cmd.InOrStdin())); err != nil {
				return err
			}

			if err := config.SaveConfig(configDir, &cfg); err != nil {
				return err
			}
			color.New(color.FgGreen).Fprintf(out, "✓ Wrote %s\n", config.Path(configDir))
			return nil
		},
	}
}

func configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Long:  "Print the configuration after environment overrides, with secrets masked.",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := json.MarshalIndent(wire.Config().Masked(), "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "# %s\n", config.Path(configDir))
			fmt.Fprintln(out, string(data))
			return nil
		},
	}
}

// promptConfig fills cfg field by field. Secrets are read without echo when
// the input is a terminal.
func promptConfig(cfg *config.Config, in *bufio.Reader, out io.Writer, tty bool) error {
	fields := []struct {
		label  string
		value  *string
		secret bool
	}{
		{"Client ID", &cfg.ClientID, false},
		{"Client secret", &cfg.ClientSecret, true},
		{"Username", &cfg.Username, false},
		{"Password", &cfg.Password, true},
		{"User agent", &cfg.UserAgent, false},
	}

	for _, f := range fields {
		shown := *f.value
		if f.secret && shown != "" {
			shown = "keep current"
		}
		prompt := fmt.Sprintf("%s [%s]: ", f.label, shown)

		var answer string
		var err error
		if f.secret && tty {
			fmt.Fprint(out, prompt)
			var b []byte
			b, err = term.ReadPassword(int(os.Stdin.Fd()))
			fmt.Fprintln(out)
			answer = string(b)
		} else {
			answer, err = readLine(in, out, prompt)
		}
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", f.label, err)
		}
		if answer != "" {
			*f.value = answer
		}
	}

	answer, err := readLine(in, out, fmt.Sprintf("Timeout seconds [%d]: ", cfg.TimeoutSeconds))
	if err != nil {
		return fmt.Errorf("failed to read timeout: %w", err)
	}
	if answer != "" {
		n, err := strconv.Atoi(answer)
		if err != nil || n <= 0 {
			return fmt.Errorf("timeout must be a positive number of seconds, got %q", answer)
		}
		cfg.TimeoutSeconds = n
	}

	return cfg.Validate()
}

func isTerminalInput(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
