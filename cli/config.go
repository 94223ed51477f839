// ABOUTME: CLI commands for the process config file
// ABOUTME: Writes a starter config.yaml and prints the effective settings
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/harperreed/leadflow/config"
	"gopkg.in/yaml.v3"
)

// ConfigCommand handles "leadflow config init|show". It runs before the
// database is opened, so it takes the loaded config directly.
func ConfigCommand(args []string, cfg *config.Config, path string, out io.Writer) error {
	if len(args) == 0 {
		return errors.New("config requires a subcommand (init or show)")
	}
	if path == "" {
		path = config.Path()
	}

	switch args[0] {
	case "init":
		return configInit(args[1:], cfg, path, out)
	case "show":
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
		_, _ = fmt.Fprintf(out, "# %s\n%s", path, data)
		return nil
	}
	return fmt.Errorf("unknown config subcommand: %s", args[0])
}

// configInit writes the defaults, keeping only the database path from cfg so a
// --db-path given on the command line ends up in the file.
func configInit(args []string, cfg *config.Config, path string, out io.Writer) error {
	fs := newFlagSet("config init")
	force := fs.Bool("force", false, "Overwrite an existing config file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if _, err := os.Stat(path); err == nil && !*force {
		return fmt.Errorf("%s already exists; use --force to overwrite", path)
	}

	defaults := config.Default()
	defaults.DBPath = cfg.DBPath
	if err := defaults.Save(path); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(out, "✓ Config written to %s\n", path)
	return nil
}
