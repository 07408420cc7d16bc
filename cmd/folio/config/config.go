// Package configcmder provides the config command for managing persistent
// folio configuration stored in the .folio/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent folio configuration.

Configuration is stored as config.toml in the .folio/ directory and provides
default values for command flags. CLI flags always take precedence over
config file values.

Keys use dotted notation matching the TOML section structure:
  corpus.root, corpus.excluded_dirs, corpus.public_dirs,
  storage.provider, storage.target, storage.sqlite_path,
  embedding.provider, embedding.target, embedding.model, embedding.dimensions,
  retrieval.match_threshold, retrieval.match_count, retrieval.min_content_length,
  answer.token_budget, chat.provider, chat.model, api.listen

Use subcommands to get, set, or list configuration values:
  folio config set <key> <value>    Set a configuration value
  folio config get <key>            Get a configuration value
  folio config list                 List all configuration values

Examples:
  folio config set corpus.root ~/notes
  folio config set retrieval.match_threshold 0.8
  folio config get embedding.model
  folio config list`

const configShortDesc string = "Manage persistent folio configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
