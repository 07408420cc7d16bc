// Package foliocmder
package foliocmder

import (
	"github.com/spf13/cobra"

	askcmder "github.com/papercomputeco/folio/cmd/folio/ask"
	configcmder "github.com/papercomputeco/folio/cmd/folio/config"
	searchcmder "github.com/papercomputeco/folio/cmd/folio/search"
	servecmder "github.com/papercomputeco/folio/cmd/folio/serve"
	synccmder "github.com/papercomputeco/folio/cmd/folio/sync"
	versioncmder "github.com/papercomputeco/folio/cmd/version"
)

const folioLongDesc string = `Folio keeps a semantic index of your notes vault and answers
questions from it.

Common workflows:
  folio sync             Bring the index up to date with the corpus
  folio search <query>   Rank stored sections against a query
  folio ask <question>   Answer a question grounded in your notes
  folio serve            Run the HTTP API with a filesystem watcher`

const folioShortDesc string = "Folio - Semantic notes index"

func NewFolioCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "folio",
		Short: folioShortDesc,
		Long:  folioLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override the .folio/ directory")

	// Add subcommands
	cmd.AddCommand(synccmder.NewSyncCmd())
	cmd.AddCommand(searchcmder.NewSearchCmd())
	cmd.AddCommand(askcmder.NewAskCmd())
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
