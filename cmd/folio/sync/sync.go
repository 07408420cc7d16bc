// Package synccmder provides the `folio sync` CLI command.
package synccmder

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/folio/cmd/folio/components"
	"github.com/papercomputeco/folio/pkg/config"
	"github.com/papercomputeco/folio/pkg/logger"
)

type syncCommander struct {
	root            string
	storageProvider string
	storageTarget   string
	sqlitePath      string
	embProvider     string
	embTarget       string
	embModel        string
	debug           bool
	logger          *zap.Logger
}

// syncFlags are the registry keys bound on this command.
var syncFlags = []string{
	config.FlagCorpusRoot,
	config.FlagStorageProvider,
	config.FlagStorageTarget,
	config.FlagSQLite,
	config.FlagEmbeddingProv,
	config.FlagEmbeddingTgt,
	config.FlagEmbeddingModel,
}

const syncLongDesc string = `Bring the index up to date with the corpus.

Scans the corpus root, detects new, changed, and access-changed documents by
checksum, re-embeds what changed, and deletes index entries whose source
document no longer exists. Unreadable or failing documents are counted and
skipped; a sync pass never aborts on a single document.`

const syncShortDesc string = "Sync the index with the corpus"

// NewSyncCmd creates the sync cobra command.
func NewSyncCmd() *cobra.Command {
	cmder := &syncCommander{}

	cmd := &cobra.Command{
		Use:   "sync",
		Short: syncShortDesc,
		Long:  syncLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}

			configDir, _ := cmd.Flags().GetString("config-dir")
			return cmder.run(cmd, configDir)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagCorpusRoot, &cmder.root)
	config.AddStringFlag(cmd, config.Flags, config.FlagStorageProvider, &cmder.storageProvider)
	config.AddStringFlag(cmd, config.Flags, config.FlagStorageTarget, &cmder.storageTarget)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagEmbeddingProv, &cmder.embProvider)
	config.AddStringFlag(cmd, config.Flags, config.FlagEmbeddingTgt, &cmder.embTarget)
	config.AddStringFlag(cmd, config.Flags, config.FlagEmbeddingModel, &cmder.embModel)

	return cmd
}

func (c *syncCommander) run(cmd *cobra.Command, configDir string) error {
	c.logger = logger.NewLogger(c.debug)
	defer c.logger.Sync()

	v, err := config.InitViper(configDir)
	if err != nil {
		return err
	}
	config.BindRegisteredFlags(v, cmd, config.Flags, syncFlags)
	cfg := config.FromViper(v)

	comps, err := components.Build(cmd.Context(), cfg, c.logger)
	if err != nil {
		return err
	}
	defer comps.Close()

	if comps.Indexer == nil {
		return fmt.Errorf("corpus.root is not configured; set it with `folio config set corpus.root <dir>` or --root")
	}

	result, err := comps.Indexer.Sync(cmd.Context(), comps.SyncOpts)
	if err != nil {
		return err
	}

	fmt.Println(result.Summary())
	return nil
}
