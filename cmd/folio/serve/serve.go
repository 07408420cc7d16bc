// Package servecmder provides the `folio serve` CLI command.
package servecmder

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/folio/api"
	"github.com/papercomputeco/folio/cmd/folio/components"
	"github.com/papercomputeco/folio/pkg/config"
	"github.com/papercomputeco/folio/pkg/corpus"
	"github.com/papercomputeco/folio/pkg/index"
	"github.com/papercomputeco/folio/pkg/logger"
)

type serveCommander struct {
	listen     string
	root       string
	sqlitePath string
	watch      bool
	debug      bool
	logger     *zap.Logger
}

var serveFlags = []string{
	config.FlagAPIListen,
	config.FlagCorpusRoot,
	config.FlagSQLite,
}

const serveLongDesc string = `Run the folio HTTP API server.

Exposes sync, search, and ask over HTTP. With --watch, a filesystem watcher
triggers a debounced sync pass whenever the corpus changes, so the index
tracks the vault without manual syncs.`

const serveShortDesc string = "Run the folio API server"

// NewServeCmd creates the serve cobra command.
func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
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

	config.AddStringFlag(cmd, config.Flags, config.FlagAPIListen, &cmder.listen)
	config.AddStringFlag(cmd, config.Flags, config.FlagCorpusRoot, &cmder.root)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlitePath)
	cmd.Flags().BoolVarP(&cmder.watch, "watch", "w", false, "Sync automatically when the corpus changes")

	return cmd
}

func (c *serveCommander) run(cmd *cobra.Command, configDir string) error {
	c.logger = logger.NewLogger(c.debug)
	defer c.logger.Sync()

	v, err := config.InitViper(configDir)
	if err != nil {
		return err
	}
	config.BindRegisteredFlags(v, cmd, config.Flags, serveFlags)
	cfg := config.FromViper(v)

	comps, err := components.Build(cmd.Context(), cfg, c.logger)
	if err != nil {
		return err
	}
	defer comps.Close()

	if comps.Indexer == nil {
		return fmt.Errorf("corpus.root is not configured; set it with `folio config set corpus.root <dir>` or --root")
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if c.watch {
		watcher := corpus.NewWatcher(cfg.Corpus.Root, 0, func() {
			c.syncPass(ctx, comps)
		}, c.logger)

		go func() {
			if err := watcher.Run(ctx); err != nil {
				c.logger.Error("watcher stopped", zap.Error(err))
			}
		}()
	}

	server := api.NewServer(
		api.Config{ListenAddr: cfg.API.Listen},
		comps.Indexer,
		comps.Retriever,
		comps.Assembler,
		comps.SyncOpts,
		api.ParamDefaults{
			MatchThreshold:   cfg.Retrieval.MatchThreshold,
			MatchCount:       cfg.Retrieval.MatchCount,
			MinContentLength: cfg.Retrieval.MinContentLength,
		},
		c.logger,
	)

	return server.Run()
}

// syncPass runs one watcher-triggered pass. An in-flight pass means the
// change will be picked up by the next trigger; that is fine to skip.
func (c *serveCommander) syncPass(ctx context.Context, comps *components.Components) {
	result, err := comps.Indexer.Sync(ctx, comps.SyncOpts)
	if err != nil {
		if errors.Is(err, index.ErrSyncInProgress) {
			c.logger.Debug("sync already running, skipping watcher trigger")
			return
		}
		c.logger.Error("watcher sync failed", zap.Error(err))
		return
	}

	c.logger.Info(result.Summary())
}
