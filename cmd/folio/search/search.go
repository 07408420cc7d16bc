// Package searchcmder provides the `folio search` CLI command.
package searchcmder

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/folio/cmd/folio/components"
	"github.com/papercomputeco/folio/pkg/config"
	"github.com/papercomputeco/folio/pkg/logger"
	"github.com/papercomputeco/folio/pkg/store"
)

type searchCommander struct {
	threshold  float64
	count      int
	minLength  int
	sqlitePath string
	debug      bool
	logger     *zap.Logger
}

var searchFlags = []string{
	config.FlagMatchThreshold,
	config.FlagMatchCount,
	config.FlagMinContentLength,
	config.FlagSQLite,
}

const searchLongDesc string = `Rank stored sections against a query.

The query is embedded and matched against every indexed section by cosine
similarity. Only sections whose similarity clears the threshold and whose
content meets the minimum length are returned, best match first.`

const searchShortDesc string = "Search the index"

// NewSearchCmd creates the search cobra command.
func NewSearchCmd() *cobra.Command {
	cmder := &searchCommander{}

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: searchShortDesc,
		Long:  searchLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}

			configDir, _ := cmd.Flags().GetString("config-dir")
			return cmder.run(cmd, strings.Join(args, " "), configDir)
		},
	}

	config.AddFloatFlag(cmd, config.Flags, config.FlagMatchThreshold, &cmder.threshold)
	config.AddIntFlag(cmd, config.Flags, config.FlagMatchCount, &cmder.count)
	config.AddIntFlag(cmd, config.Flags, config.FlagMinContentLength, &cmder.minLength)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlitePath)

	return cmd
}

func (c *searchCommander) run(cmd *cobra.Command, query, configDir string) error {
	c.logger = logger.NewLogger(c.debug)
	defer c.logger.Sync()

	v, err := config.InitViper(configDir)
	if err != nil {
		return err
	}
	config.BindRegisteredFlags(v, cmd, config.Flags, searchFlags)
	cfg := config.FromViper(v)

	comps, err := components.Build(cmd.Context(), cfg, c.logger)
	if err != nil {
		return err
	}
	defer comps.Close()

	params := store.MatchParams{
		Threshold:        cfg.Retrieval.MatchThreshold,
		Count:            cfg.Retrieval.MatchCount,
		MinContentLength: cfg.Retrieval.MinContentLength,
	}

	results, err := comps.Retriever.Retrieve(cmd.Context(), query, params)
	if err != nil {
		return err
	}

	if len(results) == 0 {
		fmt.Println("No matches.")
		return nil
	}

	for i, r := range results {
		fmt.Printf("%d. %s (%.3f)\n", i+1, r.DocumentPath, r.Similarity)
		fmt.Printf("   %s\n\n", firstLine(r.Content))
	}

	return nil
}

// firstLine keeps result listings to one line per section.
func firstLine(content string) string {
	line := content
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	if len(line) > 120 {
		line = line[:120] + "..."
	}
	return line
}
