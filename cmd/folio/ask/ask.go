// Package askcmder provides the `folio ask` CLI command.
package askcmder

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/folio/cmd/folio/components"
	"github.com/papercomputeco/folio/pkg/config"
	"github.com/papercomputeco/folio/pkg/logger"
)

type askCommander struct {
	threshold  float64
	count      int
	minLength  int
	budget     int
	sqlitePath string
	debug      bool
	logger     *zap.Logger
}

var askFlags = []string{
	config.FlagMatchThreshold,
	config.FlagMatchCount,
	config.FlagMinContentLength,
	config.FlagTokenBudget,
	config.FlagSQLite,
}

const askLongDesc string = `Answer a question grounded in your notes.

Retrieves the sections most similar to the question, packs them into a
token-budgeted context, and asks the configured chat model to answer from
that context alone. Sources are listed under the answer.`

const askShortDesc string = "Ask a question against the index"

// NewAskCmd creates the ask cobra command.
func NewAskCmd() *cobra.Command {
	cmder := &askCommander{}

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: askShortDesc,
		Long:  askLongDesc,
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
	config.AddIntFlag(cmd, config.Flags, config.FlagTokenBudget, &cmder.budget)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlitePath)

	return cmd
}

func (c *askCommander) run(cmd *cobra.Command, question, configDir string) error {
	c.logger = logger.NewLogger(c.debug)
	defer c.logger.Sync()

	v, err := config.InitViper(configDir)
	if err != nil {
		return err
	}
	config.BindRegisteredFlags(v, cmd, config.Flags, askFlags)
	cfg := config.FromViper(v)

	comps, err := components.Build(cmd.Context(), cfg, c.logger)
	if err != nil {
		return err
	}
	defer comps.Close()

	results, err := comps.Retriever.Retrieve(cmd.Context(), question, comps.Params)
	if err != nil {
		return err
	}

	answerText, err := comps.Assembler.Answer(cmd.Context(), question, results)
	if err != nil {
		return err
	}

	fmt.Println(answerText)

	if len(results) > 0 {
		fmt.Println("\nSources:")
		seen := make(map[string]bool)
		for _, r := range results {
			if seen[r.DocumentPath] {
				continue
			}
			seen[r.DocumentPath] = true
			fmt.Printf("  - %s\n", r.DocumentPath)
		}
	}

	return nil
}
