package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/timebank/backend/internal/bot"
	"github.com/timebank/backend/internal/cards"
	"github.com/timebank/backend/internal/catalog"
	"github.com/timebank/backend/internal/config"
	"github.com/timebank/backend/internal/repository"
)

func init() {
	rootCmd.AddCommand(toolsCmd, sayCmd, migrateCmd)

	sayCmd.Flags().String("user", "local-user", "user id the commands run as")
	sayCmd.Flags().String("name", "Local User", "display name stored with entries")
}

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Print the loaded tool catalog",
	Long: `Print the tool catalog from TOOLS_FILE, or the built-in one. Needs neither bot
credentials nor store settings. Logs go to stderr.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := setup(cmd.ErrOrStderr(), config.WithoutBotCredentials(), config.WithoutStore())
		if err != nil {
			return err
		}
		cat := catalog.Load(cfg.ToolsFile, logger)
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tMULTIPLIER\tDESCRIPTION")
		for _, t := range cat.Tools() {
			fmt.Fprintf(w, "%s\t%s\t%s\n", t.Name, bot.FormatMultiplier(t.Multiplier), t.Description)
		}
		return w.Flush()
	},
}

var sayCmd = &cobra.Command{
	Use:   `say "COMMAND" ["COMMAND"...]`,
	Short: "Run bot commands against the configured store and print the replies as JSON",
	Long: `Run each argument as a chat command for one user and print the replies as JSON on
stdout. Logs go to stderr. Bot credentials are not needed. The store is chosen by
STORE_MODE, which defaults to sharepoint unless APP_ENV=development.`,
	Example: `  APP_ENV=development timebank say --user U1 --name Ada "save 60 mins - Copilot" "balance" | jq .`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd.ErrOrStderr(), config.WithoutBotCredentials())
		if err != nil {
			return err
		}
		userID, _ := cmd.Flags().GetString("user")
		userName, _ := cmd.Flags().GetString("name")

		ctx := cmd.Context()
		store, err := openGateway(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer store.Close()

		h := bot.New(catalog.Load(cfg.ToolsFile, logger), store, bot.WithLogger(logger))
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		for _, text := range args {
			replies, err := h.Handle(ctx, bot.Message{UserID: userID, UserName: userName, Text: text})
			if err != nil {
				return fmt.Errorf("%s: %w", strconv.Quote(text), err)
			}
			if err := enc.Encode(sayOutput{Input: text, Replies: toOutput(replies)}); err != nil {
				return err
			}
		}
		return nil
	},
}

type sayReply struct {
	Text string      `json:"text,omitempty"`
	Card *cards.Card `json:"card,omitempty"`
}

type sayOutput struct {
	Input   string     `json:"input"`
	Replies []sayReply `json:"replies"`
}

func toOutput(rs []bot.Reply) []sayReply {
	out := make([]sayReply, len(rs))
	for i, r := range rs {
		out[i] = sayReply{Text: r.Text, Card: r.Card}
	}
	return out
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the PostgreSQL schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := setup(os.Stdout, config.WithoutBotCredentials(), config.WithoutStore())
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		pool, err := openPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()
		if err := repository.Migrate(ctx, pool); err != nil {
			return err
		}
		logger.Info("schema applied")
		return nil
	},
}
