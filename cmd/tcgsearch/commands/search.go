package commands

import (
	"errors"
	"fmt"
	"strings"

	"tcgsearch/internal/telemetry"
	"tcgsearch/lib/cardsearch"

	"github.com/spf13/cobra"
)

var errSearchFailed = errors.New("search failed")

var (
	searchGame       string
	searchSet        string
	searchConditions []string
)

func init() {
	searchCmd.Flags().StringVarP(&searchGame, "game", "g", "", "Only return cards from this game.")
	searchCmd.Flags().StringVarP(&searchSet, "set", "s", "", "Only return cards from this set.")
	searchCmd.Flags().StringSliceVarP(&searchConditions, "condition", "c", nil, "Only return these conditions, may be repeated.")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:          "search <query...> [--game <game>] [--set <set>] [--condition <condition>]",
	Short:        "Searches for cards matching a query and prints the results.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := get(cmd.Context())

		searcher := cardsearch.NewSearcher(ctx.client, ctx.renderer, ctx.policy, telemetry.SlogAPI{})
		report, err := searcher.Submit(cmd.Context(), cardsearch.SearchCriteria{
			Text:       strings.Join(args, " "),
			Game:       searchGame,
			Set:        searchSet,
			Conditions: searchConditions,
		})
		if err != nil {
			return err
		}
		if report.NoQuery {
			return fmt.Errorf("nothing to search for, provide a query")
		}
		if _, failed := report.Outcome.(cardsearch.Failure); failed {
			return errSearchFailed
		}
		return nil
	},
}
