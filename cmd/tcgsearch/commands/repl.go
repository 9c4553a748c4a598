package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"tcgsearch/internal/telemetry"
	"tcgsearch/lib/cardsearch"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(replCmd)
}

// parseLine reads criteria out of a line like
// "dark magician game:yugioh set:lob condition:NM,LP", words that are not
// filters make up the query text.
func parseLine(line string) cardsearch.SearchCriteria {
	var criteria cardsearch.SearchCriteria
	var text []string
	for _, word := range strings.Fields(line) {
		key, value, found := strings.Cut(word, ":")
		if !found {
			text = append(text, word)
			continue
		}
		switch key {
		case "game":
			criteria.Game = value
		case "set":
			criteria.Set = value
		case "condition":
			criteria.Conditions = append(criteria.Conditions, strings.Split(value, ",")...)
		default:
			text = append(text, word)
		}
	}
	criteria.Text = strings.Join(text, " ")
	return criteria
}

// runRepl submits every line read from `in` without waiting for the previous
// search to complete, overlapping searches are resolved by the searcher's
// policy.
func runRepl(cmd *cobra.Command, in io.Reader, searcher *cardsearch.Searcher) error {
	var wg sync.WaitGroup
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		criteria := parseLine(scanner.Text())
		if criteria.Text == "" && criteria.Game == "" && criteria.Set == "" && len(criteria.Conditions) == 0 {
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			report, err := searcher.Submit(cmd.Context(), criteria)
			if errors.Is(err, cardsearch.ErrSearchInFlight) {
				fmt.Fprintf(cmd.ErrOrStderr(), "skipped %q: %s\n", criteria.Text, err)
				return
			}
			if report.NoQuery {
				fmt.Fprintln(cmd.ErrOrStderr(), "nothing to search for, provide a query")
			}
		}()
	}
	wg.Wait()
	return scanner.Err()
}

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Reads one search per line from stdin, e.g. \"charizard game:pokemon set:base-set\".",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := get(cmd.Context())
		searcher := cardsearch.NewSearcher(ctx.client, ctx.renderer, ctx.policy, telemetry.SlogAPI{})
		return runRepl(cmd, cmd.InOrStdin(), searcher)
	},
}
