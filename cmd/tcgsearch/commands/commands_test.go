package commands

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"

	"tcgsearch/internal/telemetry"
	"tcgsearch/lib/cardsearch"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestParseLine(t *testing.T) {
	testCases := []struct {
		line     string
		expected cardsearch.SearchCriteria
	}{
		{
			line:     "  charizard  ",
			expected: cardsearch.SearchCriteria{Text: "charizard"},
		},
		{
			line: "dark magician game:yugioh set:lob condition:NM,LP",
			expected: cardsearch.SearchCriteria{
				Text:       "dark magician",
				Game:       "yugioh",
				Set:        "lob",
				Conditions: []string{"NM", "LP"},
			},
		},
		{
			line:     "game:pokemon",
			expected: cardsearch.SearchCriteria{Game: "pokemon"},
		},
		{
			line:     "time:walk",
			expected: cardsearch.SearchCriteria{Text: "time:walk"},
		},
	}

	for _, test := range testCases {
		diff := cmp.Diff(test.expected, parseLine(test.line))
		if diff != "" {
			t.Fatalf("%q (-expected +got):\n%s", test.line, diff)
		}
	}
}

type echoFetcher struct {
	mutex   sync.Mutex
	queries []string
}

func (f *echoFetcher) Fetch(_ context.Context, query cardsearch.Descriptor) cardsearch.Outcome {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.queries = append(f.queries, query.Encode())
	text, _ := query.Get(cardsearch.KeyText)
	return cardsearch.Success{Cards: []cardsearch.Card{cardsearch.Card(`{"name":"` + text + `"}`)}}
}

func TestRunRepl(t *testing.T) {
	fetcher := &echoFetcher{}
	var out, errOut bytes.Buffer
	renderer := cardsearch.NewWriterRenderer(&out, cardsearch.FormatJSON, &telemetry.Recorder{})
	searcher := cardsearch.NewSearcher(fetcher, renderer, cardsearch.AllowRace, &telemetry.Recorder{})

	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	cmd.SetErr(&errOut)

	in := strings.NewReader("pikachu game:pokemon\n\ngame:magic\n")
	err := runRepl(cmd, in, searcher)
	require.NoError(t, err)

	require.Equal(t, []string{"q=pikachu&game=pokemon"}, fetcher.queries)
	require.Contains(t, out.String(), `"name": "pikachu"`)
	require.Contains(t, errOut.String(), "nothing to search for")
}

func TestExecuteShutsDownTelemetryOnFailure(t *testing.T) {
	provider := sdktrace.NewTracerProvider()
	root := &cobra.Command{
		Use:           "root",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			get(cmd.Context()).tel = telemetry.Telemetry{TracerProvider: provider}
			return nil
		},
	}
	root.AddCommand(&cobra.Command{
		Use: "fail",
		RunE: func(cmd *cobra.Command, args []string) error {
			return errSearchFailed
		},
	})
	root.SetArgs([]string{"fail"})

	_, span := provider.Tracer("test").Start(context.Background(), "before")
	require.True(t, span.IsRecording())
	span.End()

	err := execute(context.Background(), root)
	require.ErrorIs(t, err, errSearchFailed)

	_, span = provider.Tracer("test").Start(context.Background(), "after")
	require.False(t, span.IsRecording())
}
