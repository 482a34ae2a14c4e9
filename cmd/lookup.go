package cmd

import (
	"fmt"
	"strings"

	"github.com/nikogura/plclient/pkg/client"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var lookupJSON bool

//nolint:gochecknoglobals // Cobra boilerplate
var lookupCmd = &cobra.Command{
	Use:   "lookup <name...>",
	Short: "Find a lifter's identifier by name",
	Long: `Lookup searches the rankings for the best match to a lifter's name and
prints the matched name and its identifier.

Example:
  plclient lookup Andrey Malanichev`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLookup,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(lookupCmd)
	lookupCmd.Flags().BoolVar(&lookupJSON, "json", false, "Print the match as JSON")
}

func runLookup(cmd *cobra.Command, args []string) (err error) {
	var s *session
	s, err = newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	query := strings.Join(args, " ")

	var match client.Match
	var found bool
	match, found, err = s.client.ResolveIdentifier(s.ctx, query)
	if err != nil {
		return err
	}

	if lookupJSON {
		if !found {
			err = writeJSON(cmd.OutOrStdout(), nil)
			return err
		}
		err = writeJSON(cmd.OutOrStdout(), match)
		return err
	}

	if !found {
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "no match for %q\n", query)
		return err
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", match.Name, match.Identifier)
	return err
}
