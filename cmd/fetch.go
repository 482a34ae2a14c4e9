package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"github.com/nikogura/plclient/pkg/lifter"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var fetchJSON bool

//nolint:gochecknoglobals // Cobra boilerplate
var fetchCmd = &cobra.Command{
	Use:   "fetch <identifier>",
	Short: "Fetch a lifter's full competition history",
	Long: `Fetch downloads the CSV export for a lifter identifier and prints every
distinct meet result. Use 'plclient lookup' to find an identifier by name.

Example:
  plclient fetch andreymalanichev
  plclient fetch andreymalanichev --json`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchCmd.Flags().BoolVar(&fetchJSON, "json", false, "Print the athlete as JSON")
}

func runFetch(cmd *cobra.Command, args []string) (err error) {
	var s *session
	s, err = newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	var athlete lifter.Athlete
	athlete, err = s.client.FetchAthlete(s.ctx, args[0])
	if err != nil {
		return err
	}

	if fetchJSON {
		err = writeJSON(cmd.OutOrStdout(), athlete)
		return err
	}

	err = writeAthlete(cmd.OutOrStdout(), athlete)
	return err
}

func writeJSON(w io.Writer, v any) (err error) {
	var data []byte
	data, err = json.MarshalIndent(v, "", "  ")
	if err != nil {
		err = errors.Wrap(err, "failed to marshal JSON")
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// writeAthlete prints a summary line followed by one row per meet.
func writeAthlete(w io.Writer, athlete lifter.Athlete) (err error) {
	_, err = fmt.Fprintf(w, "%s (%s, %s)\n\n", athlete, athlete.Identifier, athlete.Sex)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "DATE\tFEDERATION\tMEET\tEQUIPMENT\tCLASS\tSQUAT\tBENCH\tDEADLIFT\tTOTAL\tPLACE")
	for _, m := range athlete.Meets() {
		class := "-"
		if wc, ok := m.WeightClassKg.Get(); ok {
			class = wc.String()
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			m.Date, m.Federation, m.MeetName, m.Equipment, class,
			kilos(m.Attempts.Best(lifter.Squat)),
			kilos(m.Attempts.Best(lifter.Bench)),
			kilos(m.Attempts.Best(lifter.Deadlift)),
			kilos(m.Attempts.Total()),
			m.Place)
	}

	err = tw.Flush()
	return err
}

func kilos(v lifter.Optional[float64]) (s string) {
	kg, ok := v.Get()
	if !ok {
		s = "-"
		return s
	}
	s = fmt.Sprintf("%g", kg)
	return s
}
