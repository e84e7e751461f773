package cli

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newSurahCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "surah",
		Short: "Look up the Quran reference table",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "search QUERY",
			Short: "Find surahs by number or name",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				found := rt.app.Surahs.Search(strings.Join(args, " "))
				if len(found) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "no matches")
					return nil
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				for _, s := range found {
					fmt.Fprintf(w, "%d\t%s\t%d\n", s.Number, s.Name, s.AyahCount)
				}
				return w.Flush()
			},
		},
		&cobra.Command{
			Use:   "info N [AYAH]",
			Short: "Show a surah, or the progress at one of its ayahs",
			Args:  cobra.RangeArgs(1, 2),
			RunE: func(cmd *cobra.Command, args []string) error {
				out := cmd.OutOrStdout()
				surahs := rt.app.Surahs

				n, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("surah number: %w", err)
				}
				s, err := surahs.GetByNumber(n)
				if err != nil {
					return err
				}

				fmt.Fprintf(out, "%d. %s\nayahs: %d\n", s.Number, s.Name, s.AyahCount)
				if len(args) == 1 {
					return nil
				}

				ayah, err := strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("ayah number: %w", err)
				}
				if !surahs.IsValidPosition(n, ayah) {
					return fmt.Errorf("ayah must be within 1..%d for surah %d", s.AyahCount, n)
				}

				fmt.Fprintf(out, "position: %s\n", surahs.FormatPosition(n, ayah))
				fmt.Fprintf(out, "progress: %d%%\n", surahs.ProgressPercentage(n, ayah))
				if next, ok := surahs.NextPosition(n, ayah); ok {
					fmt.Fprintf(out, "next:     %s\n", surahs.FormatPosition(next.Surah, next.Ayah))
				} else {
					fmt.Fprintln(out, "next:     end of the Quran")
				}
				return nil
			},
		},
	)

	return cmd
}
