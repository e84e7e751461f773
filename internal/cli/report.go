package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/aliskhannn/hafiz-bot/internal/service"
)

func newReportCommand(rt *runtime) *cobra.Command {
	var modeFlag, output, share string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate a report of all students",
		Long: "Report renders the concise or detailed text report.\n" +
			"--output writes it to a file (a directory gets the dated default name),\n" +
			"--share prints a whatsapp:// or tg:// link carrying the report instead.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := rt.app.Config.Report.Mode
			if cmd.Flags().Changed("mode") {
				raw = modeFlag
			}
			mode, err := service.ParseReportMode(raw)
			if err != nil {
				return err
			}

			text := rt.app.Reports.Generate(rt.app.Students.List(), mode)

			if output != "" && output != "-" {
				path, err := reportPath(output, time.Now())
				if err != nil {
					return err
				}
				if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
					return fmt.Errorf("write report: %w", err)
				}
				cmd.PrintErrf("report written to %s\n", path)
			}

			if share != "" {
				link, err := service.ShareURL(service.ShareTarget(share), text)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), link)
				return nil
			}

			if output == "" || output == "-" {
				fmt.Fprint(cmd.OutOrStdout(), text)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&modeFlag, "mode", "m", "", "concise or detailed (default from report.mode)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the report to this file or directory, - for stdout")
	cmd.Flags().StringVar(&share, "share", "", "print a share link for whatsapp or telegram")

	return cmd
}

// reportPath appends the default file name when output is an existing directory.
func reportPath(output string, now time.Time) (string, error) {
	info, err := os.Stat(output)
	switch {
	case err == nil && info.IsDir():
		return filepath.Join(output, service.ReportFileName(now)), nil
	case err == nil || os.IsNotExist(err):
		return output, nil
	default:
		return "", err
	}
}
