package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/aliskhannn/hafiz-bot/internal/domain/entities"
	"github.com/aliskhannn/hafiz-bot/internal/repository"
)

func newExportCommand(rt *runtime) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all students as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			students := rt.app.Students.List()
			data, err := repository.EncodeStudents(lo.ToSlicePtr(students))
			if err != nil {
				return err
			}

			writer := cmd.OutOrStdout()
			if output != "" && output != "-" {
				file, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create export file: %w", err)
				}
				defer func() {
					if cerr := file.Close(); cerr != nil && err == nil {
						err = cerr
					}
				}()
				writer = file
			}

			if _, err := writer.Write(append(data, '\n')); err != nil {
				return fmt.Errorf("write export: %w", err)
			}

			if output != "" && output != "-" {
				cmd.PrintErrf("exported %d students to %s\n", len(students), output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "export file path, - for stdout")
	return cmd
}

func newImportCommand(rt *runtime) *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace all students with a JSON export",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if input == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(input)
			}
			if err != nil {
				return fmt.Errorf("read import: %w", err)
			}

			decoded, err := repository.DecodeStudents(data)
			if err != nil {
				return err
			}

			students := lo.Map(decoded, func(st *entities.Student, _ int) entities.Student { return *st })
			if err := rt.app.Students.ReplaceAll(cmd.Context(), students); err != nil {
				return err
			}

			cmd.PrintErrf("imported %d students\n", len(students))
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "file to import, - for stdin")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}
