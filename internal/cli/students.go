package cli

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/aliskhannn/hafiz-bot/internal/domain/entities"
	"github.com/aliskhannn/hafiz-bot/internal/service"
)

const dateLayout = "2006-01-02"

func newStudentsCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "students",
		Aliases: []string{"student", "s"},
		Short:   "Manage students and their progress",
	}

	cmd.AddCommand(
		newStudentsListCommand(rt),
		newStudentsShowCommand(rt),
		newStudentsAddCommand(rt),
		newStudentsProgressCommand(rt),
		newStudentsEditCommand(rt),
		newStudentsDeleteCommand(rt),
		newStudentsClearCommand(rt),
	)
	return cmd
}

func newStudentsListCommand(rt *runtime) *cobra.Command {
	var levelFlag string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List students",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if levelFlag != "" {
				level, err := entities.ParseLevel(levelFlag)
				if err != nil {
					return err
				}
				printStudentTable(cmd.OutOrStdout(), rt, rt.app.Students.FilterByLevel(level), true)
				return nil
			}

			out := cmd.OutOrStdout()
			students := rt.app.Students.List()
			if len(students) == 0 {
				fmt.Fprintln(out, "no students")
				return nil
			}
			printStudentTable(out, rt, students, false)

			fmt.Fprintln(out)
			counts := rt.app.Students.CountByLevel()
			for _, l := range entities.Levels() {
				fmt.Fprintf(out, "%s: %d\n", l, counts[l])
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&levelFlag, "level", "", "only students at this level (Arabic label or alias such as very_good)")
	return cmd
}

// printStudentTable prints list numbers, or ids when the list is filtered.
func printStudentTable(out io.Writer, rt *runtime, students []entities.Student, withIDs bool) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	defer w.Flush()

	if withIDs {
		fmt.Fprintln(w, "ID\tNAME\tLEVEL\tPOSITION\tDAYS")
	} else {
		fmt.Fprintln(w, "#\tNAME\tLEVEL\tPOSITION\tDAYS")
	}

	for i, st := range students {
		ref := fmt.Sprint(i + 1)
		if withIDs {
			ref = st.ID
		}
		position := "-"
		if pos, ok := st.CurrentPosition(); ok {
			position = rt.app.Surahs.FormatPosition(pos.Surah, pos.Ayah)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", ref, st.Name, st.Level, position, len(st.DailyProgress))
	}
}

func newStudentsShowCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "show N|ID",
		Short: "Show a student with recent progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, st, err := rt.resolveStudent(args[0])
			if err != nil {
				return err
			}
			printStudent(cmd.OutOrStdout(), rt, n, st)
			return nil
		},
	}
}

func printStudent(out io.Writer, rt *runtime, n int, st entities.Student) {
	surahs := rt.app.Surahs
	loc, _ := rt.app.Config.Location()

	fmt.Fprintf(out, "%d. %s (%s)\n", n, st.Name, st.ID)
	fmt.Fprintf(out, "level:      %s\n", st.Level)
	if pos, ok := st.CurrentPosition(); ok {
		fmt.Fprintf(out, "position:   %s (%d%%)\n",
			surahs.FormatPosition(pos.Surah, pos.Ayah), surahs.ProgressPercentage(pos.Surah, pos.Ayah))
	}
	if r := st.Revision; r != nil {
		fmt.Fprintf(out, "revision:   %s %d-%d (%s)\n",
			surahs.SurahName(r.SurahNumber), r.FromAyah, r.ToAyah, r.EffectiveLevel())
	}
	fmt.Fprintf(out, "days:       %d\n", len(st.DailyProgress))
	fmt.Fprintf(out, "score:      %d%%\n", st.ProgressScore())
	if st.Notes != "" {
		fmt.Fprintf(out, "notes:      %s\n", st.Notes)
	}
	fmt.Fprintf(out, "created:    %s\n", st.CreatedAt.In(loc).Format(time.DateTime))
	if st.LastUpdated != nil {
		fmt.Fprintf(out, "updated:    %s\n", st.LastUpdated.In(loc).Format(time.DateTime))
	}

	for i, day := range st.RecentProgress(5) {
		if i == 0 {
			fmt.Fprintln(out, "recent:")
		}
		line := fmt.Sprintf("  %s  %s", day.Date, day.Level)
		if day.HasPosition() {
			line += "  " + surahs.FormatPosition(day.Surah, day.Ayah)
		}
		if day.Notes != "" {
			line += "  " + day.Notes
		}
		fmt.Fprintln(out, line)
	}
}

// revisionFlags are shared by add, progress and edit.
type revisionFlags struct {
	surah int
	from  int
	to    int
	level string
}

func (f *revisionFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.surah, "rev-surah", 0, "revision surah number")
	cmd.Flags().IntVar(&f.from, "rev-from", 0, "first ayah of the revision range")
	cmd.Flags().IntVar(&f.to, "rev-to", 0, "last ayah of the revision range")
	cmd.Flags().StringVar(&f.level, "rev-level", "", "revision level")
}

func (f *revisionFlags) draft() (entities.RevisionDraft, error) {
	var level entities.Level
	if f.level != "" {
		l, err := entities.ParseLevel(f.level)
		if err != nil {
			return entities.RevisionDraft{}, err
		}
		level = l
	}
	return entities.RevisionDraft{SurahNumber: f.surah, FromAyah: f.from, ToAyah: f.to, Level: level}, nil
}

func (f *revisionFlags) changed(cmd *cobra.Command) bool {
	for _, name := range []string{"rev-surah", "rev-from", "rev-to", "rev-level"} {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}

func newStudentsAddCommand(rt *runtime) *cobra.Command {
	var (
		name, levelFlag, notes string
		rev                    revisionFlags
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a student",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var level entities.Level
			if levelFlag != "" {
				l, err := entities.ParseLevel(levelFlag)
				if err != nil {
					return err
				}
				level = l
			}
			draft, err := rev.draft()
			if err != nil {
				return err
			}

			st, err := rt.app.Students.AddStudent(cmd.Context(), service.AddStudentInput{
				Name:     name,
				Level:    level,
				Notes:    notes,
				Revision: draft,
			})
			if err != nil && !errors.Is(err, service.ErrNotPersisted) {
				return err
			}

			cmd.Printf("added %d. %s (%s)\n", len(rt.app.Students.List()), st.Name, st.ID)
			return err
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "student name")
	cmd.Flags().StringVar(&levelFlag, "level", "", "initial level (default مقبول)")
	cmd.Flags().StringVar(&notes, "notes", "", "free text notes")
	rev.register(cmd)
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newStudentsProgressCommand(rt *runtime) *cobra.Command {
	var (
		date, levelFlag, notes string
		surah, ayah            int
		rev                    revisionFlags
	)

	cmd := &cobra.Command{
		Use:   "progress N|ID",
		Short: "Record a day of memorization",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, err := rt.resolveStudent(args[0])
			if err != nil {
				return err
			}

			level, err := entities.ParseLevel(levelFlag)
			if err != nil {
				return err
			}

			if date == "" {
				loc, _ := rt.app.Config.Location()
				date = time.Now().In(loc).Format(dateLayout)
			}

			in := service.AddProgressInput{
				Date:        date,
				Level:       level,
				SurahNumber: surah,
				AyahNumber:  ayah,
				Notes:       notes,
			}
			if rev.changed(cmd) {
				draft, err := rev.draft()
				if err != nil {
					return err
				}
				in.Revision = &draft
			}

			updated, err := rt.app.Students.AddDailyProgress(cmd.Context(), st.ID, in)
			if err != nil && !errors.Is(err, service.ErrNotPersisted) {
				return err
			}

			latest, _ := updated.LatestProgress()
			cmd.Printf("recorded %s for %s: %s", latest.Date, updated.Name, latest.Level)
			if latest.HasPosition() {
				cmd.Printf(", %s (%d%%)",
					rt.app.Surahs.FormatPosition(latest.Surah, latest.Ayah),
					rt.app.Surahs.ProgressPercentage(latest.Surah, latest.Ayah))
			}
			cmd.Println()
			return err
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "calendar date (default today)")
	cmd.Flags().StringVar(&levelFlag, "level", "", "memorization level")
	cmd.Flags().IntVar(&surah, "surah", 0, "memorized surah number")
	cmd.Flags().IntVar(&ayah, "ayah", 0, "memorized ayah number")
	cmd.Flags().StringVar(&notes, "notes", "", "notes for the day")
	rev.register(cmd)
	_ = cmd.MarkFlagRequired("level")

	return cmd
}

func newStudentsEditCommand(rt *runtime) *cobra.Command {
	var (
		name, notes   string
		clearRevision bool
		rev           revisionFlags
	)

	cmd := &cobra.Command{
		Use:   "edit N|ID",
		Short: "Change name, notes or revision range",
		Long: "Edit replaces the given fields. Fields without a flag keep their value;\n" +
			"revision flags replace the range and --clear-revision removes it.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, err := rt.resolveStudent(args[0])
			if err != nil {
				return err
			}

			in := service.EditStudentInput{Name: st.Name, Notes: st.Notes}
			if cmd.Flags().Changed("name") {
				in.Name = name
			}
			if cmd.Flags().Changed("notes") {
				in.Notes = notes
			}

			switch {
			case clearRevision:
			case rev.changed(cmd):
				if in.Revision, err = rev.draft(); err != nil {
					return err
				}
			case st.Revision != nil:
				in.Revision = entities.RevisionDraft{
					SurahNumber: st.Revision.SurahNumber,
					FromAyah:    st.Revision.FromAyah,
					ToAyah:      st.Revision.ToAyah,
					Level:       st.Revision.Level,
				}
			}

			updated, err := rt.app.Students.EditStudent(cmd.Context(), st.ID, in)
			if err != nil && !errors.Is(err, service.ErrNotPersisted) {
				return err
			}

			cmd.Printf("updated %s\n", updated.Name)
			return err
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&notes, "notes", "", "new notes, empty clears them")
	cmd.Flags().BoolVar(&clearRevision, "clear-revision", false, "remove the revision range")
	rev.register(cmd)
	cmd.MarkFlagsMutuallyExclusive("clear-revision", "rev-surah")

	return cmd
}

func newStudentsDeleteCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "delete N|ID",
		Short: "Delete a student with all records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, err := rt.resolveStudent(args[0])
			if err != nil {
				return err
			}

			if err := rt.app.Students.DeleteStudent(cmd.Context(), st.ID); err != nil {
				return err
			}
			cmd.Printf("deleted %s\n", st.Name)
			return nil
		},
	}
}

func newStudentsClearCommand(rt *runtime) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every student",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to delete all students without --yes")
			}
			if err := rt.app.Students.ClearAll(cmd.Context()); err != nil {
				return err
			}
			cmd.Println("all students deleted")
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")
	return cmd
}
