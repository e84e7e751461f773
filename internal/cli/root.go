// Package cli implements the hafiz command line tool.
package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/aliskhannn/hafiz-bot/internal/app"
	"github.com/aliskhannn/hafiz-bot/internal/config"
	"github.com/aliskhannn/hafiz-bot/internal/domain/entities"
	"github.com/aliskhannn/hafiz-bot/internal/logger"
)

const (
	storageDriverKey = "storage.driver"
	storagePathKey   = "storage.path"
	storageKeyKey    = "storage.key"
)

type runtime struct {
	v          *viper.Viper
	configFile string
	app        *app.App
	logger     *zap.Logger
}

// NewRootCommand builds the command tree. Each call uses its own viper instance.
func NewRootCommand() *cobra.Command {
	rt := &runtime{v: viper.New()}

	root := &cobra.Command{
		Use:           "hafiz",
		Short:         "Track Quran memorization progress of students",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return rt.open(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return rt.close()
		},
	}

	root.PersistentFlags().StringVar(&rt.configFile, "config", "", "config file (default ./config/config.yaml)")
	root.PersistentFlags().String("storage-driver", "", "storage backend: file, sqlite, postgres or memory")
	root.PersistentFlags().String("storage-path", "", "directory for file storage or database file for sqlite")
	root.PersistentFlags().String("storage-key", "", "key holding the student collection")

	bindFlagToViper(rt.v, storageDriverKey, root.PersistentFlags().Lookup("storage-driver"))
	bindFlagToViper(rt.v, storagePathKey, root.PersistentFlags().Lookup("storage-path"))
	bindFlagToViper(rt.v, storageKeyKey, root.PersistentFlags().Lookup("storage-key"))

	root.AddCommand(
		newStudentsCommand(rt),
		newReportCommand(rt),
		newExportCommand(rt),
		newImportCommand(rt),
		newSurahCommand(rt),
		newDemoCommand(rt),
	)

	return root
}

func bindFlagToViper(v *viper.Viper, key string, flag *pflag.Flag) {
	if flag == nil {
		return
	}
	cobra.CheckErr(v.BindPFlag(key, flag))
}

func (rt *runtime) open(cmd *cobra.Command) error {
	cfg, err := config.LoadFrom(rt.v, rt.configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.NewCLI(cfg)
	if err != nil {
		return err
	}
	rt.logger = log

	a, err := app.New(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	rt.app = a
	return nil
}

func (rt *runtime) close() error {
	var err error
	if rt.app != nil {
		err = rt.app.Close()
	}
	if rt.logger != nil {
		_ = rt.logger.Sync()
	}
	return err
}

// resolveStudent accepts a 1-based list number or a student id.
func (rt *runtime) resolveStudent(ref string) (int, entities.Student, error) {
	if n, err := strconv.Atoi(ref); err == nil {
		st, err := rt.app.Students.At(n)
		return n, st, err
	}

	st, err := rt.app.Students.Get(ref)
	if err != nil {
		return 0, entities.Student{}, fmt.Errorf("%w: %q", err, ref)
	}
	for i, other := range rt.app.Students.List() {
		if other.ID == st.ID {
			return i + 1, st, nil
		}
	}
	return 0, entities.Student{}, errors.New("student disappeared while listing")
}
