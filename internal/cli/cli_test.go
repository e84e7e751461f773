package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cliEnv struct {
	t   *testing.T
	dir string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	for _, key := range []string{
		"STORAGE_DRIVER", "STORAGE_PATH", "STORAGE_KEY", "REPORT_MODE", "REPORT_TIMEZONE",
		"LOG_LEVEL", "DATABASE_URL", "APP_ENV", "ENV",
	} {
		t.Setenv(key, "")
	}
	return &cliEnv{t: t, dir: t.TempDir()}
}

func (e *cliEnv) run(args ...string) (stdout, stderr string, err error) {
	e.t.Helper()

	var out, errOut bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--storage-driver", "file", "--storage-path", e.dir}, args...))

	err = cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func (e *cliEnv) mustRun(args ...string) string {
	e.t.Helper()
	out, _, err := e.run(args...)
	require.NoError(e.t, err, "hafiz %s", strings.Join(args, " "))
	return out
}

func TestStudentsLifecycle(t *testing.T) {
	env := newCLIEnv(t)

	out := env.mustRun("students", "add", "--name", "  Ahmad  ", "--notes", "evening class")
	assert.Contains(t, out, "added 1. Ahmad")

	out = env.mustRun("students", "list")
	assert.Contains(t, out, "Ahmad")
	assert.Contains(t, out, "مقبول: 1")
	assert.Contains(t, out, "ممتاز: 0")

	out = env.mustRun("students", "progress", "1",
		"--level", "excellent", "--surah", "2", "--ayah", "30", "--date", "2024-01-20")
	assert.Contains(t, out, "recorded 2024-01-20 for Ahmad: ممتاز")
	assert.Contains(t, out, "البقرة - آية 30")

	out = env.mustRun("students", "edit", "1", "--rev-surah", "2", "--rev-from", "1", "--rev-to", "20", "--rev-level", "good")
	assert.Contains(t, out, "updated Ahmad")

	out = env.mustRun("s", "show", "1")
	assert.Contains(t, out, "level:      ممتاز")
	assert.Contains(t, out, "position:   البقرة - آية 30")
	assert.Contains(t, out, "revision:   البقرة 1-20 (جيد)")
	assert.Contains(t, out, "notes:      evening class")
	assert.Contains(t, out, "days:       1")

	out = env.mustRun("students", "edit", "1", "--clear-revision")
	assert.Contains(t, out, "updated Ahmad")
	out = env.mustRun("students", "show", "1")
	assert.NotContains(t, out, "revision:")
	assert.Contains(t, out, "notes:      evening class")

	out = env.mustRun("students", "list", "--level", "ممتاز")
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "Ahmad")

	out = env.mustRun("students", "delete", "1")
	assert.Contains(t, out, "deleted Ahmad")
	assert.Contains(t, env.mustRun("students", "list"), "no students")
}

func TestStudentsRejectsBadInput(t *testing.T) {
	env := newCLIEnv(t)
	env.mustRun("students", "add", "--name", "Ahmad")

	tests := []struct {
		name string
		args []string
	}{
		{name: "missing name", args: []string{"students", "add"}},
		{name: "unknown level", args: []string{"students", "add", "--name", "Omar", "--level", "great"}},
		{name: "unknown student", args: []string{"students", "show", "7"}},
		{name: "unknown id", args: []string{"students", "show", "nope"}},
		{name: "ayah out of range", args: []string{"students", "progress", "1", "--level", "good", "--surah", "1", "--ayah", "8"}},
		{name: "missing level", args: []string{"students", "progress", "1"}},
		{name: "clear without confirmation", args: []string{"students", "clear"}},
		{name: "conflicting revision flags", args: []string{"students", "edit", "1", "--clear-revision", "--rev-surah", "2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := env.run(tt.args...)
			assert.Error(t, err)
		})
	}

	assert.Contains(t, env.mustRun("students", "list"), "مقبول: 1")
}

func TestStudentsResolveByID(t *testing.T) {
	env := newCLIEnv(t)
	env.mustRun("students", "add", "--name", "Ahmad")
	env.mustRun("students", "add", "--name", "Omar", "--level", "excellent")

	out := env.mustRun("students", "list", "--level", "excellent")
	var id string
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "Omar") {
			id = strings.Fields(line)[0]
		}
	}
	require.NotEmpty(t, id)

	out = env.mustRun("students", "show", id)
	assert.True(t, strings.HasPrefix(out, "2. Omar ("+id+")"), out)
}

func TestExportImport(t *testing.T) {
	env := newCLIEnv(t)
	env.mustRun("demo")

	backup := filepath.Join(t.TempDir(), "backup.json")
	_, stderr, err := env.run("export", "--output", backup)
	require.NoError(t, err)
	assert.Contains(t, stderr, "exported 5 students")

	env.mustRun("students", "clear", "--yes")
	assert.Contains(t, env.mustRun("students", "list"), "no students")

	_, stderr, err = env.run("import", "--input", backup)
	require.NoError(t, err)
	assert.Contains(t, stderr, "imported 5 students")
	assert.Contains(t, env.mustRun("students", "list"), "أحمد محمد")

	exported := env.mustRun("export")
	data, err := os.ReadFile(backup)
	require.NoError(t, err)
	assert.JSONEq(t, string(data), exported)
}

func TestImportRejectsInvalidJSON(t *testing.T) {
	env := newCLIEnv(t)
	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, _, err := env.run("import", "--input", path)
	assert.Error(t, err)
}

func TestImportRejectsInvalidRecords(t *testing.T) {
	tests := []struct {
		name   string
		record string
	}{
		{name: "unknown level", record: `{"name":"x","level":"bogus"}`},
		{name: "partial revision", record: `{"name":"x","currentSurahMurajaa":{"surahNumber":2,"fromAyah":0,"toAyah":0}}`},
		{name: "position out of range", record: `{"name":"x","dailyProgress":[{"date":"2024-01-20","level":"جيد","surahNumber":1,"ayahNumber":99}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newCLIEnv(t)
			env.mustRun("students", "add", "--name", "Ahmad")

			path := filepath.Join(t.TempDir(), "import.json")
			require.NoError(t, os.WriteFile(path, []byte("["+tt.record+"]"), 0o600))

			_, _, err := env.run("import", "--input", path)
			require.Error(t, err)

			out := env.mustRun("students", "list")
			assert.Contains(t, out, "Ahmad")
			assert.Contains(t, out, "مقبول: 1")
		})
	}
}

func TestCorruptStorageIsNotOverwritten(t *testing.T) {
	env := newCLIEnv(t)
	path := filepath.Join(env.dir, "students_data.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":"a","name":"Ahmad"`), 0o600))

	_, _, err := env.run("students", "add", "--name", "Omar")
	require.Error(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"a","name":"Ahmad"`, string(data))
}

func TestReport(t *testing.T) {
	env := newCLIEnv(t)
	env.mustRun("demo")

	out := env.mustRun("report")
	assert.Contains(t, out, "(موجز)")
	assert.Contains(t, out, "👥 عدد الطلاب: 5")

	out = env.mustRun("report", "--mode", "detailed")
	assert.Contains(t, out, "(مفصل)")

	out = env.mustRun("report", "--share", "telegram")
	assert.True(t, strings.HasPrefix(out, "tg://msg?text="), out)
	assert.NotContains(t, strings.TrimSpace(out), " ")

	dir := t.TempDir()
	_, stderr, err := env.run("report", "--output", dir)
	require.NoError(t, err)
	assert.Contains(t, stderr, "report written to")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasPrefix(entries[0].Name(), "quran_tracker_report_"), entries[0].Name())

	_, _, err = env.run("report", "--mode", "verbose")
	assert.Error(t, err)
	_, _, err = env.run("report", "--share", "email")
	assert.Error(t, err)
}

func TestSurahCommands(t *testing.T) {
	env := newCLIEnv(t)

	out := env.mustRun("surah", "search", "البقرة")
	assert.Contains(t, out, "2")
	assert.Contains(t, out, "286")

	out = env.mustRun("surah", "info", "1", "7")
	assert.Contains(t, out, "ayahs: 7")
	assert.Contains(t, out, "next:     البقرة - آية 1")

	out = env.mustRun("surah", "info", "114", "6")
	assert.Contains(t, out, "end of the Quran")
	assert.Contains(t, out, "progress: 100%")

	_, _, err := env.run("surah", "info", "115")
	assert.Error(t, err)
	_, _, err = env.run("surah", "info", "1", "8")
	assert.Error(t, err)
}
