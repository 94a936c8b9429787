package paths

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveProjectDir(t *testing.T) {
	project := t.TempDir()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty uses cwd", input: "", want: DirName},
		{name: "project dir", input: project, want: filepath.Join(project, DirName)},
		{name: "state dir", input: filepath.Join(project, DirName), want: filepath.Join(project, DirName)},
		{name: "unclean", input: project + "/./", want: filepath.Join(project, DirName)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ResolveProjectDir(tt.input))
		})
	}
}

func TestResolveProjectDir_Redirect(t *testing.T) {
	root := t.TempDir()
	main := filepath.Join(root, "main", DirName)
	checkout := filepath.Join(root, "checkout", DirName)
	require.NoError(t, os.MkdirAll(main, 0o750))
	require.NoError(t, os.MkdirAll(checkout, 0o750))

	require.NoError(t, os.WriteFile(filepath.Join(checkout, "redirect"), []byte("../../main/.rigkit\n"), 0o600))
	require.Equal(t, main, ResolveProjectDir(filepath.Join(root, "checkout")))

	require.NoError(t, os.WriteFile(filepath.Join(checkout, "redirect"), []byte(main), 0o600))
	require.Equal(t, main, ResolveProjectDir(checkout))

	require.NoError(t, os.WriteFile(filepath.Join(checkout, "redirect"), []byte("  \n"), 0o600))
	require.Equal(t, checkout, ResolveProjectDir(checkout))
}

func TestProjectFiles(t *testing.T) {
	dir := filepath.Join("proj", DirName)
	require.Equal(t, filepath.Join(dir, "config.yaml"), ConfigFile(dir))
	require.Equal(t, filepath.Join(dir, "history.db"), HistoryDB(dir))
	require.Equal(t, filepath.Join(dir, "traces", "traces.jsonl"), TracesFile(dir))
}
