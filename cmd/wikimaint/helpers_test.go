package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeTestConfig writes a config whose working files live in a temp dir and
// returns its path and the work dir.
func writeTestConfig(t *testing.T, extra string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := fmt.Sprintf(`[files]
work_dir = %q
reference_pages = "pages.txt"
dump = "wiki.xml"
exceptions = "link_exceptions.txt"
broken_links = "broken_links_wiki.txt"
store = "history.db"

[log]
file = "run.log"
level = "debug"
console_level = "fatal"
%s`, dir, extra)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path, dir
}

// execute runs the root command with args and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(func() {
		configPath, logLevelFlag, workDirFlag = "", "", ""
	})
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}
