package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type cliTestEnv struct {
	baseDir     string
	configPath  string
	projectsDir string
	metricsPath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	t.Setenv("CUTROOM_PROJECTS_DIR", "")
	base := t.TempDir()
	env := &cliTestEnv{
		baseDir:     base,
		configPath:  filepath.Join(base, "config.toml"),
		projectsDir: filepath.Join(base, "projects"),
		metricsPath: filepath.Join(base, "metrics", "cutroom.prom"),
	}
	content := fmt.Sprintf(`[paths]
projects_dir = %q
data_dir = %q
log_dir = %q
export_dir = %q

[logging]
level = "error"

[metrics]
textfile_path = %q

[storage]
min_free_mib = 0
`,
		env.projectsDir,
		filepath.Join(base, "data"),
		filepath.Join(base, "logs"),
		filepath.Join(base, "exports"),
		env.metricsPath,
	)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

// run executes one CLI invocation against the env's config with stdin.
func (e *cliTestEnv) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	ctx := newCommandContext()
	defer ctx.close()

	cmd := newRootCommand(ctx)
	var stdout, stderr bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", e.configPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

// mustRun fails the test when the invocation errors.
func (e *cliTestEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, "", args...)
	if err != nil {
		t.Fatalf("cutroom %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
