// SPDX-License-Identifier: MPL-2.0

package builder

import (
	"archive/zip"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"jarsmith-cli/internal/issue"
	"jarsmith-cli/internal/testutil"
	"jarsmith-cli/internal/topology"
)

const (
	createStubOK = `echo "virtualenv $* (cwd=$(pwd))" >> "$RECORD"
mkdir -p jarsmith_venv/bin
cp "$PIPSRC" jarsmith_venv/bin/pip
chmod 755 jarsmith_venv/bin/pip
`
	installStubOK = `echo "pip $* (cwd=$(pwd))" >> "$RECORD"
`
)

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateStart, "start"},
		{StateBaseOpened, "base opened"},
		{StateWorkspaceCreated, "workspace created"},
		{StateValidated, "validated"},
		{StateStaged, "staged"},
		{StateDependenciesResolved, "dependencies resolved"},
		{StatePacked, "packed"},
		{StateDone, "done"},
		{StateAborted, "aborted"},
		{State(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", int(tt.state), got, tt.want)
		}
	}
}

func TestBuilder_Run(t *testing.T) {
	scratchParent := redirectScratch(t)

	project := newProject(t, "myjob", map[string]string{
		topology.DescriptorName: "name: myjob\n",
		"handler.py":            "def handle(): pass\n",
	})
	base := writeBaseJar(t)
	out := filepath.Join(t.TempDir(), "myjob.jar")

	b := New(topology.NewLayout(project), topology.Options{
		BaseJar:   base,
		OutputJar: out,
	})
	if err := b.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if got := b.State(); got != StateDone {
		t.Errorf("State() = %v, want %v", got, StateDone)
	}
	if got := b.Options().UseVenv; got != topology.ToggleDisabled {
		t.Errorf("resolved toggle = %v, want %v", got, topology.ToggleDisabled)
	}

	entries := readJar(t, out)
	want := map[string]string{
		"META-INF/MANIFEST.MF":    "Manifest-Version: 1.0\n",
		"lib/runner.class":        "runner bytecode",
		"resources/topology.yaml": "name: myjob\n",
		"resources/handler.py":    "def handle(): pass\n",
	}
	if len(entries) != len(want) {
		t.Errorf("packed %d entries, want %d: %v", len(entries), len(want), entries)
	}
	for name, content := range want {
		got, ok := entries[name]
		if !ok {
			t.Errorf("entry %s missing from archive", name)
			continue
		}
		if got != content {
			t.Errorf("entry %s = %q, want %q", name, got, content)
		}
	}

	assertScratchRemoved(t, scratchParent)
}

func TestBuilder_Run_WithIsolatedEnvironment(t *testing.T) {
	scratchParent := redirectScratch(t)
	record := stubEnvTools(t, createStubOK, installStubOK)

	project := newProject(t, "myjob", map[string]string{
		topology.DescriptorName: "name: myjob\n",
		topology.ManifestName:   "six==1.16.0\n",
		"handler.py":            "def handle(): pass\n",
	})
	base := writeBaseJar(t)
	out := filepath.Join(t.TempDir(), "myjob.jar")

	layout := topology.NewLayout(project)
	b := New(layout, topology.Options{
		BaseJar:   base,
		OutputJar: out,
	})
	if err := b.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if got := b.Options().UseVenv; got != topology.ToggleEnabled {
		t.Errorf("resolved toggle = %v, want %v", got, topology.ToggleEnabled)
	}

	entries := readJar(t, out)
	if got, ok := entries["resources/requirements.txt"]; !ok || got != "six==1.16.0\n" {
		t.Errorf("resources/requirements.txt = %q, %v; want staged manifest", got, ok)
	}
	if _, ok := entries["resources/jarsmith_venv/bin/pip"]; !ok {
		t.Errorf("isolated environment missing from archive: %v", entries)
	}

	lines := recordedLines(t, record)
	if len(lines) != 2 {
		t.Fatalf("recorded %d subprocess runs, want 2: %q", len(lines), lines)
	}
	if !strings.HasPrefix(lines[0], "virtualenv jarsmith_venv") {
		t.Errorf("create invocation = %q, want virtualenv jarsmith_venv prefix", lines[0])
	}
	if want := "pip install -r " + layout.Manifest; !strings.HasPrefix(lines[1], want) {
		t.Errorf("install invocation = %q, want prefix %q", lines[1], want)
	}
	for _, line := range lines {
		if !strings.Contains(line, "(cwd=") || !strings.Contains(line, string(filepath.Separator)+topology.ResourcesDirName+")") {
			t.Errorf("invocation %q did not run in the staged resources directory", line)
		}
	}

	assertScratchRemoved(t, scratchParent)
}

func TestBuilder_Run_RefusesExistingOutput(t *testing.T) {
	project := newProject(t, "myjob", map[string]string{
		topology.DescriptorName: "name: myjob\n",
	})
	base := writeBaseJar(t)
	out := filepath.Join(t.TempDir(), "myjob.jar")
	testutil.MustWriteFile(t, out, "already here")

	b := New(topology.NewLayout(project), topology.Options{
		BaseJar:   base,
		OutputJar: out,
	})
	err := b.Run(context.Background())
	if got := issue.KindOf(err); got != issue.KindJar {
		t.Fatalf("Run() error = %v, want jar kind", err)
	}
	if !strings.Contains(err.Error(), "output jar already exists") {
		t.Errorf("error %q does not mention existing output", err.Error())
	}
	if got := b.State(); got != StateAborted {
		t.Errorf("State() = %v, want %v", got, StateAborted)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "already here" {
		t.Errorf("existing output modified: %q", data)
	}
}

func TestBuilder_Run_MissingBaseJar(t *testing.T) {
	project := newProject(t, "myjob", map[string]string{
		topology.DescriptorName: "name: myjob\n",
	})

	b := New(topology.NewLayout(project), topology.Options{
		BaseJar:   filepath.Join(t.TempDir(), "nope.jar"),
		OutputJar: filepath.Join(t.TempDir(), "myjob.jar"),
	})
	err := b.Run(context.Background())
	if got := issue.KindOf(err); got != issue.KindJar {
		t.Fatalf("Run() error = %v, want jar kind", err)
	}
	if !strings.Contains(err.Error(), "base jar not found") {
		t.Errorf("error %q does not mention the missing base jar", err.Error())
	}
	if got := b.State(); got != StateAborted {
		t.Errorf("State() = %v, want %v", got, StateAborted)
	}
}

func TestBuilder_Run_ValidationFailureCleansWorkspace(t *testing.T) {
	scratchParent := redirectScratch(t)

	project := newProject(t, "myjob", map[string]string{
		"handler.py": "def handle(): pass\n",
	})
	base := writeBaseJar(t)
	out := filepath.Join(t.TempDir(), "myjob.jar")

	b := New(topology.NewLayout(project), topology.Options{
		BaseJar:   base,
		OutputJar: out,
	})
	err := b.Run(context.Background())
	if got := issue.KindOf(err); got != issue.KindInvalidTopology {
		t.Fatalf("Run() error = %v, want invalid topology kind", err)
	}
	if got := b.State(); got != StateAborted {
		t.Errorf("State() = %v, want %v", got, StateAborted)
	}

	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Errorf("output jar created despite validation failure")
	}
	assertScratchRemoved(t, scratchParent)
}

func TestBuilder_Run_InstallFailureCleansWorkspace(t *testing.T) {
	scratchParent := redirectScratch(t)
	createFail := `echo "virtualenv $* (cwd=$(pwd))" >> "$RECORD"
exit 3
`
	stubEnvTools(t, createFail, installStubOK)

	project := newProject(t, "myjob", map[string]string{
		topology.DescriptorName: "name: myjob\n",
		topology.ManifestName:   "six==1.16.0\n",
	})
	base := writeBaseJar(t)
	out := filepath.Join(t.TempDir(), "myjob.jar")

	b := New(topology.NewLayout(project), topology.Options{
		BaseJar:   base,
		OutputJar: out,
	})
	err := b.Run(context.Background())
	if got := issue.KindOf(err); got != issue.KindDependencies {
		t.Fatalf("Run() error = %v, want dependencies kind", err)
	}
	if !strings.Contains(err.Error(), "failed to create isolated environment") {
		t.Errorf("error %q does not mention environment creation", err.Error())
	}
	if got := b.State(); got != StateAborted {
		t.Errorf("State() = %v, want %v", got, StateAborted)
	}

	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Errorf("output jar created despite install failure")
	}
	assertScratchRemoved(t, scratchParent)
}

// newProject creates a topology directory named name and populates it with
// the given files (paths relative to the directory, forward slashes).
func newProject(t *testing.T, name string, files map[string]string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), name)
	testutil.MustMkdirAll(t, dir, 0o755)
	for rel, content := range files {
		testutil.MustWriteFile(t, filepath.Join(dir, filepath.FromSlash(rel)), content)
	}
	return dir
}

// writeBaseJar creates a minimal base jar for pipeline tests.
func writeBaseJar(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "minimal.jar")
	testutil.MustWriteZip(t, path, map[string]string{
		"META-INF/MANIFEST.MF": "Manifest-Version: 1.0\n",
		"lib/runner.class":     "runner bytecode",
	})
	return path
}

// redirectScratch points temporary-directory creation at a fresh parent so
// the test can observe whether the scratch workspace was removed.
func redirectScratch(t *testing.T) string {
	t.Helper()
	parent := t.TempDir()
	t.Setenv("TMPDIR", parent)
	return parent
}

// assertScratchRemoved fails the test when the redirected temp parent still
// holds a scratch workspace after the pipeline exits.
func assertScratchRemoved(t *testing.T, parent string) {
	t.Helper()
	left, err := os.ReadDir(parent)
	if err != nil {
		t.Fatal(err)
	}
	if len(left) != 0 {
		names := make([]string, 0, len(left))
		for _, e := range left {
			names = append(names, e.Name())
		}
		t.Errorf("scratch workspace left behind: %v", names)
	}
}

// stubEnvTools places stub creation and install executables on PATH and
// returns the path of the record file both stubs append to.
func stubEnvTools(t *testing.T, createScript, installScript string) string {
	t.Helper()

	work := t.TempDir()
	record := filepath.Join(work, "record.log")
	pipSrc := filepath.Join(work, "pip-stub")
	testutil.MustWriteScript(t, pipSrc, installScript)

	binDir := filepath.Join(work, "bin")
	testutil.MustWriteScript(t, filepath.Join(binDir, "virtualenv"), createScript)

	t.Setenv("RECORD", record)
	t.Setenv("PIPSRC", pipSrc)
	t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))

	return record
}

func recordedLines(t *testing.T, record string) []string {
	t.Helper()
	data, err := os.ReadFile(record)
	if err != nil {
		t.Fatal(err)
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

// readJar opens the archive at path and returns its entries as a
// name -> content map.
func readJar(t *testing.T, path string) map[string]string {
	t.Helper()

	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("failed to open packed jar: %v", err)
	}
	defer testutil.DeferClose(t, zr)()

	entries := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("failed to open entry %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("failed to read entry %s: %v", f.Name, err)
		}
		if err := rc.Close(); err != nil {
			t.Fatalf("failed to close entry %s: %v", f.Name, err)
		}
		entries[f.Name] = string(data)
	}
	return entries
}
