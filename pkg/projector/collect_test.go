package projector

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// writeTree creates files under dir from a map of slash paths to contents.
func writeTree(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

// scenarioTree is the a.py / b.txt / node_modules/c.py fixture, entered with t.Chdir.
func scenarioTree(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"a.py":              "x=1",
		"b.txt":             "hello",
		"node_modules/c.py": "y=2",
	})
	t.Chdir(dir)
}

func defaultIgnore(t *testing.T) *PatternSet {
	t.Helper()
	ps, err := NewPatternSet(DefaultIgnore)
	require.NoError(t, err)
	return ps
}

func observedLogger(level zapcore.Level) (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return zap.New(core), logs
}

func TestCollectDefaultIgnore(t *testing.T) {
	scenarioTree(t)

	res, err := Collect(".", Options{Ignore: defaultIgnore(t)})
	require.NoError(t, err)

	assert.Equal(t, "<<a.py>>\nx=1"+Delimiter+"<<b.txt>>\nhello", res.Document())
	assert.Equal(t, []string{"a.py", "b.txt"}, res.Paths())
	assert.Empty(t, res.Skipped)
	assert.NoError(t, res.Err)
	assert.EqualValues(t, len("x=1")+len("hello"), res.Bytes)
}

func TestCollectExtensionFilter(t *testing.T) {
	scenarioTree(t)

	res, err := Collect(".", Options{
		Ignore:     defaultIgnore(t),
		Extensions: NewExtensionSet(".py"),
	})
	require.NoError(t, err)
	assert.Equal(t, "<<a.py>>\nx=1", res.Document())
}

func TestCollectDryRunDoesNotRead(t *testing.T) {
	scenarioTree(t)

	c := New(Options{Ignore: defaultIgnore(t), DryRun: true})
	c.readFile = func(name string) ([]byte, error) {
		t.Errorf("unexpected read of %s in dry-run mode", name)
		return nil, errors.New("unexpected read")
	}

	res, err := c.Collect(".")
	require.NoError(t, err)
	assert.Equal(t,
		"<<a.py>> (would be processed)\n\n--------------\n\n<<b.txt>> (would be processed)",
		res.Document())
	for _, rec := range res.Records {
		assert.True(t, rec.Placeholder)
		assert.Empty(t, rec.Content)
	}
	assert.Zero(t, res.Bytes)
}

func TestCollectUnreadableFileIsSkipped(t *testing.T) {
	scenarioTree(t)
	logger, logs := observedLogger(zapcore.WarnLevel)

	c := New(Options{Ignore: defaultIgnore(t), Logger: logger})
	c.readFile = func(name string) ([]byte, error) {
		if filepath.Base(name) == "b.txt" {
			return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrPermission}
		}
		return os.ReadFile(name)
	}

	res, err := c.Collect(".")
	require.NoError(t, err)
	assert.Equal(t, "<<a.py>>\nx=1", res.Document())
	assert.Equal(t, []string{"b.txt"}, res.Skipped)

	errs := res.Errors()
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], fs.ErrPermission)

	warnings := logs.FilterMessage("Could not read file").All()
	require.Len(t, warnings, 1)
	assert.Equal(t, zapcore.WarnLevel, warnings[0].Level)
	assert.Equal(t, "b.txt", warnings[0].ContextMap()["path"])
}

func TestCollectPermissionDenied(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("file permissions are not enforced for this user")
	}
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"ok.txt": "fine", "secret.txt": "hidden"})
	secret := filepath.Join(dir, "secret.txt")
	require.NoError(t, os.Chmod(secret, 0o000))
	t.Cleanup(func() { _ = os.Chmod(secret, 0o644) })

	logger, logs := observedLogger(zapcore.WarnLevel)
	res, err := Collect(dir, Options{Logger: logger})
	require.NoError(t, err)

	require.Len(t, res.Records, 1)
	assert.Equal(t, "fine", res.Records[0].Content)
	assert.Equal(t, []string{filepath.ToSlash(secret)}, res.Skipped)
	assert.Equal(t, 1, logs.FilterMessage("Could not read file").Len())
}

func TestCollectNeverDescendsIntoIgnoredDirectories(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"keep/main.py":                    "print(1)",
		"keep/node_modules/lib.py":        "x",
		"keep/deeper/node_modules/pkg.py": "y",
		"build/out.py":                    "z",
	})
	ps, err := NewPatternSet("node_modules", "bui?d")
	require.NoError(t, err)

	c := New(Options{Ignore: ps, Extensions: NewExtensionSet("py")})
	var reads []string
	c.readFile = func(name string) ([]byte, error) {
		reads = append(reads, filepath.ToSlash(name))
		return os.ReadFile(name)
	}

	res, err := c.Collect(dir)
	require.NoError(t, err)

	want := filepath.ToSlash(filepath.Join(dir, "keep", "main.py"))
	assert.Equal(t, []string{want}, res.Paths())
	assert.Equal(t, []string{want}, reads)
}

func TestCollectIgnoresFilesByPattern(t *testing.T) {
	scenarioTree(t)
	writeTree(t, ".", map[string]string{"debug.log": "noise", "notes.LOG": "kept"})

	ps, err := NewPatternSet("node_modules", "*.log", "[ab].*")
	require.NoError(t, err)

	res, err := Collect(".", Options{Ignore: ps})
	require.NoError(t, err)
	// Matching is case-sensitive.
	assert.Equal(t, []string{"notes.LOG"}, res.Paths())
}

func TestCollectWithoutIgnoreIncludesEverything(t *testing.T) {
	scenarioTree(t)

	res, err := Collect(".", Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.py", "b.txt", "node_modules/c.py"}, res.Paths())
}

func TestCollectNormalizesPaths(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"src/pkg/main.go": "package main"})
	t.Chdir(dir)

	for _, root := range []string{"src", "./src", "src/", "src//", "./src/../src"} {
		t.Run(root, func(t *testing.T) {
			res, err := Collect(root, Options{})
			require.NoError(t, err)
			require.Len(t, res.Records, 1)
			assert.Equal(t, "src/pkg/main.go", res.Records[0].Path)
			assert.Equal(t, "pkg/main.go", res.Records[0].Rel)
			assert.Equal(t, "<<src/pkg/main.go>>\npackage main", res.Document())
		})
	}
}

func TestCollectEmptyResult(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"node_modules/x.js": "x"})

	res, err := Collect(dir, Options{Ignore: defaultIgnore(t)})
	require.NoError(t, err)
	assert.Empty(t, res.Records)
	assert.Equal(t, "", res.Document())
}

func TestCollectRootErrors(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "plain.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	_, err := Collect(filepath.Join(dir, "missing"), Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)

	_, err = Collect(file, Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotDirectory)
}

func TestCollectVerboseLogsProgress(t *testing.T) {
	scenarioTree(t)

	for _, verbose := range []bool{false, true} {
		logger, logs := observedLogger(zapcore.InfoLevel)
		res, err := Collect(".", Options{Ignore: defaultIgnore(t), Verbose: verbose, Logger: logger})
		require.NoError(t, err)

		// Diagnostics never change the document.
		assert.Equal(t, "<<a.py>>\nx=1"+Delimiter+"<<b.txt>>\nhello", res.Document())

		progress := logs.FilterMessage("Processing file").All()
		if !verbose {
			assert.Empty(t, progress)
			continue
		}
		require.Len(t, progress, 2)
		assert.Equal(t, "a.py", progress[0].ContextMap()["path"])
		assert.Equal(t, "b.txt", progress[1].ContextMap()["path"])
	}
}

func TestCollectDecodesLossily(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"crlf.txt":  "one\r\ntwo\rthree\n",
		"latin.txt": "caf\xe9 ok",
	})

	res, err := Collect(dir, Options{})
	require.NoError(t, err)
	require.Len(t, res.Records, 2)
	assert.Equal(t, "one\ntwo\nthree\n", res.Records[0].Content)
	assert.Equal(t, "caf ok", res.Records[1].Content)
}

func TestCollectSkipBinary(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"image.png": "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR",
		"text.md":   "# title",
	})

	lossy, err := Collect(dir, Options{})
	require.NoError(t, err)
	assert.Len(t, lossy.Records, 2)

	logger, logs := observedLogger(zapcore.WarnLevel)
	res, err := Collect(dir, Options{SkipBinary: true, Logger: logger})
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "# title", res.Records[0].Content)
	assert.Len(t, res.Skipped, 1)
	assert.True(t, strings.HasSuffix(res.Skipped[0], "/image.png"))
	assert.ErrorIs(t, res.Err, errBinary)
	assert.Equal(t, 1, logs.FilterMessage("Skipping binary file").Len())
}

func TestProcessIrregularFile(t *testing.T) {
	readFails := func(name string) ([]byte, error) {
		t.Errorf("unexpected read of %s", name)
		return nil, errors.New("unexpected read")
	}

	t.Run("dry run lists it", func(t *testing.T) {
		c := New(Options{DryRun: true})
		c.readFile = readFails

		res := &Result{Root: "."}
		c.process(res, "fifo", "fifo", fs.ModeNamedPipe)
		assert.Equal(t, "<<fifo>> (would be processed)", res.Document())
		assert.Empty(t, res.Skipped)
	})

	t.Run("read path skips it", func(t *testing.T) {
		logger, logs := observedLogger(zapcore.WarnLevel)
		c := New(Options{Logger: logger})
		c.readFile = readFails

		res := &Result{Root: "."}
		c.process(res, "fifo", "fifo", fs.ModeNamedPipe)
		assert.Empty(t, res.Records)
		assert.Equal(t, []string{"fifo"}, res.Skipped)
		assert.ErrorContains(t, res.Err, "irregular file")
		assert.Equal(t, 1, logs.FilterMessage("Skipping irregular file").Len())
	})
}

func TestCollectSkipsSymlinkedDirectories(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"real/file.txt": "data"})
	if err := os.Symlink(filepath.Join(dir, "real"), filepath.Join(dir, "link")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	res, err := Collect(dir, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"real/file.txt"}, relPaths(res))
}

func TestCollectFollowsSymlinkedRoot(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"real/file.txt": "data"})
	if err := os.Symlink("real", filepath.Join(dir, "link")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}
	t.Chdir(dir)

	res, err := Collect("link", Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"link/file.txt"}, res.Paths())
}

func relPaths(res *Result) []string {
	var rels []string
	for _, rec := range res.Records {
		rels = append(rels, rec.Rel)
	}
	return rels
}
