package module_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dana-lang/dana/internal/module"
	"github.com/dana-lang/dana/internal/values"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestResolveFindsPlainFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "util.na", "x = 1\n")

	path, err := module.Resolve(module.SearchPaths(dir), []string{"util"}, false)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "util.na"), path)
}

func TestResolveFindsPackageInit(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "pkg"), 0o755))
	writeFile(t, filepath.Join(dir, "pkg"), "__init__.na", "x = 1\n")

	path, err := module.Resolve(module.SearchPaths(dir), []string{"pkg"}, false)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "pkg", "__init__.na"), path)
}

func TestResolveMissingModuleErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := module.Resolve(module.SearchPaths(dir), []string{"nope"}, false)
	require.Error(t, err)
	var nfe *module.NotFoundError
	require.ErrorAs(t, err, &nfe)
}

func TestLoaderCachesResult(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "util.na", "x = 1\n")

	calls := 0
	loader := module.NewLoader(dir, func(filename, src string) (*module.Result, error) {
		calls++
		return &module.Result{Exports: map[string]values.Value{}}, nil
	})

	_, err := loader.Load([]string{"util"}, false)
	require.NoError(t, err)
	_, err = loader.Load([]string{"util"}, false)
	require.NoError(t, err)
	require.Equal(t, 1, calls, "second Load must hit the cache, not re-execute")
}

func TestLoaderDetectsCircularImport(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.na", "import b\n")
	writeFile(t, dir, "b.na", "import a\n")

	var loader *module.Loader
	loader = module.NewLoader(dir, func(filename, src string) (*module.Result, error) {
		name := filepath.Base(filename)
		switch name {
		case "a.na":
			return loader.Load([]string{"b"}, false)
		case "b.na":
			return loader.Load([]string{"a"}, false)
		}
		return nil, fmt.Errorf("unexpected file %s", filename)
	})

	_, err := loader.Load([]string{"a"}, false)
	require.Error(t, err)
	require.Contains(t, err.Error(), "CircularImportError")
}

func TestLoaderRejectsHostImports(t *testing.T) {
	dir := t.TempDir()
	loader := module.NewLoader(dir, func(filename, src string) (*module.Result, error) {
		t.Fatal("host imports must never be executed in-process")
		return nil, nil
	})

	_, err := loader.Load([]string{"numpy", "py"}, true)
	require.Error(t, err)
	require.Contains(t, err.Error(), "ImportError")
}
