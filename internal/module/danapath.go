package module

import (
	"os"
	"path/filepath"
	"strings"
)

// SearchPaths returns the ordered list of directories a module lookup
// scans: the directory the running file lives in, followed by every entry
// in DANAPATH (colon-separated, like GOPATH/PYTHONPATH), followed by the
// current working directory as a last resort.
func SearchPaths(baseDir string) []string {
	paths := []string{}
	if baseDir != "" {
		paths = append(paths, baseDir)
	}
	if env := os.Getenv("DANAPATH"); env != "" {
		for _, p := range strings.Split(env, string(os.PathListSeparator)) {
			if p != "" {
				paths = append(paths, p)
			}
		}
	}
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, cwd)
	}
	return paths
}

// Resolve searches paths for a Dana or host module matching the given
// dotted import path, trying "<path>.na", "<path>/__init__.na", and for
// host imports "<path-without-trailing-py>.py" in turn.
func Resolve(paths []string, segs []string, host bool) (string, error) {
	if host {
		rel := filepath.Join(segs[:len(segs)-1]...) + ".py"
		for _, base := range paths {
			candidate := filepath.Join(base, rel)
			if fileExists(candidate) {
				return candidate, nil
			}
		}
		return "", &NotFoundError{Path: strings.Join(segs, ".")}
	}
	rel := filepath.Join(segs...)
	for _, base := range paths {
		candidate := filepath.Join(base, rel+".na")
		if fileExists(candidate) {
			return candidate, nil
		}
		candidate = filepath.Join(base, rel, "__init__.na")
		if fileExists(candidate) {
			return candidate, nil
		}
	}
	return "", &NotFoundError{Path: strings.Join(segs, ".")}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// NotFoundError reports a dotted import path that couldn't be resolved
// against any search path.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return "no module named \"" + e.Path + "\""
}
