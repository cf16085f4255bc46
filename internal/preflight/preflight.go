package preflight

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/sys/unix"

	"squish/internal/config"
	"squish/internal/services"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Fatal  bool
	Detail string
}

// RunAll executes the directory checks that apply to cfg.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	temp := CheckDirectoryAccess("Temp directory", cfg.TempDir())
	temp.Fatal = true
	results := []Result{temp}

	results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir))
	if strings.TrimSpace(cfg.Paths.LogDir) != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}
	if cfg.Safety.TrashCopy {
		results = append(results, CheckCreatable("Trash directory", cfg.Safety.TrashDir))
	}
	return results
}

// FirstFatal returns an error for the first failed fatal check.
func FirstFatal(results []Result) error {
	for _, r := range results {
		if r.Fatal && !r.Passed {
			return services.Wrap(services.ErrConfiguration, "preflight", r.Name, r.Detail, nil)
		}
	}
	return nil
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckCreatable passes when path is a usable directory or could be created
// because its nearest existing ancestor is writable.
func CheckCreatable(name, path string) Result {
	if _, err := os.Stat(path); err == nil {
		return CheckDirectoryAccess(name, path)
	}
	parent := path
	for {
		next := parentDir(parent)
		if next == parent {
			break
		}
		parent = next
		if _, err := os.Stat(parent); err == nil {
			break
		}
	}
	check := CheckDirectoryAccess(name, parent)
	if !check.Passed {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: cannot create under %s)", path, parent)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
}

func parentDir(path string) string {
	path = strings.TrimRight(path, "/")
	idx := strings.LastIndex(path, "/")
	switch {
	case idx < 0:
		return "."
	case idx == 0:
		return "/"
	}
	return path[:idx]
}
