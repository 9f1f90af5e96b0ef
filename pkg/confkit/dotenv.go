package confkit

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/joho/godotenv"
)

// maxDotenvDepth bounds the upward search for a .env file.
const maxDotenvDepth = 8

var dotenvOnce sync.Once

// LoadDotenvOnce loads a .env file into the process environment the first time
// it is called. ENV_FILE names the file explicitly; otherwise the search walks
// up from the working directory and stops at the module root. NO_DOTENV=1
// disables loading and DOTENV_OVERLOAD=1 lets the file win over variables that
// are already set.
func LoadDotenvOnce() {
	dotenvOnce.Do(func() {
		if os.Getenv("NO_DOTENV") == "1" {
			return
		}
		if path := dotenvPath(); path != "" {
			loadDotenv(path, os.Getenv("DOTENV_OVERLOAD") == "1")
		}
	})
}

func loadDotenv(path string, overload bool) {
	if overload {
		_ = godotenv.Overload(path)
		return
	}
	_ = godotenv.Load(path)
}

func dotenvPath() string {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		return envFile
	}
	wd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return findUpwards(wd, ".env")
}

// findUpwards returns the first dir/name found walking towards the root. The
// walk ends at a directory containing go.mod.
func findUpwards(dir, name string) string {
	for i := 0; i < maxDotenvDepth; i++ {
		candidate := filepath.Join(dir, name)
		if fileExists(candidate) {
			return candidate
		}
		if fileExists(filepath.Join(dir, "go.mod")) {
			return ""
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
	return ""
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}
