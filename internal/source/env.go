package source

import "github.com/joho/godotenv"

// DefaultEnvPaths are searched for a .env file, first match wins.
var DefaultEnvPaths = []string{".env", "../.env"}

// LoadEnv loads the first readable .env file among paths.
// Variables already set in the environment are kept. It returns the loaded path.
func LoadEnv(paths ...string) (string, bool) {
	if len(paths) == 0 {
		paths = DefaultEnvPaths
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err == nil {
			return path, true
		}
	}
	return "", false
}
