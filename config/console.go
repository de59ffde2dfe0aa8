package config

import "os"

// colorAllowed reports whether user did not ask to suppress colours
// (https://no-color.org).
func colorAllowed() bool {
	v, set := os.LookupEnv("NO_COLOR")
	return !set || len(v) == 0
}
