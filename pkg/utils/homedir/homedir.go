// Package homedir resolves the calling user's home directory for config search paths.
package homedir

import "os"

// HomeDir returns the current user's home directory, or "" if it cannot be determined.
func HomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home
}
