// Package platform locates host paths that depend on how Docker was installed.
package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Volume directories of the common Linux Docker installations, in lookup order.
var systemVolumeRoots = []string{
	"/var/lib/docker/volumes",                        // docker-ce, docker.io
	"/var/snap/docker/common/var-lib-docker/volumes", // snap
}

// DetectVolumesRoot returns the directory holding Docker named volumes on
// this host. Rootless Docker keeps them under the user's home.
func DetectVolumesRoot() (string, error) {
	return detectVolumesRoot(runtime.GOOS, os.Getenv("HOME"), pathExists)
}

func detectVolumesRoot(goos, home string, exists func(string) bool) (string, error) {
	switch goos {
	case "linux":
	case "darwin", "windows":
		return "", fmt.Errorf("docker volumes on %s live inside the Docker Desktop VM and cannot be written from the host", goos)
	default:
		return "", fmt.Errorf("unsupported platform: %s", goos)
	}

	candidates := append([]string{}, systemVolumeRoots...)
	if home != "" {
		candidates = append(candidates, filepath.Join(home, ".local", "share", "docker", "volumes"))
	}

	for _, c := range candidates {
		if exists(c) {
			return c, nil
		}
	}
	return "", fmt.Errorf("docker volumes directory not found (checked %s)", strings.Join(candidates, ", "))
}

// pathExists checks if a path exists on the filesystem.
func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Platform returns a string describing the current platform.
func Platform() string {
	return fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)
}
