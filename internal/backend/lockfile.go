// Package backend locates the forge-backend sidecar process through its
// lockfile. The desktop shell writes "port|pid|secret" on startup and
// removes the file on exit, so a readable, validated lockfile is the only
// signal that the sidecar is accepting requests.
package backend

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mitchellh/go-ps"

	"github.com/Chabota512/forge-drift/internal/constants"
)

var (
	userConfigDirFunc = os.UserConfigDir
	findProcessFunc   = ps.FindProcess
)

// Endpoint describes a validated, reachable sidecar instance.
type Endpoint struct {
	Port   string
	Secret string
}

// BaseURL returns the local address the sidecar listens on.
func (e Endpoint) BaseURL() string {
	return fmt.Sprintf("http://127.0.0.1:%s", e.Port)
}

// DefaultLockfilePath returns the lockfile location inside the user config
// directory shared with the desktop shell.
func DefaultLockfilePath() (string, error) {
	configDir, err := userConfigDirFunc()
	if err != nil {
		return "", fmt.Errorf("failed to get user config dir: %w", err)
	}
	return filepath.Join(configDir, constants.AppName, constants.BackendLockfileName), nil
}

// Discover reads and validates the lockfile at lockfilePath. It confirms the
// recorded pid belongs to a live forge-backend process before trusting the
// port, so a stale lockfile left by a crash is rejected.
func Discover(lockfilePath string) (Endpoint, error) {
	content, err := os.ReadFile(lockfilePath)
	if err != nil {
		return Endpoint{}, errors.New("forge-backend is not running")
	}

	parts := strings.Split(strings.TrimSpace(string(content)), "|")
	if len(parts) != 3 {
		return Endpoint{}, errors.New("lockfile is malformed")
	}

	port := parts[0]
	if strings.TrimSpace(port) == "" {
		return Endpoint{}, errors.New("port in lockfile is empty")
	}
	portNum, err := strconv.Atoi(port)
	if err != nil {
		return Endpoint{}, errors.New("invalid port number in lockfile")
	}
	if portNum < 1 || portNum > 65535 {
		return Endpoint{}, fmt.Errorf("port number %d is outside valid range (1-65535)", portNum)
	}

	pid, err := strconv.Atoi(parts[1])
	if err != nil {
		return Endpoint{}, errors.New("invalid process ID in lockfile")
	}
	secret := parts[2]
	if strings.TrimSpace(secret) == "" {
		return Endpoint{}, errors.New("secret in lockfile is empty")
	}

	process, err := findProcessFunc(pid)
	if err != nil || process == nil {
		return Endpoint{}, errors.New("forge-backend process not running")
	}

	if !strings.HasPrefix(process.Executable(), constants.BackendProcessName) {
		return Endpoint{}, fmt.Errorf("process with PID %d is not forge-backend (is %s)", pid, process.Executable())
	}

	return Endpoint{Port: port, Secret: secret}, nil
}
