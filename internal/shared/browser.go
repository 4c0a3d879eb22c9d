package shared

import (
	"fmt"
	"os/exec"
	"runtime"
)

var getRuntime = func() string { return runtime.GOOS }

// opener starts a command for the given platform. Swapped out in tests.
var opener = func(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

func openCommand(target string) (string, []string, error) {
	switch rt := getRuntime(); rt {
	case "darwin":
		return "open", []string{target}, nil
	case "linux":
		return "xdg-open", []string{target}, nil
	case "windows":
		return "cmd", []string{"/c", "start", target}, nil
	default:
		return "", nil, fmt.Errorf("unsupported platform: %s", rt)
	}
}

// OpenBrowser opens the default system handler for the specified URL.
//
// Supports macOS, Linux, and Windows platforms.
func OpenBrowser(url string) error {
	name, args, err := openCommand(url)
	if err != nil {
		return err
	}
	if err := opener(name, args...); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}

// OpenWithFallback tries the native app link first and falls back to the web URL.
//
// It reports which of the two targets was handed to the system.
func OpenWithFallback(appURL, webURL string) (string, error) {
	if appURL != "" {
		if err := OpenBrowser(appURL); err == nil {
			return appURL, nil
		}
	}
	if err := OpenBrowser(webURL); err != nil {
		return "", err
	}
	return webURL, nil
}
