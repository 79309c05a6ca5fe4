// Package browser opens the OAuth consent page in the user's browser.
package browser

import (
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// Opener launches a browser. The zero value uses the running platform.
type Opener struct {
	// GOOS overrides runtime.GOOS.
	GOOS string

	// Start runs the command without waiting for it; defaults to exec.Command(...).Start.
	Start func(name string, args ...string) error

	// Getenv overrides os.Getenv.
	Getenv func(key string) string
}

// Open opens the specified URL in the default browser.
func Open(urlString string) error {
	return Opener{}.Open(urlString)
}

// Open validates urlString before passing it to the system browser to prevent
// command injection. The BROWSER environment variable, when set, names the
// program to use.
func (o Opener) Open(urlString string) error {
	if err := Validate(urlString); err != nil {
		return err
	}

	name, args, err := o.Command(urlString)
	if err != nil {
		return err
	}

	start := o.Start
	if start == nil {
		start = func(name string, args ...string) error {
			return exec.Command(name, args...).Start() // #nosec G204 -- URL validated above
		}
	}
	if err := start(name, args...); err != nil {
		return fmt.Errorf("failed to start %s: %w", name, err)
	}
	return nil
}

// Command returns the program and arguments that open urlString.
func (o Opener) Command(urlString string) (string, []string, error) {
	getenv := o.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	if b := strings.TrimSpace(getenv("BROWSER")); b != "" {
		return b, []string{urlString}, nil
	}

	goos := o.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}

	switch goos {
	case "linux", "freebsd", "openbsd", "netbsd":
		return "xdg-open", []string{urlString}, nil
	case "darwin":
		return "open", []string{urlString}, nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", urlString}, nil
	default:
		return "", nil, fmt.Errorf("unsupported platform: %s", goos)
	}
}

// Validate accepts absolute http and https URLs only.
func Validate(urlString string) error {
	parsedURL, err := url.Parse(urlString)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	// Whitelist allowed schemes to prevent malicious URLs
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("unsupported URL scheme: %s (only http and https allowed)", parsedURL.Scheme)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("invalid URL: missing host")
	}
	if strings.ContainsAny(urlString, " \t\r\n") {
		return fmt.Errorf("invalid URL: contains whitespace")
	}
	return nil
}
