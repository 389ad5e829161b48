package browser

import (
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

// ErrNoURL is returned for articles that carry no link.
var ErrNoURL = errors.New("article has no url")

// Opener shows an article in a browser view.
type Opener interface {
	Open(rawURL string) error
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(rawURL string) error

func (f OpenerFunc) Open(rawURL string) error { return f(rawURL) }

// System opens URLs with the platform's default browser.
var System Opener = OpenerFunc(Open)

// Validate accepts absolute http and https URLs only.
func Validate(rawURL string) error {
	if rawURL == "" {
		return ErrNoURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("refusing to open URL with scheme %q (only http/https allowed)", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("refusing to open URL without host")
	}
	return nil
}

func Open(rawURL string) error {
	if err := Validate(rawURL); err != nil {
		return err
	}
	return command(runtime.GOOS, rawURL).Start()
}

func command(goos, rawURL string) *exec.Cmd {
	switch goos {
	case "darwin":
		return exec.Command("open", rawURL)
	case "windows":
		// rundll32 avoids cmd /c start shell interpretation
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", rawURL)
	default:
		return exec.Command("xdg-open", rawURL)
	}
}
