package main

import (
	"fmt"
	"os/exec"
	"runtime"
)

// openerCommand returns the program and args that hand url to the desktop's
// default browser.
func openerCommand(goos, url string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{url}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}
	default:
		return "xdg-open", []string{url}
	}
}

// openBrowser does not wait for the browser; nothing is read back.
func openBrowser(url string) error {
	name, args := openerCommand(runtime.GOOS, url)
	if err := exec.Command(name, args...).Start(); err != nil {
		return fmt.Errorf("failed to open browser with %s: %w", name, err)
	}
	return nil
}
