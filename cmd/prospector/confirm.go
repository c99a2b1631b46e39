package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/xavierca1/prospector/internal/entity"
	"github.com/xavierca1/prospector/internal/usecase"
)

// promptConfirm asks on out and reads one answer line from in. Only "y" or
// "yes" approve; EOF declines.
func promptConfirm(in io.Reader, out io.Writer) usecase.ConfirmFunc {
	reader := bufio.NewReader(in)
	return func(p entity.Prospect) bool {
		fmt.Fprintf(out, "Remove %s %s (%s)? [y/N]: ", p.FirstName, p.LastName, p.Company)
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		default:
			return false
		}
	}
}
