// Package pretty provides utilities for beautifying console output.
package pretty

import (
	"fmt"
	"log"
	"os"
	"strings"
)

// PrintProgress draws a progress bar in the terminal. The percent takes values from 0 to 1.
func PrintProgress(percent float64) {
	if percent < 0 || percent > 1 {
		log.Panicln("pretty: the percent takes values from 0 to 1")
	}
	out, _ := os.Stdout.Stat()
	// Identify if we are displaying to a terminal or through a pipe or redirect.
	if out.Mode()&os.ModeCharDevice == os.ModeCharDevice {
		// Save or restore cursor position.
		if percent == 0 {
			log.Writer().Write([]byte("\x1b7"))
		} else {
			log.Writer().Write([]byte("\x1b8"))
		}
	}
	n := int(percent * 40)
	bar := strings.Repeat("=", n) + ">" + strings.Repeat(" ", 40-n)
	log.Printf("pretty: [%s] %3d%%", bar, int(percent*100))
}

// Table renders rows of cells as an aligned text table. The first row is the header.
func Table(data [][]string) string {
	size := make([]int, len(data[0]))
	for _, r := range data {
		for j, c := range r {
			size[j] = max(size[j], len(c))
		}
	}
	b := &strings.Builder{}
	for i, r := range data {
		cell := make([]string, len(r))
		for j, c := range r {
			cell[j] = fmt.Sprintf("%*s", size[j], c)
		}
		b.WriteString(strings.Join(cell, " "))
		b.WriteString("\n")
		if i == 0 {
			for j, n := range size {
				cell[j] = strings.Repeat("-", n)
			}
			b.WriteString(strings.Join(cell, "-"))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// PrintTable draws a table through the standard logger.
func PrintTable(data [][]string) {
	for _, line := range strings.Split(strings.TrimRight(Table(data), "\n"), "\n") {
		log.Println("pretty:", line)
	}
}
