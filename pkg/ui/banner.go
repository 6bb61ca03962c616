package ui

import "strings"

const (
	reset      = "\033[0m"
	bold       = "\033[1m"
	mintGreen  = "\033[38;5;121m"
	seafoam    = "\033[38;5;49m"
	skyBlue    = "\033[38;5;117m"
	cobalt     = "\033[38;5;33m"
	deepIndigo = "\033[38;5;61m"
	lilac      = "\033[38;5;141m"
	fuchsia    = "\033[38;5;177m"
)

// Banner renders a colored memlens wordmark.
func Banner() string {
	var b strings.Builder

	memlensLetters := [][]string{
		{"███╗   ███╗", "████╗ ████║", "██╔████╔██║", "██║╚██╔╝██║", "██║ ╚═╝ ██║", "╚═╝     ╚═╝"},
		{"███████╗", "██╔════╝", "█████╗  ", "██╔══╝  ", "███████╗", "╚══════╝"},
		{"███╗   ███╗", "████╗ ████║", "██╔████╔██║", "██║╚██╔╝██║", "██║ ╚═╝ ██║", "╚═╝     ╚═╝"},
		{"██╗     ", "██║     ", "██║     ", "██║     ", "███████╗", "╚══════╝"},
		{"███████╗", "██╔════╝", "█████╗  ", "██╔══╝  ", "███████╗", "╚══════╝"},
		{"███╗   ██╗", "████╗  ██║", "██╔██╗ ██║", "██║╚██╗██║", "██║ ╚████║", "╚═╝  ╚═══╝"},
		{"███████╗", "██╔════╝", "███████╗", "╚════██║", "███████║", "╚══════╝"},
	}
	memlensGradient := []string{mintGreen, seafoam, skyBlue, cobalt, deepIndigo, lilac, fuchsia}
	memlensRows := make([]string, len(memlensLetters[0]))
	for i, letter := range memlensLetters {
		color := memlensGradient[i%len(memlensGradient)]
		for row := 0; row < len(letter); row++ {
			memlensRows[row] += color + letter[row] + "  "
		}
	}
	for _, line := range memlensRows {
		b.WriteString(bold + line + reset + "\n")
	}

	b.WriteString("\n")
	b.WriteString(bold + cobalt + "memlens" + reset + "  •  physical memory lens\n\n")

	return b.String()
}
