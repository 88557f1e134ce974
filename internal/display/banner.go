// Package display renders the startup banner and end-of-run tables.
package display

import (
	"io"

	"github.com/fatih/color"
)

var bannerColor = color.New(color.FgHiMagenta, color.Bold)

const banner = ` _        _     _      _           _       _
| |_ __ _| |__ | | ___| |__   __ _| |_ ___| |__
| __/ _` + "`" + ` | '_ \| |/ _ \ '_ \ / _` + "`" + ` | __/ __| '_ \
| || (_| | |_) | |  __/ |_) | (_| | || (__| | | |
 \__\__,_|_.__/|_|\___|_.__/ \__,_|\__\___|_| |_|
`

// PrintBanner prints the ASCII art banner, in magenta when colors are on.
func PrintBanner(w io.Writer) {
	_, _ = bannerColor.Fprint(w, banner)
	_, _ = io.WriteString(w, "\n")
}
