package extract

import "github.com/backmassage/tablebatch/internal/config"

// Build returns the full camelot argv (binary first) that extracts input
// into the export target output. Group options precede the flavor
// subcommand, as the camelot CLI requires.
//
//	camelot --format csv --output <staging>/<stem>.csv --pages all stream <input>
func Build(bin, input, output string, opts Options) []string {
	pages := opts.Pages
	if pages == "" {
		// camelot itself defaults to page 1 only.
		pages = config.PagesAll
	}
	flavor := opts.Flavor
	if flavor == "" {
		flavor = config.FlavorStream
	}
	return []string{
		bin,
		"--format", string(opts.Format),
		"--output", output,
		"--pages", pages,
		string(flavor),
		input,
	}
}
