// Package extract defines the table-extraction capability and its camelot
// command-line implementation.
//
// The capability is opaque to the rest of tablebatch: [Extractor.Extract]
// turns one document into a [Tables] handle, which reports how many tables
// were found and can export them into an output location. [Camelot] runs
// the camelot CLI in a private staging directory per document so that no
// partial output ever reaches the output tree, and classifies its stderr
// into sentinel errors (see errors.go).
package extract
