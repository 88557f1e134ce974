// Package naming maps input documents to their output locations.
//
// A document at <root>/<dir>/<stem>.pdf owns the directory
// <outDir>/<dir>/<stem>. Two documents that would claim the same directory
// (for example a.pdf and a.PDF) are told apart by [CollisionResolver], which
// gives later claimants a " - dupN" suffix. [Layout] assigns locations in
// discovery order, so process and validate runs agree on every location.
package naming
