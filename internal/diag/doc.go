// Package diag defines the diagnostic and error model shared by every compile
// phase.
//
// # Fatal errors
//
// Each phase fails fast with a *Error whose Kind is one of LoadError,
// ParseError, TransformError, ResolutionError, EmitError or WriteError. The
// error names the canonical module id it concerns; resolution failures also
// carry the importer and the raw specifier. Callers branch on KindOf or
// errors.As rather than on message text.
//
// # Non-fatal findings
//
// Import cycles and similar observations are not errors. Phases emit them as
// warnings through a Reporter (usually a BagReporter) so the CLI can print
// them after a successful build.
//
// # Codes
//
// Code values are grouped in ranges of a thousand, each with a short prefix
// used by Code.ID:
//
//	1000-1999  IO   file system
//	2000-2999  SYN  syntax
//	3000-3999  XFM  transform stages
//	4000-4999  RES  resolution
//	5000-5999  EMT  emitter
//	6000-6999  GRF  module graph
//
// Rendering lives in internal/diagfmt; this package performs no I/O.
package diag
