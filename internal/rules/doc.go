// Package rules reads Sigma rule documents and projects them into flat
// catalog entries.
//
// Parsing is best-effort: ParseFile reports every problem as an error and
// callers decide whether to skip the file. Project never fails; it reports
// whether the document has a usable title.
package rules
