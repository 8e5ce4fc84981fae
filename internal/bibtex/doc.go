// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package bibtex turns a BibTeX-like corpus into flat, ordered records.
//
// The pipeline runs one way: Split cuts the corpus into RawEntry values,
// Assemble extracts fields from each entry with ExtractField and
// Normalize, and Schema folds the finished records into one column order
// for tabular export. Parse runs the first two steps.
//
// Parsing is heuristic and lenient. Entry boundaries come from "@ident{"
// markers rather than brace matching, braced values nest one level only,
// and '%' starts a comment anywhere on a line. None of this is reported as
// an error: every function here is total over its input and holds no
// state, so it is safe to call concurrently.
package bibtex
