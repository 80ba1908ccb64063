// Package projector walks a directory tree, filters files by name patterns and
// extensions, and concatenates their text into one annotated document.
//
// Each included file becomes a record headed by its path:
//
//	<<src/main.go>>
//	package main
//
// Records are joined by Delimiter. In dry-run mode a record is only a
// placeholder and no file is opened.
package projector
