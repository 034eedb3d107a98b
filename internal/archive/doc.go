// Package archive implements the .ldip container: a ZIP-compatible archive
// holding manifest.json, an index-driven templates/ tree, lifecycle scripts,
// configuration schemas, and optional docs. It covers building, extraction,
// post-extraction integrity validation, and size reporting.
package archive
