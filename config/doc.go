// Package config models the desktop application's configuration document:
// a single JSON object whose "mcpServers" key maps server names to launch
// specifications.
//
// # Overview
//
// A Document wraps the raw JSON bytes and treats them as the source of
// truth. Reads walk the raw bytes; mutations splice them. This keeps two
// properties the desktop application relies on:
//
//   - Entry declaration order is preserved across load/mutate/save.
//   - Fields this tool does not model, top-level or per-entry, survive a
//     round trip byte-for-byte.
//
// # Loading
//
//	doc, err := config.Load(path)
//	if err != nil {
//	    return err
//	}
//	server, ok := doc.Get("github")
//
// Load also captures a Stamp (size, mtime, content hash) of the file, which
// the transaction executor compares against the live file before committing
// to detect concurrent external edits.
//
// Mutating methods operate on the in-memory copy only. Writing the result
// to disk is the job of the tx package, which goes through an atomic
// temp-file-then-rename replace.
package config
