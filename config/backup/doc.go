// Package backup stores and retrieves full configuration snapshots.
//
// Every snapshot is one JSON file in the store directory holding an
// envelope of metadata plus the configuration exactly as it was on disk,
// byte for byte. Restoring therefore brings back entry order and any
// unknown fields the document carried.
//
// File names follow config_backup_<timestamp>[_<label>].json where the
// timestamp is UTC in the form 20060102_150405. Labels are sanitized so a
// label can never escape the store directory or produce an invalid file
// name. Files that do not parse as snapshot envelopes are ignored when
// listing, so foreign files in the directory are harmless.
package backup
