// Package profile keeps multiple named configuration documents and
// swaps them in and out of the live file.
//
// The desktop application only ever reads its primary configuration
// file, so the active profile's document always lives there. Inactive
// profiles are parked next to it as profile_<name>.json. Switching
// parks the outgoing document and moves the incoming one into place;
// both writes go through the atomic writer, park before activate, so a
// crash mid-switch never loses a document.
//
// The registry file profiles.json records which profile is active and
// per-profile metadata. The implicit "default" profile is the primary
// file's own document; it always exists and cannot be created or
// deleted.
package profile
