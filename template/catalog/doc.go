// Package catalog fetches and caches the remote template catalog.
//
// Templates live as JSON files in a GitHub repository. Client reads
// them through the GitHub contents API; Cache keeps a local copy under
// the user's cache directory so repeated lookups and offline use do
// not hit the network. Manager composes the two: serve from cache
// while fresh, refresh when stale, and fall back to the builtin set
// when neither is available.
//
// Cache layout:
//
//	<dir>/metadata.json          refresh bookkeeping and ETag
//	<dir>/catalog.json           the template index
//	<dir>/templates/<name>.json  individual template definitions
//
// Cached data expires after 30 days by default. A refresh revalidates
// with If-None-Match, so an unchanged catalog costs one conditional
// request.
package catalog
