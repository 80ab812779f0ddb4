// Package providers holds the per-host adapters that translate chapter page
// markup into chapter and image link lists, and the registry that picks an
// adapter for a URL.
//
// Every supported host is one table entry in Default. Hosts differ only in
// how their chapter list is marked up; image extraction walks a shared,
// ordered selector chain and stops at the first selector that yields a usable
// URL, so a generic "img" never competes with a site-specific class.
package providers
