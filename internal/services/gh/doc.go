// Package gh wraps the gh command line tool to manage GitHub releases as an
// opaque artifact store: one release per episode date plus a singleton
// assets release carrying shared static files and the feed document.
package gh
