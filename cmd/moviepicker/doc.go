// Command moviepicker runs the reel pipeline and the watch-list from the
// command line, and serves both over HTTP with `moviepicker serve`.
//
// Configuration is read from ~/.config/moviepicker/config.toml (or the file
// given with --config). Create a starting point with `moviepicker config init`.
package main
