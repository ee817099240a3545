// Package app wires application dependencies for the CLI.
//
// It loads the YAML Config, builds the logger, and assembles the file
// store, matcher and browser service into a Wire. ServeHost runs the
// native-messaging loop on top of it.
package app
