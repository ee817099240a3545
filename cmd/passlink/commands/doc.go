// Package commands defines the passlink CLI and wires dependencies for subcommands.
//
// Commands
//
//   - host         Serve the browser extension over native messaging (stdio)
//   - match        Show which credentials would be offered for a URL
//   - check-url    Report URL validity and base domain
//   - store init   Create an empty credential database
//   - store add    Add a credential
//   - store list   List searchable credentials
//
// # Implementation
//
// The root command loads the YAML config, builds the logger and the
// dependency graph before any subcommand runs. In host mode stdout carries
// the protocol, so all diagnostics go to stderr or the configured log file.
package commands
