// Package main hosts the cutroom CLI entrypoint and command graph.
//
// The Cobra-based command tree resolves configuration, opens the project
// registry, and routes every subcommand through the api.ProjectService
// facade. Mutating commands print the Result message and exit non-zero when
// the result reports failure; list and show commands render tables or, with
// --json, the API DTOs.
//
// Keep this package lean: add behaviour to the internal packages first and
// surface it here through commands or flags.
package main
