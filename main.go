package main

import (
	"libsync/cmd" // CLI commands and execution logic
)

// main is the program entry point. It delegates to cmd.Execute, which parses
// the command line and exits non-zero on failure.
//
// libsync keeps a project's vendored front-end library (Ionic by default) in
// step with its release feed:
//   - `libsync lib` prints the installed version next to the feed's latest release
//   - `libsync lib update` resolves a version, downloads the release archive into
//     the library directory, unpacks it without the packaging files, and records
//     the installed version in version.json
//   - when the library is managed by bower, the update is handed to `bower update`
//     instead
func main() {
	cmd.Execute()
}
