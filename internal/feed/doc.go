// Package feed resolves a version spec ("latest" or a concrete version) against
// the remote release feed and normalizes the answer into a Descriptor.
//
// The feed serves <base>/latest.json and <base>/<version>/version.json. Both the
// long (version_number, version_codename, release_date) and short (version,
// codename, date) key spellings are accepted; Normalize is the only place that
// knows about the two spellings.
package feed
