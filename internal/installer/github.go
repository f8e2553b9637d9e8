package installer

import (
	"fmt"
	"path"
	"strings"
)

// archiveURL builds the GitHub source-archive URL for a tagged release, e.g.
// https://github.com/driftyco/ionic-bower/archive/v1.2.0.zip.
func archiveURL(baseURL, repo, version, format string) string {
	return fmt.Sprintf("%s/%s/archive/v%s.%s", strings.TrimRight(baseURL, "/"), repo, version, format)
}

// archivePrefix returns the top-level folder GitHub puts every entry of a
// source archive under: "<repo name>-<version>/", without the tag's "v".
func archivePrefix(repo, version string) string {
	return path.Base(repo) + "-" + version + "/"
}
