package ensure

import "strings"

// NotInstalledMarker is the text package listing tools such as `pear list`
// print for a missing package.
const NotInstalledMarker = "not installed"

// ReportsAbsent reports whether list output says the package is missing.
// Runner output is stdout and stderr combined, so a warning on stderr that
// contains the marker also counts.
//
// This is a literal, case-sensitive substring test and nothing more. Output
// such as "Not Installed" does not match, and a package whose own name or
// description contains the marker will read as absent.
func ReportsAbsent(listOutput string) bool {
	return strings.Contains(listOutput, NotInstalledMarker)
}
