package webid

import "regexp"

// A URI entry in a subject alternative name string is "URI:" followed by a
// maximal run of characters excluding comma and space.
var sanURIPattern = regexp.MustCompile(`URI:([^, ]+)`)

// ExtractURIs returns every URI-typed entry of a subject alternative name
// string, in order of appearance. A missing or URI-less SAN yields an empty
// slice; deciding that this is an error is up to the caller.
func ExtractURIs(san string) []string {
	matches := sanURIPattern.FindAllStringSubmatch(san, -1)
	uris := make([]string, 0, len(matches))
	for _, m := range matches {
		uris = append(uris, m[1])
	}
	return uris
}
