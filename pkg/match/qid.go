package match

import "strings"

// ExtractQID returns the final path segment of a Wikidata entity URI,
// "http://www.wikidata.org/entity/Q64" yields "Q64". The result is not validated.
func ExtractQID(uri string) string {
	if i := strings.LastIndex(uri, "/"); i >= 0 {
		return uri[i+1:]
	}
	return uri
}
