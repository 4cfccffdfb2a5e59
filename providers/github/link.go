package github

import "strings"

// nextPageURL returns the target of the rel="next" relation in RFC 5988 Link
// header values, or "" when there is none. Targets are read between angle
// brackets, so they may contain commas and semicolons.
func nextPageURL(values []string) string {
	for _, value := range values {
		rest := value
		for {
			start := strings.IndexByte(rest, '<')
			if start < 0 {
				break
			}
			end := strings.IndexByte(rest[start:], '>')
			if end < 0 {
				break
			}
			target := rest[start+1 : start+end]
			rest = rest[start+end+1:]

			// Parameters run up to the next link, which starts after a comma.
			params := rest
			if i := strings.IndexByte(rest, '<'); i >= 0 {
				params = rest[:i]
			}
			if hasNextRelation(params) {
				return target
			}
		}
	}
	return ""
}

func hasNextRelation(params string) bool {
	for _, param := range strings.Split(params, ";") {
		name, val, _ := strings.Cut(strings.TrimSpace(param), "=")
		if !strings.EqualFold(strings.TrimSpace(name), "rel") {
			continue
		}
		val = strings.TrimSpace(val)
		val = strings.TrimSpace(strings.TrimRight(val, ","))
		for _, rel := range strings.Fields(strings.Trim(val, `"`)) {
			if strings.EqualFold(rel, "next") {
				return true
			}
		}
	}
	return false
}
