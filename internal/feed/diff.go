package feed

import "github.com/siteassist/siteassist/internal/models"

// SameVersion reports whether two documents are the same revision:
// identical identity and identical revision token. The token is
// compared for string equality only; a change in either direction
// counts as a different version.
func SameVersion(a, b models.Document) bool {
	return a.ID == b.ID && a.Modified == b.Modified
}

type version struct {
	id       int64
	modified string
}

// FindNew returns every document in latest whose (id, modified) pair
// does not appear in cached. Cached is indexed by identity+revision so
// the comparison is linear in both inputs.
func FindNew(latest, cached []models.Document) []models.Document {
	seen := make(map[version]struct{}, len(cached))
	for _, doc := range cached {
		seen[version{doc.ID, doc.Modified}] = struct{}{}
	}

	newDocs := make([]models.Document, 0, len(latest))
	for _, doc := range latest {
		if _, ok := seen[version{doc.ID, doc.Modified}]; !ok {
			newDocs = append(newDocs, doc)
		}
	}
	return newDocs
}
