package pharmacy

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SearchLimit caps every search result, including the empty-term listing.
const SearchLimit = 15

// newCollator returns a collator for catalog names. Collators carry internal
// buffers and are not safe for concurrent use, so one is built per call.
func newCollator() *collate.Collator {
	return collate.New(language.Vietnamese)
}

// SortMedicinesByName sorts in place, ascending by name.
func SortMedicinesByName(meds []Medicine) {
	c := newCollator()
	sort.SliceStable(meds, func(i, j int) bool {
		return c.CompareString(meds[i].Name, meds[j].Name) < 0
	})
}

// SortPatientsByName sorts in place, ascending by name.
func SortPatientsByName(patients []Patient) {
	c := newCollator()
	sort.SliceStable(patients, func(i, j int) bool {
		return c.CompareString(patients[i].Name, patients[j].Name) < 0
	})
}

// RankByName ranks meds for a search term. The term is trimmed and
// lower-cased. An empty term yields the first SearchLimit medicines of the
// full ascending-by-name listing. Otherwise medicines whose lower-cased name
// starts with the term are ranked ahead of those that merely contain it;
// each tier is ordered ascending by name and the concatenation is truncated
// to SearchLimit. Prefix matches always outrank substring matches.
func RankByName(meds []Medicine, term string) []Medicine {
	term = strings.ToLower(strings.TrimSpace(term))

	if term == "" {
		all := make([]Medicine, len(meds))
		copy(all, meds)
		SortMedicinesByName(all)
		return truncate(all)
	}

	// prefix stays non-nil so a no-match result still serializes as [].
	prefix := []Medicine{}
	var substring []Medicine
	for _, m := range meds {
		name := strings.ToLower(m.Name)
		switch {
		case strings.HasPrefix(name, term):
			prefix = append(prefix, m)
		case strings.Contains(name, term):
			substring = append(substring, m)
		}
	}

	SortMedicinesByName(prefix)
	SortMedicinesByName(substring)
	return truncate(append(prefix, substring...))
}

func truncate(meds []Medicine) []Medicine {
	if len(meds) > SearchLimit {
		return meds[:SearchLimit]
	}
	return meds
}
