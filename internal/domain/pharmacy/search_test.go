package pharmacy

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func namedMedicines(names ...string) []Medicine {
	meds := make([]Medicine, len(names))
	for i, n := range names {
		meds[i] = Medicine{ID: fmt.Sprintf("id-%d", i), Name: n}
	}
	return meds
}

func names(meds []Medicine) []string {
	out := make([]string, len(meds))
	for i, m := range meds {
		out[i] = m.Name
	}
	return out
}

func TestRankByNameEmptyTermListsAscending(t *testing.T) {
	meds := namedMedicines("Zinc", "Amoxicillin", "Paracetamol")

	got := RankByName(meds, "")

	assert.Equal(t, []string{"Amoxicillin", "Paracetamol", "Zinc"}, names(got))
	// Input order is untouched.
	assert.Equal(t, "Zinc", meds[0].Name)
}

func TestRankByNameBlankTermEqualsEmpty(t *testing.T) {
	meds := namedMedicines("Bb", "Aa")

	assert.Equal(t, names(RankByName(meds, "")), names(RankByName(meds, "   ")))
}

func TestRankByNamePrefixOutranksSubstring(t *testing.T) {
	meds := namedMedicines("Vitamin C", "Amoxicillin", "Paracetamol", "Ampicillin")

	got := RankByName(meds, "am")

	// Both prefix matches first, ascending, then the substring match.
	assert.Equal(t, []string{"Amoxicillin", "Ampicillin", "Paracetamol"}, names(got))
}

func TestRankByNamePrefixBeatsAlphabeticalOrder(t *testing.T) {
	// "Insulin" starts with the term, "Aspirin" merely contains it; the
	// prefix match ranks first even though it sorts after alphabetically.
	meds := namedMedicines("Aspirin", "Insulin")

	got := RankByName(meds, "in")

	assert.Equal(t, []string{"Insulin", "Aspirin"}, names(got))
}

func TestRankByNameCaseInsensitive(t *testing.T) {
	meds := namedMedicines("PARACETAMOL", "ibuprofen")

	got := RankByName(meds, "Para")

	require.Len(t, got, 1)
	assert.Equal(t, "PARACETAMOL", got[0].Name)
}

func TestRankByNameNoMatches(t *testing.T) {
	meds := namedMedicines("Aspirin", "Ibuprofen")

	got := RankByName(meds, "zzz")

	// Empty but non-nil, so the result serializes as [].
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestRankByNameTruncatesToLimit(t *testing.T) {
	var meds []Medicine
	for i := 0; i < SearchLimit+5; i++ {
		meds = append(meds, Medicine{Name: fmt.Sprintf("Med %02d", i)})
	}

	assert.Len(t, RankByName(meds, ""), SearchLimit)
	assert.Len(t, RankByName(meds, "med"), SearchLimit)
}

func TestRankByNameSubstringTierFillsRemainder(t *testing.T) {
	var meds []Medicine
	for i := 0; i < 10; i++ {
		meds = append(meds, Medicine{Name: fmt.Sprintf("Amo %02d", i)})
	}
	for i := 0; i < 10; i++ {
		meds = append(meds, Medicine{Name: fmt.Sprintf("X amo %02d", i)})
	}

	got := RankByName(meds, "amo")

	require.Len(t, got, SearchLimit)
	for i := 0; i < 10; i++ {
		assert.Equal(t, fmt.Sprintf("Amo %02d", i), got[i].Name)
	}
	for i := 10; i < SearchLimit; i++ {
		assert.Equal(t, fmt.Sprintf("X amo %02d", i-10), got[i].Name)
	}
}

func TestSortMedicinesByName(t *testing.T) {
	meds := namedMedicines("c", "a", "b")

	SortMedicinesByName(meds)

	assert.Equal(t, []string{"a", "b", "c"}, names(meds))
}
