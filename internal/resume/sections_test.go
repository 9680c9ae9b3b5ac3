package resume

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsSectionComplete_EmptyExperienceTitle(t *testing.T) {
	doc := Document{Experience: []Experience{{Title: "", Organization: "Acme", DateRange: "2023"}}}
	assert.False(t, IsSectionComplete(doc, SectionExperience))

	doc.Experience = append(doc.Experience, Experience{Title: "  Analyst  "})
	assert.True(t, IsSectionComplete(doc, SectionExperience))
}

func TestHasContent_PrimaryFields(t *testing.T) {
	tests := []struct {
		name    string
		section Section
		doc     Document
		want    bool
	}{
		{"personal name", SectionPersonal, Document{Personal: Personal{Name: "Asha"}}, true},
		{"personal email only", SectionPersonal, Document{Personal: Personal{Email: "a@b.c"}}, false},
		{"profile url", SectionProfiles, Document{Personal: Personal{Profiles: []Profile{{URL: "https://x.y"}}}}, true},
		{"profile network only", SectionProfiles, Document{Personal: Personal{Profiles: []Profile{{Network: "GitHub"}}}}, false},
		{"summary blank", SectionSummary, Document{Summary: "   \n"}, false},
		{"summary", SectionSummary, Document{Summary: "Analyst"}, true},
		{"education school", SectionEducation, Document{Education: []Education{{School: "City College"}}}, true},
		{"education degree only", SectionEducation, Document{Education: []Education{{Degree: "B.Sc"}}}, false},
		{"skills commas only", SectionSkills, Document{Skills: " , ,"}, false},
		{"skills", SectionSkills, Document{Skills: "SQL, Excel"}, true},
		{"award title", SectionAwards, Document{Awards: []Award{{Title: "Dean's list"}}}, true},
		{"award issuer only", SectionAwards, Document{Awards: []Award{{Issuer: "Uni"}}}, false},
		{"volunteering role", SectionVolunteering, Document{Volunteering: []Volunteering{{Role: "Tutor"}}}, true},
		{"certification name", SectionCertifications, Document{Certifications: []Certification{{Name: "AWS CCP"}}}, true},
		{"certification issuer only", SectionCertifications, Document{Certifications: []Certification{{Issuer: "AWS"}}}, false},
		{"unknown", Section("hobbies"), Document{Summary: "x"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasContent(tt.doc, tt.section))
		})
	}
}

func TestRemoveEntry_Education(t *testing.T) {
	doc := Document{Education: []Education{{School: "First School"}}}
	doc, err := AppendEntry(doc, SectionEducation)
	require.NoError(t, err)
	doc.Education[1] = Education{School: "Second College", Degree: "B.Com", ScoreType: ScoreCGPA, ScoreValue: "8.1"}
	second := doc.Education[1]

	doc, err = RemoveEntry(doc, SectionEducation, 0)
	require.NoError(t, err)
	require.Len(t, doc.Education, 1)
	assert.Equal(t, second, doc.Education[0])
}

func TestRemoveEntry_PreservesOrder(t *testing.T) {
	base := Document{Experience: []Experience{{Title: "a"}, {Title: "b"}, {Title: "c"}, {Title: "d"}}}
	for i := range base.Experience {
		doc, err := RemoveEntry(base, SectionExperience, i)
		require.NoError(t, err)
		require.Len(t, doc.Experience, 3)

		var want []Experience
		want = append(want, base.Experience[:i]...)
		want = append(want, base.Experience[i+1:]...)
		assert.Equal(t, want, doc.Experience)
	}
	assert.Len(t, base.Experience, 4, "input document must not change")
}

func TestRemoveEntry_OutOfRange(t *testing.T) {
	doc := Document{Awards: []Award{{Title: "x"}}}
	for _, idx := range []int{-1, 1, 5} {
		_, err := RemoveEntry(doc, SectionAwards, idx)
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "index", ve.Field)
	}
}

func TestAppendEntry_EverySection(t *testing.T) {
	for _, s := range AllSections {
		t.Run(string(s), func(t *testing.T) {
			doc, err := AppendEntry(Document{}, s)
			if !s.Repeatable() {
				var ve *ValidationError
				assert.ErrorAs(t, err, &ve)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 1, EntryCount(doc, s))
			assert.False(t, HasContent(doc, s), "a blank entry has no content")

			doc, err = AppendEntry(doc, s)
			require.NoError(t, err)
			assert.Equal(t, 2, EntryCount(doc, s))
		})
	}
}

func TestSkillsEntries(t *testing.T) {
	doc := Document{Skills: "SQL, Excel, Power BI"}
	assert.Equal(t, 3, EntryCount(doc, SectionSkills))

	doc, err := AppendEntry(doc, SectionSkills)
	require.NoError(t, err)
	assert.Equal(t, 4, EntryCount(doc, SectionSkills))
	assert.Equal(t, []string{"SQL", "Excel", "Power BI"}, SkillItems(doc.Skills))

	doc, err = RemoveEntry(doc, SectionSkills, 1)
	require.NoError(t, err)
	assert.Equal(t, "SQL, Power BI, ", doc.Skills)
	assert.Equal(t, []string{"SQL", "Power BI"}, SkillItems(doc.Skills))
}

func TestSkillsEntries_RemoveKeepsBlankSlots(t *testing.T) {
	blank, err := AppendEntry(Document{}, SectionSkills)
	require.NoError(t, err)
	blank, err = AppendEntry(blank, SectionSkills)
	require.NoError(t, err)

	tests := []struct {
		name  string
		doc   Document
		index int
		want  int
	}{
		{"two blank slots", blank, 0, 1},
		{"filled then blank", Document{Skills: "SQL, "}, 0, 1},
		{"blank then filled", Document{Skills: " , SQL"}, 1, 1},
		{"three slots", Document{Skills: "SQL, , Excel"}, 2, 2},
		{"last slot", Document{Skills: " "}, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want+1, EntryCount(tt.doc, SectionSkills))
			got, err := RemoveEntry(tt.doc, SectionSkills, tt.index)
			require.NoError(t, err)
			assert.Equal(t, tt.want, EntryCount(got, SectionSkills), "skills=%q", got.Skills)
		})
	}
}

func TestParseSection(t *testing.T) {
	s, err := ParseSection(" Experience ")
	require.NoError(t, err)
	assert.Equal(t, SectionExperience, s)

	_, err = ParseSection("hobbies")
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}
