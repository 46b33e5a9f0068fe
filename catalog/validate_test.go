package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateTags(t *testing.T) {
	tags := map[string]*Tag{
		"portrait": {Name: "portrait", Prereqs: []string{"person"}},
		"sunset":   {Name: "sunset", Coreqs: []string{"sky"}, Incompatible: []string{"indoor"}},
		"person":   {Name: "person"},
		"indoor":   {Name: "indoor", Incompatible: []string{"sunset"}},
	}

	cases := []struct {
		name      string
		candidate []string
		valid     bool
		message   string
	}{
		{"empty", nil, true, ""},
		{"satisfied", []string{"portrait", "person"}, true, ""},
		{"missing prereq", []string{"portrait"}, false, "Missing prerequisite tag(s): person, "},
		{"missing coreq", []string{"sunset"}, false, "Missing corequisite tag(s): sky, "},
		{
			"every segment",
			[]string{"portrait", "sunset", "indoor"},
			false,
			"Missing prerequisite tag(s): person, Missing corequisite tag(s): sky, Incompatible tag(s) present: indoor, sunset, ",
		},
		{"unknown tags are skipped", []string{"whatever", "person"}, true, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := ValidateTags(tags, tc.candidate)
			assert.Equal(t, tc.valid, v.IsValid)
			assert.Equal(t, tc.message, v.Message)
		})
	}
}

func TestValidateTagsListsEachOffenderPerTag(t *testing.T) {
	tags := map[string]*Tag{
		"a": {Name: "a", Prereqs: []string{"x"}},
		"b": {Name: "b", Prereqs: []string{"x", "y"}},
	}
	v := ValidateTags(tags, []string{"a", "b"})
	assert.False(t, v.IsValid)
	assert.Equal(t, "Missing prerequisite tag(s): x, x, y, ", v.Message)
}
