package catalog

import "strings"

// Validation is the outcome of checking a tag set against tag relations.
type Validation struct {
	IsValid bool   `json:"is_valid"`
	Message string `json:"message"`
}

// ValidateTags checks every known tag of candidate against its prerequisites,
// corequisites and incompatibilities. Tags missing from the tag map are
// skipped. Each offending name is listed followed by ", " under its segment.
func ValidateTags(tags map[string]*Tag, candidate []string) Validation {
	if len(candidate) == 0 {
		return Validation{IsValid: true}
	}

	var missingPrereqs, missingCoreqs, incompatibles strings.Builder
	for _, name := range candidate {
		tag, ok := tags[name]
		if !ok {
			continue
		}
		for _, prereq := range tag.Prereqs {
			if !contains(candidate, prereq) {
				missingPrereqs.WriteString(prereq + ", ")
			}
		}
		for _, coreq := range tag.Coreqs {
			if !contains(candidate, coreq) {
				missingCoreqs.WriteString(coreq + ", ")
			}
		}
		for _, other := range tag.Incompatible {
			if contains(candidate, other) {
				incompatibles.WriteString(other + ", ")
			}
		}
	}

	var msg strings.Builder
	if missingPrereqs.Len() > 0 {
		msg.WriteString("Missing prerequisite tag(s): " + missingPrereqs.String())
	}
	if missingCoreqs.Len() > 0 {
		msg.WriteString("Missing corequisite tag(s): " + missingCoreqs.String())
	}
	if incompatibles.Len() > 0 {
		msg.WriteString("Incompatible tag(s) present: " + incompatibles.String())
	}
	return Validation{IsValid: msg.Len() == 0, Message: msg.String()}
}

// validatePhoto refreshes the derived validation fields. Caller holds tagsMu.
func (l *Library) validatePhoto(p *Photo) {
	v := ValidateTags(l.tags, p.Tags)
	p.ValidTags = v.IsValid
	p.ValidationMsg = v.Message
}
