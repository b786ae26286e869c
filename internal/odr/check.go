package odr

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/oxhq/cppscan/internal/diagnostics"
)

// Record persists one translation unit's class observations under
// runID, assigning a fresh ID to any record that doesn't already have
// one.
func (s *Store) Record(runID string, records []ClassRecord) error {
	if len(records) == 0 {
		return nil
	}
	for i := range records {
		records[i].RunID = runID
		if records[i].ID == "" {
			records[i].ID = uuid.NewString()
		}
	}
	if err := s.db.Create(&records).Error; err != nil {
		return fmt.Errorf("odr: recording class observations: %w", err)
	}
	return nil
}

// Violation is one class name whose recorded observations disagree on
// content hash — the same name defined with two different bodies.
type Violation struct {
	ClassName string
	Locations []ClassRecord
}

// Violations compares every class_records row under runID (every row
// ever recorded, if runID is empty) and reports each class name whose
// observations disagree on content hash, per spec.md §8 scenario 6.
func (s *Store) Violations(runID string) ([]Violation, error) {
	q := s.db.Model(&ClassRecord{})
	if runID != "" {
		q = q.Where("run_id = ?", runID)
	}

	var records []ClassRecord
	if err := q.Order("class_name, file, line").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("odr: querying class records: %w", err)
	}

	byName := make(map[string][]ClassRecord)
	for _, r := range records {
		byName[r.ClassName] = append(byName[r.ClassName], r)
	}

	var out []Violation
	for name, group := range byName {
		if len(group) < 2 {
			continue
		}
		hash := group[0].ContentHash
		mismatched := false
		for _, r := range group[1:] {
			if r.ContentHash != hash {
				mismatched = true
				break
			}
		}
		if mismatched {
			out = append(out, Violation{ClassName: name, Locations: group})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClassName < out[j].ClassName })
	return out, nil
}

// Diagnostic renders a Violation as a ctuOneDefinitionRuleViolation
// finding whose error path lists every disagreeing location, the way
// spec.md §8 scenario 6 requires both TUs' locations in the path.
func (v Violation) Diagnostic() diagnostics.Diagnostic {
	path := make([]diagnostics.PathStep, 0, len(v.Locations))
	for i, loc := range v.Locations {
		msg := fmt.Sprintf("class %q defined here (hash %s)", loc.ClassName, loc.ContentHash[:12])
		if i > 0 {
			if diff := diffMembers(v.Locations[0].Members, loc.Members); diff != "" {
				msg += "; differs from first definition in: " + diff
			}
		}
		path = append(path, diagnostics.PathStep{
			Location: diagnostics.Location{File: loc.File, Line: loc.Line, Column: loc.Column},
			Message:  msg,
		})
	}
	primary := diagnostics.Location{}
	if len(v.Locations) > 0 {
		primary = diagnostics.Location{File: v.Locations[0].File, Line: v.Locations[0].Line, Column: v.Locations[0].Column}
	}
	return diagnostics.Diagnostic{
		ID:        "ctuOneDefinitionRuleViolation",
		Severity:  diagnostics.SeverityWarning,
		Certainty: diagnostics.CertaintyNormal,
		CWE:       758, // Reliance on Undefined/Unspecified Behavior
		Message:   fmt.Sprintf("%q is defined differently in %d translation units", v.ClassName, len(v.Locations)),
		Primary:   primary,
		ErrorPath: path,
	}
}

// diffMembers compares two recorded member-JSON blobs and names every
// field whose type changed or that only one side declares. Returns ""
// if either side failed to decode (older records with no Members
// column, or plain structs with no members to compare).
func diffMembers(a, b []byte) string {
	var left, right []Member
	if json.Unmarshal(a, &left) != nil || json.Unmarshal(b, &right) != nil {
		return ""
	}
	rightByName := make(map[string]string, len(right))
	for _, m := range right {
		rightByName[m.Name] = m.Type
	}

	var changed []string
	seen := make(map[string]bool, len(left))
	for _, m := range left {
		seen[m.Name] = true
		if rt, ok := rightByName[m.Name]; !ok {
			changed = append(changed, m.Name+" (removed)")
		} else if rt != m.Type {
			changed = append(changed, fmt.Sprintf("%s (%s -> %s)", m.Name, m.Type, rt))
		}
	}
	for _, m := range right {
		if !seen[m.Name] {
			changed = append(changed, m.Name+" (added)")
		}
	}
	sort.Strings(changed)
	return strings.Join(changed, ", ")
}
