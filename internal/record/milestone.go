package record

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Milestone is one scheduled discussion on a club's reading plan.
//
// Milestones are not records of their own: each one is serialized
// independently into a string element of the ClubMaterial.milestones
// array, and setMilestones replaces the whole array. Two moderators
// editing the schedule concurrently is last-write-wins; that is the
// documented policy, not a gap to patch with merge logic.
type Milestone struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Notes   string `json:"notes"`
	StartAt int64  `json:"startAt"`
}

// EncodeMilestones serializes each milestone into its own canonical JSON
// string, ready to store as the milestones array.
func EncodeMilestones(milestones []Milestone) ([]string, error) {
	out := make([]string, len(milestones))
	for i, m := range milestones {
		data, err := MarshalCanonical(map[string]any{
			"id":      m.ID,
			"title":   m.Title,
			"notes":   m.Notes,
			"startAt": m.StartAt,
		})
		if err != nil {
			return nil, fmt.Errorf("milestone %q: %w", m.ID, err)
		}
		out[i] = string(data)
	}
	return out, nil
}

// DecodeMilestones parses the stored milestones array back into typed
// milestones. StartAt tolerates being stored as a string - the original
// clients pushed both forms.
func DecodeMilestones(encoded []string) ([]Milestone, error) {
	out := make([]Milestone, 0, len(encoded))
	for i, raw := range encoded {
		dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
		dec.UseNumber()
		var fields map[string]any
		if err := dec.Decode(&fields); err != nil {
			return nil, fmt.Errorf("milestone [%d]: %w", i, err)
		}
		m := Milestone{}
		m.ID, _ = fields["id"].(string)
		m.Title, _ = fields["title"].(string)
		m.Notes, _ = fields["notes"].(string)
		switch startAt := fields["startAt"].(type) {
		case json.Number:
			n, err := startAt.Int64()
			if err != nil {
				return nil, fmt.Errorf("milestone [%d]: startAt %q: %w", i, startAt.String(), err)
			}
			m.StartAt = n
		case string:
			n, err := json.Number(startAt).Int64()
			if err != nil {
				return nil, fmt.Errorf("milestone [%d]: startAt %q: %w", i, startAt, err)
			}
			m.StartAt = n
		default:
			return nil, fmt.Errorf("milestone [%d]: startAt has type %T", i, fields["startAt"])
		}
		out = append(out, m)
	}
	return out, nil
}
