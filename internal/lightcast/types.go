package lightcast

import "encoding/json"

// Skill is one search hit from the Lightcast skills endpoint.
type Skill struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     Label  `json:"type"`
	Category Label  `json:"category"`
}

type searchResponse struct {
	Data []Skill `json:"data"`
}

// Label can arrive as:
// - "Specialized Skill" (string)
// - {"id": "ST1", "name": "Specialized Skill"} (obj)
// - null
type Label string

func (l *Label) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		*l = ""
		return nil
	}

	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*l = Label(s)
		return nil
	}

	if b[0] == '{' {
		var m map[string]any
		if err := json.Unmarshal(b, &m); err != nil {
			return err
		}
		for _, k := range []string{"name", "title", "id"} {
			if s, ok := m[k].(string); ok {
				*l = Label(s)
				return nil
			}
		}
	}

	*l = ""
	return nil
}
