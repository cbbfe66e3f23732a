package outcome

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Outcome is one member of the closed set of bettable results
type Outcome byte

// Outcome constants
const (
	Red Outcome = iota
	Green
)

// NeutralColor is shown on the betting object while an outcome is undecided
const NeutralColor = "#ffffff"

// All returns every outcome in enumeration order
func All() []Outcome {
	return []Outcome{Red, Green}
}

// Valid returns true if o is a member of the enumeration
func (o Outcome) Valid() bool {
	return o <= Green
}

func (o Outcome) String() string {
	switch o {
	case Red:
		return "Red"
	case Green:
		return "Green"
	}

	return fmt.Sprintf("Outcome(%d)", byte(o))
}

// Color returns the hex color the outcome is displayed with
func (o Outcome) Color() string {
	switch o {
	case Red:
		return "#ff0000"
	case Green:
		return "#00ff00"
	}

	return NeutralColor
}

// FromString returns the outcome for a case-insensitive name
func FromString(s string) (Outcome, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "red":
		return Red, nil
	case "green":
		return Green, nil
	}

	return 0, fmt.Errorf("unknown outcome: %s", s)
}

type outcomeJSON struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// MarshalJSON encodes the JSON
func (o Outcome) MarshalJSON() ([]byte, error) {
	return json.Marshal(outcomeJSON{
		ID:   int(o),
		Name: o.String(),
	})
}

// UnmarshalJSON accepts either {"id":0,"name":"Red"} or a bare integer
func (o *Outcome) UnmarshalJSON(b []byte) error {
	var id int
	if err := json.Unmarshal(b, &id); err != nil {
		var obj outcomeJSON
		if err := json.Unmarshal(b, &obj); err != nil {
			return err
		}

		id = obj.ID
	}

	if id < 0 || !Outcome(id).Valid() {
		return fmt.Errorf("invalid outcome: %d", id)
	}

	*o = Outcome(id)
	return nil
}
