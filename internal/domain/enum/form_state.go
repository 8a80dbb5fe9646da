package enum

import (
	"encoding/json"
	"fmt"
)

// FormState is the state of a billing form session
type FormState int

const (
	FormStateEditing   FormState = 0
	FormStateSubmitted FormState = 1
)

func (s FormState) String() string {
	switch s {
	case FormStateEditing:
		return "Editing"
	case FormStateSubmitted:
		return "Submitted"
	default:
		return fmt.Sprintf("FormState(%d)", int(s))
	}
}

func (s FormState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *FormState) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		// Try unmarshaling as int
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = FormState(i)
		return nil
	}
	switch str {
	case "Editing":
		*s = FormStateEditing
	case "Submitted":
		*s = FormStateSubmitted
	default:
		return fmt.Errorf("unknown form state %q", str)
	}
	return nil
}
