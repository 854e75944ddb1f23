package annotate

import "fmt"

// Violation describes one annotation that could not be applied.
type Violation struct {
	Coordinate string
	Message    string
}

// Error collects every violation found while loading or applying a Set.
type Error []*Violation

func (e Error) Error() string {
	msg := "annotation violations found:\n"
	for _, v := range e {
		if v.Coordinate != "" {
			msg += fmt.Sprintf("- %s: %s\n", v.Coordinate, v.Message)
		} else {
			msg += "- " + v.Message + "\n"
		}
	}
	return msg
}

func (e *Error) add(coord, format string, args ...any) {
	*e = append(*e, &Violation{Coordinate: coord, Message: fmt.Sprintf(format, args...)})
}

func (e Error) errOrNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}
