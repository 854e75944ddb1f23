package annotate

import (
	"fmt"
	"regexp"
	"strings"
)

var nameRE = regexp.MustCompile(`^[_A-Za-z][_0-9A-Za-z]*$`)

// Coordinate addresses a schema element: "Type", "Type.member" (a field,
// input field or enum value) or "Type.field(arg:)".
type Coordinate struct {
	Type     string
	Member   string
	Argument string
}

// ParseCoordinate parses a schema coordinate.
func ParseCoordinate(s string) (Coordinate, error) {
	var c Coordinate
	typ, member, hasMember := strings.Cut(s, ".")
	c.Type = typ
	if hasMember {
		if field, rest, ok := strings.Cut(member, "("); ok {
			arg, found := strings.CutSuffix(rest, ":)")
			if !found {
				return Coordinate{}, fmt.Errorf("invalid coordinate %q", s)
			}
			member, c.Argument = field, arg
			if !nameRE.MatchString(arg) {
				return Coordinate{}, fmt.Errorf("invalid coordinate %q", s)
			}
		}
		c.Member = member
		if !nameRE.MatchString(member) {
			return Coordinate{}, fmt.Errorf("invalid coordinate %q", s)
		}
	}
	if !nameRE.MatchString(typ) {
		return Coordinate{}, fmt.Errorf("invalid coordinate %q", s)
	}
	return c, nil
}

func (c Coordinate) String() string {
	switch {
	case c.Argument != "":
		return c.Type + "." + c.Member + "(" + c.Argument + ":)"
	case c.Member != "":
		return c.Type + "." + c.Member
	default:
		return c.Type
	}
}
