package lifter

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// Athlete is a lifter and the set of their meet results. It is built once by
// NewAthlete and never changes afterward.
type Athlete struct {
	FullName   string
	Identifier string
	Sex        Sex
	meets      []Meet
}

// NewAthlete decodes every row and assembles the athlete. Name and sex come
// from the first row. Structurally identical meets collapse to one, keeping
// first-seen order. A single bad row fails the whole athlete.
func NewAthlete(identifier string, rows [][]string) (athlete Athlete, err error) {
	if len(rows) == 0 {
		err = errors.Wrapf(ErrNoRows, "athlete %s", identifier)
		return athlete, err
	}

	first := rows[0]
	if len(first) != ColumnCount {
		err = errors.Wrapf(ErrDecode, "row 1: %v: got %d, want %d", errFieldCount, len(first), ColumnCount)
		return athlete, err
	}

	sex, ok := ParseSex(first[ColSex])
	if !ok {
		err = errors.WithStack(&FieldError{Column: ColSex, Value: first[ColSex], Err: errUnknownCode})
		return athlete, err
	}

	seen := make(map[Meet]struct{}, len(rows))
	meets := make([]Meet, 0, len(rows))
	for i, row := range rows {
		var meet Meet
		meet, err = DecodeRow(row)
		if err != nil {
			err = errors.Wrapf(err, "row %d", i+1)
			return athlete, err
		}
		if _, dup := seen[meet]; dup {
			continue
		}
		seen[meet] = struct{}{}
		meets = append(meets, meet)
	}

	athlete = Athlete{
		FullName:   first[ColName],
		Identifier: identifier,
		Sex:        sex,
		meets:      meets,
	}

	return athlete, err
}

// Meets returns a copy of the athlete's distinct meets.
func (a Athlete) Meets() (meets []Meet) {
	meets = make([]Meet, len(a.meets))
	copy(meets, a.meets)
	return meets
}

// MeetCount returns the number of distinct meets.
func (a Athlete) MeetCount() (n int) {
	n = len(a.meets)
	return n
}

// Contains reports whether a structurally equal meet is in the set.
func (a Athlete) Contains(m Meet) (found bool) {
	for _, candidate := range a.meets {
		if candidate == m {
			found = true
			return found
		}
	}
	return found
}

func (a Athlete) String() (s string) {
	s = fmt.Sprintf("%s, %d Meets", a.FullName, len(a.meets))
	return s
}

type athleteJSON struct {
	FullName   string `json:"full_name"`
	Identifier string `json:"identifier"`
	Sex        Sex    `json:"sex"`
	Meets      []Meet `json:"meets"`
}

// MarshalJSON exposes the meet set as an array.
func (a Athlete) MarshalJSON() (data []byte, err error) {
	data, err = json.Marshal(athleteJSON{
		FullName:   a.FullName,
		Identifier: a.Identifier,
		Sex:        a.Sex,
		Meets:      a.meets,
	})
	return data, err
}
