package lifter

import (
	"fmt"
	"strconv"
	"time"

	"github.com/goccy/go-json"
)

// Date is a calendar date without time of day or zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses an ISO calendar date (YYYY-MM-DD).
func ParseDate(s string) (d Date, err error) {
	var t time.Time
	t, err = time.Parse(time.DateOnly, s)
	if err != nil {
		return d, err
	}
	d = Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
	return d, err
}

// Time returns midnight UTC of the date.
func (d Date) Time() (t time.Time) {
	t = time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
	return t
}

func (d Date) String() (s string) {
	s = fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
	return s
}

// MarshalText renders the ISO form.
func (d Date) MarshalText() (text []byte, err error) {
	text = []byte(d.String())
	return text, err
}

// WeightClass is a bodyweight bracket. Open marks an "at or above Kg" class, written with a trailing "+".
type WeightClass struct {
	Kg   float64 `json:"kg"`
	Open bool    `json:"open"`
}

func (w WeightClass) String() (s string) {
	s = strconv.FormatFloat(w.Kg, 'f', -1, 64)
	if w.Open {
		s += "+"
	}
	return s
}

// Place is a meet outcome: a numeric rank, or one of the categorical kinds.
type Place struct {
	kind PlaceKind
	rank uint32
}

// Ranked returns a numeric placing.
func Ranked(rank uint32) (p Place) {
	p = Place{kind: PlaceRanked, rank: rank}
	return p
}

// Categorical returns a non-ranked outcome such as a disqualification.
func Categorical(kind PlaceKind) (p Place) {
	p = Place{kind: kind}
	return p
}

// Kind returns the outcome kind.
func (p Place) Kind() (kind PlaceKind) {
	kind = p.kind
	return kind
}

// Rank returns the numeric placing; ok is false for categorical outcomes.
func (p Place) Rank() (rank uint32, ok bool) {
	if p.kind != PlaceRanked {
		return rank, ok
	}
	rank = p.rank
	ok = true
	return rank, ok
}

func (p Place) String() (s string) {
	if rank, ok := p.Rank(); ok {
		s = strconv.FormatUint(uint64(rank), 10)
		return s
	}
	s = p.kind.String()
	return s
}

// MarshalJSON renders a rank as a number and a categorical outcome as its kind name.
func (p Place) MarshalJSON() (data []byte, err error) {
	if rank, ok := p.Rank(); ok {
		data, err = json.Marshal(rank)
		return data, err
	}
	data, err = json.Marshal(p.kind.String())
	return data, err
}

// Meet is one competition result.
//
// Meet is comparable: two meets are equal under == exactly when every field,
// including every attempt, matches.
type Meet struct {
	Event            Event                 `json:"event"`
	Equipment        Equipment             `json:"equipment"`
	Age              Optional[float64]     `json:"age"`
	AgeClass         Optional[string]      `json:"age_class"`
	BirthYearClass   Optional[string]      `json:"birth_year_class"`
	Division         Optional[Division]    `json:"division"`
	BodyweightKg     Optional[float64]     `json:"bodyweight_kg"`
	WeightClassKg    Optional[WeightClass] `json:"weight_class_kg"`
	Attempts         Attempts              `json:"attempts"`
	Place            Place                 `json:"place"`
	Dots             Optional[float64]     `json:"dots"`
	Wilks            Optional[float64]     `json:"wilks"`
	Glossbrenner     Optional[float64]     `json:"glossbrenner"`
	Goodlift         Optional[float64]     `json:"goodlift"`
	Tested           bool                  `json:"tested"`
	Country          Optional[string]      `json:"country"`
	State            Optional[string]      `json:"state"`
	Federation       string                `json:"federation"`
	ParentFederation Optional[string]      `json:"parent_federation"`
	Date             Date                  `json:"date"`
	MeetCountry      string                `json:"meet_country"`
	MeetState        Optional[string]      `json:"meet_state"`
	MeetTown         Optional[string]      `json:"meet_town"`
	MeetName         string                `json:"meet_name"`
}

func (m Meet) String() (s string) {
	s = fmt.Sprintf("%s: %s, %04d-%02d, Place: %s", m.Federation, m.MeetName, m.Date.Year, int(m.Date.Month), m.Place)
	return s
}
