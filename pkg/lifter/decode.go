package lifter

import (
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const (
	openClassMarker  = "+"
	testedFieldValue = "Yes"
)

var (
	errNotNumber   = errors.New("not a finite number")
	errUnknownCode = errors.New("unrecognized code")
	errRequired    = errors.New("required field is empty")
	errWeightClass = errors.New("weight class must be a positive number")
	errBadDate     = errors.New("not an ISO calendar date")
	errFieldCount  = errors.New("unexpected field count")
)

// rowDecoder reads typed values out of one export row. The first failure
// sticks; later reads return zero values and leave it in place.
type rowDecoder struct {
	fields []string
	err    error
}

func (d *rowDecoder) fail(col int, cause error) {
	if d.err != nil {
		return
	}
	d.err = errors.WithStack(&FieldError{Column: col, Value: d.fields[col], Err: cause})
}

func (d *rowDecoder) text(col int) (v Optional[string]) {
	if s := d.fields[col]; s != "" {
		v = Some(s)
	}
	return v
}

func (d *rowDecoder) required(col int) (s string) {
	s = d.fields[col]
	if s == "" {
		d.fail(col, errRequired)
	}
	return s
}

func (d *rowDecoder) number(col int) (v Optional[float64]) {
	s := d.fields[col]
	if s == "" {
		return v
	}
	f, ok := parseDecimal(s, true)
	if !ok {
		d.fail(col, errNotNumber)
		return v
	}
	v = Some(f)
	return v
}

// parseDecimal accepts only plain decimal notation: an optional sign, digits
// with an optional fraction and, when exponent is set, an optional e/E
// exponent. Hex floats, digit separators, NaN and Inf are rejected.
func parseDecimal(s string, exponent bool) (f float64, ok bool) {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for ; i < len(s) && isDigit(s[i]); i++ {
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for ; i < len(s) && isDigit(s[i]); i++ {
			digits++
		}
	}
	if digits == 0 {
		return f, ok
	}
	if exponent && i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		expDigits := 0
		for ; i < len(s) && isDigit(s[i]); i++ {
			expDigits++
		}
		if expDigits == 0 {
			return f, ok
		}
	}
	if i != len(s) {
		return f, ok
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return f, ok
	}
	ok = true
	return f, ok
}

func isDigit(c byte) (digit bool) {
	digit = c >= '0' && c <= '9'
	return digit
}

func (d *rowDecoder) attempts(lift Lift) (seq [AttemptsPerLift]Optional[float64]) {
	r := attemptColumns[lift]
	for i := range seq {
		seq[i] = d.number(r.start + i)
	}
	return seq
}

func (d *rowDecoder) sex() (sex Sex) {
	sex, ok := ParseSex(d.fields[ColSex])
	if !ok {
		d.fail(ColSex, errUnknownCode)
	}
	return sex
}

func (d *rowDecoder) event() (event Event) {
	event, ok := ParseEvent(d.fields[ColEvent])
	if !ok {
		d.fail(ColEvent, errUnknownCode)
	}
	return event
}

func (d *rowDecoder) equipment() (equipment Equipment) {
	equipment, ok := ParseEquipment(d.fields[ColEquipment])
	if !ok {
		d.fail(ColEquipment, errUnknownCode)
	}
	return equipment
}

// division never fails: an unknown or empty label means no division.
func (d *rowDecoder) division() (div Optional[Division]) {
	if v, ok := ParseDivision(d.fields[ColDivision]); ok {
		div = Some(v)
	}
	return div
}

func (d *rowDecoder) weightClass() (wc Optional[WeightClass]) {
	s := d.fields[ColWeightClass]
	if s == "" {
		return wc
	}
	num, open := strings.CutSuffix(s, openClassMarker)
	// Classes are written as plain kilograms; no exponent form.
	kg, ok := parseDecimal(num, false)
	if !ok || kg <= 0 {
		d.fail(ColWeightClass, errWeightClass)
		return wc
	}
	wc = Some(WeightClass{Kg: kg, Open: open})
	return wc
}

// place tries a positive integer rank first, then the categorical codes.
func (d *rowDecoder) place() (p Place) {
	s := d.fields[ColPlace]
	if rank, err := strconv.ParseUint(s, 10, 32); err == nil && rank > 0 {
		p = Ranked(uint32(rank))
		return p
	}
	kind, ok := ParsePlaceCode(s)
	if !ok {
		d.fail(ColPlace, errUnknownCode)
		return p
	}
	p = Categorical(kind)
	return p
}

func (d *rowDecoder) date() (date Date) {
	date, err := ParseDate(d.fields[ColDate])
	if err != nil {
		d.fail(ColDate, errBadDate)
	}
	return date
}

// DecodeRow turns one 41-field export row into a Meet. Any failure is a
// *FieldError matching ErrDecode.
func DecodeRow(fields []string) (meet Meet, err error) {
	if len(fields) != ColumnCount {
		err = errors.Wrapf(ErrDecode, "%v: got %d, want %d", errFieldCount, len(fields), ColumnCount)
		return meet, err
	}

	d := &rowDecoder{fields: fields}

	// Sex is not stored on Meet but must still be a known code.
	_ = d.sex()

	meet = Meet{
		Event:          d.event(),
		Equipment:      d.equipment(),
		Age:            d.number(ColAge),
		AgeClass:       d.text(ColAgeClass),
		BirthYearClass: d.text(ColBirthYearClass),
		Division:       d.division(),
		BodyweightKg:   d.number(ColBodyweight),
		WeightClassKg:  d.weightClass(),
		Attempts: Attempts{
			Squat:    d.attempts(Squat),
			Bench:    d.attempts(Bench),
			Deadlift: d.attempts(Deadlift),
		},
		Place:            d.place(),
		Dots:             d.number(ColDots),
		Wilks:            d.number(ColWilks),
		Glossbrenner:     d.number(ColGlossbrenner),
		Goodlift:         d.number(ColGoodlift),
		Tested:           fields[ColTested] == testedFieldValue,
		Country:          d.text(ColCountry),
		State:            d.text(ColState),
		Federation:       d.required(ColFederation),
		ParentFederation: d.text(ColParentFederation),
		Date:             d.date(),
		MeetCountry:      d.required(ColMeetCountry),
		MeetState:        d.text(ColMeetState),
		MeetTown:         d.text(ColMeetTown),
		MeetName:         d.required(ColMeetName),
	}

	if d.err != nil {
		err = d.err
		meet = Meet{}
		return meet, err
	}

	return meet, err
}
