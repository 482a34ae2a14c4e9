package lifter

// Sex is the lifter's competition category.
type Sex int

const (
	// SexMale is coded "M".
	SexMale Sex = iota + 1
	// SexFemale is coded "F".
	SexFemale
	// SexMixed is coded "Mx".
	SexMixed
)

// Event is the combination of lifts contested.
type Event int

// Events as published in the export.
const (
	EventSBD Event = iota + 1
	EventBD
	EventSD
	EventSB
	EventS
	EventB
	EventD
)

// Equipment is the supportive gear class.
type Equipment int

// Equipment classes.
const (
	EquipmentRaw Equipment = iota + 1
	EquipmentWraps
	EquipmentSinglePly
	EquipmentMultiPly
	EquipmentUnlimited
	EquipmentStraps
)

// Division is an age division. Many federations leave it blank, so Meet carries it as Optional.
type Division int

// Divisions.
const (
	DivisionSubJunior Division = iota + 1
	DivisionJunior
	DivisionSenior
	DivisionMasters1
	DivisionMasters2
	DivisionMasters3
	DivisionMasters4
)

// PlaceKind distinguishes a numeric rank from the categorical outcomes.
type PlaceKind int

// Place kinds.
const (
	PlaceRanked PlaceKind = iota + 1
	PlaceGuest
	PlaceDisqualified
	PlaceDopingDisqualification
	PlaceNoShow
)

// Lift selects one of the three contested lifts.
type Lift int

// Lifts.
const (
	Squat Lift = iota
	Bench
	Deadlift
)

//nolint:gochecknoglobals // static code tables
var (
	sexCodes = map[string]Sex{
		"M":  SexMale,
		"F":  SexFemale,
		"Mx": SexMixed,
	}

	eventCodes = map[string]Event{
		"SBD": EventSBD,
		"BD":  EventBD,
		"SD":  EventSD,
		"SB":  EventSB,
		"S":   EventS,
		"B":   EventB,
		"D":   EventD,
	}

	equipmentCodes = map[string]Equipment{
		"Raw":        EquipmentRaw,
		"Wraps":      EquipmentWraps,
		"Single-ply": EquipmentSinglePly,
		"Multi-ply":  EquipmentMultiPly,
		"Unlimited":  EquipmentUnlimited,
		"Straps":     EquipmentStraps,
	}

	divisionLabels = map[string]Division{
		"Sub-Juniors": DivisionSubJunior,
		"Juniors":     DivisionJunior,
		"Seniors":     DivisionSenior,
		"Masters 1":   DivisionMasters1,
		"Masters 2":   DivisionMasters2,
		"Masters 3":   DivisionMasters3,
		"Masters 4":   DivisionMasters4,
	}

	placeCodes = map[string]PlaceKind{
		"G":  PlaceGuest,
		"DQ": PlaceDisqualified,
		"DD": PlaceDopingDisqualification,
		"NS": PlaceNoShow,
	}

	liftNames = [...]string{"Squat", "Bench", "Deadlift"}
)

// ParseSex maps a source sex code.
func ParseSex(code string) (sex Sex, ok bool) {
	sex, ok = sexCodes[code]
	return sex, ok
}

// ParseEvent maps a source event code.
func ParseEvent(code string) (event Event, ok bool) {
	event, ok = eventCodes[code]
	return event, ok
}

// ParseEquipment maps a source equipment code.
func ParseEquipment(code string) (equipment Equipment, ok bool) {
	equipment, ok = equipmentCodes[code]
	return equipment, ok
}

// ParseDivision maps a division label. Unknown and empty labels report false.
func ParseDivision(label string) (division Division, ok bool) {
	division, ok = divisionLabels[label]
	return division, ok
}

// ParsePlaceCode maps a categorical place code (G, DQ, DD, NS).
func ParsePlaceCode(code string) (kind PlaceKind, ok bool) {
	kind, ok = placeCodes[code]
	return kind, ok
}

func (s Sex) String() (code string) {
	code = reverseLookup(sexCodes, s)
	return code
}

func (e Event) String() (code string) {
	code = reverseLookup(eventCodes, e)
	return code
}

func (e Equipment) String() (code string) {
	code = reverseLookup(equipmentCodes, e)
	return code
}

func (d Division) String() (label string) {
	label = reverseLookup(divisionLabels, d)
	return label
}

func (k PlaceKind) String() (name string) {
	switch k {
	case PlaceRanked:
		name = "Ranked"
	case PlaceGuest:
		name = "Guest"
	case PlaceDisqualified:
		name = "Disqualified"
	case PlaceDopingDisqualification:
		name = "DopingDisqualification"
	case PlaceNoShow:
		name = "NoShow"
	default:
		name = "unknown"
	}
	return name
}

func (l Lift) String() (name string) {
	if l < Squat || l > Deadlift {
		name = "unknown"
		return name
	}
	name = liftNames[l]
	return name
}

// MarshalText renders the source code.
func (s Sex) MarshalText() (text []byte, err error) {
	text = []byte(s.String())
	return text, err
}

// MarshalText renders the source code.
func (e Event) MarshalText() (text []byte, err error) {
	text = []byte(e.String())
	return text, err
}

// MarshalText renders the source code.
func (e Equipment) MarshalText() (text []byte, err error) {
	text = []byte(e.String())
	return text, err
}

// MarshalText renders the source label.
func (d Division) MarshalText() (text []byte, err error) {
	text = []byte(d.String())
	return text, err
}

func reverseLookup[V comparable](table map[string]V, v V) (code string) {
	for k, candidate := range table {
		if candidate == v {
			code = k
			return code
		}
	}
	code = "unknown"
	return code
}
