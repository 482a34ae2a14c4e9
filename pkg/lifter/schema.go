package lifter

// ColumnCount is the number of fields in every row of a lifter CSV export.
const ColumnCount = 41

// Column indexes of the lifter CSV export.
const (
	ColName = iota
	ColSex
	ColEvent
	ColEquipment
	ColAge
	ColAgeClass
	ColBirthYearClass
	ColDivision
	ColBodyweight
	ColWeightClass
	ColSquat1
	ColSquat2
	ColSquat3
	ColSquat4
	ColBestSquat
	ColBench1
	ColBench2
	ColBench3
	ColBench4
	ColBestBench
	ColDeadlift1
	ColDeadlift2
	ColDeadlift3
	ColDeadlift4
	ColBestDeadlift
	ColTotal
	ColPlace
	ColDots
	ColWilks
	ColGlossbrenner
	ColGoodlift
	ColTested
	ColCountry
	ColState
	ColFederation
	ColParentFederation
	ColDate
	ColMeetCountry
	ColMeetState
	ColMeetTown
	ColMeetName
)

// Columns holds the export's header names, indexed by column.
//
//nolint:gochecknoglobals // schema table
var Columns = [ColumnCount]string{
	"Name", "Sex", "Event", "Equipment", "Age", "AgeClass", "BirthYearClass", "Division", "BodyweightKg", "WeightClassKg",
	"Squat1Kg", "Squat2Kg", "Squat3Kg", "Squat4Kg", "Best3SquatKg",
	"Bench1Kg", "Bench2Kg", "Bench3Kg", "Bench4Kg", "Best3BenchKg",
	"Deadlift1Kg", "Deadlift2Kg", "Deadlift3Kg", "Deadlift4Kg", "Best3DeadliftKg",
	"TotalKg", "Place", "Dots", "Wilks", "Glossbrenner", "Goodlift", "Tested",
	"Country", "State", "Federation", "ParentFederation", "Date", "MeetCountry", "MeetState", "MeetTown", "MeetName",
}

// AttemptsPerLift is the number of attempt columns per lift, including the fourth (record) attempt.
const AttemptsPerLift = 4

// columnRange is a half-open [start, end) span of columns.
type columnRange struct {
	start int
	end   int
}

// attemptColumns maps each lift to its attempt block. The best-of column that
// follows each block is not part of it.
//
//nolint:gochecknoglobals // schema table
var attemptColumns = [...]columnRange{
	Squat:    {start: ColSquat1, end: ColBestSquat},
	Bench:    {start: ColBench1, end: ColBestBench},
	Deadlift: {start: ColDeadlift1, end: ColBestDeadlift},
}

// AttemptColumns returns the source column indexes holding attempts 1..4 of lift.
func AttemptColumns(lift Lift) (cols []int) {
	r := attemptColumns[lift]
	cols = make([]int, 0, r.end-r.start)
	for c := r.start; c < r.end; c++ {
		cols = append(cols, c)
	}
	return cols
}
