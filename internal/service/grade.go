package service

// gradeBand maps an inclusive lower percentage bound to a letter grade.
type gradeBand struct {
	min    int
	letter string
}

// Bands are evaluated top-down; the first matching lower bound wins.
var gradeBands = []gradeBand{
	{97, "A+"},
	{93, "A"},
	{90, "A-"},
	{87, "B+"},
	{83, "B"},
	{80, "B-"},
	{77, "C+"},
	{73, "C"},
	{70, "C-"},
	{67, "D+"},
	{63, "D"},
	{60, "D-"},
}

// LetterGrade converts an integer percentage into a letter grade.
func LetterGrade(percentage int) string {
	for _, band := range gradeBands {
		if percentage >= band.min {
			return band.letter
		}
	}
	return "F"
}
