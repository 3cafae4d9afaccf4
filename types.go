package aocdata

import (
	"fmt"
	"strconv"
	"time"
)

// Year is an Advent of Code event year. The first event ran in 2015.
type Year int

// Valid reports whether the year is one in which an event could exist.
func (y Year) Valid() bool { return y >= 2015 }

func (y Year) String() string { return strconv.Itoa(int(y)) }

// Day is a puzzle day within an event, in the range 1-25.
type Day int

// Valid reports whether the day is within the event calendar.
func (d Day) Valid() bool { return d >= 1 && d <= 25 }

func (d Day) String() string { return strconv.Itoa(int(d)) }

// Part selects one of the two parts of a day's puzzle.
type Part int

const (
	PartOne Part = 1
	PartTwo Part = 2
)

// Valid reports whether the part is one or two.
func (p Part) Valid() bool { return p == PartOne || p == PartTwo }

func (p Part) String() string { return strconv.Itoa(int(p)) }

// validateKey checks that (year, day) address a real puzzle.
func validateKey(year Year, day Day) error {
	if !year.Valid() {
		return fmt.Errorf("invalid puzzle year %d: years start at 2015", int(year))
	}
	if !day.Valid() {
		return fmt.Errorf("invalid puzzle day %d: days are 1-25", int(day))
	}
	return nil
}

// Answer is a puzzle answer holding either a string or an integer value.
// Integer answers participate in too-low/too-high bounds checking.
type Answer struct {
	text  string
	num   int64
	isNum bool
}

// ParseAnswer builds an Answer from text, detecting integer values.
func ParseAnswer(s string) Answer {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return IntAnswer(n)
	}
	return StringAnswer(s)
}

// IntAnswer builds an integer Answer.
func IntAnswer(v int64) Answer {
	return Answer{num: v, isNum: true}
}

// StringAnswer builds a string Answer.
func StringAnswer(s string) Answer {
	return Answer{text: s}
}

// Int returns the integer value of the answer, if it has one.
func (a Answer) Int() (int64, bool) {
	return a.num, a.isNum
}

func (a Answer) String() string {
	if a.isNum {
		return strconv.FormatInt(a.num, 10)
	}
	return a.text
}

// Equal compares two answers by their canonical text form, so IntAnswer(7)
// equals ParseAnswer("7").
func (a Answer) Equal(b Answer) bool {
	return a.String() == b.String()
}

// OutcomeKind enumerates the possible results of submitting an answer.
type OutcomeKind int

const (
	// OutcomeUnknown is returned when the service response matched no known
	// marker. The raw response text is preserved on the Outcome.
	OutcomeUnknown OutcomeKind = iota
	// OutcomeCorrect means the answer was accepted.
	OutcomeCorrect
	// OutcomeIncorrect means the answer was rejected.
	OutcomeIncorrect
	// OutcomeTooLow means the answer was rejected and is below the solution.
	OutcomeTooLow
	// OutcomeTooHigh means the answer was rejected and is above the solution.
	OutcomeTooHigh
	// OutcomeAlreadySolved means a correct answer was submitted previously.
	OutcomeAlreadySolved
	// OutcomeTooRecent means the service refused the submission because too
	// little time has passed since the last guess. RetryAfter carries the wait.
	OutcomeTooRecent
	// OutcomeWrongLevel means the wrong puzzle part was targeted, for example
	// part two before part one was solved.
	OutcomeWrongLevel
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeCorrect:
		return "correct"
	case OutcomeIncorrect:
		return "incorrect"
	case OutcomeTooLow:
		return "too_low"
	case OutcomeTooHigh:
		return "too_high"
	case OutcomeAlreadySolved:
		return "already_solved"
	case OutcomeTooRecent:
		return "too_recent"
	case OutcomeWrongLevel:
		return "wrong_level"
	default:
		return "unknown"
	}
}

// Outcome is the classified result of an answer submission.
type Outcome struct {
	Kind OutcomeKind
	// RetryAfter is nonzero when the service imposed a wait before the next
	// submission. It is always set for OutcomeTooRecent.
	RetryAfter time.Duration
	// Raw holds the unrecognized response text for OutcomeUnknown.
	Raw string
}

// Incorrect reports whether the outcome is any flavor of wrong answer.
func (o Outcome) Incorrect() bool {
	return o.Kind == OutcomeIncorrect || o.Kind == OutcomeTooLow || o.Kind == OutcomeTooHigh
}
