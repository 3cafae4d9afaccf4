package aocdata

import (
	"bufio"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Line prefixes for the answer log serialization format. Each line is a
// prefix character, a space, and the answer value.
const (
	correctAnswerPrefix = '='
	wrongAnswerPrefix   = 'X'
	lowBoundPrefix      = '['
	highBoundPrefix     = ']'
)

// AnswerLog records the submission history for one puzzle part: the correct
// answer once known, every rejected guess, and numeric bounds learned from
// too-low/too-high responses. It lets repeated submissions be resolved
// locally without contacting the service.
type AnswerLog struct {
	correct *Answer
	wrong   []Answer
	low     *int64
	high    *int64
}

// NewAnswerLog returns an empty answer log.
func NewAnswerLog() *AnswerLog {
	return &AnswerLog{}
}

// Correct returns the recorded correct answer, if any.
func (l *AnswerLog) Correct() (Answer, bool) {
	if l.correct == nil {
		return Answer{}, false
	}
	return *l.correct, true
}

// Wrong returns the recorded wrong answers.
func (l *AnswerLog) Wrong() []Answer { return l.wrong }

// Bounds returns the known low and high bounds; a nil pointer means the
// bound is unknown.
func (l *AnswerLog) Bounds() (low, high *int64) { return l.low, l.high }

// Empty reports whether the log records nothing.
func (l *AnswerLog) Empty() bool {
	return l.correct == nil && len(l.wrong) == 0 && l.low == nil && l.high == nil
}

// Check resolves an answer against the recorded history. The boolean is
// false when the history says nothing about the answer, in which case the
// caller should submit it to the service and record the response.
//
// Numeric answers at or below the low bound resolve to OutcomeTooLow, and at
// or above the high bound to OutcomeTooHigh. Answers matching a recorded
// wrong guess resolve to OutcomeIncorrect. When a correct answer is known,
// any answer resolves: OutcomeCorrect on a match, OutcomeIncorrect otherwise.
func (l *AnswerLog) Check(answer Answer) (OutcomeKind, bool) {
	if n, ok := answer.Int(); ok {
		if l.low != nil && n <= *l.low {
			return OutcomeTooLow, true
		}
		if l.high != nil && n >= *l.high {
			return OutcomeTooHigh, true
		}
	}
	for _, w := range l.wrong {
		if w.Equal(answer) {
			return OutcomeIncorrect, true
		}
	}
	if l.correct != nil {
		if l.correct.Equal(answer) {
			return OutcomeCorrect, true
		}
		return OutcomeIncorrect, true
	}
	return OutcomeUnknown, false
}

// SetCorrect records the correct answer for this part.
func (l *AnswerLog) SetCorrect(answer Answer) {
	l.correct = &answer
}

// AddWrong records a rejected guess. Duplicates are ignored.
func (l *AnswerLog) AddWrong(answer Answer) {
	for _, w := range l.wrong {
		if w.Equal(answer) {
			return
		}
	}
	l.wrong = append(l.wrong, answer)
}

// RaiseLowBound records that answers at or below the value are too low. An
// existing tighter bound is kept.
func (l *AnswerLog) RaiseLowBound(v int64) {
	if l.low == nil || v > *l.low {
		l.low = &v
	}
}

// LowerHighBound records that answers at or above the value are too high. An
// existing tighter bound is kept.
func (l *AnswerLog) LowerHighBound(v int64) {
	if l.high == nil || v < *l.high {
		l.high = &v
	}
}

// Encode serializes the log to its line-oriented text form. Wrong answers
// are sorted so the output is stable for version control diffs.
func (l *AnswerLog) Encode() string {
	var sb strings.Builder

	writeLine := func(prefix rune, value string) {
		sb.WriteRune(prefix)
		sb.WriteByte(' ')
		sb.WriteString(value)
		sb.WriteByte('\n')
	}

	if l.correct != nil {
		writeLine(correctAnswerPrefix, l.correct.String())
	}
	if l.low != nil {
		writeLine(lowBoundPrefix, strconv.FormatInt(*l.low, 10))
	}
	if l.high != nil {
		writeLine(highBoundPrefix, strconv.FormatInt(*l.high, 10))
	}

	wrong := make([]string, 0, len(l.wrong))
	for _, w := range l.wrong {
		wrong = append(wrong, w.String())
	}
	sort.Strings(wrong)
	for _, w := range wrong {
		writeLine(wrongAnswerPrefix, w)
	}
	return sb.String()
}

// DecodeAnswerLog parses the line-oriented text form produced by Encode.
func DecodeAnswerLog(text string) (*AnswerLog, error) {
	log := NewAnswerLog()

	sc := bufio.NewScanner(strings.NewReader(text))
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		prefix, value, found := strings.Cut(line, " ")
		if !found || len(prefix) != 1 {
			return nil, fmt.Errorf("malformed answer log line %q", line)
		}

		switch rune(prefix[0]) {
		case correctAnswerPrefix:
			log.SetCorrect(ParseAnswer(value))
		case wrongAnswerPrefix:
			log.AddWrong(ParseAnswer(value))
		case lowBoundPrefix:
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("low bound must be an integer: %w", err)
			}
			log.RaiseLowBound(n)
		case highBoundPrefix:
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("high bound must be an integer: %w", err)
			}
			log.LowerHighBound(n)
		default:
			return nil, fmt.Errorf("unknown answer log entry type %q", prefix)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read answer log: %w", err)
	}
	return log, nil
}
