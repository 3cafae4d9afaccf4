package aocdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAnswer(t *testing.T) {
	a := ParseAnswer("-5713")
	n, ok := a.Int()
	require.True(t, ok)
	assert.Equal(t, int64(-5713), n)

	a = ParseAnswer("testing 123")
	_, ok = a.Int()
	assert.False(t, ok)
	assert.Equal(t, "testing 123", a.String())

	assert.True(t, IntAnswer(7).Equal(ParseAnswer("7")))
	assert.False(t, IntAnswer(7).Equal(ParseAnswer("8")))
}

func TestAnswerLogCheckCorrectAndWrong(t *testing.T) {
	log := NewAnswerLog()
	_, ok := log.Check(StringAnswer("hello"))
	assert.False(t, ok)

	log.SetCorrect(StringAnswer("hello"))
	log.AddWrong(StringAnswer("abc"))
	log.AddWrong(StringAnswer("stop"))

	kind, ok := log.Check(StringAnswer("hello"))
	require.True(t, ok)
	assert.Equal(t, OutcomeCorrect, kind)

	kind, ok = log.Check(StringAnswer("abc"))
	require.True(t, ok)
	assert.Equal(t, OutcomeIncorrect, kind)

	// Any answer resolves once the correct one is known.
	kind, ok = log.Check(StringAnswer("maybe"))
	require.True(t, ok)
	assert.Equal(t, OutcomeIncorrect, kind)
}

func TestAnswerLogBounds(t *testing.T) {
	log := NewAnswerLog()

	log.RaiseLowBound(90)

	kind, ok := log.Check(IntAnswer(85))
	require.True(t, ok)
	assert.Equal(t, OutcomeTooLow, kind)

	kind, ok = log.Check(IntAnswer(90))
	require.True(t, ok)
	assert.Equal(t, OutcomeTooLow, kind)

	_, ok = log.Check(IntAnswer(100))
	assert.False(t, ok)

	log.LowerHighBound(110)
	kind, ok = log.Check(IntAnswer(115))
	require.True(t, ok)
	assert.Equal(t, OutcomeTooHigh, kind)

	// Non-numeric answers ignore bounds.
	_, ok = log.Check(StringAnswer("xyz"))
	assert.False(t, ok)
}

func TestAnswerLogBoundsKeepTightest(t *testing.T) {
	log := NewAnswerLog()

	log.RaiseLowBound(4)
	log.RaiseLowBound(-2)
	low, _ := log.Bounds()
	require.NotNil(t, low)
	assert.Equal(t, int64(4), *low)

	log.LowerHighBound(30)
	log.LowerHighBound(31)
	log.LowerHighBound(12)
	_, high := log.Bounds()
	require.NotNil(t, high)
	assert.Equal(t, int64(12), *high)
}

func TestAnswerLogEncode(t *testing.T) {
	log := NewAnswerLog()
	log.SetCorrect(IntAnswer(12))
	log.RaiseLowBound(-50)
	log.LowerHighBound(25)
	log.AddWrong(IntAnswer(-9))
	log.AddWrong(IntAnswer(1))
	log.AddWrong(IntAnswer(100))
	log.AddWrong(StringAnswer("xyz"))

	assert.Equal(t, "= 12\n[ -50\n] 25\nX -9\nX 1\nX 100\nX xyz\n", log.Encode())
}

func TestAnswerLogDecode(t *testing.T) {
	log, err := DecodeAnswerLog("= 12\n[ -50\n] 25\nX -9\nX 1\nX 100\nX xyz\n")
	require.NoError(t, err)

	correct, ok := log.Correct()
	require.True(t, ok)
	assert.True(t, correct.Equal(IntAnswer(12)))
	assert.Len(t, log.Wrong(), 4)

	low, high := log.Bounds()
	require.NotNil(t, low)
	require.NotNil(t, high)
	assert.Equal(t, int64(-50), *low)
	assert.Equal(t, int64(25), *high)
}

func TestAnswerLogDecodeWithSpaces(t *testing.T) {
	log, err := DecodeAnswerLog("= hello world\nX foobar\nX one two three\n")
	require.NoError(t, err)

	correct, ok := log.Correct()
	require.True(t, ok)
	assert.Equal(t, "hello world", correct.String())
	assert.Len(t, log.Wrong(), 2)
}

func TestAnswerLogDecodeRejectsGarbage(t *testing.T) {
	_, err := DecodeAnswerLog("? what\n")
	assert.Error(t, err)

	_, err = DecodeAnswerLog("[ not-a-number\n")
	assert.Error(t, err)
}

func TestAnswerLogRoundTrip(t *testing.T) {
	log := NewAnswerLog()
	log.AddWrong(StringAnswer("foobar"))
	log.RaiseLowBound(3)

	decoded, err := DecodeAnswerLog(log.Encode())
	require.NoError(t, err)
	assert.Equal(t, log.Encode(), decoded.Encode())
}

func TestAnswerLogIgnoresDuplicateWrong(t *testing.T) {
	log := NewAnswerLog()
	log.AddWrong(IntAnswer(5))
	log.AddWrong(IntAnswer(5))
	assert.Len(t, log.Wrong(), 1)
}
