package aocdata

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockProtocol counts wire calls so tests can prove when the client did not
// touch the network.
type mockProtocol struct {
	input       string
	inputErr    error
	fetchCalls  int
	submitOut   Outcome
	submitErr   error
	submitCalls int
}

func (m *mockProtocol) FetchInput(_ context.Context, _ Year, _ Day) (string, error) {
	m.fetchCalls++
	if m.inputErr != nil {
		return "", m.inputErr
	}
	return m.input, nil
}

func (m *mockProtocol) SubmitAnswer(_ context.Context, _ Year, _ Day, _ Part, _ Answer) (Outcome, error) {
	m.submitCalls++
	if m.submitErr != nil {
		return Outcome{}, m.submitErr
	}
	return m.submitOut, nil
}

func testConfig(t *testing.T, clock func() time.Time) Config {
	t.Helper()
	return Config{
		SessionToken: "UNIT_TEST_SESSION",
		Passphrase:   "UNIT_TEST_PASSPHRASE",
		PuzzleDir:    t.TempDir(),
		SessionsDir:  t.TempDir(),
		Clock:        clock,
	}
}

func newTestClient(t *testing.T, cfg Config, mock *mockProtocol) *Client {
	t.Helper()
	client, err := New(cfg, WithProtocol(mock))
	require.NoError(t, err)
	return client
}

func TestInputFetchesOnceAndCaches(t *testing.T) {
	mock := &mockProtocol{input: "cached input\n"}
	client := newTestClient(t, testConfig(t, nil), mock)

	got, err := client.Input(context.Background(), 2024, 7)
	require.NoError(t, err)
	assert.Equal(t, "cached input\n", got)
	assert.Equal(t, 1, mock.fetchCalls)

	// Second call is served from the cache: identical content, no network.
	got, err = client.Input(context.Background(), 2024, 7)
	require.NoError(t, err)
	assert.Equal(t, "cached input\n", got)
	assert.Equal(t, 1, mock.fetchCalls)
}

func TestInputSharedAcrossClientInstances(t *testing.T) {
	cfg := testConfig(t, nil)

	first := newTestClient(t, cfg, &mockProtocol{input: "input"})
	_, err := first.Input(context.Background(), 2024, 1)
	require.NoError(t, err)

	// A new process with the same config reads the cache, not the wire.
	secondMock := &mockProtocol{input: "should not be fetched"}
	second := newTestClient(t, cfg, secondMock)
	got, err := second.Input(context.Background(), 2024, 1)
	require.NoError(t, err)
	assert.Equal(t, "input", got)
	assert.Zero(t, secondMock.fetchCalls)
}

func TestInputFetchErrorPropagates(t *testing.T) {
	mock := &mockProtocol{inputErr: &NotUnlockedError{Year: 2030, Day: 1}}
	client := newTestClient(t, testConfig(t, nil), mock)

	_, err := client.Input(context.Background(), 2030, 1)
	var nuErr *NotUnlockedError
	assert.ErrorAs(t, err, &nuErr)
}

func TestInputPassphraseChangeIsDecryptionErrorNotMiss(t *testing.T) {
	cfg := testConfig(t, nil)
	first := newTestClient(t, cfg, &mockProtocol{input: "input"})
	_, err := first.Input(context.Background(), 2024, 2)
	require.NoError(t, err)

	cfg.Passphrase = "a different passphrase"
	secondMock := &mockProtocol{input: "refetched"}
	second := newTestClient(t, cfg, secondMock)

	_, err = second.Input(context.Background(), 2024, 2)
	var decErr *DecryptionError
	require.ErrorAs(t, err, &decErr)
	assert.Zero(t, secondMock.fetchCalls, "decryption failure must not fall through to the network")
}

func TestSubmitRecordsCorrectAndShortCircuits(t *testing.T) {
	cfg := testConfig(t, nil)
	mock := &mockProtocol{submitOut: Outcome{Kind: OutcomeCorrect}}
	client := newTestClient(t, cfg, mock)

	out, err := client.Submit(context.Background(), 2024, 7, PartOne, IntAnswer(42))
	require.NoError(t, err)
	assert.Equal(t, OutcomeCorrect, out.Kind)
	assert.Equal(t, 1, mock.submitCalls)

	// Resubmitting the accepted answer never hits the network again.
	out, err = client.Submit(context.Background(), 2024, 7, PartOne, IntAnswer(42))
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadySolved, out.Kind)
	assert.Equal(t, 1, mock.submitCalls)

	// A different value resolves as incorrect against the known answer.
	out, err = client.Submit(context.Background(), 2024, 7, PartOne, IntAnswer(13))
	require.NoError(t, err)
	assert.Equal(t, OutcomeIncorrect, out.Kind)
	assert.Equal(t, 1, mock.submitCalls)
}

func TestSubmitShortCircuitSurvivesRestart(t *testing.T) {
	cfg := testConfig(t, nil)
	first := newTestClient(t, cfg, &mockProtocol{submitOut: Outcome{Kind: OutcomeCorrect}})
	_, err := first.Submit(context.Background(), 2024, 7, PartOne, IntAnswer(42))
	require.NoError(t, err)

	secondMock := &mockProtocol{submitOut: Outcome{Kind: OutcomeIncorrect}}
	second := newTestClient(t, cfg, secondMock)
	out, err := second.Submit(context.Background(), 2024, 7, PartOne, IntAnswer(42))
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadySolved, out.Kind)
	assert.Zero(t, secondMock.submitCalls)
}

func TestSubmitKnownWrongAnswerShortCircuits(t *testing.T) {
	cfg := testConfig(t, nil)
	mock := &mockProtocol{submitOut: Outcome{Kind: OutcomeIncorrect}}
	client := newTestClient(t, cfg, mock)

	_, err := client.Submit(context.Background(), 2024, 7, PartOne, StringAnswer("nope"))
	require.NoError(t, err)
	assert.Equal(t, 1, mock.submitCalls)

	out, err := client.Submit(context.Background(), 2024, 7, PartOne, StringAnswer("nope"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeIncorrect, out.Kind)
	assert.Equal(t, 1, mock.submitCalls)
}

func TestSubmitBoundsShortCircuit(t *testing.T) {
	cfg := testConfig(t, nil)
	mock := &mockProtocol{submitOut: Outcome{Kind: OutcomeTooLow}}
	client := newTestClient(t, cfg, mock)

	_, err := client.Submit(context.Background(), 2024, 7, PartOne, IntAnswer(100))
	require.NoError(t, err)
	assert.Equal(t, 1, mock.submitCalls)

	// Anything at or below the recorded bound resolves locally.
	out, err := client.Submit(context.Background(), 2024, 7, PartOne, IntAnswer(90))
	require.NoError(t, err)
	assert.Equal(t, OutcomeTooLow, out.Kind)
	assert.Equal(t, 1, mock.submitCalls)
}

func TestSubmitRateLimitWindow(t *testing.T) {
	now := time.Date(2024, 12, 7, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	cfg := testConfig(t, clock)

	mock := &mockProtocol{submitOut: Outcome{Kind: OutcomeIncorrect, RetryAfter: 3 * time.Minute}}
	client := newTestClient(t, cfg, mock)

	out, err := client.Submit(context.Background(), 2024, 7, PartOne, IntAnswer(1))
	require.NoError(t, err)
	assert.Equal(t, OutcomeIncorrect, out.Kind)
	assert.Equal(t, 1, mock.submitCalls)

	// A different guess inside the window is refused locally with the
	// remaining wait.
	out, err = client.Submit(context.Background(), 2024, 7, PartOne, IntAnswer(2))
	require.NoError(t, err)
	assert.Equal(t, OutcomeTooRecent, out.Kind)
	assert.Equal(t, 3*time.Minute, out.RetryAfter)
	assert.Equal(t, 1, mock.submitCalls)

	// Once the window elapses the submission goes through.
	now = now.Add(4 * time.Minute)
	mock.submitOut = Outcome{Kind: OutcomeCorrect}
	out, err = client.Submit(context.Background(), 2024, 7, PartOne, IntAnswer(2))
	require.NoError(t, err)
	assert.Equal(t, OutcomeCorrect, out.Kind)
	assert.Equal(t, 2, mock.submitCalls)
}

func TestSubmitRateLimitWindowSharedAcrossInstances(t *testing.T) {
	now := time.Date(2024, 12, 7, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	cfg := testConfig(t, clock)

	first := newTestClient(t, cfg, &mockProtocol{
		submitOut: Outcome{Kind: OutcomeTooRecent, RetryAfter: 10 * time.Minute},
	})
	_, err := first.Submit(context.Background(), 2024, 7, PartOne, IntAnswer(1))
	require.NoError(t, err)

	secondMock := &mockProtocol{}
	second := newTestClient(t, cfg, secondMock)
	out, err := second.Submit(context.Background(), 2024, 7, PartTwo, IntAnswer(5))
	require.NoError(t, err)
	assert.Equal(t, OutcomeTooRecent, out.Kind)
	assert.Equal(t, 10*time.Minute, out.RetryAfter)
	assert.Zero(t, secondMock.submitCalls)
}

func TestSubmitExpiredWaitWindowClearedOnDisk(t *testing.T) {
	now := time.Date(2024, 12, 7, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	cfg := testConfig(t, clock)

	mock := &mockProtocol{submitOut: Outcome{Kind: OutcomeIncorrect, RetryAfter: 3 * time.Minute}}
	client := newTestClient(t, cfg, mock)
	_, err := client.Submit(context.Background(), 2024, 7, PartOne, IntAnswer(1))
	require.NoError(t, err)

	// The next submission after the window elapses removes it from the
	// session file, not just from memory.
	now = now.Add(4 * time.Minute)
	mock.submitOut = Outcome{Kind: OutcomeCorrect}
	_, err = client.Submit(context.Background(), 2024, 7, PartOne, IntAnswer(2))
	require.NoError(t, err)

	sess, err := NewSessionStore(cfg, adventHost, zerolog.Nop()).Load()
	require.NoError(t, err)
	assert.Nil(t, sess.SubmitWaitUntil)
}

func TestSubmitUnknownOutcomePassesThrough(t *testing.T) {
	cfg := testConfig(t, nil)
	mock := &mockProtocol{submitOut: Outcome{Kind: OutcomeUnknown, Raw: "Server maintenance in progress"}}
	client := newTestClient(t, cfg, mock)

	out, err := client.Submit(context.Background(), 2024, 7, PartOne, IntAnswer(1))
	require.NoError(t, err)
	assert.Equal(t, OutcomeUnknown, out.Kind)
	assert.Equal(t, "Server maintenance in progress", out.Raw)

	// Unknown outcomes are not recorded, so the next attempt submits again.
	_, err = client.Submit(context.Background(), 2024, 7, PartOne, IntAnswer(1))
	require.NoError(t, err)
	assert.Equal(t, 2, mock.submitCalls)
}

func TestSubmitPartsHaveIndependentHistories(t *testing.T) {
	cfg := testConfig(t, nil)
	mock := &mockProtocol{submitOut: Outcome{Kind: OutcomeCorrect}}
	client := newTestClient(t, cfg, mock)

	_, err := client.Submit(context.Background(), 2024, 7, PartOne, IntAnswer(42))
	require.NoError(t, err)

	// The same value on part two is not short-circuited by part one's record.
	out, err := client.Submit(context.Background(), 2024, 7, PartTwo, IntAnswer(42))
	require.NoError(t, err)
	assert.Equal(t, OutcomeCorrect, out.Kind)
	assert.Equal(t, 2, mock.submitCalls)
}

func TestSubmitRejectsInvalidKey(t *testing.T) {
	client := newTestClient(t, testConfig(t, nil), &mockProtocol{})

	_, err := client.Submit(context.Background(), 2014, 1, PartOne, IntAnswer(1))
	assert.Error(t, err)

	_, err = client.Submit(context.Background(), 2024, 1, Part(9), IntAnswer(1))
	assert.Error(t, err)
}

func TestPuzzleBundlesInputAndAnswers(t *testing.T) {
	cfg := testConfig(t, nil)
	mock := &mockProtocol{input: "input", submitOut: Outcome{Kind: OutcomeCorrect}}
	client := newTestClient(t, cfg, mock)

	_, err := client.Submit(context.Background(), 2024, 7, PartOne, IntAnswer(42))
	require.NoError(t, err)

	puzzle, err := client.Puzzle(context.Background(), 2024, 7)
	require.NoError(t, err)
	assert.Equal(t, "input", puzzle.Input)

	correct, ok := puzzle.Answers(PartOne).Correct()
	require.True(t, ok)
	assert.True(t, correct.Equal(IntAnswer(42)))
	assert.True(t, puzzle.Answers(PartTwo).Empty())
}
