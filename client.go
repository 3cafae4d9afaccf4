package aocdata

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
)

// Puzzle bundles everything cached for one day: the input and the answer
// history for both parts.
type Puzzle struct {
	Year    Year
	Day     Day
	Input   string
	PartOne *AnswerLog
	PartTwo *AnswerLog
}

// Answers returns the answer log for the given part.
func (p *Puzzle) Answers(part Part) *AnswerLog {
	if part == PartTwo {
		return p.PartTwo
	}
	return p.PartOne
}

// Client is the facade over the puzzle service: it fetches inputs and
// submits answers, consulting the encrypted cache before the network for
// reads and recording every submission so correct answers and active
// rate-limit windows never hit the service twice.
type Client struct {
	cfg      Config
	protocol Protocol
	cache    *PuzzleCache
	sessions *SessionStore
	log      zerolog.Logger
}

// ClientOption customizes client construction.
type ClientOption func(*Client)

// WithLogger attaches a logger; the default discards everything.
func WithLogger(log zerolog.Logger) ClientOption {
	return func(c *Client) { c.log = log }
}

// WithProtocol substitutes the wire protocol, e.g. a mock for tests.
func WithProtocol(p Protocol) ClientOption {
	return func(c *Client) { c.protocol = p }
}

// New creates a client from a resolved configuration.
func New(cfg Config, opts ...ClientOption) (*Client, error) {
	c := &Client{cfg: cfg, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(c)
	}

	c.cache = NewPuzzleCache(cfg.PuzzleDir, cfg.Passphrase, c.log)
	c.sessions = NewSessionStore(cfg, adventHost, c.log)

	if c.protocol == nil {
		sess, err := c.sessions.Load()
		if err != nil {
			return nil, err
		}
		c.protocol = newHTTPProtocol(adventBaseURL, sess.Token, c.log)
	}

	c.log.Debug().
		Str("puzzle_dir", cfg.PuzzleDir).
		Str("sessions_dir", cfg.SessionsDir).
		Msg("client ready")
	return c, nil
}

// Input returns the puzzle input for a day, from the cache when present and
// from the service otherwise. Fetched inputs are cached before returning, so
// a second call performs no network request. Decryption failures propagate;
// they are never treated as a miss.
func (c *Client) Input(ctx context.Context, year Year, day Day) (string, error) {
	if err := validateKey(year, day); err != nil {
		return "", err
	}

	input, err := c.cache.LoadInput(year, day)
	if err == nil {
		return input, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		return "", err
	}

	input, err = c.protocol.FetchInput(ctx, year, day)
	if err != nil {
		return "", err
	}
	if err := c.cache.StoreInput(year, day, input); err != nil {
		return "", err
	}
	return input, nil
}

// Submit submits an answer for one puzzle part. Submissions that the local
// answer history can already resolve, and submissions inside an active
// rate-limit window, return without a network call. Everything else goes to
// the service, and the outcome is recorded.
func (c *Client) Submit(ctx context.Context, year Year, day Day, part Part, answer Answer) (Outcome, error) {
	if err := validateKey(year, day); err != nil {
		return Outcome{}, err
	}
	if !part.Valid() {
		return Outcome{}, errors.New("invalid puzzle part")
	}

	answers, err := c.cache.LoadAnswers(year, day, part)
	if err != nil {
		return Outcome{}, err
	}
	if kind, ok := answers.Check(answer); ok {
		if kind == OutcomeCorrect {
			// The part is already solved with this value; the service would
			// refuse a resubmission anyway.
			kind = OutcomeAlreadySolved
		}
		c.log.Debug().Stringer("outcome", kind).Msg("answer resolved from local history")
		return Outcome{Kind: kind}, nil
	}

	sess, err := c.sessions.Load()
	if err != nil {
		return Outcome{}, err
	}
	now := c.cfg.now()
	if sess.SubmitWaitUntil != nil {
		if now.Before(*sess.SubmitWaitUntil) {
			remaining := sess.SubmitWaitUntil.Sub(now)
			c.log.Debug().Dur("retry_after", remaining).Msg("submission rate-limit window active")
			return Outcome{Kind: OutcomeTooRecent, RetryAfter: remaining}, nil
		}
		// Clear the elapsed window on disk too, so the session file does not
		// carry a stale past-dated window forever.
		sess.SubmitWaitUntil = nil
		if err := c.sessions.Save(sess); err != nil {
			c.log.Warn().Err(err).Msg("failed to clear submission wait window")
		}
	}

	out, err := c.protocol.SubmitAnswer(ctx, year, day, part, answer)
	if err != nil {
		return Outcome{}, err
	}

	if out.RetryAfter > 0 {
		until := now.Add(out.RetryAfter)
		sess.SubmitWaitUntil = &until
		if err := c.sessions.Save(sess); err != nil {
			c.log.Warn().Err(err).Msg("failed to persist submission wait window")
		}
	}

	if c.recordOutcome(answers, answer, out) {
		if err := c.cache.StoreAnswers(year, day, part, answers); err != nil {
			return Outcome{}, err
		}
	}
	return out, nil
}

// recordOutcome folds a service response into the answer history and reports
// whether the history changed.
func (c *Client) recordOutcome(answers *AnswerLog, answer Answer, out Outcome) bool {
	switch out.Kind {
	case OutcomeCorrect:
		answers.SetCorrect(answer)
	case OutcomeIncorrect:
		answers.AddWrong(answer)
	case OutcomeTooLow:
		if n, ok := answer.Int(); ok {
			answers.RaiseLowBound(n)
		} else {
			answers.AddWrong(answer)
		}
	case OutcomeTooHigh:
		if n, ok := answer.Int(); ok {
			answers.LowerHighBound(n)
		} else {
			answers.AddWrong(answer)
		}
	default:
		return false
	}
	return true
}

// Puzzle returns the input plus the cached answer history for both parts of
// a day.
func (c *Client) Puzzle(ctx context.Context, year Year, day Day) (*Puzzle, error) {
	input, err := c.Input(ctx, year, day)
	if err != nil {
		return nil, err
	}
	one, err := c.cache.LoadAnswers(year, day, PartOne)
	if err != nil {
		return nil, err
	}
	two, err := c.cache.LoadAnswers(year, day, PartTwo)
	if err != nil {
		return nil, err
	}
	return &Puzzle{Year: year, Day: day, Input: input, PartOne: one, PartTwo: two}, nil
}
