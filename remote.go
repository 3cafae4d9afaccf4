package aocdata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	adventHost    = "adventofcode.com"
	adventBaseURL = "https://adventofcode.com"

	defaultUserAgent = "aocdata/1.0 (puzzle input cache)"

	// maxResponseSize caps response bodies; puzzle inputs are small.
	maxResponseSize = 4 * 1024 * 1024
)

// Protocol abstracts the wire exchange with the puzzle service so tests can
// substitute a mock for the HTTP implementation.
type Protocol interface {
	// FetchInput retrieves the raw puzzle input for a day.
	FetchInput(ctx context.Context, year Year, day Day) (string, error)
	// SubmitAnswer posts a guess for one puzzle part and classifies the
	// response into an Outcome.
	SubmitAnswer(ctx context.Context, year Year, day Day, part Part, answer Answer) (Outcome, error)
}

// httpProtocol talks to the puzzle service over HTTP, authenticating with
// the session cookie.
type httpProtocol struct {
	baseURL   string
	token     string
	userAgent string
	http      *http.Client
	log       zerolog.Logger
}

func newHTTPProtocol(baseURL, token string, log zerolog.Logger) *httpProtocol {
	return &httpProtocol{
		baseURL:   strings.TrimRight(baseURL, "/"),
		token:     token,
		userAgent: defaultUserAgent,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}
}

// do issues an authenticated request and returns the response body once the
// status has been mapped onto the error taxonomy: 200 passes, 400/401/403 is
// an AuthError, 404 is a NotUnlockedError, anything else a TransportError.
func (p *httpProtocol) do(ctx context.Context, method, reqURL string, form url.Values, year Year, day Day) ([]byte, error) {
	if p.token == "" {
		return nil, &AuthError{Reason: "no session token configured"}
	}

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("Cookie", "session="+p.token)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("read response: %w", err)}
	}
	p.log.Debug().Int("status", resp.StatusCode).Str("url", reqURL).Msg("puzzle service response")

	switch resp.StatusCode {
	case http.StatusOK:
		return b, nil
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
		return nil, &AuthError{Reason: "the session token was rejected by the puzzle service"}
	case http.StatusNotFound:
		return nil, &NotUnlockedError{Year: year, Day: day}
	default:
		return nil, &TransportError{Err: fmt.Errorf("unexpected HTTP %d from puzzle service", resp.StatusCode)}
	}
}

func (p *httpProtocol) FetchInput(ctx context.Context, year Year, day Day) (string, error) {
	reqURL := fmt.Sprintf("%s/%s/day/%s/input", p.baseURL, year, day)
	b, err := p.do(ctx, http.MethodGet, reqURL, nil, year, day)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (p *httpProtocol) SubmitAnswer(ctx context.Context, year Year, day Day, part Part, answer Answer) (Outcome, error) {
	reqURL := fmt.Sprintf("%s/%s/day/%s/answer", p.baseURL, year, day)
	form := url.Values{
		"level":  {part.String()},
		"answer": {answer.String()},
	}
	b, err := p.do(ctx, http.MethodPost, reqURL, form, year, day)
	if err != nil {
		return Outcome{}, err
	}

	out := classifyResponse(string(b))
	p.log.Debug().Stringer("outcome", out.Kind).Msg("classified submission response")
	return out, nil
}

// responseMarker pairs a known service phrase with the outcome it signals.
type responseMarker struct {
	phrase string
	kind   OutcomeKind
}

// responseMarkers is the classification table for submission responses,
// highest priority first. Matching is a case-insensitive substring check, so
// wording changes on the service side degrade to OutcomeUnknown instead of
// breaking callers. Keep new phrases lowercase.
//
// Note the service answers a resubmission of a solved part and a wrong-level
// submission with overlapping wording; the already-complete phrase outranks
// the level phrase on purpose.
var responseMarkers = []responseMarker{
	{"did you already complete it", OutcomeAlreadySolved},
	{"answer was already given", OutcomeAlreadySolved},
	{"gave an answer too recently", OutcomeTooRecent},
	{"not the right level", OutcomeWrongLevel},
	{"solving the right level", OutcomeWrongLevel},
	{"answer is too low", OutcomeTooLow},
	{"answer is too high", OutcomeTooHigh},
	{"that's the right answer", OutcomeCorrect},
	{"that's not the right answer", OutcomeIncorrect},
	{"not the right answer", OutcomeIncorrect},
}

// classifyResponse maps a raw submission response body onto an Outcome. Any
// wait duration embedded in the text is carried on RetryAfter regardless of
// kind, since the service also imposes waits after wrong answers.
func classifyResponse(text string) Outcome {
	lower := strings.ToLower(text)

	for _, m := range responseMarkers {
		if !strings.Contains(lower, m.phrase) {
			continue
		}
		out := Outcome{Kind: m.kind}
		if wait, ok := extractWaitTime(lower); ok {
			out.RetryAfter = wait
		} else if m.kind == OutcomeTooRecent {
			// Conservative fallback when the wait text is unparsable.
			out.RetryAfter = 5 * time.Minute
		}
		return out
	}
	return Outcome{Kind: OutcomeUnknown, Raw: strings.TrimSpace(text)}
}
