package aocdata

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// Session is the persisted per-host state for the puzzle service: the
// authentication token and any active submission rate-limit window.
type Session struct {
	Token           string     `json:"token,omitempty"`
	SubmitWaitUntil *time.Time `json:"submit_wait_until,omitempty"`
}

// SessionStore persists session state under the configured sessions
// directory, one file per remote host. An explicit token from the
// configuration always wins over a previously stored one.
type SessionStore struct {
	dir         string
	host        string
	configToken string
	log         zerolog.Logger
}

// NewSessionStore creates a session store scoped to the given remote host.
func NewSessionStore(cfg Config, host string, log zerolog.Logger) *SessionStore {
	return &SessionStore{
		dir:         cfg.SessionsDir,
		host:        host,
		configToken: cfg.SessionToken,
		log:         log,
	}
}

func (s *SessionStore) path() string {
	return filepath.Join(s.dir, s.host+".json")
}

// Load returns the session for this store's host. A missing file is an empty
// session, not an error. The effective token is the configured one when set,
// otherwise the stored one.
func (s *SessionStore) Load() (Session, error) {
	var sess Session

	b, err := os.ReadFile(s.path())
	switch {
	case errors.Is(err, os.ErrNotExist):
		// First run for this host.
	case err != nil:
		return Session{}, fmt.Errorf("read session file: %w", err)
	default:
		if err := json.Unmarshal(b, &sess); err != nil {
			return Session{}, fmt.Errorf("parse session file %s: %w", s.path(), err)
		}
	}

	if s.configToken != "" {
		sess.Token = s.configToken
	}
	s.log.Debug().
		Str("host", s.host).
		Str("token", redactToken(sess.Token)).
		Msg("loaded session")
	return sess, nil
}

// Save persists the session atomically with owner-only permissions.
func (s *SessionStore) Save(sess Session) error {
	b, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	b = append(b, '\n')

	if err := writeFileAtomic(s.path(), b, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	s.log.Debug().Str("host", s.host).Msg("saved session")
	return nil
}

// writeFileAtomic writes data to a temp file in the target directory and
// renames it into place, so a crash mid-write never leaves a half-written
// file. Concurrent writers race benignly: last rename wins.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, perm); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
