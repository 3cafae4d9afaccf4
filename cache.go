package aocdata

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// Cache file names under PuzzleDir/y{year}/{day}/. Input is shared between
// both parts of a day; answer logs are kept per part.
const (
	inputFileName = "input.txt"
	saltFileName  = "salt"

	// encMagic marks an encrypted cache entry. The remainder of the file is
	// base64 of nonce-prefixed AES-GCM ciphertext; base64 keeps encrypted
	// entries friendly to version control.
	encMagic = "AOCDATA1\n"
)

// PuzzleCache stores puzzle inputs and answer logs on disk, encrypted with a
// key derived from the configured passphrase. With an empty passphrase
// entries are stored in plaintext. The encryption state of every entry must
// match the active configuration; a mismatch surfaces as a DecryptionError
// instead of garbage plaintext or a silent miss.
type PuzzleCache struct {
	dir        string
	passphrase string
	log        zerolog.Logger

	key []byte // derived lazily once the salt is known
}

// NewPuzzleCache creates a cache rooted at dir. An empty passphrase disables
// encryption.
func NewPuzzleCache(dir, passphrase string, log zerolog.Logger) *PuzzleCache {
	return &PuzzleCache{dir: dir, passphrase: passphrase, log: log}
}

func (c *PuzzleCache) puzzleDir(year Year, day Day) string {
	return filepath.Join(c.dir, "y"+year.String(), day.String())
}

func (c *PuzzleCache) inputPath(year Year, day Day) string {
	return filepath.Join(c.puzzleDir(year, day), inputFileName)
}

func (c *PuzzleCache) answersPath(year Year, day Day, part Part) string {
	return filepath.Join(c.puzzleDir(year, day), "answers-"+part.String()+".txt")
}

// StoreInput caches a puzzle input. The write is atomic, so a concurrent
// reader never observes a partial entry.
func (c *PuzzleCache) StoreInput(year Year, day Day, input string) error {
	if err := validateKey(year, day); err != nil {
		return err
	}
	data, err := c.encode([]byte(input))
	if err != nil {
		return err
	}
	path := c.inputPath(year, day)
	c.log.Debug().Str("path", path).Msg("caching puzzle input")
	return writeFileAtomic(path, data, 0o644)
}

// LoadInput returns a cached puzzle input, ErrCacheMiss when the entry does
// not exist, or a DecryptionError when it cannot be decrypted with the
// active configuration.
func (c *PuzzleCache) LoadInput(year Year, day Day) (string, error) {
	if err := validateKey(year, day); err != nil {
		return "", err
	}
	path := c.inputPath(year, day)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrCacheMiss
	}
	if err != nil {
		return "", fmt.Errorf("read cached input: %w", err)
	}
	plain, err := c.decode(path, data)
	if err != nil {
		return "", err
	}
	c.log.Debug().Str("path", path).Msg("loaded puzzle input from cache")
	return string(plain), nil
}

// StoreAnswers persists the answer log for one puzzle part.
func (c *PuzzleCache) StoreAnswers(year Year, day Day, part Part, log *AnswerLog) error {
	if err := validateKey(year, day); err != nil {
		return err
	}
	if !part.Valid() {
		return fmt.Errorf("invalid puzzle part %d", int(part))
	}
	data, err := c.encode([]byte(log.Encode()))
	if err != nil {
		return err
	}
	return writeFileAtomic(c.answersPath(year, day, part), data, 0o644)
}

// LoadAnswers returns the answer log for one puzzle part. A missing entry is
// an empty log, since an absent history and an empty history mean the same
// thing to callers.
func (c *PuzzleCache) LoadAnswers(year Year, day Day, part Part) (*AnswerLog, error) {
	if err := validateKey(year, day); err != nil {
		return nil, err
	}
	if !part.Valid() {
		return nil, fmt.Errorf("invalid puzzle part %d", int(part))
	}
	path := c.answersPath(year, day, part)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return NewAnswerLog(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cached answers: %w", err)
	}
	plain, err := c.decode(path, data)
	if err != nil {
		return nil, err
	}
	return DecodeAnswerLog(string(plain))
}

// encode prepares plaintext for disk: sealed and base64-wrapped when a
// passphrase is configured, verbatim otherwise.
func (c *PuzzleCache) encode(plain []byte) ([]byte, error) {
	key, err := c.encryptionKey()
	if err != nil {
		return nil, err
	}
	if key == nil {
		return plain, nil
	}
	blob, err := seal(key, plain)
	if err != nil {
		return nil, fmt.Errorf("encrypt cache entry: %w", err)
	}
	out := make([]byte, 0, len(encMagic)+base64.StdEncoding.EncodedLen(len(blob)))
	out = append(out, encMagic...)
	out = append(out, base64.StdEncoding.EncodeToString(blob)...)
	return out, nil
}

// decode reverses encode, enforcing that the entry's encryption state
// matches the active configuration in both directions.
func (c *PuzzleCache) decode(path string, data []byte) ([]byte, error) {
	encrypted := bytes.HasPrefix(data, []byte(encMagic))
	key, err := c.encryptionKey()
	if err != nil {
		return nil, err
	}

	switch {
	case key == nil && encrypted:
		return nil, &DecryptionError{Path: path, Reason: "entry is encrypted but no passphrase is configured"}
	case key != nil && !encrypted:
		return nil, &DecryptionError{Path: path, Reason: "a passphrase is configured but the entry is not encrypted"}
	case key == nil:
		return data, nil
	}

	blob, err := base64.StdEncoding.DecodeString(string(bytes.TrimPrefix(data, []byte(encMagic))))
	if err != nil {
		return nil, &DecryptionError{Path: path, Reason: "corrupt base64 payload"}
	}
	plain, err := open(key, blob)
	if err != nil {
		return nil, &DecryptionError{Path: path, Reason: "integrity check failed; the passphrase may have changed"}
	}
	return plain, nil
}

// encryptionKey returns the derived cache key, or nil when encryption is
// disabled. The salt is persisted next to the cache so the derivation stays
// stable across runs; it is created on first use.
func (c *PuzzleCache) encryptionKey() ([]byte, error) {
	if c.passphrase == "" {
		return nil, nil
	}
	if c.key != nil {
		return c.key, nil
	}
	salt, err := c.loadOrCreateSalt()
	if err != nil {
		return nil, err
	}
	c.key = deriveKey(c.passphrase, salt)
	return c.key, nil
}

// loadOrCreateSalt reads the persisted key-derivation salt, creating it on
// first use. The salt is written in full to a temp file and published with a
// hard link, so the salt path either does not exist or holds a complete salt:
// a crash mid-creation never leaves a truncated file, and a process that
// loses the creation race always reads the winner's complete salt. A salt
// file with the wrong size can therefore only mean outside corruption, and
// regenerating it would orphan every existing entry, so it is an error.
func (c *PuzzleCache) loadOrCreateSalt() ([]byte, error) {
	path := filepath.Join(c.dir, saltFileName)

	for attempt := 0; attempt < 3; attempt++ {
		salt, err := os.ReadFile(path)
		if err == nil {
			if len(salt) != saltLen {
				return nil, &DecryptionError{Path: path, Reason: "salt file has the wrong size"}
			}
			return salt, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read cache salt: %w", err)
		}

		salt, err = newSalt()
		if err != nil {
			return nil, fmt.Errorf("generate cache salt: %w", err)
		}
		if err := os.MkdirAll(c.dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}

		tmp, err := os.CreateTemp(c.dir, saltFileName+".tmp*")
		if err != nil {
			return nil, fmt.Errorf("create cache salt: %w", err)
		}
		_, werr := tmp.Write(salt)
		cerr := tmp.Close()
		if werr != nil || cerr != nil {
			_ = os.Remove(tmp.Name())
			return nil, fmt.Errorf("write cache salt: %w", errors.Join(werr, cerr))
		}

		linkErr := os.Link(tmp.Name(), path)
		_ = os.Remove(tmp.Name())
		if linkErr == nil {
			c.log.Debug().Str("path", path).Msg("created cache salt")
			return salt, nil
		}
		if !errors.Is(linkErr, os.ErrExist) {
			return nil, fmt.Errorf("publish cache salt: %w", linkErr)
		}
		// Another process linked its salt first; loop to read it.
	}
	return nil, fmt.Errorf("cache salt at %s keeps disappearing", path)
}
