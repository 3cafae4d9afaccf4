// Package aocdata fetches Advent of Code puzzle inputs and submits answers,
// caching everything locally so repeated runs avoid the network and puzzle
// inputs are never stored in plaintext on disk.
//
// # Features
//
//   - Layered configuration: user config file, project-local file,
//     environment variables, and explicit options
//   - Session cookie persistence per remote host
//   - Encrypted on-disk cache (Argon2id key derivation + AES-256-GCM)
//   - Submission response classification with rate-limit tracking
//   - Local answer history that short-circuits repeat submissions
//
// # Usage
//
//	cfg, err := aocdata.ResolveConfig()
//	if err != nil { ... }
//	client, err := aocdata.New(cfg)
//	if err != nil { ... }
//	input, err := client.Input(ctx, 2024, 7)
//	out, err := client.Submit(ctx, 2024, 7, aocdata.PartOne, aocdata.IntAnswer(42))
//
// # Configuration
//
// Configuration is merged from aoc_settings.toml in the user config
// directory, aoc_settings.toml in the current directory, and the
// AOC_SESSION, AOC_PASSPHRASE, AOC_PUZZLE_DIR and AOC_SESSIONS_DIR
// environment variables. AOC_CONFIG_PATH points at a single config file and
// suppresses the default search order.
package aocdata
