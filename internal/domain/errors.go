package domain

import "errors"

var (
	// ErrEmptyCatalog is returned when a question is requested from an empty catalog.
	ErrEmptyCatalog = errors.New("question catalog is empty")
	// ErrCursorOutOfRange indicates a sequential cursor outside the catalog bounds.
	ErrCursorOutOfRange = errors.New("catalog cursor out of range")
	// ErrInvalidIdentity is returned when a game is started without a player name.
	ErrInvalidIdentity = errors.New("player name is required")
	// ErrWrongPhase is returned when an intent arrives in a phase that cannot accept it.
	// Callers treat it as a no-op.
	ErrWrongPhase = errors.New("intent not valid in current phase")
	// ErrSessionNotFound is returned when a game session is unknown.
	ErrSessionNotFound = errors.New("game session not found")
	// ErrGameClosed is returned when a game loop has already been shut down.
	ErrGameClosed = errors.New("game closed")
	// ErrStore wraps every score persistence failure.
	ErrStore = errors.New("score store failure")
	// ErrCacheKeyTaken is returned when another writer already holds a local cache key.
	ErrCacheKeyTaken = errors.New("local cache key already taken")
	// ErrUnknownMode indicates an unsupported game mode string.
	ErrUnknownMode = errors.New("unknown game mode")
	// ErrUnknownUpsertPolicy indicates an unsupported upsert policy string.
	ErrUnknownUpsertPolicy = errors.New("unknown upsert policy")
)
