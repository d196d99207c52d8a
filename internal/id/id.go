package id

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

func New() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "run-fallback-id"
	}
	return hex.EncodeToString(b[:])
}

// NewRunID returns an id that sorts by start time, e.g. 20261019T101500-1a2b3c4d.
func NewRunID(now time.Time) string {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return now.UTC().Format("20060102T150405") + "-00000000"
	}
	return now.UTC().Format("20060102T150405") + "-" + hex.EncodeToString(b[:])
}
