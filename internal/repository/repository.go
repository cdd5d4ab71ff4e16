// Package repository stores seeded records and issued session tokens in Redis.
package repository

import "errors"

// ErrNotFound is returned when a key does not exist.
var ErrNotFound = errors.New("not found")
