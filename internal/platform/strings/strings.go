// Package strings provides small string helpers shared across modules
package strings

import std "strings"

// IfEmpty returns def if in is empty, otherwise returns in
func IfEmpty[T any](in []T, def []T) []T {
	if len(in) == 0 {
		return def
	}
	return in
}

// MustString returns s if it has non whitespace content otherwise panics
// name is used in the panic message so you can tell what was missing
func MustString(s string, name string) string {
	if std.TrimSpace(s) == "" {
		panic(name + " is required")
	}
	return s
}

// MustPrefix normalizes and asserts a root path like /posts or /meta
// ensures a single leading slash and no trailing slash except for the root itself
// panics if the input is empty after trimming
func MustPrefix(s string) string {
	s = std.TrimSpace(s)
	s = "/" + std.Trim(s, " /")
	if s == "/" {
		panic("root path is required")
	}
	return s
}

// EmptyToNil returns empty string if s is all whitespace, otherwise returns s
func EmptyToNil(s string) string {
	if std.TrimSpace(s) == "" {
		return ""
	}
	return s
}

// Ptr returns a pointer to s, or nil if s is empty
func Ptr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns "" if ps is nil, else *ps
func Deref(ps *string) string {
	if ps == nil {
		return ""
	}
	return *ps
}

// SplitHash splits a "#"-delimited list, trimming items and dropping empties
// Caption people lists ("#Name #Other") and tag lines use this shape
func SplitHash(s string) []string {
	parts := std.Split(s, "#")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := std.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// SplitPipe splits a "|"-delimited list, trimming items and dropping empties
func SplitPipe(s string) []string {
	parts := std.Split(s, "|")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := std.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
