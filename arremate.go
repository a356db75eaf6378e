// Package arremate provides adaptive crawl control for extracting
// structured property records from real-estate auction sites whose markup
// is unknown in advance. It classifies fetched pages, acquires and scores
// CSS selectors (cached, rule-based, or generated), applies a depth- and
// quota-bounded crawl policy, and drives a file-based handshake for
// anti-bot challenge resolution.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, gemini/, goquery/).
package arremate
