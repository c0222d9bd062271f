// Package fits implements the FITS header keyword/value buffer: an ordered
// list of (keyword, value) pairs capped at MaxWords, consumed by writing
// them one at a time to the camera before an exposure. Grounded in
// _examples/original_source/src/scheduler_fits.c.
package fits

import "fmt"

// MaxWords bounds the header buffer (scheduler.h:MAX_FITS_WORDS).
const MaxWords = 100

// Word is one FITS keyword/value pair.
type Word struct {
	Keyword string
	Value   string
}

// Header is the ordered keyword/value buffer. The zero value is not usable;
// call NewHeader to get one seeded with the standard keyword set.
type Header struct {
	words []Word
}

// standardKeywords is the pre-seeded keyword set init_fits_header installs,
// each defaulted to "UNKNOWN" (or "0.0"/"0" for the numeric ones), per
// scheduler_fits.c.
var standardKeywords = []Word{
	{"FILTERNAME", "UNKNOWN"},
	{"FILTERID", "0"},
	{"LST", "0.0"},
	{"HA", "0.0"},
	{"IMAGETYPE", "UNKNOWN"},
	{"DARKFILE", "UNKNOWN"},
	{"FLATFILE", "UNKNOWN"},
	{"SEQUENCE", "0"},
	{"RA", "0.0"},
	{"DEC", "0.0"},
	{"FOCUS", "0.0"},
	{"COMMENT", "UNKNOWN"},
}

// NewHeader returns a Header pre-seeded with the standard keyword set, per
// scheduler_fits.c:init_fits_header.
func NewHeader() *Header {
	h := &Header{words: make([]Word, len(standardKeywords))}
	copy(h.words, standardKeywords)
	return h
}

// Update replaces the value of an existing keyword. It returns an error if
// the keyword was not pre-seeded, matching init_fits_header's closed
// keyword set (scheduler_fits.c:update_fits_header returns -1 in that
// case rather than silently adding it).
func (h *Header) Update(keyword, value string) error {
	for i := range h.words {
		if h.words[i].Keyword == keyword {
			h.words[i].Value = value
			return nil
		}
	}
	return fmt.Errorf("fits: keyword %q not pre-seeded, use Add", keyword)
}

// Add appends a new keyword/value pair, bounded by MaxWords. Returns an
// error once the buffer is full, per scheduler_fits.c:add_fits_word.
func (h *Header) Add(keyword, value string) error {
	if len(h.words) >= MaxWords {
		return fmt.Errorf("fits: header full at %d words", MaxWords)
	}
	h.words = append(h.words, Word{Keyword: keyword, Value: value})
	return nil
}

// UpdateOrAdd replaces the keyword's value if present, else appends it --
// the "update replaces, add appends" rule from spec.md §3 stated as a
// single convenience call for callers that don't care which case applies.
func (h *Header) UpdateOrAdd(keyword, value string) error {
	if err := h.Update(keyword, value); err == nil {
		return nil
	}
	return h.Add(keyword, value)
}

// Words returns the buffer contents in order, for writing to the camera.
func (h *Header) Words() []Word {
	out := make([]Word, len(h.words))
	copy(out, h.words)
	return out
}

// Get returns a keyword's value and whether it was present.
func (h *Header) Get(keyword string) (string, bool) {
	for _, w := range h.words {
		if w.Keyword == keyword {
			return w.Value, true
		}
	}
	return "", false
}
