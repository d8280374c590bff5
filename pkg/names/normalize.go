package names

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Registry defaults for the INSEE national file.
const (
	DefaultSentinelYear = "XXXX"
	DefaultRareBucket   = "_prenoms_rares"
)

var (
	// ErrMalformedRecord is wrapped by every MalformedRecordError.
	ErrMalformedRecord = errors.New("malformed record")
	// ErrNoData is returned when a source yields no usable row at all.
	ErrNoData = errors.New("no data available")
)

// MalformedRecordError describes a row that survived sentinel and
// missing-field filtering but still could not be coerced.
type MalformedRecordError struct {
	Line  int
	Field string
	Value string
	Err   error
}

func (e *MalformedRecordError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: malformed %s %q: %v", e.Line, e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("malformed %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *MalformedRecordError) Unwrap() []error { return []error{ErrMalformedRecord, e.Err} }

// ligatures are Latin letters NFKD leaves intact.
var ligatures = strings.NewReplacer(
	"œ", "oe", "æ", "ae", "ß", "ss", "ø", "o", "ł", "l", "đ", "d", "ð", "d", "þ", "th", "ı", "i",
)

var foldMarks = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Canonicalize lower-cases a name and strips its diacritics so that variants
// differing only by case or accents share one key
// ("José", "jose", "JOSÉ" -> "jose"). Canonicalize(Canonicalize(s)) ==
// Canonicalize(s).
func Canonicalize(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s, _, _ = transform.String(foldMarks, s)
	// Compatibility decomposition can yield capitals (U+1D2D -> Æ).
	return ligatures.Replace(strings.ToLower(s))
}

// NormalizeOptions configures the registry-specific tokens.
type NormalizeOptions struct {
	// SentinelYear marks rows whose year is unknown. Default "XXXX".
	SentinelYear string
	// RareBucket is the registry's suppressed low-count name. It is
	// canonicalized like any other name. Default "_prenoms_rares".
	RareBucket string
	// NoRareBucket treats every name as a real name.
	NoRareBucket bool
}

func (o NormalizeOptions) withDefaults() NormalizeOptions {
	if o.SentinelYear == "" {
		o.SentinelYear = DefaultSentinelYear
	}
	switch {
	case o.NoRareBucket:
		o.RareBucket = ""
	case o.RareBucket == "":
		o.RareBucket = DefaultRareBucket
	}
	return o
}

// NormalizeReport counts what happened to the rows of one batch.
type NormalizeReport struct {
	Read         int `json:"read"`
	Kept         int `json:"kept"`
	SentinelYear int `json:"sentinel_year"`
	MissingField int `json:"missing_field"`
	Malformed    int `json:"malformed"`
}

// Dropped is the number of rows that did not make it into the output.
func (r NormalizeReport) Dropped() int {
	return r.SentinelYear + r.MissingField + r.Malformed
}

var (
	errSentinelYear = errors.New("sentinel year")
	errMissingField = errors.New("missing field")
)

// NormalizeRecord cleans a single row. Sentinel-year and missing-field rows
// are reported with unexported errors so the batch can count them apart;
// coercion failures are *MalformedRecordError.
func NormalizeRecord(raw RawRecord, opts NormalizeOptions) (Record, error) {
	opts = opts.withDefaults()

	year := strings.TrimSpace(raw.Year)
	if year == opts.SentinelYear {
		return Record{}, errSentinelYear
	}
	sex := strings.TrimSpace(raw.Sex)
	name := Canonicalize(raw.Name)
	count := strings.TrimSpace(raw.Count)
	if sex == "" || name == "" || year == "" || count == "" {
		return Record{}, errMissingField
	}

	y, err := strconv.Atoi(year)
	if err != nil {
		return Record{}, &MalformedRecordError{Line: raw.Line, Field: "year", Value: raw.Year, Err: err}
	}
	s, err := ParseSex(sex)
	if err != nil {
		return Record{}, &MalformedRecordError{Line: raw.Line, Field: "sex", Value: raw.Sex, Err: err}
	}
	c, err := strconv.Atoi(count)
	if err != nil {
		return Record{}, &MalformedRecordError{Line: raw.Line, Field: "count", Value: raw.Count, Err: err}
	}
	if c < 0 {
		return Record{}, &MalformedRecordError{Line: raw.Line, Field: "count", Value: raw.Count, Err: errors.New("negative")}
	}

	return Record{Name: name, Year: y, Sex: s, Count: c}, nil
}

// Normalize cleans a batch of rows. Rows that cannot be used are skipped and
// counted in the report; a bad row never aborts the batch.
func Normalize(raws []RawRecord, opts NormalizeOptions) ([]Record, NormalizeReport) {
	out := make([]Record, 0, len(raws))
	rep := NormalizeReport{Read: len(raws)}
	for _, raw := range raws {
		rec, err := NormalizeRecord(raw, opts)
		switch {
		case err == nil:
			out = append(out, rec)
		case errors.Is(err, errSentinelYear):
			rep.SentinelYear++
		case errors.Is(err, errMissingField):
			rep.MissingField++
		default:
			rep.Malformed++
		}
	}
	rep.Kept = len(out)
	return out, rep
}
