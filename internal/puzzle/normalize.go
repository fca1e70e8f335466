package puzzle

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ErrInvalidPuzzle reports a payload that does not describe a puzzle.
var ErrInvalidPuzzle = errors.New("invalid puzzle payload")

// NormalizeMovie converts a raw movie object into the client contract.
// A nil map yields an entry with empty fields.
func NormalizeMovie(raw map[string]any) Entry {
	cast := sanitizeCast(raw["cast"])
	title := firstString(raw["title"], raw["name"])
	originalTitle := firstString(raw["original_title"])
	if originalTitle == "" {
		originalTitle = title
	}
	if originalTitle == "" {
		originalTitle = cleanString(raw["original_name"])
	}

	return Entry{
		ID:            optionalInt(raw["id"]),
		Title:         title,
		OriginalTitle: originalTitle,
		PosterPath:    nullableString(raw["poster_path"]),
		ReleaseDate:   cleanString(raw["release_date"]),
		Overview:      cleanString(raw["overview"]),
		GenreIDs:      genreIDs(raw["genre_ids"]),
		Directors:     sanitizeDirectors(raw["directors"]),
		Cast:          cast,
		KeyPerson:     KeyPerson{Name: keyPersonName(raw["keyPerson"], cast)},
	}
}

// NormalizePuzzle converts a decoded puzzle payload into the client contract.
// It accepts generic JSON values as well as *Puzzle and Puzzle, and returns
// nil when raw is not an object. A missing or non-array puzzle field
// normalizes to an empty entry list.
func NormalizePuzzle(raw any) *Puzzle {
	switch typed := raw.(type) {
	case *Puzzle:
		if typed == nil {
			return nil
		}
		raw = toGeneric(typed)
	case Puzzle:
		raw = toGeneric(&typed)
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return nil
	}
	rawEntries, _ := obj["puzzle"].([]any)

	entries := make([]Entry, 0, len(rawEntries))
	derived := make([]string, 0, len(rawEntries))
	for _, item := range rawEntries {
		movie, _ := item.(map[string]any)
		entry := NormalizeMovie(movie)
		entries = append(entries, entry)
		derived = append(derived, entry.KeyPerson.Name)
	}

	keyPeople := derived
	if provided, ok := obj["keyPeople"].([]any); ok && len(provided) == len(derived) {
		keyPeople = make([]string, 0, len(provided))
		for _, name := range provided {
			keyPeople = append(keyPeople, cleanString(name))
		}
	}

	id, ok := toInt64(obj["puzzleId"])
	if !ok {
		id, _ = toInt64(obj["id"])
	}

	return &Puzzle{PuzzleID: id, Puzzle: entries, KeyPeople: keyPeople}
}

// DecodePuzzle parses JSON and normalizes the result.
func DecodePuzzle(data []byte) (*Puzzle, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, errors.Join(ErrInvalidPuzzle, err)
	}
	p := NormalizePuzzle(raw)
	if p == nil {
		return nil, ErrInvalidPuzzle
	}
	return p, nil
}

func toGeneric(p *Puzzle) any {
	data, err := json.Marshal(p)
	if err != nil {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil
	}
	return out
}

func sanitizeCast(value any) []Person {
	items, _ := value.([]any)
	out := make([]Person, 0, len(items))
	for _, item := range items {
		actor, ok := item.(map[string]any)
		if !ok {
			continue
		}
		name := firstString(actor["name"], actor["original_name"])
		if name == "" {
			continue
		}
		out = append(out, Person{
			ID:          optionalInt(actor["id"]),
			Name:        name,
			Character:   cleanString(actor["character"]),
			ProfilePath: nullableString(actor["profile_path"]),
		})
	}
	return out
}

func sanitizeDirectors(value any) []Director {
	items, _ := value.([]any)
	out := make([]Director, 0, len(items))
	for _, item := range items {
		director, ok := item.(map[string]any)
		if !ok {
			continue
		}
		name := personName(director)
		if name == "" {
			continue
		}
		id := optionalInt(director["id"])
		if id == nil {
			id = optionalInt(director["personId"])
		}
		out = append(out, Director{ID: id, Name: name})
	}
	return out
}

func keyPersonName(value any, cast []Person) string {
	if person, ok := value.(map[string]any); ok {
		if name := personName(person); name != "" {
			return name
		}
	}
	for _, actor := range cast {
		if actor.Name != "" {
			return actor.Name
		}
	}
	return ""
}

// personName resolves director and key person names. Cast members do not
// fall back to fullName.
func personName(person map[string]any) string {
	return firstString(person["name"], person["original_name"], person["fullName"])
}

func genreIDs(value any) []int64 {
	items, _ := value.([]any)
	out := make([]int64, 0, len(items))
	for _, item := range items {
		if id, ok := toInt64(item); ok {
			out = append(out, id)
		}
	}
	return out
}

// cleanString trims and NFC-normalizes string values; anything else is "".
func cleanString(value any) string {
	s, ok := value.(string)
	if !ok {
		return ""
	}
	return norm.NFC.String(strings.TrimSpace(s))
}

func firstString(values ...any) string {
	for _, v := range values {
		if s := cleanString(v); s != "" {
			return s
		}
	}
	return ""
}

func nullableString(value any) *string {
	s := cleanString(value)
	if s == "" {
		return nil
	}
	return &s
}

func optionalInt(value any) *int64 {
	id, ok := toInt64(value)
	if !ok {
		return nil
	}
	return &id
}

// toInt64 accepts integral numbers and numeric strings.
func toInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case json.Number:
		return parseIntegral(v.String())
	case string:
		return parseIntegral(strings.TrimSpace(v))
	case float64:
		return fromFloat(v)
	case float32:
		return fromFloat(float64(v))
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	default:
		return 0, false
	}
}

func parseIntegral(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return fromFloat(f)
}

func fromFloat(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f > math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}
