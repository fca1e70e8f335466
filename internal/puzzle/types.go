package puzzle

// Person is a sanitized cast member.
type Person struct {
	ID          *int64  `json:"id"`
	Name        string  `json:"name"`
	Character   string  `json:"character"`
	ProfilePath *string `json:"profile_path"`
}

// Director is a sanitized director credit.
type Director struct {
	ID   *int64 `json:"id"`
	Name string `json:"name"`
}

// KeyPerson names the cast member that links an entry to the next one.
type KeyPerson struct {
	Name string `json:"name"`
}

// Entry is one normalized movie in a puzzle.
type Entry struct {
	ID            *int64     `json:"id"`
	Title         string     `json:"title"`
	OriginalTitle string     `json:"original_title"`
	PosterPath    *string    `json:"poster_path"`
	ReleaseDate   string     `json:"release_date"`
	Overview      string     `json:"overview"`
	GenreIDs      []int64    `json:"genre_ids"`
	Directors     []Director `json:"directors"`
	Cast          []Person   `json:"cast"`
	KeyPerson     KeyPerson  `json:"keyPerson"`
}

// Puzzle is the client-facing chain of movies.
type Puzzle struct {
	PuzzleID  int64    `json:"puzzleId"`
	Puzzle    []Entry  `json:"puzzle"`
	KeyPeople []string `json:"keyPeople"`
}

// Summary is the listing form of a stored puzzle.
type Summary struct {
	PuzzleID  int64    `json:"puzzleId"`
	KeyPeople []string `json:"keyPeople"`
}

// Summary returns the listing form of p.
func (p *Puzzle) Summary() Summary {
	return Summary{PuzzleID: p.PuzzleID, KeyPeople: append([]string{}, p.KeyPeople...)}
}
