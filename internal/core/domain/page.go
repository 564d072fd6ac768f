package domain

// Default page sizes for list operations.
const (
	DefaultChatPageLimit    = 50
	DefaultMessagePageLimit = 100
)

// Page selects a window of an ordered result set.
// A zero Limit means the operation's default.
type Page struct {
	Offset int
	Limit  int
}

// Normalise returns the page with defaults applied.
// Negative offsets are treated as zero.
func (p Page) Normalise(defaultLimit int) Page {
	if p.Offset < 0 {
		p.Offset = 0
	}
	if p.Limit <= 0 {
		p.Limit = defaultLimit
	}
	return p
}
