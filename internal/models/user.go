package models

// User is a stored credential pair. The password doubles as the API key.
type User struct {
	ID       string `json:"id"`
	Password string `json:"password"`
}

// Wishlists is the stored wishlist record keyed by user id.
type Wishlists map[string][]Movie

// IndexOf returns the position of movieID in movies, or -1.
func IndexOf(movies []Movie, movieID int64) int {
	for i, m := range movies {
		if m.ID == movieID {
			return i
		}
	}
	return -1
}
