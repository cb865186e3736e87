package entity

// User is a registered account. PasswordHash never leaves the repository
// layer.
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
}

func (that *User) Identity() Identity {
	return Identity{
		ID:       that.ID,
		Username: that.Username,
	}
}

// Stats are lifetime results for one user, maintained by the statistics
// collaborator on every finished game.
type Stats struct {
	Wins   int64 `json:"wins"`
	Losses int64 `json:"losses"`
	Draws  int64 `json:"draws"`
}
