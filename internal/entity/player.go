package entity

// Identity is the authenticated user as resolved by the auth collaborator.
// It is produced once per connection and threaded through; the room core
// never re-derives it.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Player is a room member with an assigned mark. The host always plays X,
// the guest always plays O.
type Player struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Mark     string `json:"mark"`
}

func NewPlayer(identity Identity, mark string) Player {
	return Player{
		ID:       identity.ID,
		Username: identity.Username,
		Mark:     mark,
	}
}
