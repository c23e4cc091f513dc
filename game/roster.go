package game

// Roster is the insertion ordered, capacity bounded list of players in the room.
// It is not safe for concurrent use; Session serializes access.
type Roster struct {
	players    []Player
	maxPlayers int
}

func NewRoster(maxPlayers int) *Roster {
	return &Roster{
		players:    make([]Player, 0, maxPlayers),
		maxPlayers: maxPlayers,
	}
}

func (r *Roster) Join(p Player) error {
	if r.IndexOf(p.ID) >= 0 {
		return ErrAlreadyJoined
	}
	if len(r.players) >= r.maxPlayers {
		return ErrRoomFull
	}
	r.players = append(r.players, p)
	return nil
}

// Leave removes the player with the given id and reports whether it was present.
func (r *Roster) Leave(id string) bool {
	i := r.IndexOf(id)
	if i < 0 {
		return false
	}
	r.players = append(r.players[:i], r.players[i+1:]...)
	return true
}

func (r *Roster) Size() int {
	return len(r.players)
}

func (r *Roster) At(index int) (Player, bool) {
	if index < 0 || index >= len(r.players) {
		return Player{}, false
	}
	return r.players[index], true
}

func (r *Roster) IndexOf(id string) int {
	for i, p := range r.players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// Players returns a copy safe to hand out to encoders.
func (r *Roster) Players() []Player {
	out := make([]Player, len(r.players))
	copy(out, r.players)
	return out
}
