package board

// Player identifies one of the two sides. NoPlayer marks an absent edge or
// an unclaimed cell.
type Player uint8

const (
	NoPlayer Player = iota
	Player1
	Player2
)

// Other returns the opponent of p.
func (p Player) Other() Player {
	switch p {
	case Player1:
		return Player2
	case Player2:
		return Player1
	}
	return NoPlayer
}

// Valid reports whether p is Player1 or Player2.
func (p Player) Valid() bool {
	return p == Player1 || p == Player2
}

func (p Player) String() string {
	switch p {
	case Player1:
		return "1"
	case Player2:
		return "2"
	}
	return "-"
}

// Outcome is the game result. The numeric values match the winner field of
// saved games: 0 ongoing, 1 and 2 for a winning player, 3 for a draw.
type Outcome uint8

const (
	Ongoing Outcome = iota
	Player1Wins
	Player2Wins
	Draw
)

// Winner returns the winning player, or NoPlayer for an ongoing or drawn game.
func (o Outcome) Winner() Player {
	switch o {
	case Player1Wins:
		return Player1
	case Player2Wins:
		return Player2
	}
	return NoPlayer
}

func (o Outcome) String() string {
	switch o {
	case Player1Wins:
		return "player 1 wins"
	case Player2Wins:
		return "player 2 wins"
	case Draw:
		return "draw"
	}
	return "ongoing"
}
