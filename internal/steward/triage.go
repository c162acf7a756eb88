package steward

// Assessment holds derived signals computed from a Snapshot.
type Assessment struct {
	Turn           int
	State          string
	PlayerBases    int
	EnemyBases     int
	FrontLines     int
	PlayerStrength float64 // Mean strength of player front-line bases
	EnemyStrength  float64 // Mean strength of enemy front-line bases
	Outlook        string  // "WINNING", "LOSING", "CONTESTED", "OVER"
}

// Triage computes an Assessment from the snapshot's data.
func Triage(snap *Snapshot) *Assessment {
	a := &Assessment{
		Turn:        snap.Status.Turn,
		State:       snap.Status.State,
		PlayerBases: snap.Status.PlayerBases,
		EnemyBases:  snap.Status.EnemyBases,
		FrontLines:  len(snap.FrontLines),
	}

	var playerSum, enemySum float64
	var playerN, enemyN int
	for _, cp := range snap.ControlPoints {
		if !cp.FrontLine {
			continue
		}
		if cp.Side == "blue" {
			playerSum += cp.Strength
			playerN++
		} else {
			enemySum += cp.Strength
			enemyN++
		}
	}
	if playerN > 0 {
		a.PlayerStrength = playerSum / float64(playerN)
	}
	if enemyN > 0 {
		a.EnemyStrength = enemySum / float64(enemyN)
	}

	switch {
	case a.State != "" && a.State != "continue":
		a.Outlook = "OVER"
	case a.PlayerStrength-a.EnemyStrength > 0.2:
		a.Outlook = "WINNING"
	case a.EnemyStrength-a.PlayerStrength > 0.2:
		a.Outlook = "LOSING"
	default:
		a.Outlook = "CONTESTED"
	}
	return a
}

// Decision is what the steward does this cycle.
type Decision struct {
	Advance         bool
	ForceNoRecovery bool
	Reason          string
}

// Policy bounds the steward.
type Policy struct {
	ForceNoRecovery bool
	MaxTurns        int // 0 = until the campaign ends
}

// Decide picks the cycle's action from an assessment.
func Decide(a *Assessment, p Policy) Decision {
	switch {
	case a.Outlook == "OVER":
		return Decision{Reason: "campaign ended: " + a.State}
	case p.MaxTurns > 0 && a.Turn >= p.MaxTurns:
		return Decision{Reason: "turn limit reached"}
	}
	return Decision{Advance: true, ForceNoRecovery: p.ForceNoRecovery, Reason: "outlook " + a.Outlook}
}
