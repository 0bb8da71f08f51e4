package workflow

import "time"

// DeriveStageStatus returns the temporal status of an entente at now.
// It is UNDEFINED unless statut is SIGNEE. Comparison is on UTC calendar days and
// both bounds are inclusive: the stage is EN_COURS on its first and last day.
func DeriveStageStatus(statut EntenteStatus, debut, fin, now time.Time) StageStatus {
	if statut != EntenteSignee {
		return StageUndefined
	}
	today := civilDay(now)
	switch {
	case today.Before(civilDay(debut)):
		return StagePasCommence
	case today.After(civilDay(fin)):
		return StageTermine
	default:
		return StageEnCours
	}
}

// civilDay truncates t to its UTC calendar day, whatever location t carries.
func civilDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
