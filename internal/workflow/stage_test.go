package workflow

import (
	"testing"
	"time"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestDeriveStageStatus(t *testing.T) {
	debut, fin := day("2024-01-01"), day("2024-06-01")
	cases := []struct {
		now  time.Time
		want StageStatus
	}{
		{day("2023-12-31"), StagePasCommence},
		{day("2024-01-01"), StageEnCours},
		{day("2024-03-15"), StageEnCours},
		{day("2024-06-01"), StageEnCours},
		{day("2024-06-01").Add(23*time.Hour + 59*time.Minute), StageEnCours},
		{day("2024-06-02"), StageTermine},
	}
	for _, tc := range cases {
		if got := DeriveStageStatus(EntenteSignee, debut, fin, tc.now); got != tc.want {
			t.Fatalf("now=%s: expected %s got %s", tc.now, tc.want, got)
		}
	}
}

func TestDeriveStageStatusUndefinedUnlessSigned(t *testing.T) {
	debut, fin := day("2024-01-01"), day("2024-06-01")
	for _, st := range []EntenteStatus{EntenteEnAttente, EntenteRefusee, EntenteAnnulee} {
		if got := DeriveStageStatus(st, debut, fin, day("2024-03-01")); got != StageUndefined {
			t.Fatalf("statut %s: expected UNDEFINED got %s", st, got)
		}
	}
}

func TestDeriveStageStatusIgnoresTimeOfDay(t *testing.T) {
	debut := time.Date(2024, 1, 1, 18, 0, 0, 0, time.UTC)
	fin := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	morning := time.Date(2024, 1, 1, 7, 0, 0, 0, time.UTC)
	if got := DeriveStageStatus(EntenteSignee, debut, fin, morning); got != StageEnCours {
		t.Fatalf("first day morning: expected EN_COURS got %s", got)
	}
	evening := time.Date(2024, 6, 1, 22, 0, 0, 0, time.UTC)
	if got := DeriveStageStatus(EntenteSignee, debut, fin, evening); got != StageEnCours {
		t.Fatalf("last day evening: expected EN_COURS got %s", got)
	}
}

func TestDeriveStageStatusUsesUTCDays(t *testing.T) {
	// A fixed zone keeps the test independent of the tz database.
	montreal := time.FixedZone("EST", -5*3600)
	tokyo := time.FixedZone("JST", 9*3600)
	debut, fin := day("2024-01-01").In(montreal), day("2024-06-01").In(montreal)
	cases := []struct {
		now  time.Time
		want StageStatus
	}{
		{time.Date(2023, 12, 31, 12, 0, 0, 0, time.UTC), StagePasCommence},
		{time.Date(2024, 1, 1, 0, 30, 0, 0, time.UTC).In(montreal), StageEnCours},
		{time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC), StageEnCours},
		{time.Date(2024, 6, 1, 23, 0, 0, 0, time.UTC).In(tokyo), StageEnCours},
		{time.Date(2024, 6, 2, 1, 0, 0, 0, time.UTC).In(montreal), StageTermine},
	}
	for _, tc := range cases {
		if got := DeriveStageStatus(EntenteSignee, debut, fin, tc.now); got != tc.want {
			t.Fatalf("now=%s: expected %s got %s", tc.now, tc.want, got)
		}
	}
}
