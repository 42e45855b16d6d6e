package prediction

import (
	"errors"
	"testing"
)

func TestBonusQuota(t *testing.T) {
	t.Parallel()

	cases := []struct {
		windowSize int
		want       int
	}{
		{0, 0},
		{-3, 0},
		{4, 0},
		{5, 1},
		{9, 1},
		{10, 2},
		{14, 2},
		{20, 4},
	}

	for _, tc := range cases {
		if got := BonusQuota(tc.windowSize); got != tc.want {
			t.Fatalf("BonusQuota(%d) = %d, want %d", tc.windowSize, got, tc.want)
		}
	}
}

func TestCanMarkBonus(t *testing.T) {
	t.Parallel()

	// 10 fixtures buy two slots.
	if !CanMarkBonus(0, 10) {
		t.Fatalf("first mark within quota must be allowed")
	}
	if !CanMarkBonus(1, 10) {
		t.Fatalf("second mark within quota must be allowed")
	}
	if CanMarkBonus(2, 10) {
		t.Fatalf("third mark must exceed the quota")
	}
	if CanMarkBonus(0, 4) {
		t.Fatalf("a four fixture matchday has no bonus slot")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := Prediction{UserID: "u-1", FixtureID: "fx-1", PredictedHome: 2, PredictedAway: 1}

	cases := []struct {
		name    string
		mutate  func(p *Prediction)
		wantErr error
	}{
		{"valid", func(p *Prediction) {}, nil},
		{"nil nil is a valid scoreline", func(p *Prediction) { p.PredictedHome, p.PredictedAway = 0, 0 }, nil},
		{"negative home", func(p *Prediction) { p.PredictedHome = -1 }, ErrNegativeScore},
		{"negative away", func(p *Prediction) { p.PredictedAway = -2 }, ErrNegativeScore},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			p := valid
			tc.mutate(&p)
			err := Validate(p)
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("got %v, want %v", err, tc.wantErr)
			}
		})
	}

	if err := Validate(Prediction{FixtureID: "fx-1"}); err == nil {
		t.Fatalf("missing user id must fail validation")
	}
	if err := Validate(Prediction{UserID: "u-1"}); err == nil {
		t.Fatalf("missing fixture id must fail validation")
	}
}
