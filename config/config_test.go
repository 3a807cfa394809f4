package config

import "testing"

func TestNormalizeAnnouncers(t *testing.T) {
	got := NormalizeAnnouncers([]string{"RB1abc", "RB1abc", " ", "RB1def"})
	want := []string{"RB1abc", "RB1def"}
	if len(got) != len(want) {
		t.Fatalf("len=%d want=%d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("at %d got=%q want=%q", i, got[i], want[i])
		}
	}
}

func TestValidateConfigOK(t *testing.T) {
	cfg := DefaultConfig()
	if err := ValidateConfig(cfg); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidateConfigRejectsEmptyWorkingDir(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WorkingDir = ""
	if err := ValidateConfig(cfg); err == nil {
		t.Fatalf("expected error")
	}
}

func TestValidateConfigRejectsBadLogLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogLevel = "verbose"
	if err := ValidateConfig(cfg); err == nil {
		t.Fatalf("expected error")
	}
}

func TestValidateConfigRejectsZeroMultiplier(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Epochs = []EpochRule{{EndBlock: 100, NamespaceLifetimeMult: 0, NamespaceLifetimeGrace: 1}}
	if err := ValidateConfig(cfg); err == nil {
		t.Fatalf("expected error")
	}
}

func TestEpochForPicksAscendingBoundary(t *testing.T) {
	cfg := Config{
		Epochs: []EpochRule{
			{EndBlock: 100, NamespaceLifetimeMult: 1, NamespaceLifetimeGrace: 10},
			{EndBlock: 200, NamespaceLifetimeMult: 2, NamespaceLifetimeGrace: 20},
		},
	}
	r, err := cfg.EpochFor(50)
	if err != nil || r.NamespaceLifetimeMult != 1 {
		t.Fatalf("height=50: got %+v err=%v", r, err)
	}
	r, err = cfg.EpochFor(150)
	if err != nil || r.NamespaceLifetimeMult != 2 {
		t.Fatalf("height=150: got %+v err=%v", r, err)
	}
	if _, err := cfg.EpochFor(500); err == nil {
		t.Fatalf("expected error beyond last epoch boundary")
	}
}
