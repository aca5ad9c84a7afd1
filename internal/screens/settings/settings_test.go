package settings

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/qbank/internal/bridge"
	"github.com/abhisek/qbank/internal/controller"
	"github.com/abhisek/qbank/internal/screen"
)

func testEnv() *screen.Env {
	st := controller.New()
	st.Info = bridge.StoreInfo{DataPath: "/data/qbank", SnapshotInterval: 600, AutoSnapshots: true}
	return &screen.Env{State: st}
}

func TestSettingsScreen_View(t *testing.T) {
	s := New(testEnv())
	view := s.View(120, 30)
	for _, want := range []string{"/data/qbank", "every 10 min", "Auto-snapshots: On", "Snapshot now"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestSettingsScreen_ToggleLabelFollowsState(t *testing.T) {
	env := testEnv()
	s := New(env)
	env.State.SetAutoSnapshot(false)
	if !strings.Contains(s.View(120, 30), "Auto-snapshots: Off") {
		t.Error("expected label to follow the state")
	}
}

func TestSettingsScreen_Actions(t *testing.T) {
	s := New(testEnv())
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Error("expected toggle command")
	}
	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	_, cmd = s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Error("expected snapshot command")
	}
}

func TestFormatInterval(t *testing.T) {
	tests := map[int64]string{0: "-", 60: "every 1 min", 90: "every 90 s"}
	for in, want := range tests {
		if got := formatInterval(in); got != want {
			t.Errorf("formatInterval(%d) = %q, want %q", in, got, want)
		}
	}
}
