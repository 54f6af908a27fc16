package runner

import (
	"testing"

	"github.com/gabelluardo/grammY/pkg/domain"
)

func TestParseLine_Command(t *testing.T) {
	u := ParseLine("/checkout extra")
	if u == nil {
		t.Fatal("expected an update")
	}
	if u.Kind != domain.KindCommand {
		t.Errorf("kind = %q, want command", u.Kind)
	}
	if got := u.Command(); got != "checkout" {
		t.Errorf("Command() = %q, want %q", got, "checkout")
	}
	if got := u.CommandArgs(); got != "extra" {
		t.Errorf("CommandArgs() = %q, want %q", got, "extra")
	}
}

func TestParseLine_Callback(t *testing.T) {
	u := ParseLine("@pay-card")
	if u == nil {
		t.Fatal("expected an update")
	}
	if u.Kind != domain.KindCallback {
		t.Errorf("kind = %q, want callback", u.Kind)
	}
	if got := u.CallbackData(); got != "pay-card" {
		t.Errorf("CallbackData() = %q, want %q", got, "pay-card")
	}
}

func TestParseLine_Message(t *testing.T) {
	u := ParseLine("  hello there  ")
	if u == nil {
		t.Fatal("expected an update")
	}
	if u.Kind != domain.KindMessage {
		t.Errorf("kind = %q, want message", u.Kind)
	}
	if u.Text != "hello there" {
		t.Errorf("text = %q, want trimmed input", u.Text)
	}
}

func TestParseLine_Blank(t *testing.T) {
	if u := ParseLine("   "); u != nil {
		t.Errorf("blank line parsed to %+v, want nil", u)
	}
}
