package domain

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestRenameInputValidate(t *testing.T) {
	cases := []struct {
		name string
		ok   bool
	}{
		{"", false},
		{"a", true},
		{strings.Repeat("x", MaxRoomNameLen), true},
		{strings.Repeat("x", MaxRoomNameLen+1), false},
		// counted in runes, not bytes
		{strings.Repeat("é", MaxRoomNameLen), true},
	}
	for _, tc := range cases {
		err := RenameInput{Name: tc.name}.Validate()
		if tc.ok && err != nil {
			t.Errorf("Validate(%q) = %v, want nil", tc.name, err)
		}
		if !tc.ok && !errors.Is(err, ErrValidation) {
			t.Errorf("Validate(%q) = %v, want ErrValidation", tc.name, err)
		}
	}
}

func TestParseNameTrims(t *testing.T) {
	in, err := ParseName("  Study hall \t")
	if err != nil || in.Name != "Study hall" {
		t.Fatalf("ParseName = %+v, %v", in, err)
	}
	for _, raw := range []string{"", "   ", "\t\n"} {
		if _, err := ParseName(raw); !errors.Is(err, ErrValidation) {
			t.Errorf("ParseName(%q) = %v, want ErrValidation", raw, err)
		}
	}
	// padding does not count toward the limit
	if _, err := ParseName(" " + strings.Repeat("x", MaxRoomNameLen) + " "); err != nil {
		t.Errorf("padded max-length name rejected: %v", err)
	}
}

func TestLimitInputValidate(t *testing.T) {
	for _, n := range []int{0, 1, 50, 99} {
		if err := (LimitInput{Limit: n}).Validate(); err != nil {
			t.Errorf("Validate(%d) = %v", n, err)
		}
	}
	for _, n := range []int{-1, 100, 1000} {
		if err := (LimitInput{Limit: n}).Validate(); !errors.Is(err, ErrValidation) {
			t.Errorf("Validate(%d) = %v, want ErrValidation", n, err)
		}
	}
}

func TestOverwriteWith(t *testing.T) {
	ow := Overwrite{Target: Everyone, Allow: PermViewRoom | PermConnect}
	locked := ow.With(PermConnect, false)
	if locked.Allows(PermConnect) {
		t.Fatal("connect still allowed after deny")
	}
	if !locked.Allow.Has(PermViewRoom) {
		t.Fatal("unrelated allow bit lost")
	}
	unlocked := locked.With(PermConnect, true)
	if !unlocked.Allows(PermConnect) || !unlocked.Allow.Has(PermConnect) {
		t.Fatalf("unlock = %+v", unlocked)
	}
}

func TestManagedRoomExpired(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := ManagedRoom{ID: "r"}
	if m.Expired(now, time.Minute) {
		t.Fatal("occupied room reported expired")
	}
	since := now.Add(-59 * time.Second)
	m.EmptySince = &since
	if m.Expired(now, time.Minute) {
		t.Fatal("expired before grace")
	}
	if !m.Expired(now.Add(time.Second), time.Minute) {
		t.Fatal("not expired at grace")
	}
}

func TestMembershipChange(t *testing.T) {
	a, b := RoomID("a"), RoomID("b")
	c := MembershipChange{OldRoomID: &a, NewRoomID: &b}
	if !c.Left(a) || c.Left(b) || !c.Joined(b) || c.Joined(a) {
		t.Fatalf("unexpected transitions for %+v", c)
	}
	same := MembershipChange{OldRoomID: &a, NewRoomID: &a}
	if same.Joined(a) || same.Left(a) {
		t.Fatal("mute-only update treated as a move")
	}
}

func TestUserMessageHidesPlatformDetail(t *testing.T) {
	err := errors.Join(ErrPlatformUnavailable, errors.New("503 upstream token=abc"))
	if msg := UserMessage(err); strings.Contains(msg, "abc") {
		t.Fatalf("UserMessage leaked detail: %q", msg)
	}
}
