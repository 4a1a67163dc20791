package core

import "testing"

func TestParseEntityUID(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantType string
		wantID   string
		wantErr  bool
	}{
		{
			name:     "Namespaced Type",
			input:    `Library::User::"Victor"`,
			wantType: "Library::User",
			wantID:   "Victor",
		},
		{
			name:     "Plain Type",
			input:    `User::"alice"`,
			wantType: "User",
			wantID:   "alice",
		},
		{
			name:     "Deep Namespace",
			input:    `App::Accounts::User::"bob"`,
			wantType: "App::Accounts::User",
			wantID:   "bob",
		},
		{
			name:     "Escaped Quote In ID",
			input:    `Book::"The \"black\" Swan"`,
			wantType: "Book",
			wantID:   `The "black" Swan`,
		},
		{
			name:     "ID With Spaces",
			input:    `Library::Book::"Thinking Fast and Slow"`,
			wantType: "Library::Book",
			wantID:   "Thinking Fast and Slow",
		},
		{
			name:    "Missing Quotes",
			input:   `User::alice`,
			wantErr: true,
		},
		{
			name:    "Missing Type",
			input:   `"alice"`,
			wantErr: true,
		},
		{
			name:    "Trailing Garbage",
			input:   `User::"alice"x`,
			wantErr: true,
		},
		{
			name:    "Unterminated ID",
			input:   `User::"alice`,
			wantErr: true,
		},
		{
			name:    "Invalid Type Component",
			input:   `1User::"alice"`,
			wantErr: true,
		},
		{
			name:    "Empty Type Component",
			input:   `Library::::User::"x"`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uid, err := ParseEntityUID(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseEntityUID(%q) expected error, got %v", tt.input, uid)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseEntityUID(%q) error = %v", tt.input, err)
			}
			if got := uid.Type().String(); got != tt.wantType {
				t.Errorf("type = %q, want %q", got, tt.wantType)
			}
			if uid.ID() != tt.wantID {
				t.Errorf("id = %q, want %q", uid.ID(), tt.wantID)
			}
		})
	}
}

func TestEntityUID_StringRoundTrip(t *testing.T) {
	inputs := []string{
		`Library::User::"Victor"`,
		`Book::"The \"black\" Swan"`,
		`User::"tab\there"`,
	}
	for _, input := range inputs {
		uid, err := ParseEntityUID(input)
		if err != nil {
			t.Fatalf("ParseEntityUID(%q) error = %v", input, err)
		}
		again, err := ParseEntityUID(uid.String())
		if err != nil {
			t.Fatalf("re-parsing %q error = %v", uid.String(), err)
		}
		if again != uid {
			t.Errorf("round trip of %q changed value: %v != %v", input, again, uid)
		}
	}
}

func TestEntityUID_Equality(t *testing.T) {
	a, _ := ParseEntityUID(`Library::User::"Victor"`)
	b, _ := ParseEntityUID(`Library::User::"Victor"`)
	c, _ := ParseEntityUID(`Library::User::"Nassim"`)

	if a != b {
		t.Errorf("equal UIDs compare unequal")
	}
	if a == c {
		t.Errorf("distinct UIDs compare equal")
	}
}
