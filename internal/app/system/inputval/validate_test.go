package inputval

import "testing"

func TestValidate(t *testing.T) {
	type eventInput struct {
		Title string `validate:"required,max=10" label:"Title"`
		Email string `validate:"omitempty,emailaddr" label:"Contact email"`
		Date  string `validate:"required,date" label:"Date"`
	}

	tests := []struct {
		name      string
		input     eventInput
		wantFirst string
	}{
		{"valid", eventInput{Title: "Fête", Date: "2026-06-24"}, ""},
		{"missing title", eventInput{Date: "2026-06-24"}, "Title is required."},
		{"title too long", eventInput{Title: "Festival d'été 2026", Date: "2026-06-24"}, "Title must be at most 10 characters."},
		{"bad email", eventInput{Title: "Fête", Email: "nope", Date: "2026-06-24"}, "A valid email address is required."},
		{"bad date", eventInput{Title: "Fête", Date: "2026-13-01"}, "Date must be a date in YYYY-MM-DD format."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Validate(tt.input)
			if tt.wantFirst == "" {
				if res.HasErrors() {
					t.Fatalf("unexpected errors: %v", res.Errors)
				}
				return
			}
			if !res.HasErrors() {
				t.Fatal("expected errors")
			}
			if res.First() != tt.wantFirst {
				t.Errorf("First() = %q, want %q", res.First(), tt.wantFirst)
			}
		})
	}
}

func TestValidate_CustomRules(t *testing.T) {
	type input struct {
		Slug  string `validate:"required,slug" label:"Slug"`
		URL   string `validate:"omitempty,httpurl" label:"Link"`
		Color string `validate:"omitempty,rgbhex" label:"Primary color"`
		Time  string `validate:"omitempty,clock" label:"Start time"`
	}

	if res := Validate(input{Slug: "council", URL: "https://example.com", Color: "#003366", Time: "18:30"}); res.HasErrors() {
		t.Fatalf("unexpected errors: %v", res.All())
	}

	res := Validate(input{Slug: "Council Page", URL: "ftp://x", Color: "blue", Time: "6pm"})
	if len(res.Errors) != 4 {
		t.Fatalf("got %d errors, want 4: %v", len(res.Errors), res.All())
	}
	if res.Errors[0].Field != "Slug" || res.Errors[0].Tag != "slug" {
		t.Errorf("first error = %+v", res.Errors[0])
	}
}

func TestResult_AllAndFirst(t *testing.T) {
	var empty Result
	if empty.First() != "" || empty.All() != "" {
		t.Error("empty result should have no messages")
	}

	r := &Result{Errors: []FieldError{{Message: "Error 1"}, {Message: "Error 2"}}}
	if r.First() != "Error 1" {
		t.Errorf("First() = %q", r.First())
	}
	if r.All() != "Error 1; Error 2" {
		t.Errorf("All() = %q", r.All())
	}
}
