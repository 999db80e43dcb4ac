package validator

import (
	"testing"
	"time"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidUUID(t *testing.T) {
	valid := []string{
		"0188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b",
		"123e4567-e89b-12d3-a456-426614174000",
		"123E4567-E89B-12D3-A456-426614174000",
	}
	invalid := []string{
		"0188d0f27b8c7b4a8a2b6b8b8b8b8b8b", // missing dashes
		"g188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b",
		"{123e4567-e89b-12d3-a456-426614174000}",
		"",
	}
	for _, id := range valid {
		if !IsValidUUID(id) {
			t.Errorf("IsValidUUID(%q) = false, want true", id)
		}
	}
	for _, id := range invalid {
		if IsValidUUID(id) {
			t.Errorf("IsValidUUID(%q) = true, want false", id)
		}
	}
}

func TestParseDate(t *testing.T) {
	loc := time.FixedZone("WIB", 7*60*60)

	valid := []string{"2023-01-01", "2000-12-31", "2024-03-10T22:30:00Z"}
	invalid := []string{"2023-13-01", "2023-01-32", "2023/01/01", "01-01-2023", ""}
	for _, s := range valid {
		got, ok := ParseDate(s, loc)
		if !ok {
			t.Errorf("ParseDate(%q) = false, want true", s)
			continue
		}
		if got.Location() != loc {
			t.Errorf("ParseDate(%q) location = %v, want %v", s, got.Location(), loc)
		}
	}
	for _, s := range invalid {
		if _, ok := ParseDate(s, loc); ok {
			t.Errorf("ParseDate(%q) = true, want false", s)
		}
	}

	// 22:30 UTC is already the next calendar day at +07:00.
	got, _ := ParseDate("2024-03-10T22:30:00Z", loc)
	if got.Day() != 11 {
		t.Errorf("ParseDate day = %d, want 11", got.Day())
	}
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		{Field: "reason", Message: "invalid"},
		{Field: "categoryName", Message: "required"},
	}
	got := errs.Error()
	want := "reason: invalid; categoryName: required"
	if got != want {
		t.Errorf("ValidationErrors.Error() = %q, want %q", got, want)
	}
}

func TestValidationErrors_ToMap(t *testing.T) {
	errs := ValidationErrors{
		{Field: "reason", Message: "invalid"},
		{Field: "categoryName", Message: "required"},
	}
	got := errs.ToMap()
	want := map[string]string{"reason": "invalid", "categoryName": "required"}
	if len(got) != len(want) {
		t.Errorf("ValidationErrors.ToMap() length = %d, want %d", len(got), len(want))
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("ValidationErrors.ToMap()[%q] = %q, want %q", k, got[k], v)
		}
	}
}

type sampleRequest struct {
	Name  string `json:"name" validate:"required,max=5"`
	Kind  string `json:"kind" validate:"omitempty,oneof=a b"`
	Email string `json:"email" validate:"omitempty,email"`
}

func TestStruct(t *testing.T) {
	if err := Struct(sampleRequest{Name: "ok", Kind: "a"}); err != nil {
		t.Fatalf("Struct(valid) = %v, want nil", err)
	}

	err := Struct(sampleRequest{Kind: "c", Email: "nope"})
	errs, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("Struct(invalid) returned %T, want ValidationErrors", err)
	}
	got := errs.ToMap()
	if got["name"] != "name is required" {
		t.Errorf("name message = %q", got["name"])
	}
	if got["kind"] != "kind must be one of [a b]" {
		t.Errorf("kind message = %q", got["kind"])
	}
	if got["email"] != "email must be a valid email" {
		t.Errorf("email message = %q", got["email"])
	}
}
