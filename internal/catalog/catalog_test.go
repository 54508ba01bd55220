package catalog

import "testing"

func TestImageURL(t *testing.T) {
	tests := []struct {
		name string
		base string
		path string
		want string
	}{
		{"join", "https://image.tmdb.org/t/p/w500", "/abc.jpg", "https://image.tmdb.org/t/p/w500/abc.jpg"},
		{"trailing slash", "https://img/", "/abc.jpg", "https://img/abc.jpg"},
		{"missing slash", "https://img", "abc.jpg", "https://img/abc.jpg"},
		{"absolute path kept", "https://img", "https://other/x.jpg", "https://other/x.jpg"},
		{"placeholder", "https://img", "  ", "placeholder.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ImageURL(tt.base, tt.path, "placeholder.png"); got != tt.want {
				t.Fatalf("ImageURL = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRecordIsPerson(t *testing.T) {
	if !(Record{MediaType: "person"}).IsPerson() {
		t.Fatal("media_type person should be a person")
	}
	if !(Record{KnownForDepartment: "Acting"}).IsPerson() {
		t.Fatal("known_for_department should mark a person")
	}
	if (Record{MediaType: "movie"}).IsPerson() {
		t.Fatal("movie misclassified as person")
	}
}

func TestParseCategory(t *testing.T) {
	for raw, want := range map[string]Category{"": CategoryMedia, "TV": CategoryMedia, "person": CategoryPerson} {
		got, err := ParseCategory(raw)
		if err != nil || got != want {
			t.Fatalf("ParseCategory(%q) = %q, %v", raw, got, err)
		}
	}
	if _, err := ParseCategory("books"); err == nil {
		t.Fatal("expected error for unknown category")
	}
}
