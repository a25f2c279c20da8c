package engine

import "testing"

const personJSON = `{
	"id": "ocd-person/11111111-2222-3333-4444-555566667777",
	"name": "Jane Doe",
	"image": "http://example.com/jane.jpg",
	"contact_details": [
		{"type": "email", "value": "jane@example.gov"},
		{"type": "voice", "value": "555-0100"}
	],
	"links": [{"url": "http://example.gov/jane"}],
	"memberships": [
		{
			"organization": {"id": "ocd-organization/council"},
			"post": {"id": "ocd-post/d1"},
			"label": "Council Member",
			"role": "member",
			"start_date": "2026-01-01",
			"end_date": ""
		},
		{
			"organization": {"id": "ocd-organization/finance"},
			"post": null,
			"label": "Committee Member",
			"role": "member",
			"start_date": "2026-01-01",
			"end_date": ""
		}
	],
	"sources": [{"url": "http://example.gov/jane", "note": "web"}]
}`

func TestParsePerson(t *testing.T) {
	rows, err := ParsePerson([]byte(personJSON))
	if err != nil {
		t.Fatalf("ParsePerson failed: %v", err)
	}

	p := rows.Person
	if p.Email != "jane@example.gov" {
		t.Errorf("email = %q", p.Email)
	}
	if p.Phone != "555-0100" {
		t.Errorf("phone = %q", p.Phone)
	}
	if p.Website != "http://example.gov/jane" {
		t.Errorf("website = %q", p.Website)
	}
	if p.Slug != "jane-doe-555566667777" {
		t.Errorf("slug = %q", p.Slug)
	}
	if p.Headshot != "555566667777.jpg" {
		t.Errorf("headshot = %q", p.Headshot)
	}
}

// A membership with a post and one without are distinct rows; the null post
// is preserved, not collapsed.
func TestParsePerson_MembershipNullPost(t *testing.T) {
	rows, err := ParsePerson([]byte(personJSON))
	if err != nil {
		t.Fatalf("ParsePerson failed: %v", err)
	}
	if len(rows.Memberships) != 2 {
		t.Fatalf("expected 2 memberships, got %d", len(rows.Memberships))
	}

	withPost, withoutPost := rows.Memberships[0], rows.Memberships[1]
	if withPost.PostID == nil || *withPost.PostID != "ocd-post/d1" {
		t.Errorf("post_id = %v, want ocd-post/d1", withPost.PostID)
	}
	if withoutPost.PostID != nil {
		t.Errorf("expected nil post_id, got %v", *withoutPost.PostID)
	}
	if withoutPost.EndDate != nil {
		t.Errorf("expected open end_date, got %v", withoutPost.EndDate)
	}
	if withPost.StartDate == nil || withPost.StartDate.Format("2006-01-02") != "2026-01-01" {
		t.Errorf("start_date = %v", withPost.StartDate)
	}
}

func TestParsePerson_NoImage(t *testing.T) {
	body := `{"id": "ocd-person/11111111-2222-3333-4444-555566667777", "name": "No Photo"}`
	rows, err := ParsePerson([]byte(body))
	if err != nil {
		t.Fatalf("ParsePerson failed: %v", err)
	}
	if rows.Person.Headshot != "" {
		t.Errorf("expected empty headshot, got %q", rows.Person.Headshot)
	}
}
