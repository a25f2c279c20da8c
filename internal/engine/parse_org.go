package engine

import (
	"encoding/json"
	"fmt"

	"github.com/opencivicdata/ocd-sync/internal/ocd"
)

// ParseOrganization converts one cached organization body.
func ParseOrganization(body []byte) (*Organization, error) {
	var src ocd.Organization
	if err := json.Unmarshal(body, &src); err != nil {
		return nil, fmt.Errorf("decode organization: %w", err)
	}

	sourceURL, _ := primarySource(src.Sources)

	row := &Organization{
		OCDID:          src.ID,
		Name:           src.Name,
		Classification: src.Classification,
		Slug:           SlugWithID(src.Name, src.ID),
		SourceURL:      sourceURL,
	}

	switch {
	case src.Parent != nil && src.Parent.ID != "":
		row.ParentID = &src.Parent.ID
	case src.ParentID != "":
		row.ParentID = &src.ParentID
	}

	return row, nil
}

// ParsePost converts one cached post body.
func ParsePost(body []byte) (*Post, error) {
	var src ocd.Post
	if err := json.Unmarshal(body, &src); err != nil {
		return nil, fmt.Errorf("decode post: %w", err)
	}

	row := &Post{
		OCDID:      src.ID,
		Label:      src.Label,
		Role:       src.Role,
		DivisionID: optional(src.DivisionID),
	}
	if src.Organization != nil {
		row.OrganizationID = src.Organization.ID
	}

	return row, nil
}
