package dto

import (
	"strings"
	"testing"
)

func TestAddProjectRequest_Validate(t *testing.T) {
	tests := []struct {
		name       string
		req        AddProjectRequest
		wantFields []string
	}{
		{
			name: "valid",
			req:  AddProjectRequest{ID: "proj-1", Name: "Alpha"},
		},
		{
			name:       "blank_id",
			req:        AddProjectRequest{Name: "Alpha"},
			wantFields: []string{"id"},
		},
		{
			name:       "id_too_long",
			req:        AddProjectRequest{ID: strings.Repeat("p", 201), Name: "Alpha"},
			wantFields: []string{"id"},
		},
		{
			name:       "blank_name",
			req:        AddProjectRequest{ID: "proj-1"},
			wantFields: []string{"name"},
		},
		{
			name:       "name_too_long",
			req:        AddProjectRequest{ID: "proj-1", Name: strings.Repeat("n", 121)},
			wantFields: []string{"name"},
		},
		{
			name:       "both_blank",
			req:        AddProjectRequest{},
			wantFields: []string{"id", "name"},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			errs := test.req.Validate()
			assertFieldErrors(t, errs, test.wantFields)
		})
	}
}

func TestUpdateProjectRequest_Validate(t *testing.T) {
	if errs := (UpdateProjectRequest{Name: "Renamed"}).Validate(); len(errs) != 0 {
		t.Errorf("expected no errors, got %+v", errs)
	}
	if errs := (UpdateProjectRequest{}).Validate(); len(errs) != 1 || errs[0].Field != "name" {
		t.Errorf("expected name error, got %+v", errs)
	}
}
