package dto

type CreateTopRequest struct {
	Source   string  `json:"source"`
	Identity string  `json:"identity"`
	Name     *string `json:"name,omitempty"`
}

func (r *CreateTopRequest) Validate() []FieldIssue {
	var issues []FieldIssue
	if r.Source == "" {
		issues = append(issues, FieldIssue{Field: "source", Message: "must not be empty"})
	}
	if r.Identity == "" {
		issues = append(issues, FieldIssue{Field: "identity", Message: "must not be empty"})
	}
	return issues
}
