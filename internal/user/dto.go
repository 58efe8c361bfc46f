package user

// Filters narrows directory listings. Zero values mean "no filter".
type Filters struct {
	Search string `json:"search"` // substring match on name or email
	Role   string `json:"role"`
	Status string `json:"status"` // "active" or "inactive"
	Plan   string `json:"plan"`
}

// UserListResult pairs a page of users with the total matching count so the
// client can render pagination.
type UserListResult struct {
	Users      []*User `json:"users"`
	Total      int64   `json:"total"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
	TotalPages int     `json:"total_pages"`
}

type UpdateRoleDTO struct {
	Role string `json:"role"`
}

type UpdateStatusDTO struct {
	IsActive bool `json:"is_active"`
}

// BulkUpdateDTO applies one change to many accounts at once. Exactly one of
// Role or IsActive should be set.
type BulkUpdateDTO struct {
	UserIDs  []int64 `json:"user_ids"`
	Role     string  `json:"role,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// ValidationError for malformed directory requests.
type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

func (d BulkUpdateDTO) Validate() error {
	if len(d.UserIDs) == 0 {
		return ValidationError{Msg: "user_ids must not be empty"}
	}
	if d.Role == "" && d.IsActive == nil {
		return ValidationError{Msg: "either role or is_active must be provided"}
	}
	if d.Role != "" && d.IsActive != nil {
		return ValidationError{Msg: "only one of role or is_active may be provided"}
	}
	return nil
}
