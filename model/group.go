package model

// Group is a permission group accounts can belong to.
type Group struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	IsDefault bool   `json:"is_default"`
}

// GroupMembership links an account to a group.
type GroupMembership struct {
	AccountID int `json:"account_id"`
	GroupID   int `json:"group_id"`
}
