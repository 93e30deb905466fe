package model

import (
	"fmt"
	"time"
)

// Comment represents a single message in a discussion thread
type Comment struct {
	ID        string     `json:"id"`
	ParentID  string     `json:"parent,omitempty"`
	Author    string     `json:"author"`
	Body      string     `json:"body"`
	Score     int        `json:"score"`
	Kind      Kind       `json:"kind,omitempty"`
	Role      Role       `json:"role,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	EditedAt  *time.Time `json:"edited_at,omitempty"`
	Deleted   bool       `json:"deleted,omitempty"`
	Pinned    bool       `json:"pinned,omitempty"`
	Avatar    string     `json:"avatar,omitempty"`
	Labels    []string   `json:"labels,omitempty"`

	// Replies is linked up by the loader from ParentID references.
	// Never serialized; the wire format is flat.
	Replies []*Comment `json:"-"`
}

// Clone creates a deep copy of the comment and its reply subtree
func (c *Comment) Clone() *Comment {
	if c == nil {
		return nil
	}
	clone := *c

	if c.EditedAt != nil {
		v := *c.EditedAt
		clone.EditedAt = &v
	}
	if c.Labels != nil {
		clone.Labels = make([]string, len(c.Labels))
		copy(clone.Labels, c.Labels)
	}
	if c.Replies != nil {
		clone.Replies = make([]*Comment, len(c.Replies))
		for i, r := range c.Replies {
			clone.Replies[i] = r.Clone()
		}
	}
	return &clone
}

// Validate checks if the comment data is logically valid
func (c *Comment) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("comment ID cannot be empty")
	}
	if c.Author == "" && !c.Deleted {
		return fmt.Errorf("comment %s has no author", c.ID)
	}
	if c.Kind != "" && !c.Kind.IsValid() {
		return fmt.Errorf("comment %s has invalid kind: %s", c.ID, c.Kind)
	}
	if c.Role != "" && !c.Role.IsValid() {
		return fmt.Errorf("comment %s has invalid role: %s", c.ID, c.Role)
	}
	if c.CreatedAt.IsZero() {
		return fmt.Errorf("comment %s has no created_at", c.ID)
	}
	if c.EditedAt != nil && c.EditedAt.Before(c.CreatedAt) {
		return fmt.Errorf("comment %s edited_at (%v) cannot be before created_at (%v)",
			c.ID, c.EditedAt, c.CreatedAt)
	}
	return nil
}

// IsReply reports whether the comment is attached under a parent
func (c *Comment) IsReply() bool {
	return c.ParentID != ""
}

// Edited reports whether the comment was changed after posting
func (c *Comment) Edited() bool {
	return c.EditedAt != nil
}

// Kind distinguishes the root post from ordinary comments
type Kind string

const (
	KindPost    Kind = "post"
	KindComment Kind = "comment"
)

// IsValid checks if the kind is one of the known values
func (k Kind) IsValid() bool {
	switch k {
	case KindPost, KindComment:
		return true
	}
	return false
}

// Role represents who the author is relative to the thread
type Role string

const (
	RoleUser Role = "user"
	RoleOP   Role = "op"
	RoleMod  Role = "mod"
	RoleBot  Role = "bot"
)

// IsValid checks if the role is one of the known values
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleOP, RoleMod, RoleBot:
		return true
	}
	return false
}

// Tag returns the short badge shown next to the author, empty for plain users
func (r Role) Tag() string {
	switch r {
	case RoleOP:
		return "OP"
	case RoleMod:
		return "MOD"
	case RoleBot:
		return "BOT"
	default:
		return ""
	}
}
