package models

import "time"

// GroupType classifies a chat group and drives template selection.
type GroupType string

const (
	GroupInvestment    GroupType = "investment"
	GroupScience       GroupType = "science"
	GroupLearning      GroupType = "learning"
	GroupTechnology    GroupType = "technology"
	GroupLifestyle     GroupType = "lifestyle"
	GroupNews          GroupType = "news"
	GroupEntertainment GroupType = "entertainment"
	GroupHealth        GroupType = "health"
	GroupBusiness      GroupType = "business"
	GroupCustom        GroupType = "custom"
)

// GroupTypes lists every valid group type, in display order.
func GroupTypes() []GroupType {
	return []GroupType{
		GroupInvestment, GroupScience, GroupLearning, GroupTechnology,
		GroupLifestyle, GroupNews, GroupEntertainment, GroupHealth,
		GroupBusiness, GroupCustom,
	}
}

// ValidGroupType reports whether s names a known group type.
func ValidGroupType(s GroupType) bool {
	for _, t := range GroupTypes() {
		if t == s {
			return true
		}
	}
	return false
}

// Group is chat-group metadata. external_id is the caller-supplied
// identifier from the source chat system; unique and immutable.
type Group struct {
	ID                   int64          `json:"id" db:"id"`
	ExternalID           string         `json:"external_id" db:"external_id"`
	Name                 string         `json:"name" db:"name"`
	Type                 GroupType      `json:"type" db:"type"`
	Description          string         `json:"description,omitempty" db:"description"`
	MemberCount          int            `json:"member_count" db:"member_count"`
	ExtraData            map[string]any `json:"extra_data,omitempty" db:"extra_data"`
	CustomPromptTemplate string         `json:"custom_prompt_template,omitempty" db:"custom_prompt_template"`
	IsActive             bool           `json:"is_active" db:"is_active"`
	CreatedAt            time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at" db:"updated_at"`
}
