package models

import "time"

// TimeGranularity is the time window a template analyzes.
type TimeGranularity string

const (
	GranularityDaily     TimeGranularity = "daily"
	GranularityWeekly    TimeGranularity = "weekly"
	GranularityMonthly   TimeGranularity = "monthly"
	GranularityQuarterly TimeGranularity = "quarterly"
	GranularityYearly    TimeGranularity = "yearly"
	GranularityCustom    TimeGranularity = "custom"
)

// PromptStyle classifies the analysis angle a template takes.
type PromptStyle string

const (
	StyleAnalytical    PromptStyle = "analytical"
	StyleSummary       PromptStyle = "summary"
	StyleInsight       PromptStyle = "insight"
	StyleComparative   PromptStyle = "comparative"
	StyleTrending      PromptStyle = "trending"
	StyleMemberFocused PromptStyle = "member_focused"
)

// PromptTemplate is a reusable system+user prompt pair classified by
// (group_type, time_granularity, style). The classification triple is not
// unique; multiple templates may compete for the same slot.
type PromptTemplate struct {
	ID                 int64           `json:"id" db:"id"`
	Name               string          `json:"name" db:"name"`
	Description        string          `json:"description,omitempty" db:"description"`
	GroupType          GroupType       `json:"group_type" db:"group_type"`
	TimeGranularity    TimeGranularity `json:"time_granularity" db:"time_granularity"`
	Style              PromptStyle     `json:"style" db:"style"`
	SystemPrompt       string          `json:"system_prompt" db:"system_prompt"`
	UserPromptTemplate string          `json:"user_prompt_template" db:"user_prompt_template"`
	RequiredVariables  []string        `json:"required_variables" db:"required_variables"`
	OptionalVariables  []string        `json:"optional_variables" db:"optional_variables"`
	IsActive           bool            `json:"is_active" db:"is_active"`
	IsDefault          bool            `json:"is_default" db:"is_default"`
	Version            int             `json:"version" db:"version"`
	CreatedAt          time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at" db:"updated_at"`
}
