package models

import (
	"gorm.io/gorm"
)

// ActivityKind identifies the operator intent that produced an activity record
type ActivityKind string

const (
	ActivityAdd        ActivityKind = "add"
	ActivityDelete     ActivityKind = "delete"
	ActivityClear      ActivityKind = "clear"
	ActivityRefresh    ActivityKind = "refresh"
	ActivityRefreshOne ActivityKind = "refresh_one"
)

// ActivityOutcome is the classified result of an intent
type ActivityOutcome string

const (
	OutcomeOK         ActivityOutcome = "ok"
	OutcomeNotFound   ActivityOutcome = "not_found"
	OutcomeValidation ActivityOutcome = "validation"
	OutcomeTransport  ActivityOutcome = "transport"
)

// Activity is one entry of the local operation journal
type Activity struct {
	Kind    ActivityKind    `json:"kind" gorm:"not null;index"`
	Key     string          `json:"key" gorm:"column:entry_key"`
	Outcome ActivityOutcome `json:"outcome" gorm:"not null"`
	Message string          `json:"message"`
	gorm.Model
}

// TableName specifies the table name for Activity Model
func (Activity) TableName() string {
	return "activities"
}
