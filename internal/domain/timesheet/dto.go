package timesheet

import "time"

type TimesheetResponse struct {
	ID                     string    `json:"id"`
	UserID                 string    `json:"userId"`
	OrganizationID         string    `json:"organizationId"`
	WorkDate               string    `json:"workDate"`
	Sessions               []Session `json:"sessions"`
	TotalWorkingMinutes    int       `json:"totalWorkingMinutes"`
	Status                 Status    `json:"status"`
	RequiredWorkingMinutes int       `json:"requiredWorkingMinutes"`
	UpdatedAt              time.Time `json:"updatedAt"`
}

func NewTimesheetResponse(t DailyTimesheet) TimesheetResponse {
	sessions := t.Sessions
	if sessions == nil {
		sessions = []Session{}
	}
	return TimesheetResponse{
		ID:                     t.ID,
		UserID:                 t.UserID,
		OrganizationID:         t.OrganizationID,
		WorkDate:               t.WorkDate,
		Sessions:               sessions,
		TotalWorkingMinutes:    t.TotalWorkingMinutes,
		Status:                 t.Status,
		RequiredWorkingMinutes: t.RequiredWorkingMinutes,
		UpdatedAt:              t.UpdatedAt,
	}
}
