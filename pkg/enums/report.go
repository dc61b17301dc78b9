package enums

import "fmt"

// ReportTargetType identifies what kind of entity a report points at.
type ReportTargetType string

const (
	ReportTargetPost    ReportTargetType = "post"
	ReportTargetComment ReportTargetType = "comment"
	ReportTargetUser    ReportTargetType = "user"
)

var validReportTargetTypes = []ReportTargetType{
	ReportTargetPost,
	ReportTargetComment,
	ReportTargetUser,
}

func (r ReportTargetType) IsValid() bool {
	for _, candidate := range validReportTargetTypes {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseReportTargetType converts raw input into ReportTargetType.
func ParseReportTargetType(value string) (ReportTargetType, error) {
	for _, candidate := range validReportTargetTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid report target type %q", value)
}

// ReportStatus tracks the moderation review lifecycle.
type ReportStatus string

const (
	ReportStatusOpen      ReportStatus = "open"
	ReportStatusReviewing ReportStatus = "reviewing"
	ReportStatusClosed    ReportStatus = "closed"
)

var validReportStatuses = []ReportStatus{
	ReportStatusOpen,
	ReportStatusReviewing,
	ReportStatusClosed,
}

func (r ReportStatus) IsValid() bool {
	for _, candidate := range validReportStatuses {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseReportStatus converts raw input into ReportStatus.
func ParseReportStatus(value string) (ReportStatus, error) {
	for _, candidate := range validReportStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid report status %q", value)
}
