package model

import "time"

const (
	RoleMember    = "member"
	RoleExecutive = "executive"
	RoleAdmin     = "admin"
)

func ValidRole(role string) bool {
	switch role {
	case RoleMember, RoleExecutive, RoleAdmin:
		return true
	default:
		return false
	}
}

type Account struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	Role         string
	School       string
	Position     string
	IsActive     bool
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

const (
	EventTypeMeeting    = "meeting"
	EventTypeWebinar    = "webinar"
	EventTypeConference = "conference"
	EventTypeDeadline   = "deadline"
)

func ValidEventType(eventType string) bool {
	switch eventType {
	case EventTypeMeeting, EventTypeWebinar, EventTypeConference, EventTypeDeadline:
		return true
	default:
		return false
	}
}

type Event struct {
	ID          string
	Title       string
	Type        string
	Date        time.Time
	Time        string
	Location    string
	Description string
	Organizer   string
	CreatedBy   string
	School      string
	IsPublic    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

var CommunicationCategories = []string{"JTC", "BOG", "Policy", "Report", "Memo", "Other"}

func ValidCategory(category string) bool {
	for _, known := range CommunicationCategories {
		if category == known {
			return true
		}
	}
	return false
}

type Communication struct {
	ID               string
	Title            string
	Description      string
	Filename         string
	OriginalFilename string
	SizeBytes        int64
	Category         string
	PublishDate      time.Time
	UploadedBy       string
	IsActive         bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
