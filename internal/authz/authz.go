package authz

import (
	"strings"

	"github.com/google/uuid"
)

// ModeratorGroups are the group names that grant moderator privileges.
// Both spellings exist in legacy databases.
var ModeratorGroups = []string{"moderators", "Модераторы"}

// Subject is the minimal view of an authenticated user that access
// decisions need. Feature packages build one from their own user types.
type Subject struct {
	ID          uuid.UUID
	IsStaff     bool
	IsSuperuser bool
	Groups      []string
}

// IsModerator reports whether the subject has moderator privileges:
// staff flag, superuser flag, or membership in a moderator group.
func (s Subject) IsModerator() bool {
	if s.IsStaff || s.IsSuperuser {
		return true
	}
	for _, g := range s.Groups {
		for _, m := range ModeratorGroups {
			if strings.EqualFold(g, m) {
				return true
			}
		}
	}
	return false
}

// Owns reports whether the subject owns a resource with the given owner.
// Resources with no owner belong to nobody.
func (s Subject) Owns(ownerID *uuid.UUID) bool {
	return ownerID != nil && *ownerID == s.ID
}

// CanCreateContent allows creating courses and lessons. Moderators curate
// existing content and may not add their own.
func CanCreateContent(s Subject) bool {
	return !s.IsModerator()
}

// CanViewContent allows reading a single course or lesson.
func CanViewContent(s Subject, ownerID *uuid.UUID) bool {
	return s.IsModerator() || s.Owns(ownerID)
}

// CanEditContent allows updating a course or lesson.
func CanEditContent(s Subject, ownerID *uuid.UUID) bool {
	return s.IsModerator() || s.Owns(ownerID)
}

// CanDeleteCourse allows removing a course. Only the owner may delete,
// and moderators are explicitly excluded even when they own the course.
func CanDeleteCourse(s Subject, ownerID *uuid.UUID) bool {
	return !s.IsModerator() && s.Owns(ownerID)
}

// CanDeleteLesson allows removing a lesson. Unlike courses, lessons may
// be deleted by moderators as well as their owner.
func CanDeleteLesson(s Subject, ownerID *uuid.UUID) bool {
	return s.IsModerator() || s.Owns(ownerID)
}

// SeesAllContent reports whether list endpoints return every record
// instead of only the subject's own.
func SeesAllContent(s Subject) bool {
	return s.IsModerator()
}
