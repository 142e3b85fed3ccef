package parse

import (
	"encoding/json"
	"strings"
	"time"
)

const (
	RelOrganization      = "https://api.brightspace.com/rels/organization"
	RelUserEnrollment    = "https://api.brightspace.com/rels/user-enrollment"
	RelOrganizationImage = "https://api.brightspace.com/rels/organization-image"
	RelNext              = "next"
	RelSelf              = "self"
)

// SirenLink and SirenEntity are the hypermedia documents returned by the
// enrollments api.
type SirenLink struct {
	Rel  []string `json:"rel"`
	Href string   `json:"href"`
}

type SirenEntity struct {
	Class      []string        `json:"class"`
	Rel        []string        `json:"rel"`
	Href       string          `json:"href"`
	Properties json.RawMessage `json:"properties"`
	Links      []SirenLink     `json:"links"`
	Entities   []SirenEntity   `json:"entities"`
}

func hasRel(rels []string, rel string) bool {
	for _, r := range rels {
		if r == rel {
			return true
		}
	}
	return false
}

// Link returns the href of the first link with rel.
func (e SirenEntity) Link(rel string) (string, bool) {
	for _, l := range e.Links {
		if hasRel(l.Rel, rel) {
			return l.Href, true
		}
	}
	return "", false
}

func (e SirenEntity) HasClass(class string) bool {
	for _, c := range e.Class {
		if c == class {
			return true
		}
	}
	return false
}

func decodeSiren(raw []byte) (SirenEntity, error) {
	var entity SirenEntity
	err := json.Unmarshal(raw, &entity)
	if err != nil {
		return SirenEntity{}, parseError(ErrSiren, "", err)
	}
	return entity, nil
}

// EnrollmentPage is one page of the user's enrollment collection.
type EnrollmentPage struct {
	// Enrollments are the hrefs of the enrollment entities.
	Enrollments []string
	// Organizations are the organization hrefs of the enrollments that
	// embedded them, keyed by enrollment href.
	Organizations map[string]string
	Next          string
}

// EnrollmentCollection reads a page of the enrollment collection.
func EnrollmentCollection(raw []byte) (EnrollmentPage, error) {
	entity, err := decodeSiren(raw)
	if err != nil {
		return EnrollmentPage{}, err
	}
	page := EnrollmentPage{Organizations: map[string]string{}}
	for _, sub := range entity.Entities {
		if !hasRel(sub.Rel, RelUserEnrollment) {
			continue
		}
		href := sub.Href
		if href == "" {
			href, _ = sub.Link(RelSelf)
		}
		if href == "" {
			continue
		}
		page.Enrollments = append(page.Enrollments, href)
		if org, ok := sub.Link(RelOrganization); ok {
			page.Organizations[href] = org
		}
	}
	page.Next, _ = entity.Link(RelNext)
	return page, nil
}

// EnrollmentOrganization reads the organization href out of an enrollment
// entity.
func EnrollmentOrganization(raw []byte) (string, error) {
	entity, err := decodeSiren(raw)
	if err != nil {
		return "", err
	}
	href, ok := entity.Link(RelOrganization)
	if !ok {
		return "", parseError(ErrSiren, "enrollment has no organization link", nil)
	}
	return href, nil
}

type organizationProperties struct {
	Name        string  `json:"name"`
	Code        string  `json:"code"`
	StartDate   *string `json:"startDate"`
	EndDate     *string `json:"endDate"`
	IsActive    *bool   `json:"isActive"`
	Description string  `json:"description"`
	Color       string  `json:"color"`
}

// Organization converts an organization entity into a Course.
func Organization(raw []byte) (Course, error) {
	entity, err := decodeSiren(raw)
	if err != nil {
		return Course{}, err
	}
	var props organizationProperties
	if len(entity.Properties) > 0 {
		err = json.Unmarshal(entity.Properties, &props)
		if err != nil {
			return Course{}, parseError(ErrSiren, "organization properties", err)
		}
	}

	self, _ := entity.Link(RelSelf)
	id := LastSegment(self)
	if id == "" {
		return Course{}, parseError(ErrSiren, "organization has no self link", nil)
	}

	course := Course{
		Id:          id,
		Name:        strings.TrimSpace(props.Name),
		Code:        strings.TrimSpace(props.Code),
		StartDate:   isoDate(props.StartDate),
		EndDate:     isoDate(props.EndDate),
		Description: props.Description,
		Color:       props.Color,
	}
	if props.IsActive != nil {
		course.IsActive = *props.IsActive
	} else {
		course.IsActive = entity.HasClass("active")
	}

	for _, sub := range entity.Entities {
		if hasRel(sub.Rel, RelOrganizationImage) || sub.HasClass("course-image") {
			href := sub.Href
			if href == "" {
				href, _ = sub.Link(RelSelf)
			}
			course.BannerImageId = LastSegment(href)
			break
		}
	}

	return course, nil
}

// ActiveAt reports whether the course is running at t, courses without
// dates are considered active when flagged so.
func (c Course) ActiveAt(t time.Time) bool {
	if !c.IsActive {
		return false
	}
	if c.StartDate != nil && t.Before(*c.StartDate) {
		return false
	}
	if c.EndDate != nil && t.After(*c.EndDate) {
		return false
	}
	return true
}
