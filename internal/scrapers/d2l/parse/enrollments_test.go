package parse

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestEnrollmentCollection(t *testing.T) {
	page, err := EnrollmentCollection([]byte(`{
		"class": ["enrollments", "collection"],
		"entities": [
			{
				"class": ["enrollment", "pinned"],
				"rel": ["https://api.brightspace.com/rels/user-enrollment"],
				"href": "https://e.api/enrollments/users/169/organizations/214416",
				"links": [
					{"rel": ["https://api.brightspace.com/rels/organization"], "href": "https://o.api/organizations/214416"}
				]
			},
			{
				"class": ["enrollment"],
				"rel": ["https://api.brightspace.com/rels/user-enrollment"],
				"href": "https://e.api/enrollments/users/169/organizations/5"
			},
			{
				"class": ["unrelated"],
				"rel": ["https://api.brightspace.com/rels/other"],
				"href": "https://e.api/other"
			}
		],
		"links": [
			{"rel": ["self"], "href": "https://e.api/enrollments/users/169"},
			{"rel": ["next"], "href": "https://e.api/enrollments/users/169?bookmark=2"}
		]
	}`))
	require.NoError(t, err)

	diff := cmp.Diff(EnrollmentPage{
		Enrollments: []string{
			"https://e.api/enrollments/users/169/organizations/214416",
			"https://e.api/enrollments/users/169/organizations/5",
		},
		Organizations: map[string]string{
			"https://e.api/enrollments/users/169/organizations/214416": "https://o.api/organizations/214416",
		},
		Next: "https://e.api/enrollments/users/169?bookmark=2",
	}, page)
	if diff != "" {
		t.Fatal(diff)
	}

	_, err = EnrollmentCollection([]byte(`<html>`))
	require.True(t, errors.Is(err, ErrSiren))
}

func TestEnrollmentOrganization(t *testing.T) {
	href, err := EnrollmentOrganization([]byte(`{
		"class": ["enrollment"],
		"links": [{"rel": ["https://api.brightspace.com/rels/organization"], "href": "https://o.api/organizations/5"}]
	}`))
	require.NoError(t, err)
	require.Equal(t, "https://o.api/organizations/5", href)

	_, err = EnrollmentOrganization([]byte(`{"class": ["enrollment"], "links": []}`))
	require.True(t, errors.Is(err, ErrSiren))
}

func TestOrganization(t *testing.T) {
	course, err := Organization([]byte(`{
		"class": ["active", "course-offering"],
		"properties": {
			"name": "Fundamentals of Electrical Engineering ",
			"code": "ECE 150",
			"startDate": "2024-01-08T05:00:00.000Z",
			"endDate": null,
			"isActive": true,
			"description": "An introduction"
		},
		"links": [{"rel": ["self"], "href": "https://o.api/organizations/214416"}],
		"entities": [
			{
				"class": ["course-image"],
				"rel": ["https://api.brightspace.com/rels/organization-image"],
				"href": "https://o.api/organizations/214416/image/987"
			}
		]
	}`))
	require.NoError(t, err)

	start := time.Date(2024, 1, 8, 5, 0, 0, 0, time.UTC)
	diff := cmp.Diff(Course{
		Id:            "214416",
		Name:          "Fundamentals of Electrical Engineering",
		Code:          "ECE 150",
		StartDate:     &start,
		IsActive:      true,
		Description:   "An introduction",
		BannerImageId: "987",
	}, course)
	if diff != "" {
		t.Fatal(diff)
	}

	require.True(t, course.ActiveAt(start.Add(time.Hour)))
	require.False(t, course.ActiveAt(start.Add(-time.Hour)))

	_, err = Organization([]byte(`{"properties": {"name": "x"}, "links": []}`))
	require.True(t, errors.Is(err, ErrSiren))
}
