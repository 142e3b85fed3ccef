package parse

import (
	"time"
)

type Course struct {
	Id            string     `json:"id"`
	Name          string     `json:"name"`
	Code          string     `json:"code"`
	StartDate     *time.Time `json:"startDate,omitempty"`
	EndDate       *time.Time `json:"endDate,omitempty"`
	IsActive      bool       `json:"isActive"`
	Description   string     `json:"description"`
	Color         string     `json:"color"`
	BannerImageId string     `json:"bannerImageId"`
}

type RichText struct {
	Text string `json:"text"`
	Html string `json:"html"`
}

type ModuleNode struct {
	Id          string       `json:"id"`
	Title       string       `json:"title"`
	Description *RichText    `json:"description,omitempty"`
	Children    []ModuleNode `json:"children"`
	Topics      []Topic      `json:"topics"`
}

type Topic struct {
	Id           string     `json:"id"`
	Title        string     `json:"title"`
	Type         string     `json:"type"`
	Url          string     `json:"url"`
	Downloadable bool       `json:"downloadable"`
	DueDate      *time.Time `json:"dueDate,omitempty"`
	StartDate    *time.Time `json:"startDate,omitempty"`
	EndDate      *time.Time `json:"endDate,omitempty"`
}

type AssignmentStatus string

const (
	AssignmentSubmitted    AssignmentStatus = "submitted"
	AssignmentNotSubmitted AssignmentStatus = "not-submitted"
	AssignmentReturned     AssignmentStatus = "returned"
)

type Assignment struct {
	Name            string           `json:"name"`
	Id              string           `json:"id,omitempty"`
	GroupId         string           `json:"groupId,omitempty"`
	Tags            []string         `json:"tags"`
	DueDate         *time.Time       `json:"dueDate,omitempty"`
	StartDate       *time.Time       `json:"startDate,omitempty"`
	EndDate         *time.Time       `json:"endDate,omitempty"`
	AccessNote      string           `json:"accessNote,omitempty"`
	Points          *float64         `json:"points,omitempty"`
	TotalPoints     *float64         `json:"totalPoints,omitempty"`
	GradePercentage *float64         `json:"gradePercentage,omitempty"`
	Status          AssignmentStatus `json:"status"`
	FeedbackUrl     string           `json:"feedbackUrl,omitempty"`
}

type QuizStatus string

const (
	QuizCompleted       QuizStatus = "completed"
	QuizInProgress      QuizStatus = "in-progress"
	QuizNotStarted      QuizStatus = "not-started"
	QuizRetryInProgress QuizStatus = "retry-in-progress"
)

type Quiz struct {
	Name            string     `json:"name"`
	Id              string     `json:"id"`
	DueDate         *time.Time `json:"dueDate,omitempty"`
	StartDate       *time.Time `json:"startDate,omitempty"`
	EndDate         *time.Time `json:"endDate,omitempty"`
	Attempts        *int       `json:"attempts,omitempty"`
	AttemptsAllowed *int       `json:"attemptsAllowed,omitempty"`
	Status          QuizStatus `json:"status"`
	SubmissionsUrl  string     `json:"submissionsUrl,omitempty"`
}

type QuizSubmission struct {
	QuizId          string   `json:"quizId"`
	AttemptNumber   int      `json:"attemptNumber"`
	AttemptId       string   `json:"attemptId"`
	AttemptUrl      string   `json:"attemptUrl"`
	Points          *float64 `json:"points,omitempty"`
	TotalPoints     *float64 `json:"totalPoints,omitempty"`
	GradePercentage *float64 `json:"gradePercentage,omitempty"`
	LateNote        string   `json:"lateNote,omitempty"`
}

type GradeScore struct {
	Points         *float64 `json:"points,omitempty"`
	TotalPoints    *float64 `json:"totalPoints,omitempty"`
	Percentage     *float64 `json:"percentage,omitempty"`
	WeightAchieved *float64 `json:"weightAchieved,omitempty"`
	WeightTotal    *float64 `json:"weightTotal,omitempty"`
	IsDropped      bool     `json:"isDropped"`
}

type GradeItem struct {
	Id    string     `json:"id"`
	Name  string     `json:"name"`
	Score GradeScore `json:"score"`
}

type GradeCategory struct {
	GradeItem
	Items []GradeItem `json:"items"`
}

type Gradebook struct {
	Categories    []GradeCategory `json:"categories"`
	Uncategorized []GradeItem     `json:"uncategorized"`
}

type GradeStatistics struct {
	Average           *float64 `json:"average,omitempty"`
	Minimum           *float64 `json:"minimum,omitempty"`
	Maximum           *float64 `json:"maximum,omitempty"`
	Mode              *float64 `json:"mode,omitempty"`
	Median            *float64 `json:"median,omitempty"`
	StandardDeviation *float64 `json:"standardDeviation,omitempty"`
	Count             *float64 `json:"count,omitempty"`
}

type Attachment struct {
	Name string `json:"name"`
	Url  string `json:"url"`
}

type Announcement struct {
	Id          string       `json:"id"`
	CourseId    string       `json:"courseId"`
	Title       string       `json:"title"`
	Body        RichText     `json:"body"`
	Attachments []Attachment `json:"attachments"`
	StartDate   *time.Time   `json:"startDate,omitempty"`
	Author      string       `json:"author,omitempty"`
}

// Alert is a single raw entry of the activity feed.
type Alert struct {
	Title     string    `json:"title"`
	Link      string    `json:"link"`
	Course    string    `json:"course"`
	Timestamp time.Time `json:"timestamp"`
	Details   string    `json:"details,omitempty"`
	Icon      string    `json:"icon,omitempty"`
}

type CalendarEvent struct {
	Uid         string    `json:"uid"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	CourseId    string    `json:"courseId,omitempty"`
	Url         string    `json:"url,omitempty"`
}
