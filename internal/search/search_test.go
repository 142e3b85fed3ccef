package search

import (
	"context"
	"testing"
	"valence/internal/cache"
	"valence/internal/components/db"
	"valence/internal/components/telemetry"
	"valence/internal/scrapers/d2l/parse"

	"github.com/stretchr/testify/require"
)

func fixture() []Document {
	return CourseDocuments(
		parse.Course{Id: "214416", Name: "ECE 150 Fundamentals of Programming", Code: "ECE150"},
		[]parse.ModuleNode{{
			Id:          "1",
			Title:       "Week 1",
			Description: &parse.RichText{Text: "Introduction to pointers"},
			Children: []parse.ModuleNode{{
				Id:     "2",
				Title:  "Readings",
				Topics: []parse.Topic{{Id: "10", Title: "Chapter 1 Variables"}},
			}},
		}},
		[]parse.Assignment{
			{Name: "Lab 1 Circuits", Id: "95117", Tags: []string{"Labs"}},
			{Name: "Final Essay", Tags: []string{"Essays"}},
		},
		[]parse.Quiz{{Name: "Midterm Quiz", Id: "42"}},
		[]parse.Announcement{{Id: "9", Title: "Welcome", Body: parse.RichText{Text: "Office hours moved to Friday"}}},
	)
}

func TestCourseDocuments(t *testing.T) {
	docs := fixture()
	links := map[string]string{}
	for _, d := range docs {
		links[d.Title] = d.Link
	}
	require.Equal(t, "/courses/214416", links["ECE 150 Fundamentals of Programming"])
	require.Equal(t, "/courses/214416/m/1", links["Week 1"])
	require.Equal(t, "/courses/214416/m/2/t/10", links["Chapter 1 Variables"])
	require.Equal(t, "/courses/214416/coursework/a/95117", links["Lab 1 Circuits"])
	require.Equal(t, "/courses/214416/coursework", links["Final Essay"])
	require.Equal(t, "/courses/214416/coursework/q/42", links["Midterm Quiz"])
	require.Equal(t, "/courses/214416/announcements/9", links["Welcome"])
	require.Len(t, docs, 8)
}

func TestSearchRanking(t *testing.T) {
	idx := NewIndex(fixture()...)

	cases := []struct {
		query string
		first string
	}{
		{query: "midterm", first: "Midterm Quiz"},
		{query: "midtrem", first: "Midterm Quiz"},
		{query: "lab circuits", first: "Lab 1 Circuits"},
		{query: "chapter 1", first: "Chapter 1 Variables"},
		{query: "office hours", first: "Welcome"},
	}
	for _, test := range cases {
		t.Run(test.query, func(t *testing.T) {
			results := idx.Search(test.query, 3)
			require.NotEmpty(t, results)
			require.LessOrEqual(t, len(results), 3)
			require.Equal(t, test.first, results[0].Title)
			for i := 1; i < len(results); i++ {
				require.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
			}
		})
	}

	require.Empty(t, idx.Search("", 10))
	require.Empty(t, idx.Search("   ", 10))
	require.Empty(t, idx.Search("zzzzqqq", 10))
}

func TestFromCache(t *testing.T) {
	ctx := context.Background()
	database, err := db.Open(ctx, db.Config{File: ":memory:"})
	if err != nil {
		t.Fatal(err)
	}
	defer database.Close()
	c := cache.New(cache.NewSqlStore(db.New(database)), nil, telemetry.NewRecorder())

	require.Equal(t, 0, FromCache(ctx, c).Len())

	cache.Set(ctx, c, cache.CoursesKey(), []parse.Course{{Id: "214416", Name: "ECE 150"}})
	cache.Set(ctx, c, cache.QuizzesKey("214416"), []parse.Quiz{{Name: "Midterm Quiz", Id: "42"}})

	idx := FromCache(ctx, c)
	require.Equal(t, 2, idx.Len())
	results := idx.Search("midterm", 1)
	require.Len(t, results, 1)
	require.Equal(t, KindQuiz, results[0].Kind)
	require.Equal(t, "ECE 150", results[0].Course)
}
