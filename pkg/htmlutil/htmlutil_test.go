package htmlutil

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestCleanText(t *testing.T) {
	cases := []struct {
		in  string
		out string
	}{
		{in: "  hello \n\n  world  ", out: "hello world"},
		{in: "a\u00a0\u00a0b", out: "a b"},
		{in: "", out: ""},
	}
	for _, c := range cases {
		require.Equal(t, c.out, CleanText(c.in))
	}
}

func TestGetText(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<div id="x">Due<br>on <b>Jan 5</b><script>var a = 1;</script></div>`,
	))
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "Due on Jan 5", SelectionText(doc.Find("#x")))
}

func TestGetAnchors(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`
		<a href="/d2l/home/1">  Course
			One </a>
		<a>no href</a>
		<a href="https://other.example.com/x">Other</a>
	`))
	if err != nil {
		t.Fatal(err)
	}
	base, _ := url.Parse("https://learn.example.edu/d2l/home")

	anchors := GetAnchors(context.Background(), base, doc.Find("a"))
	diff := cmp.Diff([]Anchor{
		{Name: "Course One", Href: "https://learn.example.edu/d2l/home/1"},
		{Name: "Other", Href: "https://other.example.com/x"},
	}, anchors)
	if diff != "" {
		t.Fatal(diff)
	}
}
