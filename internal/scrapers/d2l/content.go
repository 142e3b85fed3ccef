package d2l

import (
	"context"
	"fmt"
	"valence/internal/routes"
	"valence/internal/scrapers/d2l/parse"
)

const (
	report_client_content_tree = "client.content-tree"
	report_client_file_preview = "client.file-preview"
)

func contentTreePath(courseId string) string {
	return fmt.Sprintf("/d2l/api/le/unstable/%s/content/toc", courseId)
}

// ContentTree fetches the module hierarchy of a course from the unstable
// table of contents api.
func (c *Client) ContentTree(ctx context.Context, courseId string) ([]parse.ModuleNode, error) {
	res, err := c.getAuthorized(ctx, contentTreePath(courseId))
	if err != nil {
		c.tel.ReportBroken(report_client_content_tree, err, courseId)
		return nil, err
	}
	tree, err := parse.ContentTree(res.Body())
	if err != nil {
		c.tel.ReportBroken(report_client_content_tree, err, courseId)
		return nil, fmt.Errorf("content tree of %s: %w", courseId, err)
	}
	return tree, nil
}

// FilePreview returns the direct url of the document a file topic
// previews.
func (c *Client) FilePreview(ctx context.Context, courseId, topicId string) (string, error) {
	target, ok := routes.ExternalPath(routes.KindTopic, routes.Params{
		routes.ParamCourse: courseId,
		routes.ParamTopic:  topicId,
	})
	if !ok {
		return "", fmt.Errorf("invalid topic %s/%s", courseId, topicId)
	}
	res, err := c.get(ctx, target)
	if err != nil {
		c.tel.ReportBroken(report_client_file_preview, err, courseId, topicId)
		return "", err
	}
	link, err := parse.FilePreviewUrl(res.String())
	if err != nil {
		c.tel.ReportWarning(report_client_file_preview, err, courseId, topicId)
		return "", err
	}
	return c.Resolve(link), nil
}
