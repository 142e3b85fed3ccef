package parse

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// MaxTreeDepth bounds every content tree walk.
const MaxTreeDepth = 64

type rawDescription struct {
	Text string `json:"Text"`
	Html string `json:"Html"`
}

type rawTopic struct {
	TopicId        json.Number `json:"TopicId"`
	Identifier     string      `json:"Identifier"`
	Title          string      `json:"Title"`
	TypeIdentifier string      `json:"TypeIdentifier"`
	Url            string      `json:"Url"`
	IsBroken       bool        `json:"IsBroken"`
	StartDateTime  *string     `json:"StartDateTime"`
	EndDateTime    *string     `json:"EndDateTime"`
	DueDateTime    *string     `json:"DueDateTime"`
}

type rawModule struct {
	ModuleId    json.Number     `json:"ModuleId"`
	Title       string          `json:"Title"`
	Description *rawDescription `json:"Description"`
	Modules     []rawModule     `json:"Modules"`
	Topics      []rawTopic      `json:"Topics"`
}

type rawToc struct {
	Modules *[]rawModule `json:"Modules"`
}

func isoDate(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.000Z", "2006-01-02T15:04:05"} {
		t, err := time.Parse(layout, *s)
		if err == nil {
			return &t
		}
	}
	return nil
}

func isDownloadable(t rawTopic) bool {
	if !strings.EqualFold(t.TypeIdentifier, "File") {
		return false
	}
	return !strings.HasPrefix(t.Url, "http://") && !strings.HasPrefix(t.Url, "https://")
}

func convertTopic(t rawTopic) Topic {
	id := t.TopicId.String()
	if id == "" {
		id = t.Identifier
	}
	return Topic{
		Id:           id,
		Title:        strings.TrimSpace(t.Title),
		Type:         t.TypeIdentifier,
		Url:          t.Url,
		Downloadable: isDownloadable(t),
		DueDate:      isoDate(t.DueDateTime),
		StartDate:    isoDate(t.StartDateTime),
		EndDate:      isoDate(t.EndDateTime),
	}
}

type buildFrame struct {
	src   *rawModule
	dst   *ModuleNode
	depth int
}

// ContentTree builds the module tree of a course out of the table of
// contents json. The payload is decoded into fresh records, a payload
// without a module list is an error.
func ContentTree(raw []byte) ([]ModuleNode, error) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, parseError(ErrContentTree, "empty payload", nil)
	}
	var toc rawToc
	err := json.Unmarshal(raw, &toc)
	if err != nil {
		return nil, parseError(ErrContentTree, "", err)
	}
	if toc.Modules == nil {
		return nil, parseError(ErrContentTree, "missing modules", nil)
	}

	roots := *toc.Modules
	out := make([]ModuleNode, len(roots))
	stack := make([]buildFrame, 0, len(roots))
	for i := range roots {
		stack = append(stack, buildFrame{src: &roots[i], dst: &out[i], depth: 1})
	}

	for len(stack) > 0 {
		frame := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if frame.depth > MaxTreeDepth {
			return nil, parseError(ErrContentTree, fmt.Sprintf("deeper than %d modules", MaxTreeDepth), nil)
		}

		src := frame.src
		node := frame.dst
		node.Id = src.ModuleId.String()
		node.Title = strings.TrimSpace(src.Title)
		if src.Description != nil && (src.Description.Text != "" || src.Description.Html != "") {
			node.Description = &RichText{
				Text: src.Description.Text,
				Html: src.Description.Html,
			}
		}
		node.Topics = make([]Topic, len(src.Topics))
		for i, t := range src.Topics {
			node.Topics[i] = convertTopic(t)
		}
		node.Children = make([]ModuleNode, len(src.Modules))
		for i := range src.Modules {
			stack = append(stack, buildFrame{
				src:   &src.Modules[i],
				dst:   &node.Children[i],
				depth: frame.depth + 1,
			})
		}
	}

	return out, nil
}

type walkFrame struct {
	node  *ModuleNode
	path  []string
	depth int
}

// Walk visits every module in document order (depth first, pre-order).
// path holds the ids of the ancestors of the module, visiting stops once
// fn returns false.
func Walk(tree []ModuleNode, fn func(node ModuleNode, path []string) bool) {
	stack := make([]walkFrame, 0, len(tree))
	for i := len(tree) - 1; i >= 0; i-- {
		stack = append(stack, walkFrame{node: &tree[i], depth: 1})
	}
	for len(stack) > 0 {
		frame := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if frame.depth > MaxTreeDepth {
			continue
		}
		if !fn(*frame.node, frame.path) {
			return
		}
		childPath := make([]string, len(frame.path)+1)
		copy(childPath, frame.path)
		childPath[len(frame.path)] = frame.node.Id
		for i := len(frame.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, walkFrame{
				node:  &frame.node.Children[i],
				path:  childPath,
				depth: frame.depth + 1,
			})
		}
	}
}

// FindModule returns the module that directly contains topicId.
func FindModule(tree []ModuleNode, topicId string) (ModuleNode, bool) {
	var found ModuleNode
	ok := false
	Walk(tree, func(node ModuleNode, _ []string) bool {
		for _, t := range node.Topics {
			if t.Id == topicId {
				found = node
				ok = true
				return false
			}
		}
		return true
	})
	return found, ok
}

// FindModuleById returns the module with the given id.
func FindModuleById(tree []ModuleNode, moduleId string) (ModuleNode, bool) {
	var found ModuleNode
	ok := false
	Walk(tree, func(node ModuleNode, _ []string) bool {
		if node.Id == moduleId {
			found = node
			ok = true
			return false
		}
		return true
	})
	return found, ok
}

// TopicRef is a topic along with the module containing it.
type TopicRef struct {
	ModuleId    string
	ModuleTitle string
	Topic       Topic
}

// FlattenTopics lists every topic in the tree in document order.
func FlattenTopics(tree []ModuleNode) []TopicRef {
	var out []TopicRef
	Walk(tree, func(node ModuleNode, _ []string) bool {
		for _, t := range node.Topics {
			out = append(out, TopicRef{
				ModuleId:    node.Id,
				ModuleTitle: node.Title,
				Topic:       t,
			})
		}
		return true
	})
	return out
}

// CountTopics is the number of topics in the tree.
func CountTopics(tree []ModuleNode) int {
	n := 0
	Walk(tree, func(node ModuleNode, _ []string) bool {
		n += len(node.Topics)
		return true
	})
	return n
}
