// Package docs holds the user manual of cbs, one markdown file per topic.
package docs

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"
)

//go:embed *.md
var manual embed.FS

// Topic returns the markdown content of a topic. "*" is every topic.
func Topic(name string) (string, error) {
	if name == "*" {
		names, err := All()
		if err != nil {
			return "", err
		}
		return Topics(names...)
	}
	content, err := manual.ReadFile(name + ".md")
	if err != nil {
		return "", fmt.Errorf("topic %q not found: %w", name, err)
	}
	return string(content), nil
}

// Topics returns the content of several topics, one after the other.
func Topics(names ...string) (string, error) {
	var b strings.Builder
	for _, name := range names {
		content, err := Topic(name)
		if err != nil {
			return "", err
		}
		b.WriteString(content)
		b.WriteString("\n")
	}
	return b.String(), nil
}

// All returns the name of every topic but the readme, sorted.
func All() ([]string, error) {
	files, err := fs.Glob(manual, "*.md")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, f := range files {
		name := strings.TrimSuffix(path.Base(f), ".md")
		if name != "readme" {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names, nil
}
