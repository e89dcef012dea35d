package dashboard

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	defaultTemplateDate   = "2025-11-20"
	defaultTemplateOpened = "12,500"
)

// Template 是模板列表中的一条营销活动。
type Template struct {
	Name        string `yaml:"name" json:"name"`
	Type        string `yaml:"type" json:"type"`
	TypeClass   string `yaml:"type_class" json:"typeClass"`
	Status      string `yaml:"status" json:"status"`
	StatusClass string `yaml:"status_class" json:"statusClass"`
	Recipients  string `yaml:"recipients" json:"recipients"`
	Date        string `yaml:"date" json:"date,omitempty"`
	Opened      string `yaml:"opened" json:"opened,omitempty"`
}

// DisplayDate falls back to the launch date shown for undated campaigns.
func (t Template) DisplayDate() string {
	if strings.TrimSpace(t.Date) == "" {
		return defaultTemplateDate
	}
	return t.Date
}

func (t Template) DisplayOpened() string {
	if strings.TrimSpace(t.Opened) == "" {
		return defaultTemplateOpened
	}
	return t.Opened
}

// DefaultTemplates 返回内置的三条示例活动。
func DefaultTemplates() []Template {
	return []Template{
		{Name: "Campaign 1", Type: "Time-time", TypeClass: "type-time", Status: "Active", StatusClass: "status-active", Recipients: "15,890"},
		{Name: "Campaign 2", Type: "Recepting", TypeClass: "type-rec", Status: "Paused", StatusClass: "status-paused", Recipients: "9,210"},
		{Name: "Campaign 3", Type: "Conditional", TypeClass: "type-cond", Status: "Paused", StatusClass: "status-paused", Recipients: "1"},
	}
}

type templateFile struct {
	Templates []Template `yaml:"templates"`
}

// LoadTemplates reads campaign templates from a YAML file. An empty path
// returns the built-in samples.
func LoadTemplates(path string) ([]Template, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return DefaultTemplates(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read templates file failed: %w", err)
	}
	var file templateFile
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("parse templates file failed: %w", err)
	}
	for i, t := range file.Templates {
		if strings.TrimSpace(t.Name) == "" {
			return nil, fmt.Errorf("templates[%d] missing name", i)
		}
	}
	return file.Templates, nil
}
