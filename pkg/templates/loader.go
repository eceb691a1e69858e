package templates

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/riskhub/notify/pkg/notification"
	"github.com/riskhub/notify/pkg/validator"
)

// LoadCatalog reads a YAML catalog from path and merges it over the default
// catalog. Types present in the file replace the built-in template entirely.
//
// File layout:
//
//	RIESGO_CRITICO:
//	  title: "Riesgo crítico: {risk_name}"
//	  body: "..."
//	  priority: CRITICA
//	  channel: EMAIL
//	  expiry_hours: 0
func LoadCatalog(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Join(ErrFailedToReadFile, err)
	}
	return ParseCatalog(data)
}

// ParseCatalog is LoadCatalog for in-memory content.
func ParseCatalog(data []byte) (Catalog, error) {
	var overrides map[notification.Type]Template
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, errors.Join(ErrFailedToParseYAML, err)
	}

	catalog := DefaultCatalog()
	for typ, tpl := range overrides {
		if err := validateTemplate(typ, tpl); err != nil {
			return nil, fmt.Errorf("%w for %s: %w", ErrInvalidTemplate, typ, err)
		}
		catalog[typ] = tpl
	}
	return catalog, nil
}

func validateTemplate(typ notification.Type, tpl Template) error {
	return validator.Apply(
		validator.OneOf("type", typ, notification.Types()...),
		validator.RequiredString("title", tpl.Title),
		validator.RequiredString("body", tpl.Body),
		validator.OneOf("priority", tpl.Priority, notification.Priorities()...),
		validator.OneOf("channel", tpl.Channel, notification.Channels()...),
		validator.MinNum("expiry_hours", tpl.ExpiryHours, 0),
	)
}
