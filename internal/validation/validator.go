package validation

import (
	"fmt"

	"github.com/felixzheng98/cedarlink/internal/config"
	"github.com/felixzheng98/cedarlink/internal/core"
)

// ValidatePolicies parses every configured policy entry in its declared
// mode and resolves every declared link, returning the records to publish
// into the store. Configuration errors fail hard: a config that references
// unknown templates or carries unparseable policies never comes up.
func ValidatePolicies(parser core.SyntaxParser, entries []config.PolicyEntry, links []config.LinkEntry) ([]core.PolicyRecord, error) {
	seen := make(map[string]config.PolicyEntry)
	var records []core.PolicyRecord

	for _, entry := range entries {
		if _, exists := seen[entry.ID]; exists {
			return nil, fmt.Errorf("policy id '%s' is not unique", entry.ID)
		}
		seen[entry.ID] = entry

		src, err := entry.ResolveSource()
		if err != nil {
			return nil, fmt.Errorf("policy '%s': %w", entry.ID, err)
		}

		var (
			canonical string
			kind      core.PolicyKind
		)
		if entry.Template {
			canonical, err = parser.ParsePolicyTemplate(src)
			kind = core.KindTemplate
		} else {
			canonical, err = parser.ParseStaticPolicy(src)
			kind = core.KindStatic
		}
		if err != nil {
			return nil, fmt.Errorf("policy '%s': %w", entry.ID, err)
		}

		policy, err := core.NewPolicy(canonical, entry.ID)
		if err != nil {
			return nil, fmt.Errorf("policy '%s': %w", entry.ID, err)
		}
		records = append(records, core.PolicyRecord{
			Policy: policy,
			ID:     entry.ID,
			Source: canonical,
			Kind:   kind,
			Origin: core.OriginConfig,
		})
	}

	byID := make(map[string]core.PolicyRecord, len(records))
	for _, rec := range records {
		byID[rec.ID] = rec
	}

	linker, _ := parser.(core.Linker)

	for _, ln := range links {
		if _, exists := byID[ln.ID]; exists {
			return nil, fmt.Errorf("link id '%s' is not unique", ln.ID)
		}
		tmpl, ok := byID[ln.Template]
		if !ok {
			return nil, fmt.Errorf("link '%s' references unknown template '%s'", ln.ID, ln.Template)
		}
		if tmpl.Kind != core.KindTemplate {
			return nil, fmt.Errorf("link '%s' references '%s', which is not a template", ln.ID, ln.Template)
		}

		principal, err := parseFiller(ln.Principal)
		if err != nil {
			return nil, fmt.Errorf("link '%s': invalid principal: %w", ln.ID, err)
		}
		resource, err := parseFiller(ln.Resource)
		if err != nil {
			return nil, fmt.Errorf("link '%s': invalid resource: %w", ln.ID, err)
		}

		if linker != nil {
			linked, err := linker.Link(tmpl.Source, principal, resource)
			if err != nil {
				return nil, fmt.Errorf("link '%s': %w", ln.ID, err)
			}
			policy, err := core.NewPolicy(linked, ln.ID)
			if err != nil {
				return nil, fmt.Errorf("link '%s': %w", ln.ID, err)
			}
			rec := core.PolicyRecord{
				Policy:     policy,
				ID:         policy.ID(),
				Source:     linked,
				Kind:       core.KindLinked,
				Origin:     core.OriginConfig,
				TemplateID: ln.Template,
			}
			records = append(records, rec)
			byID[rec.ID] = rec
			continue
		}

		if _, err := parser.ValidateTemplateLinkedPolicy(tmpl.Source, principal, resource); err != nil {
			return nil, fmt.Errorf("link '%s': %w", ln.ID, err)
		}
		if ln.ID != "" {
			byID[ln.ID] = core.PolicyRecord{ID: ln.ID, Kind: core.KindLinked}
		}
	}

	return records, nil
}

func parseFiller(s string) (*core.EntityUID, error) {
	if s == "" {
		return nil, nil
	}
	uid, err := core.ParseEntityUID(s)
	if err != nil {
		return nil, err
	}
	return &uid, nil
}
