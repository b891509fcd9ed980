// Package taxonomy maps free-text lead signals onto the marketing
// hierarchy (project, domain, subdomain, campaign) via ordered keyword rules.
package taxonomy

import "strings"

// Path is the hierarchy placement a classified signal resolves to.
type Path struct {
	Project   string
	Domain    string
	Subdomain string
	Campaign  string
}

// Rule maps a set of keywords to a hierarchy path. Rules are evaluated in
// order; the first rule with any matching keyword wins.
type Rule struct {
	Keywords []string
	Path     Path
}

// Classifier resolves lead signals to hierarchy paths.
type Classifier struct {
	rules       []Rule
	defaultPath Path
}

// New creates a classifier with the given ordered rules and default path.
func New(rules []Rule, defaultPath Path) *Classifier {
	return &Classifier{rules: rules, defaultPath: defaultPath}
}

// Classify returns the hierarchy path for a signal. Matching is
// case-insensitive substring matching; an empty or unmatched signal
// resolves to the default path. The same signal always resolves to the
// same path.
func (c *Classifier) Classify(signal string) Path {
	lowered := strings.ToLower(signal)
	if strings.TrimSpace(lowered) == "" {
		return c.defaultPath
	}

	for _, rule := range c.rules {
		for _, keyword := range rule.Keywords {
			if strings.Contains(lowered, keyword) {
				return rule.Path
			}
		}
	}

	return c.defaultPath
}

// DefaultPath returns the classifier's fallback path.
func (c *Classifier) DefaultPath() Path {
	return c.defaultPath
}

const defaultProject = "Consulting Services"

// DefaultRules returns the standard keyword routing table. Order matters:
// first match wins, so the more specific rules come first.
func DefaultRules() []Rule {
	return []Rule{
		{
			Keywords: []string{"ai", "artificial intelligence", "machine learning", "ml", "data science", "chatbot", "automation"},
			Path: Path{
				Project:   defaultProject,
				Domain:    "AI Services",
				Subdomain: "AI Solutions",
				Campaign:  "AI Enquiries",
			},
		},
		{
			Keywords: []string{"website", "web development", "app", "application", "mobile", "software", "development", "portal"},
			Path: Path{
				Project:   defaultProject,
				Domain:    "Web & App Development",
				Subdomain: "Custom Development",
				Campaign:  "Development Enquiries",
			},
		},
		{
			Keywords: []string{"talent", "hiring", "recruitment", "staffing", "resource", "developer on demand"},
			Path: Path{
				Project:   defaultProject,
				Domain:    "Talent Solutions",
				Subdomain: "Staff Augmentation",
				Campaign:  "Talent Enquiries",
			},
		},
		{
			Keywords: []string{"consulting", "strategy", "advisory", "audit", "transformation"},
			Path: Path{
				Project:   defaultProject,
				Domain:    "Business Consulting",
				Subdomain: "Strategy Advisory",
				Campaign:  "Consulting Enquiries",
			},
		},
	}
}

// DefaultFallback returns the path used when no rule matches.
func DefaultFallback() Path {
	return Path{
		Project:   defaultProject,
		Domain:    "General Enquiries",
		Subdomain: "General",
		Campaign:  "Website Enquiries",
	}
}
