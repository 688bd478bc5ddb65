package guard

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"salt_portal/internal/model"
	"salt_portal/internal/session"
)

var (
	ErrInvalidTable = errors.New("invalid route table")
	ErrNoRoute      = errors.New("no requirement for path")
)

// Route binds a page path to its requirement. A path ending in "/*"
// covers everything below it.
type Route struct {
	Path        string `yaml:"path" json:"path"`
	Requirement `yaml:",inline"`
}

type tableFile struct {
	Routes []Route `yaml:"routes"`
}

// Table resolves page paths to requirements. Exact paths win over
// prefixes, and longer prefixes win over shorter ones.
type Table struct {
	exact    map[string]Requirement
	prefixes []Route
}

// NewTable validates routes and indexes them.
func NewTable(routes []Route) (*Table, error) {
	t := &Table{exact: make(map[string]Requirement)}
	for i, r := range routes {
		if !strings.HasPrefix(r.Path, "/") {
			return nil, fmt.Errorf("%w: route %d: path %q must start with /", ErrInvalidTable, i, r.Path)
		}
		roles := make([]model.Role, 0, len(r.AllowedRoles))
		for _, role := range r.AllowedRoles {
			role = model.ParseRole(string(role))
			if !role.Valid() && role != model.RoleSeller {
				return nil, fmt.Errorf("%w: route %s: unknown role %q", ErrInvalidTable, r.Path, role)
			}
			roles = append(roles, role)
		}
		if len(roles) > 0 {
			r.AllowedRoles = roles
		}
		if r.RedirectTo != "" && !strings.HasPrefix(r.RedirectTo, "/") {
			return nil, fmt.Errorf("%w: route %s: redirectTo %q must be a local path", ErrInvalidTable, r.Path, r.RedirectTo)
		}

		if prefix, ok := strings.CutSuffix(r.Path, "/*"); ok {
			r.Path = prefix
			t.prefixes = append(t.prefixes, r)
			continue
		}
		if _, dup := t.exact[r.Path]; dup {
			return nil, fmt.Errorf("%w: duplicate path %s", ErrInvalidTable, r.Path)
		}
		t.exact[r.Path] = r.Requirement
	}
	sort.SliceStable(t.prefixes, func(i, j int) bool {
		return len(t.prefixes[i].Path) > len(t.prefixes[j].Path)
	})
	return t, nil
}

// ParseTable reads the YAML form:
//
//	routes:
//	  - path: /admin/*
//	    allowedRoles: [SUPERADMIN, ADMIN]
func ParseTable(data []byte) (*Table, error) {
	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTable, err)
	}
	if len(f.Routes) == 0 {
		return nil, fmt.Errorf("%w: no routes", ErrInvalidTable)
	}
	return NewTable(f.Routes)
}

// LoadTable reads a YAML route file. An empty path yields DefaultTable.
func LoadTable(path string) (*Table, error) {
	if path == "" {
		return DefaultTable(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read route table: %w", err)
	}
	return ParseTable(data)
}

// Lookup returns the requirement for path.
func (t *Table) Lookup(path string) (Requirement, error) {
	if req, ok := t.exact[path]; ok {
		return req, nil
	}
	for _, r := range t.prefixes {
		if path == r.Path || strings.HasPrefix(path, r.Path+"/") {
			return r.Requirement, nil
		}
	}
	return Requirement{}, fmt.Errorf("%w: %s", ErrNoRoute, path)
}

// Routes lists the table in lookup order, exact paths first.
func (t *Table) Routes() []Route {
	out := make([]Route, 0, len(t.exact)+len(t.prefixes))
	for p, req := range t.exact {
		out = append(out, Route{Path: p, Requirement: req})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	for _, r := range t.prefixes {
		r.Path += "/*"
		out = append(out, r)
	}
	return out
}

// DefaultTable is the page map of the web front end.
func DefaultTable() *Table {
	paid := func(roles ...model.Role) Requirement {
		return Requirement{AllowedRoles: roles, RequireOnboarded: true, RequireSubscription: true}
	}
	t, err := NewTable([]Route{
		{Path: session.PathOnboarding},
		{Path: "/profile", Requirement: Requirement{RequireOnboarded: true}},
		{Path: "/landowner/*", Requirement: paid(model.RoleLandowner)},
		{Path: "/seller/*", Requirement: paid(model.RoleDistributor, model.RoleSeller)},
		{Path: "/laboratory/*", Requirement: paid(model.RoleLaboratory)},
		{Path: "/saltsociety/*", Requirement: paid(model.RoleSaltSociety)},
		{Path: "/admin/*", Requirement: Requirement{
			AllowedRoles: []model.Role{model.RoleSuperAdmin, model.RoleAdmin},
			RedirectTo:   "/admin/login",
		}},
	})
	if err != nil {
		panic(err)
	}
	return t
}
