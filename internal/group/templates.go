package group

import "slices"

// Template suggests a UI group for a known cluster of controls. The catalog
// is static and never persisted; instantiation only captures the controls
// that are currently ungrouped.
type Template struct {
	ID          string
	Name        string
	Icon        string
	Description string
	ButtonIDs   []string
}

// Templates is the built-in catalog used to seed new UI groups.
var Templates = []Template{
	{
		ID:          "movement",
		Name:        "Movement",
		Icon:        "🕹",
		Description: "Directional and movement controls",
		ButtonIDs:   []string{"move-up", "move-down", "move-left", "move-right", "jump", "crouch"},
	},
	{
		ID:          "camera",
		Name:        "Camera",
		Icon:        "🎥",
		Description: "Camera and view controls",
		ButtonIDs:   []string{"zoom-in", "zoom-out", "rotate-left", "rotate-right", "recenter"},
	},
	{
		ID:          "actions",
		Name:        "Actions",
		Icon:        "⚡",
		Description: "Primary action buttons",
		ButtonIDs:   []string{"attack", "interact", "reload", "use-item"},
	},
	{
		ID:          "interface",
		Name:        "Interface",
		Icon:        "🗂",
		Description: "Menus, map and inventory toggles",
		ButtonIDs:   []string{"menu", "map", "inventory", "chat"},
	},
}

// TemplateByID looks a template up in the catalog.
func TemplateByID(id string) (Template, bool) {
	for _, t := range Templates {
		if t.ID == id {
			return t, true
		}
	}
	return Template{}, false
}

// Instantiate creates a UI group from the intersection of the template's
// suggested members and the currently ungrouped controls. An empty
// intersection creates nothing.
func (r *Registry) Instantiate(tmpl Template, ungrouped []string) (*UIGroup, bool) {
	members := make([]string, 0, len(tmpl.ButtonIDs))
	for _, id := range tmpl.ButtonIDs {
		if slices.Contains(ungrouped, id) {
			members = append(members, id)
		}
	}
	if len(members) == 0 {
		return nil, false
	}
	g := r.CreateUIGroup(members, tmpl.Name)
	g.Icon = tmpl.Icon
	r.persist(KeyUIGroups, r.uiGroups)
	return g, true
}
