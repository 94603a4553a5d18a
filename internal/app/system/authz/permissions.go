// internal/app/system/authz/permissions.go
package authz

import "github.com/civickey/civickey/internal/domain/models"

// Feature names a permission-checked area of the admin console.
type Feature string

// Action names an operation on a feature.
type Action string

const (
	Dashboard            Feature = "dashboard"
	Announcements        Feature = "announcements"
	Events               Feature = "events"
	Facilities           Feature = "facilities"
	Schedule             Feature = "schedule"
	Zones                Feature = "zones"
	RoadClosures         Feature = "roadClosures"
	Pages                Feature = "pages"
	WasteItems           Feature = "wasteItems"
	Domains              Feature = "domains"
	MunicipalitySettings Feature = "municipalitySettings"
	AdminManagement      Feature = "adminManagement"
	Municipalities       Feature = "municipalities"
)

const (
	View   Action = "view"
	Create Action = "create"
	Edit   Action = "edit"
	Delete Action = "delete"
)

// roleOrder is the role hierarchy, lowest first.
var roleOrder = []string{
	models.RoleViewer,
	models.RoleEditor,
	models.RoleAdmin,
	models.RoleSuperAdmin,
}

// RoleRank returns the position of role in the hierarchy starting at 1,
// or 0 for an unknown role.
func RoleRank(role string) int {
	for i, r := range roleOrder {
		if r == role {
			return i + 1
		}
	}
	return 0
}

// AtLeast reports whether role is at or above min in the hierarchy.
// Unknown roles are below everything.
func AtLeast(role, min string) bool {
	rank := RoleRank(role)
	return rank > 0 && rank >= RoleRank(min)
}

// Roles returns the hierarchy, lowest first.
func Roles() []string {
	return append([]string(nil), roleOrder...)
}

func contentPerms() map[Action]string {
	return map[Action]string{
		View:   models.RoleViewer,
		Create: models.RoleEditor,
		Edit:   models.RoleEditor,
		Delete: models.RoleEditor,
	}
}

// permissions maps each feature/action to its minimum role. It is closed:
// anything not listed is denied.
var permissions = map[Feature]map[Action]string{
	Dashboard:     {View: models.RoleViewer},
	Announcements: contentPerms(),
	Events:        contentPerms(),
	Facilities:    contentPerms(),
	RoadClosures:  contentPerms(),
	Pages:         contentPerms(),
	WasteItems:    contentPerms(),
	Schedule: {
		View: models.RoleViewer,
		Edit: models.RoleEditor,
	},
	Zones: {
		View:   models.RoleViewer,
		Create: models.RoleAdmin,
		Edit:   models.RoleAdmin,
		Delete: models.RoleAdmin,
	},
	MunicipalitySettings: {
		View: models.RoleAdmin,
		Edit: models.RoleAdmin,
	},
	Domains: {
		View: models.RoleAdmin,
		Edit: models.RoleAdmin,
	},
	AdminManagement: {
		View:   models.RoleSuperAdmin,
		Create: models.RoleSuperAdmin,
		Edit:   models.RoleSuperAdmin,
		Delete: models.RoleSuperAdmin,
	},
	Municipalities: {
		View:   models.RoleSuperAdmin,
		Create: models.RoleSuperAdmin,
		Edit:   models.RoleSuperAdmin,
		Delete: models.RoleSuperAdmin,
	},
}

// Can reports whether role may perform action on feature. Undefined
// features and actions deny every role, super-admin included. For defined
// pairs super-admin always passes and other roles need the listed minimum.
func Can(role string, feature Feature, action Action) bool {
	actions, ok := permissions[feature]
	if !ok {
		return false
	}
	min, ok := actions[action]
	if !ok {
		return false
	}
	if role == models.RoleSuperAdmin {
		return true
	}
	return AtLeast(role, min)
}

// Defined reports whether feature/action has a permission rule.
func Defined(feature Feature, action Action) bool {
	_, ok := permissions[feature][action]
	return ok
}

// Features lists every defined feature with its actions.
func Features() map[Feature][]Action {
	out := make(map[Feature][]Action, len(permissions))
	for f, actions := range permissions {
		for a := range actions {
			out[f] = append(out[f], a)
		}
	}
	return out
}
