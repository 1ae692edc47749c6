package app

import (
	"net/http"

	"github.com/XristosAndreopo/invoice-procurement-management/internal/masterdata/options"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/platform/httpx"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/rbac"
)

// Visibility decides who sees a navigation entry. The menu only hides
// entries; routes enforce their own permissions.
type Visibility int

const (
	VisibleToAll Visibility = iota
	VisibleToManagers
	VisibleToAdmins
)

// NavItem is a single menu link.
type NavItem struct {
	Label   string     `json:"label"`
	Path    string     `json:"path"`
	Visible Visibility `json:"-"`
}

// NavSection groups related links.
type NavSection struct {
	Key   string    `json:"key"`
	Label string    `json:"label"`
	Items []NavItem `json:"items"`
}

var navSections = []NavSection{
	{
		Key:   "procurements",
		Label: "Προμήθειες",
		Items: []NavItem{
			{Label: "Λίστα Προμηθειών (μη εγκεκριμένες)", Path: "/procurements/inbox"},
			{Label: "Εκκρεμείς Δαπάνες", Path: "/procurements/pending"},
			{Label: "Όλες οι Προμήθειες", Path: "/procurements"},
		},
	},
	{
		Key:   "admin",
		Label: "Διαχείριση",
		Items: []NavItem{
			{Label: "Προσωπικό", Path: "/masterdata/personnel", Visible: VisibleToAdmins},
			{Label: "Χρήστες", Path: "/users", Visible: VisibleToAdmins},
			{Label: "Υπηρεσίες", Path: "/masterdata/service-units", Visible: VisibleToAdmins},
			{Label: "Προμηθευτές", Path: "/masterdata/suppliers", Visible: VisibleToAdmins},
			{Label: "Κατάσταση", Path: "/masterdata/options/" + options.KeyStatus, Visible: VisibleToAdmins},
			{Label: "Στάδιο", Path: "/masterdata/options/" + options.KeyStage, Visible: VisibleToAdmins},
			{Label: "Κατανομή", Path: "/masterdata/options/" + options.KeyAllocation, Visible: VisibleToAdmins},
			{Label: "Τριμηνιαία", Path: "/masterdata/options/" + options.KeyQuarterly, Visible: VisibleToAdmins},
			{Label: "ΦΠΑ", Path: "/masterdata/options/" + options.KeyVAT, Visible: VisibleToAdmins},
			{Label: "Κρατήσεις", Path: "/masterdata/withholding-profiles", Visible: VisibleToAdmins},
			{Label: "Φόρος Εισοδήματος", Path: "/masterdata/income-tax-rules", Visible: VisibleToAdmins},
			{Label: "Επιτροπές Προμηθειών", Path: "/masterdata/options/" + options.KeyCommittees, Visible: VisibleToManagers},
			{Label: "Θέμα Εμφάνισης", Path: "/theme"},
			{Label: "Παράπονα/Αναφορά", Path: "/feedback"},
			{Label: "Διαχείριση Παραπόνων", Path: "/feedback", Visible: VisibleToAdmins},
			{Label: "Ιστορικό Ενεργειών", Path: "/audit", Visible: VisibleToAdmins},
		},
	},
}

// Menu returns the sections visible to actor. Sections left without items
// are dropped.
func Menu(actor rbac.Actor) []NavSection {
	out := make([]NavSection, 0, len(navSections))
	for _, section := range navSections {
		items := make([]NavItem, 0, len(section.Items))
		for _, item := range section.Items {
			if visibleTo(item.Visible, actor) {
				items = append(items, item)
			}
		}
		if len(items) == 0 {
			continue
		}
		out = append(out, NavSection{Key: section.Key, Label: section.Label, Items: items})
	}
	return out
}

func visibleTo(v Visibility, actor rbac.Actor) bool {
	switch v {
	case VisibleToAdmins:
		return actor.IsAdmin
	case VisibleToManagers:
		return actor.CanManage()
	}
	return true
}

// navHandler serves the menu of the current actor. Anonymous requests get an
// empty menu.
func navHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := rbac.ActorFromContext(r.Context())
	if !ok {
		httpx.JSON(w, http.StatusOK, []NavSection{})
		return
	}
	httpx.JSON(w, http.StatusOK, Menu(actor))
}
