package options

// Category keys.
const (
	KeyStatus       = "KATASTASH"
	KeyStage        = "STADIO"
	KeyAllocation   = "KATANOMH"
	KeyQuarterly    = "TRIMHNIAIA"
	KeyVAT          = "FPA"
	KeyWithholdings = "KRATHSEIS"
	KeyCommittees   = "EPITROPES"
)

// Definition describes a known category and who may edit it.
type Definition struct {
	Key   string
	Label string
	// UnitScoped categories are managed by unit managers for their own unit.
	UnitScoped bool
	Defaults   []string
}

var definitions = []Definition{
	{Key: KeyStatus, Label: "Κατάσταση", Defaults: []string{"-", "Εν Εξελίξη", "Ακυρωμένη", "Πέρας"}},
	{Key: KeyStage, Label: "Στάδιο", Defaults: []string{
		"-", "Δέσμευση", "Πρόσκληση", "Προέγκριση", "Έγκριση",
		"Απόφαση Ανάθεσης", "Σύμβαση", "Τιμολόγιο", "Αποστολή Δαπάνης",
	}},
	{Key: KeyAllocation, Label: "Κατανομή", Defaults: []string{
		"-", "Παγία", "Κατ' εξαίρεση", "Γραφική Ύλη", "Μικρογραφικά",
		"Ειδικές Διαχειρίσεις", "Καθαριότητα", "Λοιπές Προεγκρίσεις",
	}},
	{Key: KeyQuarterly, Label: "Τριμηνιαία", Defaults: []string{
		"-", "Α' ΤΡΙΜΗΝΙΑΙΑ", "Β' ΤΡΙΜΗΝΙΑΙΑ", "Γ' ΤΡΙΜΗΝΙΑΙΑ", "Δ' ΤΡΙΜΗΝΙΑΙΑ",
	}},
	{Key: KeyVAT, Label: "ΦΠΑ", Defaults: []string{"0", "6", "13", "24"}},
	{Key: KeyWithholdings, Label: "Κρατήσεις"},
	{Key: KeyCommittees, Label: "Επιτροπές Προμηθειών", UnitScoped: true},
}

// Definitions lists every known category in menu order.
func Definitions() []Definition {
	out := make([]Definition, len(definitions))
	copy(out, definitions)
	return out
}

// Lookup finds the definition for key.
func Lookup(key string) (Definition, bool) {
	for _, d := range definitions {
		if d.Key == key {
			return d, true
		}
	}
	return Definition{}, false
}
