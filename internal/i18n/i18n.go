package i18n

import "strings"

// Message tables for API responses. The domain enumerations (statut/type
// labels) are fixed French strings defined with the models and are not
// translated here.
var translations = map[string]map[string]string{
	"fr": {
		"required":              "Requis",
		"tiers_created":         "Tiers créé avec succès.",
		"tiers_updated":         "Tiers mis à jour avec succès.",
		"tiers_deleted":         "Tiers supprimé avec succès.",
		"dossier_created":       "Dossier créé avec succès.",
		"dossier_updated":       "Dossier mis à jour avec succès.",
		"dossier_deleted":       "Dossier supprimé avec succès.",
		"dossier_closed":        "Dossier clos avec succès.",
		"dossier_reopened":      "Dossier rouvert avec succès.",
		"nom_required":          "Le nom est requis pour une personne.",
		"denomination_required": "La dénomination est requise pour une juridiction.",
		"self_reference":        "Un tiers ne peut pas être son propre parent.",
		"tiers_has_dossiers":    "Impossible de supprimer un tiers avec des dossiers en tant que médiateur.",
		"tiers_has_children":    "Impossible de supprimer un tiers avec des enfants dans la hiérarchie.",
		"dossier_has_deps":      "Impossible de supprimer un dossier avec des actions ou documents.",
	},
	"en": {
		"required":              "Required",
		"tiers_created":         "Party created successfully.",
		"tiers_updated":         "Party updated successfully.",
		"tiers_deleted":         "Party deleted successfully.",
		"dossier_created":       "Case created successfully.",
		"dossier_updated":       "Case updated successfully.",
		"dossier_deleted":       "Case deleted successfully.",
		"dossier_closed":        "Case closed successfully.",
		"dossier_reopened":      "Case reopened successfully.",
		"nom_required":          "A surname is required for an individual.",
		"denomination_required": "A denomination is required for a jurisdiction.",
		"self_reference":        "A party cannot be its own parent.",
		"tiers_has_dossiers":    "Cannot delete a party still acting as mediator on cases.",
		"tiers_has_children":    "Cannot delete a party with children in the hierarchy.",
		"dossier_has_deps":      "Cannot delete a case with actions or documents.",
	},
}

// T translates a message code for the given language, falling back to the
// French table, then to the code itself.
func T(lang, code string) string {
	if m, ok := translations[lang]; ok {
		if msg, ok := m[code]; ok {
			return msg
		}
	}
	if msg, ok := translations["fr"][code]; ok {
		return msg
	}
	return code
}

// DetectLanguage picks a supported language from an Accept-Language header,
// defaulting to French.
func DetectLanguage(header string) string {
	h := strings.ToLower(strings.TrimSpace(header))
	if strings.HasPrefix(h, "en") {
		return "en"
	}
	return "fr"
}
