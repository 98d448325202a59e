package crud

// NoResultsMessage is the placeholder label returned when an autocomplete finds nothing.
const NoResultsMessage = "No results were found."

// TreatNoResults replaces an empty autocomplete result with a single
// placeholder entry so widgets always have something to show.
func TreatNoResults(results []map[string]any, message string) []map[string]any {
	if len(results) > 0 {
		return results
	}
	if message == "" {
		message = NoResultsMessage
	}
	return []map[string]any{{"name": message}}
}
