package race

import "strings"

// Fingerprint derives the stable identity key for a race from the attributes
// that survive every fetch: spaces in the event name become underscores, the
// five components join with underscores (empty ones dropped), and the result
// is lowercased. Identical logical races always hash to the same string, even
// when their surrogate row ids differ between ingestion runs.
func Fingerprint(eventName, raceDay, raceNum, catAbbrev, raceAbbrev string) string {
	components := []string{
		strings.ReplaceAll(eventName, " ", "_"),
		raceDay,
		raceNum,
		catAbbrev,
		raceAbbrev,
	}

	kept := make([]string, 0, len(components))
	for _, component := range components {
		if component == "" {
			continue
		}
		kept = append(kept, component)
	}

	return strings.ToLower(strings.Join(kept, "_"))
}
