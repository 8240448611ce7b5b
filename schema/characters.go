package schema

import (
	"cmp"
	"strconv"
)

// characterNames maps character ids to display names.
var characterNames = map[string]string{
	"0":  "Sid",
	"1":  "Braut",
	"2":  "Deruto",
	"3":  "Haus",
	"4":  "Kiara",
	"5":  "Nana",
	"6":  "Slap",
	"7":  "Zippy",
	"8":  "Dex",
	"9":  "Mossy",
	"10": "Kai",
	"11": "Juno",
	"12": "Snarky",
	"13": "Drip",
	"14": "Klaus",
	"15": "HopHop",
	"16": "Lilac",
	"17": "Edge",
	"18": "Blip",
	"19": "Dorian",
	"20": "Akari",
	"21": "Liu Kong",
}

// CharacterName returns the display name for a character id.
// Unknown ids are returned unchanged.
func CharacterName(id string) string {
	if name, ok := characterNames[id]; ok {
		return name
	}
	return id
}

// IsKnownCharacter reports whether the id is in the registry.
func IsKnownCharacter(id string) bool {
	_, ok := characterNames[id]
	return ok
}

// CharacterIDs returns all registered ids in numeric order.
func CharacterIDs() []string {
	ids := make([]string, 0, len(characterNames))
	for i := range len(characterNames) {
		ids = append(ids, strconv.Itoa(i))
	}
	return ids
}

// CompareCharacterIDs orders numeric ids by value ahead of any non-numeric id,
// which compare as strings.
func CompareCharacterIDs(a, b string) int {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	switch {
	case errA == nil && errB == nil:
		return cmp.Compare(na, nb)
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	}
	return cmp.Compare(a, b)
}
