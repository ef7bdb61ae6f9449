// Package parser converts console command strings into Intent structs.
// Intentionally dumb: no NLP, just pattern matching.
package parser

import (
	"strings"

	"github.com/nathoo/statcore/types"
)

var verbAliases = map[string]string{
	// Equipment
	"wear":  "equip",
	"wield": "equip",
	"don":   "equip",
	"eq":    "equip",

	"remove": "unequip",
	"doff":   "unequip",

	// Inventory
	"take":   "carry",
	"get":    "carry",
	"grab":   "carry",
	"pickup": "carry",

	"discard": "drop",
	"toss":    "drop",

	"insert": "socket",
	"embed":  "socket",

	// Buffs
	"cast":  "buff",
	"apply": "buff",

	"dispel":  "unbuff",
	"cleanse": "unbuff",
	"purge":   "unbuff",

	// Summons and mounts
	"call":     "summon",
	"unsummon": "dismiss",
	"release":  "dismiss",
	"ride":     "mount",
	"unmount":  "dismount",

	// Skills
	"train":   "learn",
	"unlearn": "forget",

	// Inspection
	"l":      "show",
	"look":   "show",
	"sheet":  "show",
	"stats":  "show",
	"status": "show",
	"bs":     "score",
	"ail":    "ailments",
	"lvl":    "level",
}

// optionKeys maps option keywords to their canonical names.
var optionKeys = map[string]string{
	"level":   "level",
	"lv":      "level",
	"lvl":     "level",
	"seed":    "seed",
	"version": "version",
	"ver":     "version",
	"hand":    "hand",
	"amount":  "amount",
	"x":       "amount",
}

var handNames = map[string]string{
	"right": "right",
	"main":  "right",
	"left":  "left",
	"off":   "left",
}

var prepositions = map[string]bool{
	"into": true, "in": true, "onto": true, "on": true,
	"to": true, "with": true, "from": true,
}

var articles = map[string]bool{
	"the": true, "a": true, "an": true, "my": true,
}

// Parse converts a raw command string into an Intent.
func Parse(input string) types.Intent {
	input = strings.TrimSpace(input)
	if input == "" {
		return types.Intent{}
	}

	words := strings.Fields(strings.ToLower(input))

	// Handle multi-word verb phrases before general parsing.
	words = expandMultiWordVerbs(words)

	// Apply verb aliases.
	if alias, ok := verbAliases[words[0]]; ok {
		words[0] = alias
	}

	verb := words[0]
	rest, opts := extractOptions(words[1:])

	// Strip articles ("the", "a", "an").
	rest = stripArticles(rest)

	// Use the first preposition as a delimiter between object and target.
	object, target := splitOnPreposition(rest)

	return types.Intent{
		Verb:    verb,
		Object:  object,
		Target:  target,
		Options: opts,
	}
}

// expandMultiWordVerbs handles "take off", "pick up", "battle score" etc.
func expandMultiWordVerbs(words []string) []string {
	if len(words) < 2 {
		return words
	}

	switch words[0] {
	case "take":
		if words[1] == "off" {
			return append([]string{"unequip"}, words[2:]...)
		}
	case "pick":
		if words[1] == "up" {
			return append([]string{"carry"}, words[2:]...)
		}
	case "put":
		if words[1] == "on" {
			return append([]string{"equip"}, words[2:]...)
		}
		if words[1] == "down" {
			return append([]string{"drop"}, words[2:]...)
		}
	case "get":
		if words[1] == "off" {
			return append([]string{"dismount"}, words[2:]...)
		}
		if words[1] == "on" {
			return append([]string{"mount"}, words[2:]...)
		}
	case "battle":
		if words[1] == "score" {
			return append([]string{"score"}, words[2:]...)
		}
	}

	return words
}

// extractOptions pulls "keyword value" and "keyword=value" pairs out of
// words. It returns the remaining words and nil when there are no options.
func extractOptions(words []string) ([]string, map[string]string) {
	var opts map[string]string
	set := func(key, val string) {
		if opts == nil {
			opts = map[string]string{}
		}
		if key == "hand" {
			if h, ok := handNames[val]; ok {
				val = h
			}
		}
		opts[key] = val
	}

	rest := make([]string, 0, len(words))
	for i := 0; i < len(words); i++ {
		w := words[i]
		if k, v, ok := strings.Cut(w, "="); ok {
			if key, known := optionKeys[k]; known && v != "" {
				set(key, v)
				continue
			}
		}
		if key, known := optionKeys[w]; known && i+1 < len(words) {
			set(key, words[i+1])
			i++
			continue
		}
		rest = append(rest, w)
	}
	return rest, opts
}

// stripArticles removes articles ("the", "a", "an") from the word list.
func stripArticles(words []string) []string {
	result := make([]string, 0, len(words))
	for _, w := range words {
		if !articles[w] {
			result = append(result, w)
		}
	}
	return result
}

// splitOnPreposition splits words on the first preposition.
// Words before the preposition become the object, words after become the target.
// If no preposition is found, all words become the object.
func splitOnPreposition(words []string) (object, target string) {
	for i, w := range words {
		if prepositions[w] {
			object = strings.Join(words[:i], " ")
			target = strings.Join(words[i+1:], " ")
			return object, target
		}
	}
	return strings.Join(words, " "), ""
}
