// Package resolve maps names typed at the console to definition ids and
// to the character's instance ids.
package resolve

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/nathoo/statcore/engine/state"
	"github.com/nathoo/statcore/types"
)

// Category selects a definition table.
type Category uint8

const (
	Items Category = iota
	Skills
	StatusEffects
	GuildSkills
	Summons
	Mounts
)

var categoryNames = map[Category]string{
	Items:         "item",
	Skills:        "skill",
	StatusEffects: "status effect",
	GuildSkills:   "guild skill",
	Summons:       "summon",
	Mounts:        "mount",
}

func (c Category) String() string { return categoryNames[c] }

// AmbiguityError indicates multiple definitions matched a name.
type AmbiguityError struct {
	Name       string
	Candidates []string
}

func (e *AmbiguityError) Error() string {
	names := strings.Join(e.Candidates, ", ")
	return fmt.Sprintf("which %s? (%s)", e.Name, names)
}

// NotFoundError indicates nothing matched a name.
type NotFoundError struct {
	Category string
	Name     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no %s called %q", e.Category, e.Name)
}

// Definition resolves name to a definition id in category cat.
func Definition(defs *state.Defs, cat Category, name string) (string, error) {
	titles := titles(defs, cat)
	ids := make([]string, 0, len(titles))
	for id := range titles {
		ids = append(ids, id)
	}
	return pick(cat.String(), name, ids, titles)
}

// Buff resolves name to a buff source: a status effect, a skill with a
// self buff, a guild skill or a potion.
func Buff(defs *state.Defs, name string) (types.BuffKind, string, error) {
	type source struct {
		kind types.BuffKind
		cat  Category
	}
	sources := []source{
		{types.BuffStatusEffect, StatusEffects},
		{types.BuffSkill, Skills},
		{types.BuffGuildSkill, GuildSkills},
		{types.BuffPotion, Items},
	}
	var (
		found []string
		kind  types.BuffKind
		id    string
	)
	for _, src := range sources {
		got, err := Definition(defs, src.cat, name)
		if err != nil {
			var amb *AmbiguityError
			if errors.As(err, &amb) {
				return 0, "", err
			}
			continue
		}
		if state.Buff(defs, src.kind, got) == nil {
			continue
		}
		found = append(found, src.cat.String()+" "+got)
		kind, id = src.kind, got
	}
	switch len(found) {
	case 0:
		return 0, "", &NotFoundError{Category: "buff", Name: name}
	case 1:
		return kind, id, nil
	default:
		return 0, "", &AmbiguityError{Name: name, Candidates: found}
	}
}

// Instance is a runtime instance a name can refer to.
type Instance struct {
	ID     string // instance id
	DataID string
}

// InstanceOf resolves name among a character's instances by matching the
// name against their definitions. Several instances of the same definition
// resolve to the first.
func InstanceOf(defs *state.Defs, cat Category, name string, instances []Instance) (string, error) {
	all := titles(defs, cat)
	owned := map[string]string{}
	ids := make([]string, 0, len(instances))
	for _, in := range instances {
		if _, dup := owned[in.DataID]; dup {
			continue
		}
		owned[in.DataID] = all[in.DataID]
		ids = append(ids, in.DataID)
	}
	dataID, err := pick(cat.String(), name, ids, owned)
	if err != nil {
		return "", err
	}
	for _, in := range instances {
		if in.DataID == dataID {
			return in.ID, nil
		}
	}
	return "", &NotFoundError{Category: cat.String(), Name: name}
}

func titles(defs *state.Defs, cat Category) map[string]string {
	out := map[string]string{}
	switch cat {
	case Items:
		for id, d := range defs.Items {
			out[id] = d.Title
		}
	case Skills:
		for id, d := range defs.Skills {
			out[id] = d.Title
		}
	case StatusEffects:
		for id, d := range defs.StatusEffects {
			out[id] = d.Title
		}
	case GuildSkills:
		for id, d := range defs.GuildSkills {
			out[id] = d.Title
		}
	case Summons:
		for id, d := range defs.Summons {
			out[id] = d.Title
		}
	case Mounts:
		for id, d := range defs.Mounts {
			out[id] = d.Title
		}
	}
	return out
}

// pick resolves name among ids. An exact id wins outright; otherwise every
// title or id match is a candidate.
func pick(category, name string, ids []string, titles map[string]string) (string, error) {
	nameLower := strings.ToLower(name)
	for _, id := range ids {
		if strings.ToLower(id) == nameLower {
			return id, nil
		}
	}

	var matches []string
	for _, id := range ids {
		if matchesName(id, titles[id], nameLower) {
			matches = append(matches, id)
		}
	}
	sort.Strings(matches)

	switch len(matches) {
	case 0:
		return "", &NotFoundError{Category: category, Name: name}
	case 1:
		return matches[0], nil
	default:
		return "", &AmbiguityError{Name: name, Candidates: matches}
	}
}

// matchesName checks if a definition title or id matches the query (case-insensitive).
// Supports exact match, word-based partial match, and id match.
func matchesName(id, title, nameLower string) bool {
	if title != "" {
		titleLower := strings.ToLower(title)
		// Exact match.
		if titleLower == nameLower {
			return true
		}
		// Word-based partial match: query matches any word in the title.
		// e.g. "sword" matches "Iron Sword".
		for _, word := range strings.Fields(titleLower) {
			if word == nameLower {
				return true
			}
		}
	}
	idLower := strings.ToLower(id)
	// Underscore normalization: "iron sword" matches id "iron_sword".
	if strings.ReplaceAll(nameLower, " ", "_") == idLower {
		return true
	}
	// Word-based partial match on id segments.
	for _, word := range strings.Split(idLower, "_") {
		if word == nameLower {
			return true
		}
	}
	return false
}
