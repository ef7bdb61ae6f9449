// Package character is an in-memory character sheet: the mutable owner of
// buffs, items, summons and mount that the aggregator reads through
// derived.Character.
package character

import (
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/nathoo/statcore/types"
)

// Hand selects a weapon slot.
type Hand uint8

const (
	RightHand Hand = iota
	LeftHand
)

// Sheet is safe for concurrent use. Accessors return copies.
type Sheet struct {
	mu sync.RWMutex

	id    uuid.UUID
	name  string
	level int

	base     types.CharacterStats
	attrs    map[string]float64
	skills   map[string]int
	buffs    []types.CharacterBuff
	equip    []types.CharacterItem
	weapons  types.EquipWeapons
	nonEquip []types.CharacterItem
	summons  []types.CharacterSummon
	mount    *types.CharacterMount
}

// New returns a level 1 sheet with a fresh id.
func New(name string) *Sheet {
	return NewWithID(uuid.New(), name)
}

// NewWithID returns a level 1 sheet with the given id.
func NewWithID(id uuid.UUID, name string) *Sheet {
	return &Sheet{
		id:     id,
		name:   name,
		level:  1,
		attrs:  map[string]float64{},
		skills: map[string]int{},
	}
}

func (s *Sheet) ID() uuid.UUID { return s.id }

func (s *Sheet) Name() string { return s.name }

func (s *Sheet) Level() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.level
}

func (s *Sheet) BaseStats() types.CharacterStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.base
}

func (s *Sheet) BaseAttributes() map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]float64, len(s.attrs))
	for k, v := range s.attrs {
		out[k] = v
	}
	return out
}

func (s *Sheet) Skills() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]int, len(s.skills))
	for k, v := range s.skills {
		out[k] = v
	}
	return out
}

func (s *Sheet) Buffs() []types.CharacterBuff {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.buffs)
}

func (s *Sheet) EquipItems() []types.CharacterItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneItems(s.equip)
}

func (s *Sheet) Weapons() types.EquipWeapons {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return types.EquipWeapons{RightHand: cloneItem(s.weapons.RightHand), LeftHand: cloneItem(s.weapons.LeftHand)}
}

func (s *Sheet) NonEquipItems() []types.CharacterItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneItems(s.nonEquip)
}

func (s *Sheet) Summons() []types.CharacterSummon {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.summons)
}

func (s *Sheet) Mount() (types.CharacterMount, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.mount == nil {
		return types.CharacterMount{}, false
	}
	return *s.mount, true
}

// SetLevel sets the character level. Levels below 1 become 1.
func (s *Sheet) SetLevel(level int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.level = max(level, 1)
}

// SetBaseStat sets one base stat.
func (s *Sheet) SetBaseStat(id types.StatID, v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.base[id] = v
}

// SetBaseAttribute sets one base attribute amount.
func (s *Sheet) SetBaseAttribute(id string, v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attrs[id] = v
}

// SetSkill sets a learned skill level; levels below 1 forget the skill.
// It reports whether the skill was known before.
func (s *Sheet) SetSkill(id string, level int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, known := s.skills[id]
	if level < 1 {
		delete(s.skills, id)
	} else {
		s.skills[id] = level
	}
	return known
}

// AddBuff appends an active buff and returns its instance id.
func (s *Sheet) AddBuff(kind types.BuffKind, dataID string, level int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := types.CharacterBuff{ID: uuid.NewString(), Kind: kind, DataID: dataID, Level: level}
	s.buffs = append(s.buffs, b)
	return b.ID
}

// RemoveBuff removes the buff with instance id.
func (s *Sheet) RemoveBuff(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.buffs, func(b types.CharacterBuff) bool { return b.ID == id })
	if i < 0 {
		return false
	}
	s.buffs = slices.Delete(s.buffs, i, i+1)
	return true
}

// Equip puts item into an armor slot and returns its instance id.
func (s *Sheet) Equip(item types.CharacterItem) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	item = withID(item)
	s.equip = append(s.equip, item)
	return item.ID
}

// EquipWeapon puts item in hand and returns the item it replaced, if any.
func (s *Sheet) EquipWeapon(hand Hand, item types.CharacterItem) (string, *types.CharacterItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item = withID(item)
	slot := s.hand(hand)
	prev := *slot
	*slot = &item
	return item.ID, prev
}

func (s *Sheet) hand(h Hand) **types.CharacterItem {
	if h == LeftHand {
		return &s.weapons.LeftHand
	}
	return &s.weapons.RightHand
}

// Unequip removes the equipped item or weapon with instance id.
func (s *Sheet) Unequip(id string) (types.CharacterItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, h := range []Hand{RightHand, LeftHand} {
		slot := s.hand(h)
		if *slot != nil && (*slot).ID == id {
			out := **slot
			*slot = nil
			return out, true
		}
	}
	i := slices.IndexFunc(s.equip, func(it types.CharacterItem) bool { return it.ID == id })
	if i < 0 {
		return types.CharacterItem{}, false
	}
	out := s.equip[i]
	s.equip = slices.Delete(s.equip, i, i+1)
	return out, true
}

// Carry adds item to the inventory and returns its instance id.
func (s *Sheet) Carry(item types.CharacterItem) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	item = withID(item)
	s.nonEquip = append(s.nonEquip, item)
	return item.ID
}

// Drop removes an inventory item.
func (s *Sheet) Drop(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.nonEquip, func(it types.CharacterItem) bool { return it.ID == id })
	if i < 0 {
		return false
	}
	s.nonEquip = slices.Delete(s.nonEquip, i, i+1)
	return true
}

// Socket appends enhancer to the sockets of an equipped item or weapon.
func (s *Sheet) Socket(id, enhancer string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	it := s.findEquipped(id)
	if it == nil {
		return false
	}
	it.Sockets = append(slices.Clone(it.Sockets), enhancer)
	return true
}

func (s *Sheet) findEquipped(id string) *types.CharacterItem {
	if w := s.weapons.RightHand; w != nil && w.ID == id {
		return w
	}
	if w := s.weapons.LeftHand; w != nil && w.ID == id {
		return w
	}
	for i := range s.equip {
		if s.equip[i].ID == id {
			return &s.equip[i]
		}
	}
	return nil
}

// AddSummon appends a summon and returns its instance id.
func (s *Sheet) AddSummon(kind types.SummonKind, dataID string, level int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	sm := types.CharacterSummon{ID: uuid.NewString(), Kind: kind, DataID: dataID, Level: level}
	s.summons = append(s.summons, sm)
	return sm.ID
}

// RemoveSummon removes a summon.
func (s *Sheet) RemoveSummon(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.summons, func(sm types.CharacterSummon) bool { return sm.ID == id })
	if i < 0 {
		return false
	}
	s.summons = slices.Delete(s.summons, i, i+1)
	return true
}

// SetMount mounts m.
func (s *Sheet) SetMount(m types.CharacterMount) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mount = &m
}

// Dismount clears the mount and reports whether there was one.
func (s *Sheet) Dismount() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	had := s.mount != nil
	s.mount = nil
	return had
}

func withID(item types.CharacterItem) types.CharacterItem {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.Level < 1 {
		item.Level = 1
	}
	return item
}

func cloneItem(it *types.CharacterItem) *types.CharacterItem {
	if it == nil {
		return nil
	}
	out := *it
	out.Sockets = slices.Clone(it.Sockets)
	return &out
}

func cloneItems(items []types.CharacterItem) []types.CharacterItem {
	out := slices.Clone(items)
	for i := range out {
		out[i].Sockets = slices.Clone(out[i].Sockets)
	}
	return out
}
