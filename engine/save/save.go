// Package save implements JSON serialization of character loadouts. Items
// persist only their identity tuple and sockets; every number derived from
// them is rebuilt on load.
package save

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/nathoo/statcore/engine/character"
	"github.com/nathoo/statcore/engine/state"
	"github.com/nathoo/statcore/engine/stats"
	"github.com/nathoo/statcore/types"
)

// FormatVersion is written into every save.
const FormatVersion = 1

// SaveData is the JSON-serializable save format.
type SaveData struct {
	Format     int                `json:"format"`
	Game       string             `json:"game"`
	Version    string             `json:"version"`
	Character  uuid.UUID          `json:"character"`
	Name       string             `json:"name"`
	Level      int                `json:"level"`
	BaseStats  map[string]float64 `json:"base_stats"`
	Attributes map[string]float64 `json:"attributes"`
	Skills     map[string]int     `json:"skills"`
	Buffs      []BuffRecord       `json:"buffs"`
	Equip      []ItemRecord       `json:"equip"`
	RightHand  *ItemRecord        `json:"right_hand,omitempty"`
	LeftHand   *ItemRecord        `json:"left_hand,omitempty"`
	Inventory  []ItemRecord       `json:"inventory"`
	Summons    []SummonRecord     `json:"summons"`
	Mount      *MountRecord       `json:"mount,omitempty"`
}

// ItemRecord is the persisted form of an item instance.
type ItemRecord struct {
	DataID  string   `json:"data_id"`
	Level   int      `json:"level"`
	Amount  int      `json:"amount,omitempty"`
	Seed    int32    `json:"seed"`
	Version uint8    `json:"version"`
	Sockets []string `json:"sockets,omitempty"`
}

// BuffRecord is the persisted form of an active buff.
type BuffRecord struct {
	Kind   string `json:"kind"`
	DataID string `json:"data_id"`
	Level  int    `json:"level"`
}

// SummonRecord is the persisted form of a summon.
type SummonRecord struct {
	Kind   string `json:"kind"`
	DataID string `json:"data_id"`
	Level  int    `json:"level"`
}

// MountRecord is the persisted form of a mount.
type MountRecord struct {
	DataID    string `json:"data_id"`
	Level     int    `json:"level"`
	Passenger bool   `json:"passenger,omitempty"`
}

// Save serializes the loadout of s to JSON bytes.
func Save(s *character.Sheet, defs *state.Defs) ([]byte, error) {
	data := SaveData{
		Format:     FormatVersion,
		Game:       defs.Game.Title,
		Version:    defs.Game.Version,
		Character:  s.ID(),
		Name:       s.Name(),
		Level:      s.Level(),
		BaseStats:  map[string]float64{},
		Attributes: s.BaseAttributes(),
		Skills:     s.Skills(),
		Buffs:      []BuffRecord{},
		Equip:      itemRecords(s.EquipItems()),
		Inventory:  itemRecords(s.NonEquipItems()),
		Summons:    []SummonRecord{},
	}
	for i, v := range s.BaseStats() {
		if v != 0 {
			data.BaseStats[stats.Name(types.StatID(i))] = v
		}
	}
	for _, b := range s.Buffs() {
		data.Buffs = append(data.Buffs, BuffRecord{Kind: types.BuffKindNames[b.Kind], DataID: b.DataID, Level: b.Level})
	}
	w := s.Weapons()
	data.RightHand = itemRecord(w.RightHand)
	data.LeftHand = itemRecord(w.LeftHand)
	for _, sm := range s.Summons() {
		data.Summons = append(data.Summons, SummonRecord{Kind: types.SummonKindNames[sm.Kind], DataID: sm.DataID, Level: sm.Level})
	}
	if m, ok := s.Mount(); ok {
		data.Mount = &MountRecord{DataID: m.DataID, Level: m.Level, Passenger: m.Passenger}
	}
	return json.MarshalIndent(data, "", "  ")
}

func itemRecords(items []types.CharacterItem) []ItemRecord {
	out := make([]ItemRecord, 0, len(items))
	for i := range items {
		out = append(out, *itemRecord(&items[i]))
	}
	return out
}

func itemRecord(it *types.CharacterItem) *ItemRecord {
	if it == nil {
		return nil
	}
	return &ItemRecord{
		DataID:  it.DataID,
		Level:   it.Level,
		Amount:  it.Amount,
		Seed:    it.RandomSeed,
		Version: it.Version,
		Sockets: it.Sockets,
	}
}

// Load deserializes JSON bytes into SaveData and checks that every stat
// and kind name is known.
func Load(data []byte) (*SaveData, error) {
	var sd SaveData
	if err := json.Unmarshal(data, &sd); err != nil {
		return nil, fmt.Errorf("decoding save: %w", err)
	}
	if sd.Format != FormatVersion {
		return nil, fmt.Errorf("unsupported save format %d", sd.Format)
	}
	// Ensure maps are never nil after load.
	if sd.BaseStats == nil {
		sd.BaseStats = map[string]float64{}
	}
	if sd.Attributes == nil {
		sd.Attributes = map[string]float64{}
	}
	if sd.Skills == nil {
		sd.Skills = map[string]int{}
	}
	for name := range sd.BaseStats {
		if _, ok := stats.ID(name); !ok {
			return nil, fmt.Errorf("unknown stat %q", name)
		}
	}
	for _, b := range sd.Buffs {
		if _, ok := buffKind(b.Kind); !ok {
			return nil, fmt.Errorf("unknown buff kind %q", b.Kind)
		}
	}
	for _, sm := range sd.Summons {
		if _, ok := summonKind(sm.Kind); !ok {
			return nil, fmt.Errorf("unknown summon kind %q", sm.Kind)
		}
	}
	return &sd, nil
}

// Restore builds a sheet from loaded save data. Item instance ids are
// regenerated.
func Restore(sd *SaveData) *character.Sheet {
	id := sd.Character
	if id == uuid.Nil {
		id = uuid.New()
	}
	s := character.NewWithID(id, sd.Name)
	s.SetLevel(sd.Level)
	for name, v := range sd.BaseStats {
		if sid, ok := stats.ID(name); ok {
			s.SetBaseStat(sid, v)
		}
	}
	for k, v := range sd.Attributes {
		s.SetBaseAttribute(k, v)
	}
	for k, v := range sd.Skills {
		s.SetSkill(k, v)
	}
	for _, b := range sd.Buffs {
		kind, _ := buffKind(b.Kind)
		s.AddBuff(kind, b.DataID, b.Level)
	}
	for _, r := range sd.Equip {
		s.Equip(r.item())
	}
	if sd.RightHand != nil {
		s.EquipWeapon(character.RightHand, sd.RightHand.item())
	}
	if sd.LeftHand != nil {
		s.EquipWeapon(character.LeftHand, sd.LeftHand.item())
	}
	for _, r := range sd.Inventory {
		s.Carry(r.item())
	}
	for _, sm := range sd.Summons {
		kind, _ := summonKind(sm.Kind)
		s.AddSummon(kind, sm.DataID, sm.Level)
	}
	if sd.Mount != nil {
		s.SetMount(types.CharacterMount{DataID: sd.Mount.DataID, Level: sd.Mount.Level, Passenger: sd.Mount.Passenger})
	}
	return s
}

func (r ItemRecord) item() types.CharacterItem {
	return types.CharacterItem{
		DataID:     r.DataID,
		Level:      r.Level,
		Amount:     r.Amount,
		RandomSeed: r.Seed,
		Version:    r.Version,
		Sockets:    r.Sockets,
	}
}

func buffKind(name string) (types.BuffKind, bool) {
	for k, n := range types.BuffKindNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}

func summonKind(name string) (types.SummonKind, bool) {
	for k, n := range types.SummonKindNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}
